package paymentprovider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/videohub-backend/internal/config"
)

func paypalTestConfig() config.PayPal {
	return config.PayPal{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Mode:         "sandbox",
		SilverPlanID: "P-SILVER",
		GoldPlanID:   "P-GOLD",
		ReturnURL:    "http://localhost:5173/subscription-success",
		CancelURL:    "http://localhost:5173/",
		WebhookID:    "WH-1",
	}
}

func newPayPalGatewayForTest(srvURL string) *PayPalGateway {
	g := NewPayPalGateway(paypalTestConfig())
	g.apiURL = srvURL
	return g
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestPayPalGateway_TokenCaching(t *testing.T) {
	tokenRequests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/oauth2/token":
			tokenRequests++
			writeJSON(w, http.StatusOK, map[string]any{
				"access_token": "token-1",
				"expires_in":   3600,
			})
		default:
			assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, map[string]any{
				"status":  "ACTIVE",
				"plan_id": "P-GOLD",
			})
		}
	}))
	defer srv.Close()

	g := newPayPalGatewayForTest(srv.URL)
	ctx := context.Background()

	_, err := g.FetchDetails(ctx, "I-ABC123")
	require.NoError(t, err)
	_, err = g.FetchDetails(ctx, "I-ABC123")
	require.NoError(t, err)

	assert.Equal(t, 1, tokenRequests, "token should be cached between requests")
}

func TestPayPalGateway_CreateSubscriptionIntent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/oauth2/token":
			writeJSON(w, http.StatusOK, map[string]any{"access_token": "token-1", "expires_in": 3600})
		case "/v1/billing/subscriptions":
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "P-GOLD", body["plan_id"])
			assert.Equal(t, "uid-1", body["custom_id"])
			writeJSON(w, http.StatusCreated, map[string]any{
				"id": "I-ABC123",
				"links": []map[string]string{
					{"rel": "self", "href": "https://api/self"},
					{"rel": "approve", "href": "https://paypal.example/approve/I-ABC123"},
				},
			})
		default:
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	g := newPayPalGatewayForTest(srv.URL)

	intent, err := g.CreateSubscriptionIntent(context.Background(), "uid-1", "gold")
	require.NoError(t, err)
	assert.Equal(t, "I-ABC123", intent.ExternalRef)
	assert.Equal(t, "https://paypal.example/approve/I-ABC123", intent.ApprovalURL)
}

func TestPayPalGateway_CreateSubscriptionIntent_NotConfigured(t *testing.T) {
	g := NewPayPalGateway(config.PayPal{})

	_, err := g.CreateSubscriptionIntent(context.Background(), "uid-1", "gold")
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestPayPalGateway_CreateSubscriptionIntent_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/oauth2/token" {
			writeJSON(w, http.StatusOK, map[string]any{"access_token": "token-1", "expires_in": 3600})
			return
		}
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"name": "INVALID_REQUEST"})
	}))
	defer srv.Close()

	g := newPayPalGatewayForTest(srv.URL)

	_, err := g.CreateSubscriptionIntent(context.Background(), "uid-1", "gold")
	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, "paypal", gwErr.Provider)
	assert.Equal(t, http.StatusUnprocessableEntity, gwErr.StatusCode)
	assert.Contains(t, gwErr.Body, "INVALID_REQUEST")
}

func TestPayPalGateway_FetchDetails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/oauth2/token":
			writeJSON(w, http.StatusOK, map[string]any{"access_token": "token-1", "expires_in": 3600})
		case "/v1/billing/subscriptions/I-ABC123":
			writeJSON(w, http.StatusOK, map[string]any{
				"status":     "ACTIVE",
				"plan_id":    "P-GOLD",
				"custom_id":  "uid-1",
				"start_time": "2024-01-01T00:00:00Z",
			})
		default:
			writeJSON(w, http.StatusNotFound, map[string]string{"name": "RESOURCE_NOT_FOUND"})
		}
	}))
	defer srv.Close()

	g := newPayPalGatewayForTest(srv.URL)

	details, err := g.FetchDetails(context.Background(), "I-ABC123")
	require.NoError(t, err)
	assert.Equal(t, "I-ABC123", details.ExternalRef)
	assert.Equal(t, StatusActive, details.Status)
	assert.Equal(t, "P-GOLD", details.PlanID)
	assert.Equal(t, "uid-1", details.UserRef)
	require.NotNil(t, details.PeriodStart)
	// PayPal не сообщает конец оплаченного периода
	assert.Nil(t, details.PeriodEnd)

	_, err = g.FetchDetails(context.Background(), "I-UNKNOWN")
	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, http.StatusNotFound, gwErr.StatusCode)
}

func TestPayPalGateway_VerifyAndParseWebhook(t *testing.T) {
	verificationStatus := "SUCCESS"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/oauth2/token":
			writeJSON(w, http.StatusOK, map[string]any{"access_token": "token-1", "expires_in": 3600})
		case "/v1/notifications/verify-webhook-signature":
			writeJSON(w, http.StatusOK, map[string]string{"verification_status": verificationStatus})
		default:
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	g := newPayPalGatewayForTest(srv.URL)
	headers := http.Header{}
	headers.Set("Paypal-Transmission-Id", "tid")
	headers.Set("Paypal-Transmission-Sig", "sig")
	headers.Set("Paypal-Transmission-Time", "2024-01-01T00:00:00Z")

	activated := []byte(`{
		"event_type": "BILLING.SUBSCRIPTION.ACTIVATED",
		"resource": {
			"id": "I-ABC123",
			"plan_id": "P-GOLD",
			"custom_id": "uid-1",
			"start_time": "2024-01-01T00:00:00Z"
		}
	}`)

	event, err := g.VerifyAndParseWebhook(context.Background(), activated, headers)
	require.NoError(t, err)
	assert.Equal(t, EventActivated, event.Kind)
	assert.Equal(t, "I-ABC123", event.ExternalRef)
	assert.Equal(t, "uid-1", event.UserRef)
	assert.Equal(t, "P-GOLD", event.PlanID)

	cancelled := []byte(`{
		"event_type": "BILLING.SUBSCRIPTION.CANCELLED",
		"resource": {"id": "I-ABC123"}
	}`)
	event, err = g.VerifyAndParseWebhook(context.Background(), cancelled, headers)
	require.NoError(t, err)
	assert.Equal(t, EventCancelled, event.Kind)

	irrelevant := []byte(`{
		"event_type": "PAYMENT.SALE.COMPLETED",
		"resource": {"id": "I-ABC123"}
	}`)
	_, err = g.VerifyAndParseWebhook(context.Background(), irrelevant, headers)
	require.ErrorIs(t, err, ErrEventDropped)

	verificationStatus = "FAILURE"
	_, err = g.VerifyAndParseWebhook(context.Background(), activated, headers)
	require.ErrorIs(t, err, ErrInvalidSignature)
}

func TestPayPalGateway_VerifyAndParseWebhook_NoWebhookID(t *testing.T) {
	cfg := paypalTestConfig()
	cfg.WebhookID = ""
	g := NewPayPalGateway(cfg)

	_, err := g.VerifyAndParseWebhook(context.Background(), []byte(`{}`), http.Header{})
	require.ErrorIs(t, err, ErrEventDropped)
}

func TestPayPalGateway_PlanDisplayName(t *testing.T) {
	g := NewPayPalGateway(paypalTestConfig())

	assert.Equal(t, "Gold", g.PlanDisplayName("P-GOLD"))
	assert.Equal(t, "Silver", g.PlanDisplayName("P-SILVER"))
	assert.Equal(t, "P-OTHER", g.PlanDisplayName("P-OTHER"))
	assert.Equal(t, "", g.PlanDisplayName(""))
}
