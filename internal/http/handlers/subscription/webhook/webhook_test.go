package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/videohub-backend/internal/paymentprovider"
)

// Мок шлюза провайдера
type GatewayMock struct {
	mock.Mock
}

func (m *GatewayMock) CreateSubscriptionIntent(ctx context.Context, userUID, planID string) (*paymentprovider.SubscriptionIntent, error) {
	args := m.Called(ctx, userUID, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.SubscriptionIntent), args.Error(1)
}

func (m *GatewayMock) FetchDetails(ctx context.Context, externalRef string) (*paymentprovider.SubscriptionDetails, error) {
	args := m.Called(ctx, externalRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.SubscriptionDetails), args.Error(1)
}

func (m *GatewayMock) VerifyAndParseWebhook(ctx context.Context, payload []byte, headers http.Header) (*paymentprovider.WebhookEvent, error) {
	args := m.Called(ctx, payload, headers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.WebhookEvent), args.Error(1)
}

func (m *GatewayMock) PlanDisplayName(planID string) string {
	args := m.Called(planID)
	return args.String(0)
}

func (m *GatewayMock) Name() string {
	return "paypal"
}

// Мок сервиса подписок с методом HandleWebhook
type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) HandleWebhook(ctx context.Context, event *paymentprovider.WebhookEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestWebhookHandler_ServeHTTP(t *testing.T) {
	activated := &paymentprovider.WebhookEvent{
		Kind:        paymentprovider.EventActivated,
		ExternalRef: "I-ABC123",
		UserRef:     "uid-1",
		PlanID:      "gold",
	}

	tests := []struct {
		name           string
		verifyEvent    *paymentprovider.WebhookEvent
		verifyErr      error
		handleErr      error
		callService    bool
		wantStatusCode int
		wantError      string
		wantStatus     string
	}{
		{
			name:           "event applied",
			verifyEvent:    activated,
			callService:    true,
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
		},
		{
			name:           "irrelevant event acknowledged",
			verifyErr:      paymentprovider.ErrEventDropped,
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
		},
		{
			name:           "invalid signature",
			verifyErr:      paymentprovider.ErrInvalidSignature,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid signature",
			wantStatus:     "Error",
		},
		{
			name: "verification service unavailable",
			verifyErr: &paymentprovider.GatewayError{
				Provider:   "paypal",
				StatusCode: http.StatusServiceUnavailable,
				Body:       "oops",
			},
			wantStatusCode: http.StatusBadGateway,
			wantError:      "verification unavailable",
			wantStatus:     "Error",
		},
		{
			name:           "malformed event",
			verifyErr:      errors.New("unexpected end of JSON input"),
			wantStatusCode: http.StatusBadRequest,
			wantError:      "malformed event",
			wantStatus:     "Error",
		},
		{
			name:           "processing failure still acknowledged",
			verifyEvent:    activated,
			handleErr:      errors.New("storage error"),
			callService:    true,
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gatewayMock := new(GatewayMock)
			serviceMock := new(ServiceMock)
			handler := New(newNoopLogger(), gatewayMock, serviceMock)

			gatewayMock.On("VerifyAndParseWebhook", mock.Anything, mock.Anything, mock.Anything).
				Return(tt.verifyEvent, tt.verifyErr).Once()

			if tt.callService {
				serviceMock.On("HandleWebhook", mock.Anything, tt.verifyEvent).
					Return(tt.handleErr).Once()
			}

			body := []byte(`{"event_type":"BILLING.SUBSCRIPTION.ACTIVATED"}`)
			req := httptest.NewRequest(http.MethodPost, "/paypal/webhook", bytes.NewReader(body))
			req.Header.Set("Paypal-Transmission-Sig", "sig")
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))

			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			err := json.NewDecoder(rec.Body).Decode(&got)
			assert.NoError(t, err)

			assert.Equal(t, tt.wantStatus, got["status"])

			if tt.wantError != "" {
				errStr, ok := got["error"].(string)
				assert.True(t, ok)
				assert.Equal(t, tt.wantError, errStr)
			}

			gatewayMock.AssertExpectations(t)
			serviceMock.AssertExpectations(t)
		})
	}
}
