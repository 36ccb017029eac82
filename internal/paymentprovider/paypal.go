package paymentprovider

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/magabrotheeeer/videohub-backend/internal/config"
)

const (
	paypalSandboxBase = "https://api-m.sandbox.paypal.com"
	paypalLiveBase    = "https://api-m.paypal.com"
)

// PayPalGateway реализует Gateway поверх REST API PayPal Subscriptions.
// Токен доступа OAuth2 кешируется на время жизни процесса и обновляется
// за 60 секунд до истечения.
type PayPalGateway struct {
	cfg        config.PayPal
	apiURL     string
	httpClient *http.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewPayPalGateway создаёт шлюз PayPal. Базовый адрес API выбирается по
// режиму sandbox/live из конфигурации.
func NewPayPalGateway(cfg config.PayPal) *PayPalGateway {
	apiURL := paypalSandboxBase
	if strings.EqualFold(cfg.Mode, "live") {
		apiURL = paypalLiveBase
	}
	return &PayPalGateway{
		cfg:        cfg,
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: httpTimeout},
	}
}

// Name возвращает имя провайдера.
func (g *PayPalGateway) Name() string { return "paypal" }

// resolvePlanID переводит символическое имя плана в plan id PayPal.
// Неизвестное имя уходит провайдеру как есть.
func (g *PayPalGateway) resolvePlanID(planID string) string {
	if strings.EqualFold(planID, "silver") && g.cfg.SilverPlanID != "" {
		return g.cfg.SilverPlanID
	}
	if strings.EqualFold(planID, "gold") && g.cfg.GoldPlanID != "" {
		return g.cfg.GoldPlanID
	}
	return planID
}

// PlanDisplayName возвращает отображаемое имя плана по plan id PayPal.
func (g *PayPalGateway) PlanDisplayName(planID string) string {
	switch {
	case planID == "":
		return ""
	case g.cfg.GoldPlanID != "" && planID == g.cfg.GoldPlanID:
		return "Gold"
	case g.cfg.SilverPlanID != "" && planID == g.cfg.SilverPlanID:
		return "Silver"
	default:
		return planID
	}
}

// accessToken возвращает кешированный токен доступа или запрашивает новый
// по client credentials. Обновление происходит за 60 секунд до истечения.
func (g *PayPalGateway) accessToken(ctx context.Context) (string, error) {
	const op = "paymentprovider.paypal.accessToken"

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.token != "" && time.Now().Before(g.tokenExpiry) {
		return g.token, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.apiURL+"/v1/oauth2/token", strings.NewReader("grant_type=client_credentials"))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	auth := base64.StdEncoding.EncodeToString([]byte(g.cfg.ClientID + ":" + g.cfg.ClientSecret))
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &GatewayError{Provider: g.Name(), StatusCode: resp.StatusCode, Body: buf.String()}
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(buf.Bytes(), &tokenResp); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if tokenResp.ExpiresIn == 0 {
		tokenResp.ExpiresIn = 3600
	}
	g.token = tokenResp.AccessToken
	g.tokenExpiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn-60) * time.Second)
	return g.token, nil
}

func (g *PayPalGateway) do(ctx context.Context, method, path string, body any) (int, []byte, error) {
	token, err := g.accessToken(ctx)
	if err != nil {
		return 0, nil, err
	}

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return 0, nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, g.apiURL+path, &buf)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	var out bytes.Buffer
	if _, err := out.ReadFrom(resp.Body); err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, out.Bytes(), nil
}

// CreateSubscriptionIntent создаёт подписку PayPal в статусе, требующем
// одобрения покупателя, и возвращает ссылку approve.
func (g *PayPalGateway) CreateSubscriptionIntent(ctx context.Context, userUID, planID string) (*SubscriptionIntent, error) {
	const op = "paymentprovider.paypal.CreateSubscriptionIntent"

	if g.cfg.ClientID == "" || g.cfg.ClientSecret == "" {
		return nil, fmt.Errorf("%s: client credentials are missing: %w", op, ErrNotConfigured)
	}
	resolved := g.resolvePlanID(planID)
	if resolved == "" {
		return nil, fmt.Errorf("%s: plan %q has no PayPal plan id: %w", op, planID, ErrNotConfigured)
	}

	body := map[string]any{
		"plan_id":   resolved,
		"custom_id": userUID,
		"application_context": map[string]string{
			"return_url": g.cfg.ReturnURL,
			"cancel_url": g.cfg.CancelURL,
		},
	}
	status, respBody, err := g.do(ctx, http.MethodPost, "/v1/billing/subscriptions", body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if status != http.StatusCreated {
		return nil, &GatewayError{Provider: g.Name(), StatusCode: status, Body: string(respBody)}
	}

	var created struct {
		ID    string `json:"id"`
		Links []struct {
			Rel  string `json:"rel"`
			Href string `json:"href"`
		} `json:"links"`
	}
	if err := json.Unmarshal(respBody, &created); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	intent := &SubscriptionIntent{ExternalRef: created.ID}
	for _, link := range created.Links {
		if link.Rel == "approve" {
			intent.ApprovalURL = link.Href
			break
		}
	}
	return intent, nil
}

// FetchDetails читает подписку PayPal. Провайдер не сообщает конца
// оплаченного периода, поэтому PeriodEnd всегда nil.
func (g *PayPalGateway) FetchDetails(ctx context.Context, externalRef string) (*SubscriptionDetails, error) {
	const op = "paymentprovider.paypal.FetchDetails"

	status, respBody, err := g.do(ctx, http.MethodGet,
		"/v1/billing/subscriptions/"+url.PathEscape(externalRef), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if status != http.StatusOK {
		return nil, &GatewayError{Provider: g.Name(), StatusCode: status, Body: string(respBody)}
	}

	var sub struct {
		Status    string `json:"status"`
		PlanID    string `json:"plan_id"`
		CustomID  string `json:"custom_id"`
		StartTime string `json:"start_time"`
	}
	if err := json.Unmarshal(respBody, &sub); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	details := &SubscriptionDetails{
		ExternalRef: externalRef,
		Status:      sub.Status,
		PlanID:      sub.PlanID,
		UserRef:     sub.CustomID,
	}
	if start, err := time.Parse(time.RFC3339, sub.StartTime); err == nil {
		details.PeriodStart = &start
	}
	return details, nil
}

// paypalWebhookPayload — сырое событие PayPal в объёме, нужном для
// нормализации.
type paypalWebhookPayload struct {
	EventType string `json:"event_type"`
	Resource  struct {
		ID        string `json:"id"`
		PlanID    string `json:"plan_id"`
		CustomID  string `json:"custom_id"`
		StartTime string `json:"start_time"`
	} `json:"resource"`
}

// VerifyAndParseWebhook проверяет событие через verify-webhook-signature API
// PayPal и нормализует его. Без настроенного webhook id событие отбрасывается
// молча — задокументированное поведение мягкой деградации, не рекомендация
// по безопасности.
func (g *PayPalGateway) VerifyAndParseWebhook(ctx context.Context, payload []byte, headers http.Header) (*WebhookEvent, error) {
	const op = "paymentprovider.paypal.VerifyAndParseWebhook"

	if g.cfg.WebhookID == "" {
		return nil, ErrEventDropped
	}

	verifyReq := map[string]any{
		"auth_algo":         headers.Get("Paypal-Auth-Algo"),
		"cert_url":          headers.Get("Paypal-Cert-Url"),
		"transmission_id":   headers.Get("Paypal-Transmission-Id"),
		"transmission_sig":  headers.Get("Paypal-Transmission-Sig"),
		"transmission_time": headers.Get("Paypal-Transmission-Time"),
		"webhook_id":        g.cfg.WebhookID,
		"webhook_event":     json.RawMessage(payload),
	}
	status, respBody, err := g.do(ctx, http.MethodPost, "/v1/notifications/verify-webhook-signature", verifyReq)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if status != http.StatusOK {
		return nil, &GatewayError{Provider: g.Name(), StatusCode: status, Body: string(respBody)}
	}
	var verification struct {
		VerificationStatus string `json:"verification_status"`
	}
	if err := json.Unmarshal(respBody, &verification); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if verification.VerificationStatus != "SUCCESS" {
		return nil, ErrInvalidSignature
	}

	var event paypalWebhookPayload
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if event.Resource.ID == "" {
		return nil, ErrEventDropped
	}

	normalized := &WebhookEvent{
		ExternalRef: event.Resource.ID,
		UserRef:     event.Resource.CustomID,
		PlanID:      event.Resource.PlanID,
	}
	if start, err := time.Parse(time.RFC3339, event.Resource.StartTime); err == nil {
		normalized.PeriodStart = &start
	}

	switch event.EventType {
	case "BILLING.SUBSCRIPTION.ACTIVATED":
		normalized.Kind = EventActivated
	case "BILLING.SUBSCRIPTION.CANCELLED", "BILLING.SUBSCRIPTION.SUSPENDED":
		normalized.Kind = EventCancelled
	default:
		return nil, ErrEventDropped
	}
	return normalized, nil
}
