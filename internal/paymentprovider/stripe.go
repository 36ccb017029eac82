package paymentprovider

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/magabrotheeeer/videohub-backend/internal/config"
)

const stripeAPIBase = "https://api.stripe.com"

// stripeSignatureTolerance ограничивает возраст подписанного события,
// защищая от повторного проигрывания старых запросов.
const stripeSignatureTolerance = 5 * time.Minute

// StripeGateway реализует Gateway поверх REST API Stripe: подписка
// оформляется через Checkout Session, границы оплаченного периода берутся
// из самой подписки Stripe, а не выводятся локально.
type StripeGateway struct {
	cfg        config.Stripe
	apiURL     string
	httpClient *http.Client
	now        func() time.Time
}

// NewStripeGateway создаёт шлюз Stripe.
func NewStripeGateway(cfg config.Stripe) *StripeGateway {
	return &StripeGateway{
		cfg:        cfg,
		apiURL:     stripeAPIBase,
		httpClient: &http.Client{Timeout: httpTimeout},
		now:        time.Now,
	}
}

// Name возвращает имя провайдера.
func (g *StripeGateway) Name() string { return "stripe" }

func (g *StripeGateway) configured() bool {
	return g.cfg.SecretKey != "" && g.cfg.SilverPriceID != "" && g.cfg.GoldPriceID != ""
}

// resolvePriceID переводит символическое имя плана в price id Stripe.
// Неизвестное имя уходит провайдеру как есть.
func (g *StripeGateway) resolvePriceID(planID string) string {
	if strings.EqualFold(planID, "silver") {
		return g.cfg.SilverPriceID
	}
	if strings.EqualFold(planID, "gold") {
		return g.cfg.GoldPriceID
	}
	return planID
}

// planFromPrice нормализует price id обратно в символическое имя плана.
func (g *StripeGateway) planFromPrice(priceID string) string {
	if priceID == g.cfg.GoldPriceID {
		return "gold"
	}
	return "silver"
}

// PlanDisplayName возвращает отображаемое имя плана.
func (g *StripeGateway) PlanDisplayName(planID string) string {
	switch strings.ToLower(planID) {
	case "gold":
		return "Gold"
	case "silver":
		return "Silver"
	default:
		return planID
	}
}

func (g *StripeGateway) do(ctx context.Context, method, path string, form url.Values) (int, []byte, error) {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req, err := http.NewRequestWithContext(ctx, method, g.apiURL+path, body)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+g.cfg.SecretKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

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

// CreateSubscriptionIntent создаёт Checkout Session в режиме подписки.
// Сессия короткоживущая: локальная запись подписки появится только после
// подтверждения или webhook-события.
func (g *StripeGateway) CreateSubscriptionIntent(ctx context.Context, userUID, planID string) (*SubscriptionIntent, error) {
	const op = "paymentprovider.stripe.CreateSubscriptionIntent"

	if !g.configured() {
		return nil, fmt.Errorf("%s: secret key or price ids are missing: %w", op, ErrNotConfigured)
	}
	priceID := g.resolvePriceID(planID)
	if priceID == "" {
		return nil, fmt.Errorf("%s: plan %q has no Stripe price id: %w", op, planID, ErrNotConfigured)
	}

	successURL := g.cfg.SuccessURL
	if strings.Contains(successURL, "?") {
		successURL += "&session_id={CHECKOUT_SESSION_ID}"
	} else {
		successURL += "?session_id={CHECKOUT_SESSION_ID}"
	}

	form := url.Values{}
	form.Set("mode", "subscription")
	form.Set("success_url", successURL)
	form.Set("cancel_url", g.cfg.CancelURL)
	form.Set("client_reference_id", userUID)
	form.Set("line_items[0][price]", priceID)
	form.Set("line_items[0][quantity]", "1")

	status, respBody, err := g.do(ctx, http.MethodPost, "/v1/checkout/sessions", form)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if status != http.StatusOK {
		return nil, &GatewayError{Provider: g.Name(), StatusCode: status, Body: string(respBody)}
	}

	var session struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := json.Unmarshal(respBody, &session); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &SubscriptionIntent{ExternalRef: session.ID, ApprovalURL: session.URL}, nil
}

// stripeSubscription — подписка Stripe в объёме, нужном для нормализации.
type stripeSubscription struct {
	ID                 string `json:"id"`
	Status             string `json:"status"`
	CurrentPeriodStart int64  `json:"current_period_start"`
	CurrentPeriodEnd   int64  `json:"current_period_end"`
	Items              struct {
		Data []struct {
			Price struct {
				ID string `json:"id"`
			} `json:"price"`
		} `json:"data"`
	} `json:"items"`
}

func (g *StripeGateway) normalizeSubscription(sub *stripeSubscription, userRef string) *SubscriptionDetails {
	details := &SubscriptionDetails{
		ExternalRef: sub.ID,
		UserRef:     userRef,
	}
	switch sub.Status {
	case "active", "trialing":
		details.Status = StatusActive
	case "canceled", "unpaid":
		details.Status = StatusCancelled
	default:
		details.Status = StatusApprovalPending
	}
	if len(sub.Items.Data) > 0 {
		details.PlanID = g.planFromPrice(sub.Items.Data[0].Price.ID)
	}
	if sub.CurrentPeriodStart > 0 {
		start := time.Unix(sub.CurrentPeriodStart, 0).UTC()
		details.PeriodStart = &start
	}
	if sub.CurrentPeriodEnd > 0 {
		end := time.Unix(sub.CurrentPeriodEnd, 0).UTC()
		details.PeriodEnd = &end
	}
	return details
}

// FetchDetails принимает id checkout-сессии ("cs_...") или id подписки
// ("sub_..."). Для сессии сначала разрешается привязанная подписка;
// ExternalRef в ответе — всегда id подписки, по нему хранится локальная
// запись.
func (g *StripeGateway) FetchDetails(ctx context.Context, externalRef string) (*SubscriptionDetails, error) {
	const op = "paymentprovider.stripe.FetchDetails"

	subID := externalRef
	userRef := ""
	if strings.HasPrefix(externalRef, "cs_") {
		status, respBody, err := g.do(ctx, http.MethodGet,
			"/v1/checkout/sessions/"+url.PathEscape(externalRef), nil)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if status != http.StatusOK {
			return nil, &GatewayError{Provider: g.Name(), StatusCode: status, Body: string(respBody)}
		}
		var session struct {
			Subscription      string `json:"subscription"`
			ClientReferenceID string `json:"client_reference_id"`
		}
		if err := json.Unmarshal(respBody, &session); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if session.Subscription == "" {
			return nil, fmt.Errorf("%s: %w", op, ErrSessionIncomplete)
		}
		subID = session.Subscription
		userRef = session.ClientReferenceID
	}

	status, respBody, err := g.do(ctx, http.MethodGet, "/v1/subscriptions/"+url.PathEscape(subID), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if status != http.StatusOK {
		return nil, &GatewayError{Provider: g.Name(), StatusCode: status, Body: string(respBody)}
	}
	var sub stripeSubscription
	if err := json.Unmarshal(respBody, &sub); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return g.normalizeSubscription(&sub, userRef), nil
}

// verifySignature проверяет заголовок Stripe-Signature: HMAC-SHA256 от
// "<timestamp>.<payload>" на секрете подписи, с допуском по времени.
func (g *StripeGateway) verifySignature(payload []byte, header string) error {
	var timestamp string
	var signatures []string
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			timestamp = kv[1]
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return ErrInvalidSignature
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrInvalidSignature
	}
	age := g.now().Sub(time.Unix(ts, 0))
	if age > stripeSignatureTolerance || age < -stripeSignatureTolerance {
		return ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, []byte(g.cfg.WebhookSecret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, sig := range signatures {
		if hmac.Equal([]byte(expected), []byte(sig)) {
			return nil
		}
	}
	return ErrInvalidSignature
}

// VerifyAndParseWebhook проверяет подпись события и нормализует его.
// Без настроенного секрета подписи событие отбрасывается молча.
func (g *StripeGateway) VerifyAndParseWebhook(_ context.Context, payload []byte, headers http.Header) (*WebhookEvent, error) {
	const op = "paymentprovider.stripe.VerifyAndParseWebhook"

	if g.cfg.WebhookSecret == "" {
		return nil, ErrEventDropped
	}
	if err := g.verifySignature(payload, headers.Get("Stripe-Signature")); err != nil {
		return nil, err
	}

	var event struct {
		Type string `json:"type"`
		Data struct {
			Object json.RawMessage `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	switch event.Type {
	case "customer.subscription.updated", "customer.subscription.deleted":
	default:
		return nil, ErrEventDropped
	}

	var sub stripeSubscription
	if err := json.Unmarshal(event.Data.Object, &sub); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if sub.ID == "" {
		return nil, ErrEventDropped
	}

	details := g.normalizeSubscription(&sub, "")
	normalized := &WebhookEvent{
		ExternalRef: details.ExternalRef,
		PlanID:      details.PlanID,
		PeriodStart: details.PeriodStart,
		PeriodEnd:   details.PeriodEnd,
	}
	if event.Type == "customer.subscription.deleted" || details.Status == StatusCancelled {
		normalized.Kind = EventCancelled
		return normalized, nil
	}
	if details.Status == StatusActive {
		normalized.Kind = EventActivated
		return normalized, nil
	}
	// Промежуточные статусы (incomplete, past_due) локальное состояние не меняют.
	return nil, ErrEventDropped
}
