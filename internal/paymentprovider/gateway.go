// Package paymentprovider реализует шлюзы к платёжным провайдерам.
//
// Провайдеры доступны через единый интерфейс Gateway и подключаются
// взаимоисключающе: конкретная реализация (PayPal или Stripe) выбирается
// при старте приложения из конфигурации. Ответы провайдеров нормализуются
// в провайдеро-независимые типы, чтобы бизнес-логика подписок не зависела
// от формата конкретного API.
package paymentprovider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Нормализованные статусы подписки у провайдера.
const (
	StatusActive          = "ACTIVE"
	StatusApprovalPending = "APPROVAL_PENDING"
	StatusCancelled       = "CANCELLED"
)

// Виды нормализованных webhook-событий.
const (
	EventActivated = "activated"
	EventCancelled = "cancelled"
)

var (
	// ErrNotConfigured — отсутствуют учётные данные провайдера или
	// соответствие планов. Поднимается до запроса к провайдеру.
	ErrNotConfigured = errors.New("payment provider is not configured")

	// ErrInvalidSignature — подпись webhook не прошла проверку.
	ErrInvalidSignature = errors.New("invalid webhook signature")

	// ErrEventDropped — событие отброшено без обработки: не настроен
	// секрет подписи либо тип события не относится к подпискам.
	ErrEventDropped = errors.New("webhook event dropped")

	// ErrSessionIncomplete — checkout-сессия ещё не привязана к подписке
	// (покупатель не завершил оплату).
	ErrSessionIncomplete = errors.New("checkout session has no subscription")
)

// GatewayError — неуспешный HTTP-ответ провайдера. Сырое тело ответа
// сохраняется для диагностики оператором.
type GatewayError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("%s: provider returned %d: %s", e.Provider, e.StatusCode, e.Body)
}

// SubscriptionIntent — созданное у провайдера намерение подписки.
// ExternalRef — идентификатор подписки или checkout-сессии,
// ApprovalURL — адрес, куда перенаправляется покупатель для одобрения.
type SubscriptionIntent struct {
	ExternalRef string
	ApprovalURL string
}

// SubscriptionDetails — актуальное состояние подписки по данным провайдера.
// PeriodEnd равен nil, если провайдер не сообщает границы периода
// (в этом случае дата окончания выводится локальной политикой).
// UserRef — сквозной идентификатор пользователя, переданный при создании.
type SubscriptionDetails struct {
	ExternalRef string
	Status      string
	PlanID      string
	UserRef     string
	PeriodStart *time.Time
	PeriodEnd   *time.Time
}

// WebhookEvent — нормализованное асинхронное событие провайдера.
type WebhookEvent struct {
	Kind        string
	ExternalRef string
	UserRef     string
	PlanID      string
	PeriodStart *time.Time
	PeriodEnd   *time.Time
}

// Gateway описывает контракт платёжного провайдера: создание намерения
// подписки, чтение её состояния и проверка webhook-событий.
type Gateway interface {
	// CreateSubscriptionIntent создаёт у провайдера подписку или
	// checkout-сессию для указанного плана. userUID передаётся провайдеру
	// как сквозной идентификатор для корреляции webhook-событий.
	CreateSubscriptionIntent(ctx context.Context, userUID, planID string) (*SubscriptionIntent, error)

	// FetchDetails синхронно читает состояние подписки у провайдера.
	FetchDetails(ctx context.Context, externalRef string) (*SubscriptionDetails, error)

	// VerifyAndParseWebhook проверяет подпись события и нормализует его.
	// Возвращает ErrInvalidSignature при неверной подписи и ErrEventDropped,
	// если событие следует молча проигнорировать.
	VerifyAndParseWebhook(ctx context.Context, payload []byte, headers http.Header) (*WebhookEvent, error)

	// PlanDisplayName возвращает человеко-читаемое имя плана.
	PlanDisplayName(planID string) string

	// Name возвращает имя провайдера ("paypal" или "stripe").
	Name() string
}

// httpTimeout ограничивает каждый запрос к провайдеру, чтобы зависший
// провайдер не держал обработчик запроса бесконечно.
const httpTimeout = 10 * time.Second
