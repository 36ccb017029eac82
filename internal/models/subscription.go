package models

import "time"

// Статусы подписки. CANCELLED — терминальный статус: повторная подписка
// создаёт новую запись, а не реанимирует старую.
const (
	SubscriptionStatusActive          = "ACTIVE"
	SubscriptionStatusCancelled       = "CANCELLED"
	SubscriptionStatusApprovalPending = "APPROVAL_PENDING"
)

// Subscription представляет платёжное отношение пользователя с провайдером.
// ExternalRef — идентификатор, выданный провайдером (id подписки PayPal или
// id подписки Stripe), ключ идемпотентного upsert. EndDate может быть nil,
// пока провайдер не сообщил период.
type Subscription struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	PlanID      string     `json:"planId"`
	Provider    string     `json:"provider"`
	ExternalRef string     `json:"externalRef"`
	Status      string     `json:"status"`
	StartDate   time.Time  `json:"startDate"`
	EndDate     *time.Time `json:"endDate,omitempty"`
}

// SubscriptionStatus — ленивый ответ на вопрос «есть ли у пользователя
// оплаченный доступ». IsSubscribed вычисляется в момент чтения: запись со
// статусом ACTIVE, но истёкшей датой окончания, доступ не даёт.
type SubscriptionStatus struct {
	IsSubscribed    bool       `json:"isSubscribed"`
	Plan            string     `json:"plan"`
	PlanDisplayName string     `json:"planDisplayName"`
	StartDate       *time.Time `json:"startDate,omitempty"`
	EndDate         *time.Time `json:"endDate,omitempty"`
}

// CreateSubscriptionRequest используется для приёма plan id из JSON-запроса.
type CreateSubscriptionRequest struct {
	PlanID string `json:"planId" validate:"required"`
}

// ConfirmSubscriptionRequest используется для подтверждения подписки по
// внешнему идентификатору после возврата пользователя от провайдера.
type ConfirmSubscriptionRequest struct {
	SubscriptionID string `json:"subscriptionId" validate:"required"`
}

// ConfirmSessionRequest используется для подтверждения checkout-сессии
// (вариант Stripe, без аутентификации).
type ConfirmSessionRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
}
