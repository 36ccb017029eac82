// Package subscription реализует жизненный цикл платной подписки:
// создание намерения у провайдера, подтверждение после возврата покупателя
// и сверку локального состояния с асинхронными webhook-событиями.
//
// Источник истины о платёжном состоянии — провайдер. Локальная запись
// создаётся только после подтверждения или webhook-события и обновляется
// идемпотентным upsert по external_ref.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/videohub-backend/internal/lib/sl"
	"github.com/magabrotheeeer/videohub-backend/internal/models"
	"github.com/magabrotheeeer/videohub-backend/internal/paymentprovider"
	"github.com/magabrotheeeer/videohub-backend/internal/storage/repository"
)

var (
	// ErrOwnershipViolation — попытка подтвердить подписку, принадлежащую
	// другому пользователю.
	ErrOwnershipViolation = errors.New("subscription belongs to another user")

	// ErrInvalidState — провайдер сообщил статус, не допускающий активации.
	ErrInvalidState = errors.New("subscription is not in a confirmable state")

	// ErrInvalidSessionID — идентификатор не похож на checkout-сессию.
	ErrInvalidSessionID = errors.New("invalid checkout session id")

	// ErrUnknownUser — провайдер вернул сквозной идентификатор пользователя,
	// которого нет в хранилище.
	ErrUnknownUser = errors.New("unknown user reference")
)

// statusCacheTTL — время жизни кэшированного статуса подписки. Короткий TTL:
// статус меняется webhook-событиями, кэш лишь гасит повторные чтения.
const statusCacheTTL = time.Minute

// Repository определяет методы хранилища, нужные жизненному циклу подписки.
type Repository interface {
	// UpsertSubscriptionByExternalRef создаёт или обновляет запись по external_ref.
	UpsertSubscriptionByExternalRef(ctx context.Context, sub models.Subscription) (*models.Subscription, error)
	// FindSubscriptionByExternalRef возвращает запись по external_ref.
	FindSubscriptionByExternalRef(ctx context.Context, externalRef string) (*models.Subscription, error)
	// FindActiveSubscriptionByUserID возвращает свежайшую активную запись пользователя.
	FindActiveSubscriptionByUserID(ctx context.Context, userID string) (*models.Subscription, error)
	// SetSubscriptionStatusByExternalRef меняет статус, возвращает число строк.
	SetSubscriptionStatusByExternalRef(ctx context.Context, externalRef, status string) (int, error)
	// GetUserByID возвращает пользователя по id.
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// Service реализует бизнес-логику подписок поверх хранилища и платёжного шлюза.
type Service struct {
	repo    Repository
	gateway paymentprovider.Gateway
	cache   Cache
	log     *slog.Logger
	now     func() time.Time
}

// New создаёт сервис подписок.
func New(repo Repository, gateway paymentprovider.Gateway, cache Cache, log *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		gateway: gateway,
		cache:   cache,
		log:     log,
		now:     time.Now,
	}
}

func statusCacheKey(userUID string) string {
	return "subscription_status:" + userUID
}

// Create создаёт у провайдера намерение подписки. Локальная запись не
// создаётся: до подтверждения намерение — короткоживущее состояние провайдера.
func (s *Service) Create(ctx context.Context, userUID, planID string) (*paymentprovider.SubscriptionIntent, error) {
	const op = "services.subscription.Create"

	intent, err := s.gateway.CreateSubscriptionIntent(ctx, userUID, planID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return intent, nil
}

// derivedEndDate вычисляет дату окончания, когда провайдер не сообщил
// границы оплаченного периода: год для Gold, месяц для остальных планов.
func (s *Service) derivedEndDate(planID string, start time.Time) time.Time {
	if s.gateway.PlanDisplayName(planID) == "Gold" {
		return start.AddDate(1, 0, 0)
	}
	return start.AddDate(0, 1, 0)
}

// reconcile записывает активную подписку по данным провайдера. Владелец
// существующей записи проверяется до записи, upsert по external_ref делает
// операцию идемпотентной.
func (s *Service) reconcile(ctx context.Context, userUID string, details *paymentprovider.SubscriptionDetails) (*models.Subscription, error) {
	existing, err := s.repo.FindSubscriptionByExternalRef(ctx, details.ExternalRef)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if existing != nil && existing.UserID != userUID {
		return nil, ErrOwnershipViolation
	}

	start := s.now().UTC()
	if details.PeriodStart != nil {
		start = *details.PeriodStart
	}
	end := details.PeriodEnd
	if end == nil {
		derived := s.derivedEndDate(details.PlanID, start)
		end = &derived
	}

	sub := models.Subscription{
		UserID:      userUID,
		PlanID:      details.PlanID,
		Provider:    s.gateway.Name(),
		ExternalRef: details.ExternalRef,
		Status:      models.SubscriptionStatusActive,
		StartDate:   start,
		EndDate:     end,
	}
	stored, err := s.repo.UpsertSubscriptionByExternalRef(ctx, sub)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Invalidate(statusCacheKey(userUID)); err != nil {
		s.log.Warn("failed to invalidate status cache", sl.Err(err))
	}
	return stored, nil
}

// Confirm сверяет подписку с провайдером после возврата покупателя и
// активирует локальную запись. Активация допустима только из статусов
// ACTIVE и APPROVAL_PENDING у провайдера.
func (s *Service) Confirm(ctx context.Context, userUID, externalRef string) (*models.Subscription, error) {
	const op = "services.subscription.Confirm"

	details, err := s.gateway.FetchDetails(ctx, externalRef)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if details.Status != paymentprovider.StatusActive &&
		details.Status != paymentprovider.StatusApprovalPending {
		return nil, fmt.Errorf("%s: provider status %q: %w", op, details.Status, ErrInvalidState)
	}

	stored, err := s.reconcile(ctx, userUID, details)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return stored, nil
}

// ConfirmSession подтверждает checkout-сессию Stripe. Вызов не требует
// аутентификации: пользователь восстанавливается из сквозного идентификатора,
// переданного провайдеру при создании сессии.
func (s *Service) ConfirmSession(ctx context.Context, sessionID string) (*models.Subscription, error) {
	const op = "services.subscription.ConfirmSession"

	if !strings.HasPrefix(sessionID, "cs_") {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidSessionID)
	}

	details, err := s.gateway.FetchDetails(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if details.UserRef == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrUnknownUser)
	}
	if _, err := s.repo.GetUserByID(ctx, details.UserRef); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUnknownUser)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if details.Status != paymentprovider.StatusActive &&
		details.Status != paymentprovider.StatusApprovalPending {
		return nil, fmt.Errorf("%s: provider status %q: %w", op, details.Status, ErrInvalidState)
	}

	stored, err := s.reconcile(ctx, details.UserRef, details)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return stored, nil
}

// HandleWebhook применяет нормализованное событие провайдера к локальному
// состоянию. Повторная доставка события безопасна: активация — upsert,
// отмена уже отменённой записи меняет ноль строк.
func (s *Service) HandleWebhook(ctx context.Context, event *paymentprovider.WebhookEvent) error {
	const op = "services.subscription.HandleWebhook"

	switch event.Kind {
	case paymentprovider.EventActivated:
		return s.applyActivation(ctx, op, event)
	case paymentprovider.EventCancelled:
		return s.applyCancellation(ctx, op, event)
	default:
		s.log.Info("skipping webhook event of unknown kind",
			slog.String("kind", event.Kind), slog.String("external_ref", event.ExternalRef))
		return nil
	}
}

func (s *Service) applyActivation(ctx context.Context, op string, event *paymentprovider.WebhookEvent) error {
	existing, err := s.repo.FindSubscriptionByExternalRef(ctx, event.ExternalRef)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}

	userUID := event.UserRef
	planID := event.PlanID
	var start time.Time
	var end *time.Time

	if existing != nil {
		// Запись уже есть: владелец не меняется, событие лишь освежает
		// план, статус и границы периода.
		userUID = existing.UserID
		if planID == "" {
			planID = existing.PlanID
		}
		start = existing.StartDate
		end = existing.EndDate
	} else {
		// Событие пришло раньше подтверждения. Запись создаётся, только
		// если провайдер передал известного пользователя.
		if userUID == "" {
			s.log.Info("skipping activation for unknown subscription without user reference",
				slog.String("external_ref", event.ExternalRef))
			return nil
		}
		if _, err := s.repo.GetUserByID(ctx, userUID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				s.log.Warn("skipping activation: user from webhook not found",
					slog.String("user_uid", userUID), slog.String("external_ref", event.ExternalRef))
				return nil
			}
			return fmt.Errorf("%s: %w", op, err)
		}
		start = s.now().UTC()
	}

	if event.PeriodStart != nil {
		start = *event.PeriodStart
	}
	if event.PeriodEnd != nil {
		end = event.PeriodEnd
	}
	if end == nil {
		derived := s.derivedEndDate(planID, start)
		end = &derived
	}

	sub := models.Subscription{
		UserID:      userUID,
		PlanID:      planID,
		Provider:    s.gateway.Name(),
		ExternalRef: event.ExternalRef,
		Status:      models.SubscriptionStatusActive,
		StartDate:   start,
		EndDate:     end,
	}
	if _, err := s.repo.UpsertSubscriptionByExternalRef(ctx, sub); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.cache.Invalidate(statusCacheKey(userUID)); err != nil {
		s.log.Warn("failed to invalidate status cache", sl.Err(err))
	}
	return nil
}

func (s *Service) applyCancellation(ctx context.Context, op string, event *paymentprovider.WebhookEvent) error {
	existing, err := s.repo.FindSubscriptionByExternalRef(ctx, event.ExternalRef)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Отмена неизвестной подписки игнорируется.
			s.log.Info("skipping cancellation for unknown subscription",
				slog.String("external_ref", event.ExternalRef))
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.repo.SetSubscriptionStatusByExternalRef(ctx,
		event.ExternalRef, models.SubscriptionStatusCancelled); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.cache.Invalidate(statusCacheKey(existing.UserID)); err != nil {
		s.log.Warn("failed to invalidate status cache", sl.Err(err))
	}
	return nil
}

// Status возвращает статус подписки пользователя. Истечение срока
// обрабатывается лениво: запись ACTIVE с прошедшей датой окончания доступа
// не даёт, статус в базе при этом не переписывается.
func (s *Service) Status(ctx context.Context, userUID string) (*models.SubscriptionStatus, error) {
	const op = "services.subscription.Status"

	var cached models.SubscriptionStatus
	found, err := s.cache.Get(statusCacheKey(userUID), &cached)
	if err != nil {
		s.log.Warn("failed to read status cache", sl.Err(err))
	}
	if found {
		// Кэшированная запись могла пережить дату окончания: признак
		// доступа пересчитывается от кэшированной даты, а не берётся как есть.
		if cached.IsSubscribed && cached.EndDate != nil && !cached.EndDate.After(s.now()) {
			cached.IsSubscribed = false
		}
		return &cached, nil
	}

	sub, err := s.repo.FindActiveSubscriptionByUserID(ctx, userUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			status := &models.SubscriptionStatus{IsSubscribed: false}
			s.cacheStatus(userUID, status)
			return status, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	status := &models.SubscriptionStatus{
		IsSubscribed:    sub.EndDate == nil || sub.EndDate.After(s.now()),
		Plan:            sub.PlanID,
		PlanDisplayName: s.gateway.PlanDisplayName(sub.PlanID),
		StartDate:       &sub.StartDate,
		EndDate:         sub.EndDate,
	}
	s.cacheStatus(userUID, status)
	return status, nil
}

func (s *Service) cacheStatus(userUID string, status *models.SubscriptionStatus) {
	if err := s.cache.Set(statusCacheKey(userUID), status, statusCacheTTL); err != nil {
		s.log.Warn("failed to write status cache", sl.Err(err))
	}
}

// HasActiveSubscription отвечает, есть ли у пользователя оплаченный доступ.
func (s *Service) HasActiveSubscription(ctx context.Context, userUID string) (bool, error) {
	status, err := s.Status(ctx, userUID)
	if err != nil {
		return false, err
	}
	return status.IsSubscribed, nil
}
