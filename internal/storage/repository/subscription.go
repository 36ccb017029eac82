package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/videohub-backend/internal/models"
)

const subscriptionColumns = `id, user_id, plan_id, provider, external_ref, status, start_date, end_date`

func scanSubscription(scan func(dest ...any) error) (*models.Subscription, error) {
	var sub models.Subscription
	err := scan(&sub.ID, &sub.UserID, &sub.PlanID, &sub.Provider,
		&sub.ExternalRef, &sub.Status, &sub.StartDate, &sub.EndDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// UpsertSubscriptionByExternalRef создаёт запись подписки либо обновляет
// существующую с тем же external_ref. Владелец записи при обновлении не
// меняется: external_ref — ключ идемпотентности для confirm и webhook.
func (s *Storage) UpsertSubscriptionByExternalRef(ctx context.Context, sub models.Subscription) (*models.Subscription, error) {
	const op = "storage.UpsertSubscriptionByExternalRef"

	query := `INSERT INTO subscriptions (user_id, plan_id, provider, external_ref, status, start_date, end_date)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  ON CONFLICT (external_ref) DO UPDATE
			  SET plan_id = EXCLUDED.plan_id,
			      status = EXCLUDED.status,
			      start_date = EXCLUDED.start_date,
			      end_date = EXCLUDED.end_date,
			      updated_at = now()
			  RETURNING ` + subscriptionColumns
	row := s.DB.QueryRowContext(ctx, query,
		sub.UserID, sub.PlanID, sub.Provider, sub.ExternalRef, sub.Status, sub.StartDate, sub.EndDate)
	result, err := scanSubscription(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// FindSubscriptionByExternalRef возвращает подписку по идентификатору
// провайдера или ErrNotFound.
func (s *Storage) FindSubscriptionByExternalRef(ctx context.Context, externalRef string) (*models.Subscription, error) {
	const op = "storage.FindSubscriptionByExternalRef"

	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE external_ref = $1`
	row := s.DB.QueryRowContext(ctx, query, externalRef)
	result, err := scanSubscription(row.Scan)
	if errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// FindActiveSubscriptionByUserID возвращает самую свежую запись пользователя
// со статусом ACTIVE. Уникальность активной записи на пользователя базой не
// гарантируется, поэтому выбирается новейшая по дате начала.
func (s *Storage) FindActiveSubscriptionByUserID(ctx context.Context, userID string) (*models.Subscription, error) {
	const op = "storage.FindActiveSubscriptionByUserID"

	query := `SELECT ` + subscriptionColumns + `
			  FROM subscriptions
			  WHERE user_id = $1 AND status = $2
			  ORDER BY start_date DESC
			  LIMIT 1`
	row := s.DB.QueryRowContext(ctx, query, userID, models.SubscriptionStatusActive)
	result, err := scanSubscription(row.Scan)
	if errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// SetSubscriptionStatusByExternalRef обновляет статус записи и возвращает
// количество изменённых строк. Ноль строк — не ошибка: событие отмены для
// неизвестной подписки игнорируется.
func (s *Storage) SetSubscriptionStatusByExternalRef(ctx context.Context, externalRef, status string) (int, error) {
	const op = "storage.SetSubscriptionStatusByExternalRef"

	query := `UPDATE subscriptions SET status = $1, updated_at = now() WHERE external_ref = $2`
	result, err := s.DB.ExecContext(ctx, query, status, externalRef)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
