package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/videohub-backend/internal/models"
)

// CreateUser вставляет нового пользователя и возвращает его id.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.CreateUser"

	query := `INSERT INTO users (email, password_hash, full_name, is_admin)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	var newID string
	err := s.DB.QueryRowContext(ctx, query,
		user.Email, user.PasswordHash, user.FullName, user.IsAdmin).Scan(&newID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

func scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash,
		&user.FullName, &user.IsAdmin, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail возвращает пользователя по email (в нижнем регистре).
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"

	query := `SELECT id, email, password_hash, full_name, is_admin, created_at
			  FROM users WHERE email = $1`
	user, err := scanUser(s.DB.QueryRowContext(ctx, query, email))
	if errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// GetUserByID возвращает пользователя по id.
func (s *Storage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.GetUserByID"

	query := `SELECT id, email, password_hash, full_name, is_admin, created_at
			  FROM users WHERE id = $1`
	user, err := scanUser(s.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// ListUsers возвращает всех пользователей без хэшей паролей.
func (s *Storage) ListUsers(ctx context.Context) ([]*models.User, error) {
	const op = "storage.ListUsers"

	query := `SELECT id, email, full_name, is_admin, created_at
			  FROM users ORDER BY created_at`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Email, &user.FullName,
			&user.IsAdmin, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// SetAdmin меняет признак администратора. Проверка «должен остаться хотя бы
// один администратор» выполняется в той же транзакции, что и запись:
// узкое гоночное окно принято, глобальной блокировки нет.
func (s *Storage) SetAdmin(ctx context.Context, id string, isAdmin bool) (*models.User, error) {
	const op = "storage.SetAdmin"

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	var wasAdmin bool
	err = tx.QueryRowContext(ctx,
		`SELECT is_admin FROM users WHERE id = $1 FOR UPDATE`, id).Scan(&wasAdmin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if wasAdmin && !isAdmin {
		var adminCount int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM users WHERE is_admin`).Scan(&adminCount); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if adminCount <= 1 {
			return nil, ErrLastAdmin
		}
	}

	var user models.User
	err = tx.QueryRowContext(ctx,
		`UPDATE users SET is_admin = $1 WHERE id = $2
		 RETURNING id, email, full_name, is_admin, created_at`,
		isAdmin, id).Scan(&user.ID, &user.Email, &user.FullName, &user.IsAdmin, &user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &user, nil
}
