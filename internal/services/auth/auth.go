// Package auth реализует регистрацию, вход и выпуск JWT токенов, а также
// административное управление пользователями.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/videohub-backend/internal/lib/jwt"
	"github.com/magabrotheeeer/videohub-backend/internal/lib/password"
	"github.com/magabrotheeeer/videohub-backend/internal/models"
	"github.com/magabrotheeeer/videohub-backend/internal/storage/repository"
)

var (
	// ErrUserExists — пользователь с таким email уже зарегистрирован.
	ErrUserExists = errors.New("user already exists")

	// ErrInvalidCredentials — неверная пара email/пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrLastAdmin — нельзя снять права с последнего администратора.
	ErrLastAdmin = errors.New("at least one admin must remain")

	// ErrUserNotFound — пользователь не найден.
	ErrUserNotFound = errors.New("user not found")
)

// Роли, попадающие в claim токена.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// UserRepository определяет методы хранилища для работы с пользователями.
type UserRepository interface {
	// CreateUser вставляет пользователя и возвращает его id.
	CreateUser(ctx context.Context, user models.User) (string, error)
	// GetUserByEmail возвращает пользователя по email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUserByID возвращает пользователя по id.
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	// ListUsers возвращает всех пользователей.
	ListUsers(ctx context.Context) ([]*models.User, error)
	// SetAdmin меняет признак администратора.
	SetAdmin(ctx context.Context, id string, isAdmin bool) (*models.User, error)
}

// Service реализует аутентификацию и управление пользователями.
type Service struct {
	repo  UserRepository
	maker jwt.Maker
	log   *slog.Logger
}

// New создаёт сервис аутентификации.
func New(repo UserRepository, maker jwt.Maker, log *slog.Logger) *Service {
	return &Service{repo: repo, maker: maker, log: log}
}

// normalizeEmail приводит email к каноническому виду хранения.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func roleOf(user *models.User) string {
	if user.IsAdmin {
		return RoleAdmin
	}
	return RoleUser
}

// Register создаёт пользователя по данным самостоятельной регистрации.
// Возвращает id нового пользователя.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (string, error) {
	const op = "services.auth.Register"

	email := normalizeEmail(req.Email)
	_, err := s.repo.GetUserByEmail(ctx, email)
	if err == nil {
		return "", fmt.Errorf("%s: %w", op, ErrUserExists)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	hash, err := password.GetHash(req.Password)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	id, err := s.repo.CreateUser(ctx, models.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     req.FullName,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// Login проверяет учётные данные и возвращает подписанный токен вместе с
// пользователем. Несуществующий email и неверный пароль неразличимы для
// вызывающего.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (string, *models.User, error) {
	const op = "services.auth.Login"

	user, err := s.repo.GetUserByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, req.Password); err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	token, err := s.maker.GenerateToken(user.ID, user.Email, roleOf(user))
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	return token, user, nil
}

// ValidateToken проверяет токен и возвращает его claims.
func (s *Service) ValidateToken(tokenStr string) (*jwt.CustomClaims, error) {
	return s.maker.ParseToken(tokenStr)
}

// CreateUser создаёт пользователя от имени администратора, включая выдачу
// признака администратора.
func (s *Service) CreateUser(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	const op = "services.auth.CreateUser"

	email := normalizeEmail(req.Email)
	_, err := s.repo.GetUserByEmail(ctx, email)
	if err == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrUserExists)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hash, err := password.GetHash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	id, err := s.repo.CreateUser(ctx, models.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     req.FullName,
		IsAdmin:      req.IsAdmin,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// ListUsers возвращает всех пользователей.
func (s *Service) ListUsers(ctx context.Context) ([]*models.User, error) {
	const op = "services.auth.ListUsers"

	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return users, nil
}

// SetAdmin меняет признак администратора пользователя. Снятие признака с
// последнего администратора запрещено.
func (s *Service) SetAdmin(ctx context.Context, id string, isAdmin bool) (*models.User, error) {
	const op = "services.auth.SetAdmin"

	user, err := s.repo.SetAdmin(ctx, id, isAdmin)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrLastAdmin):
			return nil, fmt.Errorf("%s: %w", op, ErrLastAdmin)
		case errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		default:
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	return user, nil
}
