// Package models содержит доменные структуры платформы: пользователей,
// подписки и маркетинговый контент. Структуры используются в бизнес-логике
// и при работе с хранилищем.
package models

import "time"

// User представляет зарегистрированного пользователя платформы.
// PasswordHash может быть пустым для учётных записей, созданных через
// внешнего провайдера идентификации.
type User struct {
	ID           string    `json:"id"`       // Уникальный идентификатор (uuid)
	Email        string    `json:"email"`    // Электронная почта, хранится в нижнем регистре
	PasswordHash string    `json:"-"`        // bcrypt-хэш пароля
	FullName     string    `json:"fullName"` // Отображаемое имя
	IsAdmin      bool      `json:"isAdmin"`  // Признак администратора
	CreatedAt    time.Time `json:"createdAt"`
}

// RegisterRequest используется для приёма данных регистрации из JSON-запроса.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"fullName" validate:"required"`
}

// LoginRequest используется для приёма данных входа из JSON-запроса.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// CreateUserRequest используется администратором для создания пользователя.
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"fullName" validate:"required"`
	IsAdmin  bool   `json:"isAdmin"`
}
