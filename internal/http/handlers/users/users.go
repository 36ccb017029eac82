// Package users реализует административные HTTP-обработчики управления
// пользователями: список, создание и смена признака администратора.
// Все ручки защищены JWT и проверкой роли администратора.
package users

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/videohub-backend/internal/http/response"
	"github.com/magabrotheeeer/videohub-backend/internal/lib/sl"
	"github.com/magabrotheeeer/videohub-backend/internal/models"
	"github.com/magabrotheeeer/videohub-backend/internal/services/auth"
)

// Handler управляет административными запросами к пользователям.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис аутентификации и пользователей
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс управления пользователями.
type Service interface {
	ListUsers(ctx context.Context) ([]*models.User, error)
	CreateUser(ctx context.Context, req models.CreateUserRequest) (*models.User, error)
	SetAdmin(ctx context.Context, id string, isAdmin bool) (*models.User, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// List godoc
// @Summary Список пользователей
// @Tags Users
// @Produce  json
// @Success 200 {object} map[string]any "Пользователи без хэшей паролей"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /users [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		log.Error("failed to list users", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list users"))
		return
	}
	render.JSON(w, r, response.OKWithData(users))
}

// Create godoc
// @Summary Создать пользователя
// @Description Создаёт учётную запись от имени администратора, включая выдачу прав.
// @Tags Users
// @Accept  json
// @Produce  json
// @Param request body models.CreateUserRequest true "Данные пользователя"
// @Success 200 {object} map[string]any "Созданный пользователь"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 409 {object} response.ErrorResponse "Email уже занят"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /users [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	user, err := h.service.CreateUser(r.Context(), req)
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("email already registered"))
			return
		}
		log.Error("failed to create user", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create user"))
		return
	}

	log.Info("user created by admin", slog.String("user_id", user.ID))
	render.JSON(w, r, response.OKWithData(user))
}

type updateAdminRequest struct {
	IsAdmin bool `json:"isAdmin"`
}

// UpdateAdmin godoc
// @Summary Сменить признак администратора
// @Description Выдаёт или снимает права администратора. Снятие прав с последнего администратора запрещено.
// @Tags Users
// @Accept  json
// @Produce  json
// @Param id path string true "ID пользователя"
// @Param request body updateAdminRequest true "Новое значение признака"
// @Success 200 {object} map[string]any "Обновлённый пользователь"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 409 {object} response.ErrorResponse "Последний администратор"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /users/{id}/admin [patch]
func (h *Handler) UpdateAdmin(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.updateadmin"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")

	var req updateAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	user, err := h.service.SetAdmin(r.Context(), id, req.IsAdmin)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrLastAdmin):
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("at least one admin must remain"))
		case errors.Is(err, auth.ErrUserNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
		default:
			log.Error("failed to update admin flag", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not update user"))
		}
		return
	}

	log.Info("admin flag updated", slog.String("user_id", user.ID), slog.Bool("is_admin", user.IsAdmin))
	render.JSON(w, r, response.OKWithData(user))
}
