// Package confirm реализует HTTP-обработчик подтверждения подписки после
// возврата покупателя от платёжного провайдера.
package confirm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/videohub-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/videohub-backend/internal/http/response"
	"github.com/magabrotheeeer/videohub-backend/internal/lib/sl"
	"github.com/magabrotheeeer/videohub-backend/internal/models"
	"github.com/magabrotheeeer/videohub-backend/internal/paymentprovider"
	subscriptionsvc "github.com/magabrotheeeer/videohub-backend/internal/services/subscription"
)

// Handler управляет HTTP-запросами на подтверждение подписки.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис жизненного цикла подписки
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс подтверждения подписки.
type Service interface {
	Confirm(ctx context.Context, userUID, externalRef string) (*models.Subscription, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Подтвердить подписку
// @Description Сверяет подписку с провайдером и активирует локальную запись.
// @Tags Subscriptions
// @Accept  json
// @Produce  json
// @Param request body models.ConfirmSubscriptionRequest true "Внешний идентификатор подписки"
// @Success 200 {object} map[string]any "Активированная подписка"
// @Failure 400 {object} response.ErrorResponse "Чужая подписка или недопустимый статус"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 502 {object} response.ErrorResponse "Ошибка провайдера"
// @Router /subscriptions/confirm [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.confirm"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.ConfirmSubscriptionRequest
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

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	sub, err := h.service.Confirm(r.Context(), userUID, req.SubscriptionID)
	if err != nil {
		var gwErr *paymentprovider.GatewayError
		switch {
		case errors.Is(err, subscriptionsvc.ErrOwnershipViolation):
			log.Error("subscription belongs to another user")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("subscription belongs to another user"))
		case errors.Is(err, subscriptionsvc.ErrInvalidState):
			log.Error("subscription is not confirmable", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("subscription is not in a confirmable state"))
		case errors.Is(err, paymentprovider.ErrNotConfigured):
			log.Error("payment provider is not configured", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("payment provider is not configured"))
		case errors.As(err, &gwErr):
			log.Error("payment provider request failed", sl.Err(err))
			w.WriteHeader(http.StatusBadGateway)
			render.JSON(w, r, response.Error(fmt.Sprintf("payment provider error (%d): %s", gwErr.StatusCode, gwErr.Body)))
		default:
			log.Error("failed to confirm subscription", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not confirm subscription"))
		}
		return
	}

	log.Info("subscription confirmed", slog.String("external_ref", sub.ExternalRef))
	render.JSON(w, r, response.OKWithData(sub))
}
