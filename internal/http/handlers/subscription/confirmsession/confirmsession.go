// Package confirmsession реализует HTTP-обработчик подтверждения
// checkout-сессии Stripe. Ручка не требует аутентификации: пользователь
// восстанавливается из сквозного идентификатора сессии.
package confirmsession

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

	"github.com/magabrotheeeer/videohub-backend/internal/http/response"
	"github.com/magabrotheeeer/videohub-backend/internal/lib/sl"
	"github.com/magabrotheeeer/videohub-backend/internal/models"
	"github.com/magabrotheeeer/videohub-backend/internal/paymentprovider"
	subscriptionsvc "github.com/magabrotheeeer/videohub-backend/internal/services/subscription"
)

// Handler управляет HTTP-запросами на подтверждение checkout-сессии.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис жизненного цикла подписки
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс подтверждения checkout-сессии.
type Service interface {
	ConfirmSession(ctx context.Context, sessionID string) (*models.Subscription, error)
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
// @Summary Подтвердить checkout-сессию
// @Description Активирует подписку по завершённой checkout-сессии Stripe.
// @Tags Subscriptions
// @Accept  json
// @Produce  json
// @Param request body models.ConfirmSessionRequest true "Идентификатор сессии"
// @Success 200 {object} map[string]any "Активированная подписка"
// @Failure 400 {object} response.ErrorResponse "Некорректная сессия"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 502 {object} response.ErrorResponse "Ошибка провайдера"
// @Router /subscriptions/confirm-session [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.confirmsession"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.ConfirmSessionRequest
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

	sub, err := h.service.ConfirmSession(r.Context(), req.SessionID)
	if err != nil {
		var gwErr *paymentprovider.GatewayError
		switch {
		case errors.Is(err, subscriptionsvc.ErrInvalidSessionID):
			log.Error("invalid session id")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid session id"))
		case errors.Is(err, subscriptionsvc.ErrUnknownUser):
			log.Error("session references unknown user")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("session references unknown user"))
		case errors.Is(err, paymentprovider.ErrSessionIncomplete):
			log.Info("session is not completed yet")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("checkout session is not completed"))
		case errors.Is(err, subscriptionsvc.ErrInvalidState):
			log.Error("subscription is not confirmable", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("subscription is not in a confirmable state"))
		case errors.As(err, &gwErr):
			log.Error("payment provider request failed", sl.Err(err))
			w.WriteHeader(http.StatusBadGateway)
			render.JSON(w, r, response.Error(fmt.Sprintf("payment provider error (%d): %s", gwErr.StatusCode, gwErr.Body)))
		default:
			log.Error("failed to confirm session", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not confirm session"))
		}
		return
	}

	log.Info("checkout session confirmed", slog.String("external_ref", sub.ExternalRef))
	render.JSON(w, r, response.OKWithData(sub))
}
