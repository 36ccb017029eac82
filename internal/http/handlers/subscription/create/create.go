// Package create реализует HTTP-обработчик создания намерения подписки.
//
// Handler принимает план подписки, создаёт намерение у платёжного провайдера
// и возвращает ссылку для одобрения оплаты. Локальная запись подписки на этом
// шаге не создаётся.
package create

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
)

// Handler управляет HTTP-запросами на создание подписки.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис жизненного цикла подписки
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс создания намерения подписки.
type Service interface {
	Create(ctx context.Context, userUID, planID string) (*paymentprovider.SubscriptionIntent, error)
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
// @Summary Создать намерение подписки
// @Description Создаёт подписку у платёжного провайдера и возвращает ссылку одобрения.
// @Tags Subscriptions
// @Accept  json
// @Produce  json
// @Param request body models.CreateSubscriptionRequest true "План подписки"
// @Success 200 {object} map[string]any "Идентификатор и ссылка одобрения"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Провайдер не настроен"
// @Failure 502 {object} response.ErrorResponse "Ошибка провайдера"
// @Router /subscriptions/create [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.CreateSubscriptionRequest
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

	intent, err := h.service.Create(r.Context(), userUID, req.PlanID)
	if err != nil {
		var gwErr *paymentprovider.GatewayError
		switch {
		case errors.Is(err, paymentprovider.ErrNotConfigured):
			log.Error("payment provider is not configured", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("payment provider is not configured"))
		case errors.As(err, &gwErr):
			log.Error("payment provider request failed", sl.Err(err))
			w.WriteHeader(http.StatusBadGateway)
			render.JSON(w, r, response.Error(fmt.Sprintf("payment provider error (%d): %s", gwErr.StatusCode, gwErr.Body)))
		default:
			log.Error("failed to create subscription intent", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not create subscription"))
		}
		return
	}

	log.Info("subscription intent created", slog.String("external_ref", intent.ExternalRef))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"subscriptionId": intent.ExternalRef,
		"approvalUrl":    intent.ApprovalURL,
	}))
}
