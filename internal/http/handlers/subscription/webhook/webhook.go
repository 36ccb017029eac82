// Package webhook реализует HTTP-обработчик асинхронных событий платёжного
// провайдера.
//
// После успешной проверки подписи обработчик всегда отвечает 200: ошибка
// применения события логируется, а провайдер повторит доставку сам. Ответ 400
// возвращается только при неверной подписи.
package webhook

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/videohub-backend/internal/http/response"
	"github.com/magabrotheeeer/videohub-backend/internal/lib/sl"
	"github.com/magabrotheeeer/videohub-backend/internal/paymentprovider"
)

// Handler управляет webhook-запросами провайдера.
type Handler struct {
	log     *slog.Logger            // Логгер для записи информации и ошибок
	gateway paymentprovider.Gateway // Шлюз активного провайдера
	service Service                 // Сервис жизненного цикла подписки
}

// Service описывает интерфейс применения webhook-событий.
type Service interface {
	HandleWebhook(ctx context.Context, event *paymentprovider.WebhookEvent) error
}

// New создает новый Handler с переданными логгером, шлюзом и сервисом.
func New(log *slog.Logger, gateway paymentprovider.Gateway, service Service) *Handler {
	return &Handler{log: log, gateway: gateway, service: service}
}

// ServeHTTP godoc
// @Summary Webhook платёжного провайдера
// @Description Принимает событие провайдера, проверяет подпись и сверяет локальное состояние подписки.
// @Tags Subscriptions
// @Accept  json
// @Produce  json
// @Success 200 {object} response.Response "Событие принято"
// @Failure 400 {object} response.ErrorResponse "Неверная подпись"
// @Failure 502 {object} response.ErrorResponse "Ошибка проверки подписи у провайдера"
// @Router /{provider}/webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.webhook"
	log := h.log.With(
		slog.String("op", op),
		slog.String("provider", h.gateway.Name()),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("failed to read webhook body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to read body"))
		return
	}

	event, err := h.gateway.VerifyAndParseWebhook(r.Context(), payload, r.Header)
	if err != nil {
		var gwErr *paymentprovider.GatewayError
		switch {
		case errors.Is(err, paymentprovider.ErrEventDropped):
			// Нерелевантное или ненастроенное событие подтверждается,
			// чтобы провайдер не повторял доставку.
			log.Info("webhook event dropped")
			render.JSON(w, r, response.OK())
		case errors.Is(err, paymentprovider.ErrInvalidSignature):
			log.Error("webhook signature verification failed")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid signature"))
		case errors.As(err, &gwErr):
			log.Error("signature verification request failed", sl.Err(err))
			w.WriteHeader(http.StatusBadGateway)
			render.JSON(w, r, response.Error("verification unavailable"))
		default:
			log.Error("failed to parse webhook event", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("malformed event"))
		}
		return
	}

	if err := h.service.HandleWebhook(r.Context(), event); err != nil {
		// Подпись уже проверена: событие подлинное, сбой локальный
		// и решается сверкой при следующем событии или подтверждении.
		log.Error("failed to apply webhook event", sl.Err(err),
			slog.String("external_ref", event.ExternalRef))
	}
	render.JSON(w, r, response.OK())
}
