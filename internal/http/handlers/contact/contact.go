// Package contact реализует HTTP-обработчик формы обратной связи.
//
// Сообщение публикуется в очередь RabbitMQ и доставляется оператору
// отдельным воркером: отправка почты не задерживает HTTP-ответ.
package contact

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/videohub-backend/internal/http/response"
	"github.com/magabrotheeeer/videohub-backend/internal/lib/sl"
	"github.com/magabrotheeeer/videohub-backend/internal/models"
)

// Publisher описывает интерфейс публикации сообщения в очередь.
type Publisher interface {
	Publish(message any) error
}

// Handler управляет HTTP-запросами формы обратной связи.
type Handler struct {
	log       *slog.Logger        // Логгер для записи информации и ошибок
	publisher Publisher           // Публикация сообщений в очередь
	validate  *validator.Validate // Валидатор структуры входящих данных
}

// New создает новый Handler с переданными логгером и издателем.
func New(log *slog.Logger, publisher Publisher) *Handler {
	return &Handler{
		log:       log,
		publisher: publisher,
		validate:  validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Отправить сообщение обратной связи
// @Description Ставит сообщение формы в очередь на отправку оператору.
// @Tags Contact
// @Accept  json
// @Produce  json
// @Param request body models.ContactMessage true "Сообщение"
// @Success 200 {object} response.Response "Сообщение принято"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Очередь недоступна"
// @Router /contact [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.contact"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.ContactMessage
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

	if err := h.publisher.Publish(req); err != nil {
		log.Error("failed to enqueue contact message", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not accept message"))
		return
	}

	log.Info("contact message enqueued")
	render.JSON(w, r, response.OK())
}
