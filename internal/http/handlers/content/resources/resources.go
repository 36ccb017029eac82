// Package resources реализует HTTP-обработчики раздела рекомендаций:
// книги, статьи и видеоканалы в одной таблице с различием по kind.
package resources

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/videohub-backend/internal/http/response"
	"github.com/magabrotheeeer/videohub-backend/internal/lib/sl"
	"github.com/magabrotheeeer/videohub-backend/internal/models"
)

// Service описывает интерфейс хранилища рекомендаций.
type Service interface {
	ListResources(ctx context.Context, kind string) ([]*models.Resource, error)
	CreateResource(ctx context.Context, item models.Resource) (string, error)
	UpdateResource(ctx context.Context, id string, item models.Resource) (int, error)
	DeleteResource(ctx context.Context, id string) (int, error)
}

// Handler управляет HTTP-запросами раздела рекомендаций.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: validator.New()}
}

// List возвращает рекомендации, опционально отфильтрованные по ?kind=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.content.resources.list"
	log := h.log.With(slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())))

	kind := r.URL.Query().Get("kind")
	switch kind {
	case "", models.ResourceKindBook, models.ResourceKindReading, models.ResourceKindChannel:
	default:
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("unsupported resource kind"))
		return
	}

	items, err := h.service.ListResources(r.Context(), kind)
	if err != nil {
		log.Error("failed to list resources", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list resources"))
		return
	}
	render.JSON(w, r, response.OKWithData(items))
}

// Create добавляет рекомендацию.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.content.resources.create"
	log := h.log.With(slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())))

	var req models.Resource
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

	id, err := h.service.CreateResource(r.Context(), req)
	if err != nil {
		log.Error("failed to create resource", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create resource"))
		return
	}
	log.Info("resource created", slog.String("id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{"id": id}))
}

// Update обновляет рекомендацию.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.content.resources.update"
	log := h.log.With(slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())))

	var req models.Resource
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

	count, err := h.service.UpdateResource(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		log.Error("failed to update resource", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update resource"))
		return
	}
	if count == 0 {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("resource not found"))
		return
	}
	render.JSON(w, r, response.OK())
}

// Remove удаляет рекомендацию.
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.content.resources.remove"
	log := h.log.With(slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())))

	count, err := h.service.DeleteResource(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to delete resource", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not delete resource"))
		return
	}
	if count == 0 {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("resource not found"))
		return
	}
	render.JSON(w, r, response.OK())
}
