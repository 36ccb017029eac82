// Package testimonials реализует HTTP-обработчики отзывов клиентов.
package testimonials

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

// Service описывает интерфейс хранилища для раздела.
type Service interface {
	ListTestimonials(ctx context.Context) ([]*models.Testimonial, error)
	CreateTestimonial(ctx context.Context, item models.Testimonial) (string, error)
	UpdateTestimonial(ctx context.Context, id string, item models.Testimonial) (int, error)
	DeleteTestimonial(ctx context.Context, id string) (int, error)
}

// Handler управляет HTTP-запросами раздела.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: validator.New()}
}

// List возвращает все записи раздела.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.content.testimonials.list"
	log := h.log.With(slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())))

	items, err := h.service.ListTestimonials(r.Context())
	if err != nil {
		log.Error("failed to list testimonials", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list testimonials"))
		return
	}
	render.JSON(w, r, response.OKWithData(items))
}

// Create добавляет запись.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.content.testimonials.create"
	log := h.log.With(slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())))

	var req models.Testimonial
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

	id, err := h.service.CreateTestimonial(r.Context(), req)
	if err != nil {
		log.Error("failed to create testimonial", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create testimonial"))
		return
	}
	log.Info("testimonial created", slog.String("id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{"id": id}))
}

// Update обновляет запись.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.content.testimonials.update"
	log := h.log.With(slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())))

	var req models.Testimonial
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

	count, err := h.service.UpdateTestimonial(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		log.Error("failed to update testimonial", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update testimonial"))
		return
	}
	if count == 0 {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("testimonial not found"))
		return
	}
	render.JSON(w, r, response.OK())
}

// Remove удаляет запись.
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.content.testimonials.remove"
	log := h.log.With(slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())))

	count, err := h.service.DeleteTestimonial(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to delete testimonial", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not delete testimonial"))
		return
	}
	if count == 0 {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("testimonial not found"))
		return
	}
	render.JSON(w, r, response.OK())
}
