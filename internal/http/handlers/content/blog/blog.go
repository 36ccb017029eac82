// Package blog реализует HTTP-обработчики записей блога: публичное чтение
// и административные мутации.
package blog

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
	"github.com/magabrotheeeer/videohub-backend/internal/storage/repository"
)

// Service описывает интерфейс хранилища записей блога.
type Service interface {
	ListBlogPosts(ctx context.Context) ([]*models.BlogPost, error)
	GetBlogPost(ctx context.Context, id string) (*models.BlogPost, error)
	CreateBlogPost(ctx context.Context, item models.BlogPost) (string, error)
	UpdateBlogPost(ctx context.Context, id string, item models.BlogPost) (int, error)
	DeleteBlogPost(ctx context.Context, id string) (int, error)
}

// Handler управляет HTTP-запросами к записям блога.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: validator.New()}
}

// List возвращает все записи блога.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.content.blog.list"
	log := h.log.With(slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())))

	items, err := h.service.ListBlogPosts(r.Context())
	if err != nil {
		log.Error("failed to list blog posts", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list blog posts"))
		return
	}
	render.JSON(w, r, response.OKWithData(items))
}

// Read возвращает одну запись блога.
func (h *Handler) Read(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.content.blog.read"
	log := h.log.With(slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())))

	item, err := h.service.GetBlogPost(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("blog post not found"))
			return
		}
		log.Error("failed to read blog post", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read blog post"))
		return
	}
	render.JSON(w, r, response.OKWithData(item))
}

// Create добавляет запись блога.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.content.blog.create"
	log := h.log.With(slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())))

	var req models.BlogPost
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

	id, err := h.service.CreateBlogPost(r.Context(), req)
	if err != nil {
		log.Error("failed to create blog post", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create blog post"))
		return
	}
	log.Info("blog post created", slog.String("id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{"id": id}))
}

// Update обновляет запись блога.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.content.blog.update"
	log := h.log.With(slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())))

	var req models.BlogPost
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

	count, err := h.service.UpdateBlogPost(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		log.Error("failed to update blog post", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update blog post"))
		return
	}
	if count == 0 {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("blog post not found"))
		return
	}
	render.JSON(w, r, response.OK())
}

// Remove удаляет запись блога.
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.content.blog.remove"
	log := h.log.With(slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())))

	count, err := h.service.DeleteBlogPost(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to delete blog post", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not delete blog post"))
		return
	}
	if count == 0 {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("blog post not found"))
		return
	}
	render.JSON(w, r, response.OK())
}
