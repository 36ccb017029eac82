// Package pages реализует HTTP-обработчики произвольного JSON-контента
// страниц: чтение по ключу и полная замена из админки.
package pages

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

// Service описывает интерфейс хранилища контента страниц.
type Service interface {
	GetPageContent(ctx context.Context, pageKey string) (*models.PageContent, error)
	UpsertPageContent(ctx context.Context, item models.PageContent) (*models.PageContent, error)
}

// Handler управляет HTTP-запросами контента страниц.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: validator.New()}
}

// Read возвращает контент страницы по ключу.
func (h *Handler) Read(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.content.pages.read"
	log := h.log.With(slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())))

	item, err := h.service.GetPageContent(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("page content not found"))
			return
		}
		log.Error("failed to read page content", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read page content"))
		return
	}
	render.JSON(w, r, response.OKWithData(item))
}

// Upsert создаёт или заменяет контент страницы. Последняя запись побеждает.
func (h *Handler) Upsert(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.content.pages.upsert"
	log := h.log.With(slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())))

	var req models.PageContent
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	req.PageKey = chi.URLParam(r, "key")
	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	item, err := h.service.UpsertPageContent(r.Context(), req)
	if err != nil {
		log.Error("failed to upsert page content", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not save page content"))
		return
	}
	log.Info("page content saved", slog.String("page_key", item.PageKey))
	render.JSON(w, r, response.OKWithData(item))
}
