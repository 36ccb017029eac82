// Package videos реализует HTTP-обработчики видеокаталога.
//
// Публичные ручки отдают каталог без исходных ссылок на YouTube; embed-ссылка
// на платное видео выдаётся только администраторам и пользователям с активной
// подпиской. Административные ручки работают с полным представлением.
package videos

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

	"github.com/magabrotheeeer/videohub-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/videohub-backend/internal/http/response"
	"github.com/magabrotheeeer/videohub-backend/internal/lib/sl"
	"github.com/magabrotheeeer/videohub-backend/internal/models"
	contentsvc "github.com/magabrotheeeer/videohub-backend/internal/services/content"
	"github.com/magabrotheeeer/videohub-backend/internal/storage/repository"
)

// Service описывает интерфейс бизнес-логики видеокаталога.
type Service interface {
	ListVideos(ctx context.Context) ([]*models.PublicVideo, error)
	GetVideo(ctx context.Context, id string) (*models.PublicVideo, error)
	ListVideosAdmin(ctx context.Context) ([]*models.Video, error)
	CreateVideo(ctx context.Context, item models.Video) (string, error)
	UpdateVideo(ctx context.Context, id string, item models.Video) (int, error)
	DeleteVideo(ctx context.Context, id string) (int, error)
	EmbedURL(ctx context.Context, videoID, userUID string, isAdmin bool) (string, error)
}

// Handler управляет HTTP-запросами видеокаталога.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: validator.New()}
}

// List возвращает публичный каталог видео.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.content.videos.list"
	log := h.log.With(slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())))

	items, err := h.service.ListVideos(r.Context())
	if err != nil {
		log.Error("failed to list videos", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list videos"))
		return
	}
	render.JSON(w, r, response.OKWithData(items))
}

// Read возвращает одно видео в публичном представлении.
func (h *Handler) Read(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.content.videos.read"
	log := h.log.With(slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())))

	item, err := h.service.GetVideo(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("video not found"))
			return
		}
		log.Error("failed to read video", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read video"))
		return
	}
	render.JSON(w, r, response.OKWithData(item))
}

// Embed godoc
// @Summary Получить embed-ссылку на видео
// @Description Возвращает embed-ссылку YouTube. Для платных видео требуется активная подписка.
// @Tags Videos
// @Produce  json
// @Param id path string true "ID видео"
// @Success 200 {object} map[string]any "Embed-ссылка"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Требуется подписка"
// @Failure 404 {object} response.ErrorResponse "Видео не найдено"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /videos/{id}/embed [get]
func (h *Handler) Embed(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.content.videos.embed"
	log := h.log.With(slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())))

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	url, err := h.service.EmbedURL(r.Context(), chi.URLParam(r, "id"),
		userUID, middlewarectx.IsAdmin(r.Context()))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("video not found"))
		case errors.Is(err, contentsvc.ErrPaymentRequired):
			log.Info("paid video requested without subscription",
				slog.String("user_uid", userUID))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("active subscription required"))
		default:
			log.Error("failed to build embed url", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not build embed url"))
		}
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{"embedUrl": url}))
}

// ListAdmin возвращает каталог с исходными ссылками для админки.
func (h *Handler) ListAdmin(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.content.videos.listadmin"
	log := h.log.With(slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())))

	items, err := h.service.ListVideosAdmin(r.Context())
	if err != nil {
		log.Error("failed to list videos", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list videos"))
		return
	}
	render.JSON(w, r, response.OKWithData(items))
}

// Create добавляет видео в каталог.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.content.videos.create"
	log := h.log.With(slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())))

	var req models.Video
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

	id, err := h.service.CreateVideo(r.Context(), req)
	if err != nil {
		log.Error("failed to create video", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create video"))
		return
	}
	log.Info("video created", slog.String("id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{"id": id}))
}

// Update обновляет видео.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.content.videos.update"
	log := h.log.With(slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())))

	var req models.Video
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

	count, err := h.service.UpdateVideo(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		log.Error("failed to update video", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update video"))
		return
	}
	if count == 0 {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("video not found"))
		return
	}
	render.JSON(w, r, response.OK())
}

// Remove удаляет видео.
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.content.videos.remove"
	log := h.log.With(slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())))

	count, err := h.service.DeleteVideo(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to delete video", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not delete video"))
		return
	}
	if count == 0 {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("video not found"))
		return
	}
	render.JSON(w, r, response.OK())
}
