// Package content реализует логику видеокаталога: нормализацию ссылок
// YouTube, подстановку обложек и выдачу embed-ссылок с проверкой платного
// доступа. Исходная ссылка на YouTube наружу не отдаётся.
package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/magabrotheeeer/videohub-backend/internal/models"
)

var (
	// ErrPaymentRequired — платное видео запрошено без активной подписки.
	ErrPaymentRequired = errors.New("active subscription required")

	// ErrBadVideoURL — из ссылки не извлекается идентификатор YouTube.
	ErrBadVideoURL = errors.New("unsupported youtube url")
)

// youtubeIDPattern покрывает три формы ссылок: watch?v=, youtu.be/ и embed/.
var youtubeIDPattern = regexp.MustCompile(`(?:v=|youtu\.be/|embed/)([A-Za-z0-9_-]{11})`)

// VideoRepository определяет методы хранилища для видеокаталога.
type VideoRepository interface {
	// ListVideos возвращает все видео.
	ListVideos(ctx context.Context) ([]*models.Video, error)
	// GetVideo возвращает видео по id.
	GetVideo(ctx context.Context, id string) (*models.Video, error)
	// CreateVideo вставляет видео и возвращает его id.
	CreateVideo(ctx context.Context, item models.Video) (string, error)
	// UpdateVideo обновляет видео, возвращает число строк.
	UpdateVideo(ctx context.Context, id string, item models.Video) (int, error)
	// DeleteVideo удаляет видео, возвращает число строк.
	DeleteVideo(ctx context.Context, id string) (int, error)
}

// Entitlements отвечает на вопрос о платном доступе пользователя.
type Entitlements interface {
	// HasActiveSubscription возвращает true при действующей подписке.
	HasActiveSubscription(ctx context.Context, userUID string) (bool, error)
}

// Service реализует бизнес-логику видеокаталога.
type Service struct {
	repo         VideoRepository
	entitlements Entitlements
	log          *slog.Logger
}

// New создаёт сервис видеокаталога.
func New(repo VideoRepository, entitlements Entitlements, log *slog.Logger) *Service {
	return &Service{repo: repo, entitlements: entitlements, log: log}
}

// YoutubeVideoID извлекает 11-символьный идентификатор из ссылки YouTube.
func YoutubeVideoID(rawURL string) (string, error) {
	match := youtubeIDPattern.FindStringSubmatch(rawURL)
	if match == nil {
		return "", ErrBadVideoURL
	}
	return match[1], nil
}

// normalize подставляет обложку по умолчанию, когда она не задана явно.
func normalize(item models.Video) models.Video {
	if item.ThumbnailURL == "" {
		if id, err := YoutubeVideoID(item.YoutubeURL); err == nil {
			item.ThumbnailURL = fmt.Sprintf("https://img.youtube.com/vi/%s/mqdefault.jpg", id)
		}
	}
	return item
}

// ListVideos возвращает каталог в публичном представлении, без ссылок
// на YouTube.
func (s *Service) ListVideos(ctx context.Context) ([]*models.PublicVideo, error) {
	const op = "services.content.ListVideos"

	videos, err := s.repo.ListVideos(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result := make([]*models.PublicVideo, 0, len(videos))
	for _, v := range videos {
		result = append(result, models.PublicVideoFrom(v))
	}
	return result, nil
}

// GetVideo возвращает одно видео в публичном представлении.
func (s *Service) GetVideo(ctx context.Context, id string) (*models.PublicVideo, error) {
	const op = "services.content.GetVideo"

	video, err := s.repo.GetVideo(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return models.PublicVideoFrom(video), nil
}

// ListVideosAdmin возвращает каталог целиком, включая исходные ссылки.
func (s *Service) ListVideosAdmin(ctx context.Context) ([]*models.Video, error) {
	const op = "services.content.ListVideosAdmin"

	videos, err := s.repo.ListVideos(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return videos, nil
}

// CreateVideo добавляет видео в каталог.
func (s *Service) CreateVideo(ctx context.Context, item models.Video) (string, error) {
	const op = "services.content.CreateVideo"

	id, err := s.repo.CreateVideo(ctx, normalize(item))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// UpdateVideo обновляет видео в каталоге.
func (s *Service) UpdateVideo(ctx context.Context, id string, item models.Video) (int, error) {
	const op = "services.content.UpdateVideo"

	count, err := s.repo.UpdateVideo(ctx, id, normalize(item))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// DeleteVideo удаляет видео из каталога.
func (s *Service) DeleteVideo(ctx context.Context, id string) (int, error) {
	const op = "services.content.DeleteVideo"

	count, err := s.repo.DeleteVideo(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// EmbedURL выдаёт embed-ссылку на видео. Платные видео доступны
// администраторам и пользователям с активной подпиской.
func (s *Service) EmbedURL(ctx context.Context, videoID, userUID string, isAdmin bool) (string, error) {
	const op = "services.content.EmbedURL"

	video, err := s.repo.GetVideo(ctx, videoID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if video.Paid && !isAdmin {
		subscribed, err := s.entitlements.HasActiveSubscription(ctx, userUID)
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		if !subscribed {
			return "", fmt.Errorf("%s: %w", op, ErrPaymentRequired)
		}
	}

	id, err := YoutubeVideoID(video.YoutubeURL)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return "https://www.youtube.com/embed/" + id, nil
}
