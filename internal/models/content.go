package models

import "time"

// BlogPost — запись блога на публичном сайте.
type BlogPost struct {
	ID          string     `json:"id"`
	Title       string     `json:"title" validate:"required"`
	Excerpt     string     `json:"excerpt"`
	Tag         string     `json:"tag"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	SortOrder   int        `json:"sortOrder"`
}

// Faq — вопрос и ответ на странице FAQ.
type Faq struct {
	ID        string `json:"id"`
	Question  string `json:"question" validate:"required"`
	Answer    string `json:"answer" validate:"required"`
	SortOrder int    `json:"sortOrder"`
}

// TeamMember — участник команды на странице «О нас».
type TeamMember struct {
	ID        string `json:"id"`
	Name      string `json:"name" validate:"required"`
	Role      string `json:"role"`
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatarUrl"`
	SortOrder int    `json:"sortOrder"`
}

// Testimonial — отзыв клиента.
type Testimonial struct {
	ID        string `json:"id"`
	Text      string `json:"text" validate:"required"`
	Author    string `json:"author" validate:"required"`
	SortOrder int    `json:"sortOrder"`
}

// Schedule — строка недельного расписания занятий.
type Schedule struct {
	ID         string `json:"id"`
	DayOfWeek  string `json:"dayOfWeek" validate:"required"`
	Time       string `json:"time" validate:"required"`
	ClassName  string `json:"className" validate:"required"`
	Instructor string `json:"instructor"`
	Level      string `json:"level"`
	SortOrder  int    `json:"sortOrder"`
}

// Event — предстоящее событие.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title" validate:"required"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Instructor  string    `json:"instructor"`
	SortOrder   int       `json:"sortOrder"`
}

// Video — видеоурок. YoutubeURL не отдаётся неадминистраторам: платный
// доступ выдаётся через embed-ссылку после проверки подписки.
type Video struct {
	ID           string    `json:"id"`
	Title        string    `json:"title" validate:"required"`
	Description  string    `json:"description"`
	YoutubeURL   string    `json:"youtubeUrl,omitempty" validate:"required"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	Paid         bool      `json:"paid"`
	Category     string    `json:"category"`
	Duration     int       `json:"duration"`
	Instructor   string    `json:"instructor"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PublicVideo — представление видео без исходной ссылки на YouTube.
type PublicVideo struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	Paid         bool      `json:"paid"`
	Category     string    `json:"category"`
	Duration     int       `json:"duration"`
	Instructor   string    `json:"instructor"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PublicVideoFrom скрывает поля видео, недоступные обычному пользователю.
func PublicVideoFrom(v *Video) *PublicVideo {
	return &PublicVideo{
		ID:           v.ID,
		Title:        v.Title,
		Description:  v.Description,
		ThumbnailURL: v.ThumbnailURL,
		Paid:         v.Paid,
		Category:     v.Category,
		Duration:     v.Duration,
		Instructor:   v.Instructor,
		CreatedAt:    v.CreatedAt,
	}
}

// Виды ресурсов в разделе рекомендаций.
const (
	ResourceKindBook    = "book"
	ResourceKindReading = "reading"
	ResourceKindChannel = "channel"
)

// Resource — рекомендация: книга, статья или видеоканал.
type Resource struct {
	ID          string `json:"id"`
	Kind        string `json:"kind" validate:"required,oneof=book reading channel"`
	Title       string `json:"title" validate:"required"`
	URL         string `json:"url"`
	Description string `json:"description"`
	SortOrder   int    `json:"sortOrder"`
}

// PageContent — произвольный JSON-контент страницы, редактируемый из
// админки. PageKey уникален.
type PageContent struct {
	ID          string `json:"id"`
	PageKey     string `json:"pageKey" validate:"required"`
	ContentJSON string `json:"contentJson" validate:"required"`
}
