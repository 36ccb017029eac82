package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/videohub-backend/internal/models"
)

// CRUD по маркетинговому контенту. Сущности однотипные: публичное чтение,
// запись только из админки.

// --- Блог ---

// ListBlogPosts возвращает записи блога, новые сверху.
func (s *Storage) ListBlogPosts(ctx context.Context) ([]*models.BlogPost, error) {
	const op = "storage.ListBlogPosts"

	query := `SELECT id, title, excerpt, tag, published_at, created_at, sort_order
			  FROM blog_posts ORDER BY sort_order, published_at DESC NULLS LAST`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.BlogPost
	for rows.Next() {
		var item models.BlogPost
		if err := rows.Scan(&item.ID, &item.Title, &item.Excerpt, &item.Tag,
			&item.PublishedAt, &item.CreatedAt, &item.SortOrder); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	return result, rows.Err()
}

// GetBlogPost возвращает запись блога по id.
func (s *Storage) GetBlogPost(ctx context.Context, id string) (*models.BlogPost, error) {
	const op = "storage.GetBlogPost"

	query := `SELECT id, title, excerpt, tag, published_at, created_at, sort_order
			  FROM blog_posts WHERE id = $1`
	var item models.BlogPost
	err := s.DB.QueryRowContext(ctx, query, id).Scan(&item.ID, &item.Title,
		&item.Excerpt, &item.Tag, &item.PublishedAt, &item.CreatedAt, &item.SortOrder)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &item, nil
}

// CreateBlogPost вставляет запись блога и возвращает её id.
func (s *Storage) CreateBlogPost(ctx context.Context, item models.BlogPost) (string, error) {
	const op = "storage.CreateBlogPost"

	query := `INSERT INTO blog_posts (title, excerpt, tag, published_at, sort_order)
			  VALUES ($1, $2, $3, $4, $5) RETURNING id`
	var newID string
	err := s.DB.QueryRowContext(ctx, query,
		item.Title, item.Excerpt, item.Tag, item.PublishedAt, item.SortOrder).Scan(&newID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// UpdateBlogPost обновляет запись блога, возвращает количество строк.
func (s *Storage) UpdateBlogPost(ctx context.Context, id string, item models.BlogPost) (int, error) {
	const op = "storage.UpdateBlogPost"

	query := `UPDATE blog_posts
			  SET title = $1, excerpt = $2, tag = $3, published_at = $4, sort_order = $5
			  WHERE id = $6`
	return s.execCount(ctx, op, query,
		item.Title, item.Excerpt, item.Tag, item.PublishedAt, item.SortOrder, id)
}

// DeleteBlogPost удаляет запись блога.
func (s *Storage) DeleteBlogPost(ctx context.Context, id string) (int, error) {
	return s.execCount(ctx, "storage.DeleteBlogPost", `DELETE FROM blog_posts WHERE id = $1`, id)
}

// --- FAQ ---

// ListFaqs возвращает вопросы FAQ в порядке сортировки.
func (s *Storage) ListFaqs(ctx context.Context) ([]*models.Faq, error) {
	const op = "storage.ListFaqs"

	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, question, answer, sort_order FROM faqs ORDER BY sort_order`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.Faq
	for rows.Next() {
		var item models.Faq
		if err := rows.Scan(&item.ID, &item.Question, &item.Answer, &item.SortOrder); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	return result, rows.Err()
}

// CreateFaq вставляет вопрос FAQ и возвращает его id.
func (s *Storage) CreateFaq(ctx context.Context, item models.Faq) (string, error) {
	const op = "storage.CreateFaq"

	var newID string
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO faqs (question, answer, sort_order) VALUES ($1, $2, $3) RETURNING id`,
		item.Question, item.Answer, item.SortOrder).Scan(&newID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// UpdateFaq обновляет вопрос FAQ.
func (s *Storage) UpdateFaq(ctx context.Context, id string, item models.Faq) (int, error) {
	return s.execCount(ctx, "storage.UpdateFaq",
		`UPDATE faqs SET question = $1, answer = $2, sort_order = $3 WHERE id = $4`,
		item.Question, item.Answer, item.SortOrder, id)
}

// DeleteFaq удаляет вопрос FAQ.
func (s *Storage) DeleteFaq(ctx context.Context, id string) (int, error) {
	return s.execCount(ctx, "storage.DeleteFaq", `DELETE FROM faqs WHERE id = $1`, id)
}

// --- Команда ---

// ListTeamMembers возвращает участников команды.
func (s *Storage) ListTeamMembers(ctx context.Context) ([]*models.TeamMember, error) {
	const op = "storage.ListTeamMembers"

	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, name, role, bio, avatar_url, sort_order FROM team_members ORDER BY sort_order`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.TeamMember
	for rows.Next() {
		var item models.TeamMember
		if err := rows.Scan(&item.ID, &item.Name, &item.Role, &item.Bio,
			&item.AvatarURL, &item.SortOrder); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	return result, rows.Err()
}

// CreateTeamMember вставляет участника команды и возвращает его id.
func (s *Storage) CreateTeamMember(ctx context.Context, item models.TeamMember) (string, error) {
	const op = "storage.CreateTeamMember"

	var newID string
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO team_members (name, role, bio, avatar_url, sort_order)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		item.Name, item.Role, item.Bio, item.AvatarURL, item.SortOrder).Scan(&newID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// UpdateTeamMember обновляет участника команды.
func (s *Storage) UpdateTeamMember(ctx context.Context, id string, item models.TeamMember) (int, error) {
	return s.execCount(ctx, "storage.UpdateTeamMember",
		`UPDATE team_members SET name = $1, role = $2, bio = $3, avatar_url = $4, sort_order = $5
		 WHERE id = $6`,
		item.Name, item.Role, item.Bio, item.AvatarURL, item.SortOrder, id)
}

// DeleteTeamMember удаляет участника команды.
func (s *Storage) DeleteTeamMember(ctx context.Context, id string) (int, error) {
	return s.execCount(ctx, "storage.DeleteTeamMember", `DELETE FROM team_members WHERE id = $1`, id)
}

// --- Отзывы ---

// ListTestimonials возвращает отзывы.
func (s *Storage) ListTestimonials(ctx context.Context) ([]*models.Testimonial, error) {
	const op = "storage.ListTestimonials"

	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, text, author, sort_order FROM testimonials ORDER BY sort_order`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.Testimonial
	for rows.Next() {
		var item models.Testimonial
		if err := rows.Scan(&item.ID, &item.Text, &item.Author, &item.SortOrder); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	return result, rows.Err()
}

// CreateTestimonial вставляет отзыв и возвращает его id.
func (s *Storage) CreateTestimonial(ctx context.Context, item models.Testimonial) (string, error) {
	const op = "storage.CreateTestimonial"

	var newID string
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO testimonials (text, author, sort_order) VALUES ($1, $2, $3) RETURNING id`,
		item.Text, item.Author, item.SortOrder).Scan(&newID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// UpdateTestimonial обновляет отзыв.
func (s *Storage) UpdateTestimonial(ctx context.Context, id string, item models.Testimonial) (int, error) {
	return s.execCount(ctx, "storage.UpdateTestimonial",
		`UPDATE testimonials SET text = $1, author = $2, sort_order = $3 WHERE id = $4`,
		item.Text, item.Author, item.SortOrder, id)
}

// DeleteTestimonial удаляет отзыв.
func (s *Storage) DeleteTestimonial(ctx context.Context, id string) (int, error) {
	return s.execCount(ctx, "storage.DeleteTestimonial", `DELETE FROM testimonials WHERE id = $1`, id)
}

// --- Расписание ---

// ListSchedules возвращает строки расписания.
func (s *Storage) ListSchedules(ctx context.Context) ([]*models.Schedule, error) {
	const op = "storage.ListSchedules"

	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, day_of_week, time, class_name, instructor, level, sort_order
		 FROM schedules ORDER BY sort_order`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.Schedule
	for rows.Next() {
		var item models.Schedule
		if err := rows.Scan(&item.ID, &item.DayOfWeek, &item.Time, &item.ClassName,
			&item.Instructor, &item.Level, &item.SortOrder); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	return result, rows.Err()
}

// CreateSchedule вставляет строку расписания и возвращает её id.
func (s *Storage) CreateSchedule(ctx context.Context, item models.Schedule) (string, error) {
	const op = "storage.CreateSchedule"

	var newID string
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO schedules (day_of_week, time, class_name, instructor, level, sort_order)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		item.DayOfWeek, item.Time, item.ClassName, item.Instructor, item.Level, item.SortOrder).Scan(&newID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// UpdateSchedule обновляет строку расписания.
func (s *Storage) UpdateSchedule(ctx context.Context, id string, item models.Schedule) (int, error) {
	return s.execCount(ctx, "storage.UpdateSchedule",
		`UPDATE schedules SET day_of_week = $1, time = $2, class_name = $3,
		 instructor = $4, level = $5, sort_order = $6 WHERE id = $7`,
		item.DayOfWeek, item.Time, item.ClassName, item.Instructor, item.Level, item.SortOrder, id)
}

// DeleteSchedule удаляет строку расписания.
func (s *Storage) DeleteSchedule(ctx context.Context, id string) (int, error) {
	return s.execCount(ctx, "storage.DeleteSchedule", `DELETE FROM schedules WHERE id = $1`, id)
}

// --- События ---

// ListEvents возвращает события по дате.
func (s *Storage) ListEvents(ctx context.Context) ([]*models.Event, error) {
	const op = "storage.ListEvents"

	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, title, date, description, instructor, sort_order
		 FROM events ORDER BY sort_order, date`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.Event
	for rows.Next() {
		var item models.Event
		if err := rows.Scan(&item.ID, &item.Title, &item.Date, &item.Description,
			&item.Instructor, &item.SortOrder); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	return result, rows.Err()
}

// CreateEvent вставляет событие и возвращает его id.
func (s *Storage) CreateEvent(ctx context.Context, item models.Event) (string, error) {
	const op = "storage.CreateEvent"

	var newID string
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO events (title, date, description, instructor, sort_order)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		item.Title, item.Date, item.Description, item.Instructor, item.SortOrder).Scan(&newID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// UpdateEvent обновляет событие.
func (s *Storage) UpdateEvent(ctx context.Context, id string, item models.Event) (int, error) {
	return s.execCount(ctx, "storage.UpdateEvent",
		`UPDATE events SET title = $1, date = $2, description = $3, instructor = $4, sort_order = $5
		 WHERE id = $6`,
		item.Title, item.Date, item.Description, item.Instructor, item.SortOrder, id)
}

// DeleteEvent удаляет событие.
func (s *Storage) DeleteEvent(ctx context.Context, id string) (int, error) {
	return s.execCount(ctx, "storage.DeleteEvent", `DELETE FROM events WHERE id = $1`, id)
}

// --- Видео ---

const videoColumns = `id, title, description, youtube_url, thumbnail_url, paid,
	category, duration, instructor, created_at, updated_at`

func scanVideo(scan func(dest ...any) error) (*models.Video, error) {
	var item models.Video
	err := scan(&item.ID, &item.Title, &item.Description, &item.YoutubeURL,
		&item.ThumbnailURL, &item.Paid, &item.Category, &item.Duration,
		&item.Instructor, &item.CreatedAt, &item.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ListVideos возвращает все видео, новые сверху.
func (s *Storage) ListVideos(ctx context.Context) ([]*models.Video, error) {
	const op = "storage.ListVideos"

	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+videoColumns+` FROM videos ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.Video
	for rows.Next() {
		item, err := scanVideo(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

// GetVideo возвращает видео по id.
func (s *Storage) GetVideo(ctx context.Context, id string) (*models.Video, error) {
	const op = "storage.GetVideo"

	row := s.DB.QueryRowContext(ctx,
		`SELECT `+videoColumns+` FROM videos WHERE id = $1`, id)
	item, err := scanVideo(row.Scan)
	if errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return item, nil
}

// CreateVideo вставляет видео и возвращает его id.
func (s *Storage) CreateVideo(ctx context.Context, item models.Video) (string, error) {
	const op = "storage.CreateVideo"

	var newID string
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO videos (title, description, youtube_url, thumbnail_url, paid,
		 category, duration, instructor)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		item.Title, item.Description, item.YoutubeURL, item.ThumbnailURL,
		item.Paid, item.Category, item.Duration, item.Instructor).Scan(&newID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// UpdateVideo обновляет видео.
func (s *Storage) UpdateVideo(ctx context.Context, id string, item models.Video) (int, error) {
	return s.execCount(ctx, "storage.UpdateVideo",
		`UPDATE videos SET title = $1, description = $2, youtube_url = $3,
		 thumbnail_url = $4, paid = $5, category = $6, duration = $7,
		 instructor = $8, updated_at = now() WHERE id = $9`,
		item.Title, item.Description, item.YoutubeURL, item.ThumbnailURL,
		item.Paid, item.Category, item.Duration, item.Instructor, id)
}

// DeleteVideo удаляет видео.
func (s *Storage) DeleteVideo(ctx context.Context, id string) (int, error) {
	return s.execCount(ctx, "storage.DeleteVideo", `DELETE FROM videos WHERE id = $1`, id)
}

// --- Рекомендации ---

// ListResources возвращает ресурсы заданного вида либо все при пустом kind.
func (s *Storage) ListResources(ctx context.Context, kind string) ([]*models.Resource, error) {
	const op = "storage.ListResources"

	query := `SELECT id, kind, title, url, description, sort_order
			  FROM resources WHERE ($1 = '' OR kind = $1) ORDER BY sort_order`
	rows, err := s.DB.QueryContext(ctx, query, kind)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.Resource
	for rows.Next() {
		var item models.Resource
		if err := rows.Scan(&item.ID, &item.Kind, &item.Title, &item.URL,
			&item.Description, &item.SortOrder); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	return result, rows.Err()
}

// CreateResource вставляет ресурс и возвращает его id.
func (s *Storage) CreateResource(ctx context.Context, item models.Resource) (string, error) {
	const op = "storage.CreateResource"

	var newID string
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO resources (kind, title, url, description, sort_order)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		item.Kind, item.Title, item.URL, item.Description, item.SortOrder).Scan(&newID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// UpdateResource обновляет ресурс.
func (s *Storage) UpdateResource(ctx context.Context, id string, item models.Resource) (int, error) {
	return s.execCount(ctx, "storage.UpdateResource",
		`UPDATE resources SET kind = $1, title = $2, url = $3, description = $4, sort_order = $5
		 WHERE id = $6`,
		item.Kind, item.Title, item.URL, item.Description, item.SortOrder, id)
}

// DeleteResource удаляет ресурс.
func (s *Storage) DeleteResource(ctx context.Context, id string) (int, error) {
	return s.execCount(ctx, "storage.DeleteResource", `DELETE FROM resources WHERE id = $1`, id)
}

// --- Контент страниц ---

// GetPageContent возвращает контент страницы по ключу.
func (s *Storage) GetPageContent(ctx context.Context, pageKey string) (*models.PageContent, error) {
	const op = "storage.GetPageContent"

	var item models.PageContent
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, page_key, content_json FROM page_content WHERE page_key = $1`,
		pageKey).Scan(&item.ID, &item.PageKey, &item.ContentJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &item, nil
}

// UpsertPageContent создаёт или заменяет контент страницы по ключу.
func (s *Storage) UpsertPageContent(ctx context.Context, item models.PageContent) (*models.PageContent, error) {
	const op = "storage.UpsertPageContent"

	var stored models.PageContent
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO page_content (page_key, content_json) VALUES ($1, $2)
		 ON CONFLICT (page_key) DO UPDATE SET content_json = EXCLUDED.content_json
		 RETURNING id, page_key, content_json`,
		item.PageKey, item.ContentJSON).Scan(&stored.ID, &stored.PageKey, &stored.ContentJSON)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &stored, nil
}

// execCount выполняет запрос и возвращает количество затронутых строк.
func (s *Storage) execCount(ctx context.Context, op, query string, args ...any) (int, error) {
	result, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
