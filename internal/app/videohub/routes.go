// Package videohub предоставляет маршруты для основного приложения.
package videohub

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/videohub-backend/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/videohub-backend/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/videohub-backend/internal/http/handlers/contact"
	"github.com/magabrotheeeer/videohub-backend/internal/http/handlers/content/blog"
	"github.com/magabrotheeeer/videohub-backend/internal/http/handlers/content/events"
	"github.com/magabrotheeeer/videohub-backend/internal/http/handlers/content/faq"
	"github.com/magabrotheeeer/videohub-backend/internal/http/handlers/content/pages"
	"github.com/magabrotheeeer/videohub-backend/internal/http/handlers/content/resources"
	"github.com/magabrotheeeer/videohub-backend/internal/http/handlers/content/schedule"
	"github.com/magabrotheeeer/videohub-backend/internal/http/handlers/content/team"
	"github.com/magabrotheeeer/videohub-backend/internal/http/handlers/content/testimonials"
	"github.com/magabrotheeeer/videohub-backend/internal/http/handlers/content/videos"
	"github.com/magabrotheeeer/videohub-backend/internal/http/handlers/subscription/confirm"
	"github.com/magabrotheeeer/videohub-backend/internal/http/handlers/subscription/confirmsession"
	"github.com/magabrotheeeer/videohub-backend/internal/http/handlers/subscription/create"
	"github.com/magabrotheeeer/videohub-backend/internal/http/handlers/subscription/status"
	"github.com/magabrotheeeer/videohub-backend/internal/http/handlers/subscription/webhook"
	"github.com/magabrotheeeer/videohub-backend/internal/http/handlers/users"
	"github.com/magabrotheeeer/videohub-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/videohub-backend/internal/http/response"
	librabbitmq "github.com/magabrotheeeer/videohub-backend/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/videohub-backend/internal/paymentprovider"
	authservice "github.com/magabrotheeeer/videohub-backend/internal/services/auth"
	contentservice "github.com/magabrotheeeer/videohub-backend/internal/services/content"
	subscriptionservice "github.com/magabrotheeeer/videohub-backend/internal/services/subscription"
	"github.com/magabrotheeeer/videohub-backend/internal/storage/repository"
)

// Deps собирает зависимости маршрутов приложения.
type Deps struct {
	Storage      *repository.Storage
	Auth         *authservice.Service
	Subscription *subscriptionservice.Service
	Content      *contentservice.Service
	Gateway      paymentprovider.Gateway
	Publisher    *librabbitmq.Publisher
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, deps *Deps) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	blogHandler := blog.New(logger, deps.Storage)
	faqHandler := faq.New(logger, deps.Storage)
	teamHandler := team.New(logger, deps.Storage)
	testimonialsHandler := testimonials.New(logger, deps.Storage)
	scheduleHandler := schedule.New(logger, deps.Storage)
	eventsHandler := events.New(logger, deps.Storage)
	resourcesHandler := resources.New(logger, deps.Storage)
	pagesHandler := pages.New(logger, deps.Storage)
	videosHandler := videos.New(logger, deps.Content)
	usersHandler := users.New(logger, deps.Auth)

	r.Route("/api", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/auth/register", register.New(logger, deps.Auth).ServeHTTP)
		r.Post("/auth/login", login.New(logger, deps.Auth).ServeHTTP)
		r.Post("/contact", contact.New(logger, deps.Publisher).ServeHTTP)
		r.Post("/subscriptions/confirm-session", confirmsession.New(logger, deps.Subscription).ServeHTTP)
		r.Post("/"+deps.Gateway.Name()+"/webhook", webhook.New(logger, deps.Gateway, deps.Subscription).ServeHTTP)
		r.Get("/health", healthHandler(deps.Storage))

		// Публичное чтение контента
		r.Get("/blog", blogHandler.List)
		r.Get("/blog/{id}", blogHandler.Read)
		r.Get("/faq", faqHandler.List)
		r.Get("/team", teamHandler.List)
		r.Get("/testimonials", testimonialsHandler.List)
		r.Get("/schedule", scheduleHandler.List)
		r.Get("/events", eventsHandler.List)
		r.Get("/resources", resourcesHandler.List)
		r.Get("/pages/{key}", pagesHandler.Read)
		r.Get("/videos", videosHandler.List)
		r.Get("/videos/{id}", videosHandler.Read)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(deps.Auth, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Post("/subscriptions/create", create.New(logger, deps.Subscription).ServeHTTP)
			r.Post("/subscriptions/confirm", confirm.New(logger, deps.Subscription).ServeHTTP)
			r.Get("/subscriptions/status", status.New(logger, deps.Subscription).ServeHTTP)
			r.Get("/videos/{id}/embed", videosHandler.Embed)

			// Административные конечные точки
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireAdmin(logger))

				r.Get("/users", usersHandler.List)
				r.Post("/users", usersHandler.Create)
				r.Patch("/users/{id}/admin", usersHandler.UpdateAdmin)

				r.Post("/blog", blogHandler.Create)
				r.Put("/blog/{id}", blogHandler.Update)
				r.Delete("/blog/{id}", blogHandler.Remove)

				r.Post("/faq", faqHandler.Create)
				r.Put("/faq/{id}", faqHandler.Update)
				r.Delete("/faq/{id}", faqHandler.Remove)

				r.Post("/team", teamHandler.Create)
				r.Put("/team/{id}", teamHandler.Update)
				r.Delete("/team/{id}", teamHandler.Remove)

				r.Post("/testimonials", testimonialsHandler.Create)
				r.Put("/testimonials/{id}", testimonialsHandler.Update)
				r.Delete("/testimonials/{id}", testimonialsHandler.Remove)

				r.Post("/schedule", scheduleHandler.Create)
				r.Put("/schedule/{id}", scheduleHandler.Update)
				r.Delete("/schedule/{id}", scheduleHandler.Remove)

				r.Post("/events", eventsHandler.Create)
				r.Put("/events/{id}", eventsHandler.Update)
				r.Delete("/events/{id}", eventsHandler.Remove)

				r.Post("/resources", resourcesHandler.Create)
				r.Put("/resources/{id}", resourcesHandler.Update)
				r.Delete("/resources/{id}", resourcesHandler.Remove)

				r.Put("/pages/{key}", pagesHandler.Upsert)

				r.Get("/admin/videos", videosHandler.ListAdmin)
				r.Post("/videos", videosHandler.Create)
				r.Put("/videos/{id}", videosHandler.Update)
				r.Delete("/videos/{id}", videosHandler.Remove)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}

// healthHandler отвечает 200, пока база данных доступна.
func healthHandler(storage *repository.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := repository.CheckDatabaseReady(storage); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("database unavailable"))
			return
		}
		render.JSON(w, r, response.OK())
	}
}
