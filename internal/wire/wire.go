package wire

import (
	"reader-hub/internal/adaptor"
	"reader-hub/internal/data/repository"
	"reader-hub/internal/usecase"
	"reader-hub/pkg/i18n"
	"reader-hub/pkg/mailer"
	"reader-hub/pkg/middleware"
	"reader-hub/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// App holds the assembled HTTP surface
type App struct {
	Router *chi.Mux
}

// Deps are the process-level collaborators built in main
type Deps struct {
	Repo    *repository.Repository
	Mailer  mailer.Sender
	Locales *i18n.Manager
	Config  *utils.Config
	Logger  *zap.Logger
}

// Wiring builds services, handlers and routes
func Wiring(deps Deps) *App {
	tokens := utils.NewTokenManager(deps.Config.JWT.Secret, deps.Config.JWT.Expiry(), deps.Config.App.Name)

	service := usecase.NewService(deps.Repo, deps.Mailer, tokens, deps.Config, deps.Logger)
	handler := adaptor.NewHandler(service, deps.Repo.Store, deps.Logger)

	return &App{
		Router: setupRouter(handler, tokens, deps),
	}
}

func setupRouter(handler *adaptor.Handler, tokens *utils.TokenManager, deps Deps) *chi.Mux {
	r := chi.NewRouter()

	// Locale runs first so every later layer answers in the request language
	r.Use(chimw.RequestID)
	r.Use(middleware.Locale(deps.Locales))
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Recover(deps.Logger))
	r.Use(middleware.CORS())
	if timeout := deps.Config.App.RequestTimeout; timeout > 0 {
		r.Use(chimw.Timeout(timeout))
	}

	auth := middleware.Auth(tokens, deps.Logger)

	wireAuth(r, handler.Auth)
	wireUser(r, handler.User, auth, deps.Logger)
	wireCategory(r, handler.Category, auth, deps.Logger)
	wireBook(r, handler.Book, auth, deps.Logger)

	r.Get("/health", handler.Health.Check)

	return r
}
