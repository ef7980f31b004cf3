// Package server — служебный HTTP API: здоровье, выгрузка и загрузка сохранений,
// расписание привычек на дату и история в CSV.
// Все маршруты, кроме /health, закрыты Bearer-токеном API_TOKEN.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"serotonyl.ru/habit-bot/internal/features/journal"
	"serotonyl.ru/habit-bot/internal/features/players"
)

// maxBodyBytes — предел размера загружаемого сохранения.
const maxBodyBytes = 1 << 20

// API собирает обработчики HTTP.
type API struct {
	Players *players.Service
	Journal *journal.Service
	Token   string
}

// Router возвращает готовый chi-роутер.
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(loggingMiddleware)

	r.Get("/health", a.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(a.authMiddleware)
		r.Route("/api/players", func(r chi.Router) {
			r.Get("/", a.handleListPlayers)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/snapshot", a.handleGetSnapshot)
				r.Put("/snapshot", a.handlePutSnapshot)
				r.Get("/due", a.handleDue)
				r.Get("/review", a.handleReview)
				r.Get("/history.csv", a.handleHistoryCSV)
			})
		})
	})

	return r
}
