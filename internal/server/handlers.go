package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/habit-bot/internal/common"
	"serotonyl.ru/habit-bot/internal/engine"
	"serotonyl.ru/habit-bot/internal/features/habits"
	"serotonyl.ru/habit-bot/internal/features/journal"
	"serotonyl.ru/habit-bot/internal/features/players"
)

type dueHabit struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Schedule string `json:"schedule"`
	Status   string `json:"status"`
	Streak   int    `json:"streak"`
}

type dueResponse struct {
	Date   string     `json:"date"`
	Habits []dueHabit `json:"habits"`
}

type importResponse struct {
	Warnings []string `json:"warnings"`
	Level    int      `json:"level"`
	Gold     int64    `json:"gold"`
	Gems     int64    `json:"gems"`
	Habits   int      `json:"habits"`
}

type reviewResponse struct {
	Period     string   `json:"period"`
	From       string   `json:"from,omitempty"`
	To         string   `json:"to,omitempty"`
	Completed  int      `json:"completed"`
	GoldEarned int64    `json:"gold_earned"`
	GemsEarned int64    `json:"gems_earned"`
	XPEarned   int64    `json:"xp_earned"`
	GoldSpent  int64    `json:"gold_spent"`
	GemsSpent  int64    `json:"gems_spent"`
	Penalties  int64    `json:"penalties"`
	ActiveDays int      `json:"active_days"`
	Categories []string `json:"categories"`
}

func (a *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) handleListPlayers(w http.ResponseWriter, r *http.Request) {
	list, err := a.Players.List(r.Context())
	if err != nil {
		log.WithError(err).Error("Ошибка получения игроков")
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list players")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// handleGetSnapshot отдаёт сохранение как есть: без перехода дня и без записи.
func (a *API) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}
	_, state, err := a.Players.View(r.Context(), userID)
	if err != nil {
		writePlayerError(w, err)
		return
	}
	data, err := engine.Save(state)
	if err != nil {
		writePlayerError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handlePutSnapshot заменяет состояние игрока. Неизвестный игрок создаётся.
func (a *API) handlePutSnapshot(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", "Snapshot too large")
		return
	}
	sess, warnings, err := a.Players.Import(r.Context(), players.Identity{UserID: userID}, data)
	if err != nil {
		writePlayerError(w, err)
		return
	}
	log.WithFields(log.Fields{"user_id": userID, "warnings": len(warnings)}).Info("Сохранение загружено через API")
	if warnings == nil {
		warnings = []string{}
	}
	writeJSON(w, http.StatusOK, importResponse{
		Warnings: warnings,
		Level:    sess.State.Stats.Level,
		Gold:     sess.State.Stats.Gold,
		Gems:     sess.State.Stats.Gems,
		Habits:   len(sess.State.Habits),
	})
}

// handleDue: привычки по расписанию на ?date=YYYY-MM-DD (по умолчанию сегодня).
func (a *API) handleDue(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}
	eng := a.Players.Engine()
	date := eng.Today()
	if s := r.URL.Query().Get("date"); s != "" {
		d, ok := common.ParseDate(s, eng.Location())
		if !ok {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid date")
			return
		}
		date = d
	}
	_, state, err := a.Players.View(r.Context(), userID)
	if err != nil {
		writePlayerError(w, err)
		return
	}

	resp := dueResponse{Date: common.FormatDate(date), Habits: []dueHabit{}}
	for _, h := range engine.HabitsDueOn(state, date) {
		resp.Habits = append(resp.Habits, dueHabit{
			ID:       h.ID,
			Title:    h.Title,
			Category: h.Category,
			Schedule: habits.Describe(h.Recurrence),
			Status:   string(h.Status),
			Streak:   h.Streak,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleReview: итоги за ?period=week|month|all.
func (a *API) handleReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}
	period := journal.PeriodWeek
	if s := r.URL.Query().Get("period"); s != "" {
		p, ok := journal.ParsePeriod(s)
		if !ok {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid period")
			return
		}
		period = p
	}
	_, state, err := a.Players.View(r.Context(), userID)
	if err != nil {
		writePlayerError(w, err)
		return
	}

	from, to := period.Bounds(a.Players.Engine().Today())
	rv := engine.Analyze(state.HistoryLogs, from, to)
	if rv.Categories == nil {
		rv.Categories = []string{}
	}
	writeJSON(w, http.StatusOK, reviewResponse{
		Period:     string(period),
		From:       from,
		To:         to,
		Completed:  rv.Completed,
		GoldEarned: rv.GoldEarned,
		GemsEarned: rv.GemsEarned,
		XPEarned:   rv.XPEarned,
		GoldSpent:  rv.GoldSpent,
		GemsSpent:  rv.GemsSpent,
		Penalties:  rv.Penalties,
		ActiveDays: rv.ActiveDays,
		Categories: rv.Categories,
	})
}

func (a *API) handleHistoryCSV(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}
	data, err := a.Journal.Export(r.Context(), userID)
	if err != nil {
		writePlayerError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="history_`+strconv.FormatInt(userID, 10)+`.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func userIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid player id")
		return 0, false
	}
	return id, true
}

func writePlayerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrPlayerNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Player not found")
	case errors.Is(err, common.ErrMalformedSnapshot):
		writeError(w, http.StatusBadRequest, "MALFORMED_SNAPSHOT", err.Error())
	default:
		log.WithError(err).Error("Ошибка API")
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal error")
	}
}
