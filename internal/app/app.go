// Package app инициализирует все компоненты приложения.
// app.go — точка сборки: открывает хранилище, загружает баланс, создаёт движок,
// сервисы, обработчики, фильтры и собирает всё в один объект Bot.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/habit-bot/internal/bot"
	"serotonyl.ru/habit-bot/internal/bot/filters"
	"serotonyl.ru/habit-bot/internal/common"
	"serotonyl.ru/habit-bot/internal/config"
	"serotonyl.ru/habit-bot/internal/db/postgres"
	"serotonyl.ru/habit-bot/internal/db/sqlite"
	"serotonyl.ru/habit-bot/internal/engine"
	"serotonyl.ru/habit-bot/internal/features/admin"
	"serotonyl.ru/habit-bot/internal/features/economy"
	"serotonyl.ru/habit-bot/internal/features/habits"
	"serotonyl.ru/habit-bot/internal/features/journal"
	"serotonyl.ru/habit-bot/internal/features/players"
	"serotonyl.ru/habit-bot/internal/features/quests"
	"serotonyl.ru/habit-bot/internal/jobs"
	"serotonyl.ru/habit-bot/internal/server"
)

// App содержит все компоненты приложения.
type App struct {
	Bot       *bot.Bot
	Scheduler *jobs.Scheduler
	HTTP      *http.Server // nil, если HTTP_ADDR пуст
	BotAPI    *tgbotapi.BotAPI

	closeStorage func()
}

// Storage — хранилища, из которых собираются сервисы.
type Storage struct {
	Players players.Store
	Admin   admin.Repository
	Close   func()
}

// OpenStorage подключает выбранный драйвер и применяет миграции.
func OpenStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	switch cfg.StorageDriver {
	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("ошибка открытия SQLite: %w", err)
		}
		return &Storage{
			Players: players.NewSQLiteStore(db),
			Admin:   admin.NewSQLiteRepository(db),
			Close:   func() { _ = db.Close() },
		}, nil

	default:
		pool, err := postgres.NewPool(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
		}
		if err := postgres.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ошибка миграций: %w", err)
		}
		return &Storage{
			Players: players.NewRepository(pool),
			Admin:   admin.NewPostgresRepository(pool),
			Close:   pool.Close,
		}, nil
	}
}

// NewEngine создаёт движок с балансом из BALANCE_FILE и часами в APP_TIMEZONE.
func NewEngine(cfg *config.Config) (*engine.Engine, error) {
	balance, err := config.LoadBalance(cfg.BalanceFile)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки баланса: %w", err)
	}
	loc := common.LoadLocation(cfg.AppTimezone)
	return engine.New(balance, engine.WithClock(engine.LocationClock{Loc: loc})), nil
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен — компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. Хранилище ===
	storage, err := OpenStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log.WithField("driver", cfg.StorageDriver).Info("Хранилище готово")

	// === 2. Движок ===
	eng, err := NewEngine(cfg)
	if err != nil {
		storage.Close()
		return nil, err
	}

	// === 3. Telegram Bot API ===
	botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		storage.Close()
		return nil, fmt.Errorf("ошибка создания Telegram API: %w", err)
	}
	botAPI.Debug = cfg.AppEnv == "development"
	log.Infof("Авторизован как @%s", botAPI.Self.UserName)

	// === 4. Сервисы ===
	playerService := players.NewService(storage.Players, eng)
	habitService := habits.NewService(playerService)
	questService := quests.NewService(playerService)
	economyService := economy.NewService(playerService, economy.Options{
		ShopEnabled:    cfg.FeatureShopEnabled,
		HarvestEnabled: cfg.FeatureHarvestEnabled,
	})
	journalService := journal.NewService(playerService)
	adminService := admin.NewService(storage.Admin, playerService,
		cfg.AdminPasswordHash, cfg.AdminSessionTTL, cfg.IsAdmin)

	// === 5. Обработчики ===
	handlers := bot.Handlers{
		Players: players.NewHandler(playerService, botAPI),
		Habits:  habits.NewHandler(habitService, botAPI),
		Quests:  quests.NewHandler(questService, botAPI),
		Economy: economy.NewHandler(economyService, botAPI),
		Journal: journal.NewHandler(journalService, botAPI),
		Admin:   admin.NewHandler(adminService, botAPI),
	}

	// === 6. Фильтры ===
	chatFilter := filters.NewChatFilter(cfg.AllowedChatIDs)

	// === 7. Собираем бота ===
	b := bot.New(botAPI, cfg, handlers, chatFilter)

	// === 8. Планировщик задач ===
	scheduler := jobs.NewScheduler(cfg, playerService, habitService, b.SendMessageToUser)

	// === 9. HTTP API ===
	var httpServer *http.Server
	if cfg.HTTPAddr != "" {
		api := &server.API{Players: playerService, Journal: journalService, Token: cfg.APIToken}
		httpServer = &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           api.Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}
	}

	return &App{
		Bot:          b,
		Scheduler:    scheduler,
		HTTP:         httpServer,
		BotAPI:       botAPI,
		closeStorage: storage.Close,
	}, nil
}

// Close освобождает хранилище.
func (a *App) Close() {
	if a.closeStorage != nil {
		a.closeStorage()
	}
}
