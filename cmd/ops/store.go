package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"serotonyl.ru/habit-bot/internal/config"
	"serotonyl.ru/habit-bot/internal/db/postgres"
	"serotonyl.ru/habit-bot/internal/db/sqlite"
	"serotonyl.ru/habit-bot/internal/engine"
	"serotonyl.ru/habit-bot/internal/features/players"
)

// storeFlags — куда подключаться. Флаги по умолчанию берутся из окружения бота.
type storeFlags struct {
	driver  string
	dsn     string
	sqlite  string
	balance string
}

func (f *storeFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.driver, "driver", envOr("STORAGE_DRIVER", config.DriverPostgres), "postgres|sqlite")
	cmd.Flags().StringVar(&f.dsn, "dsn", os.Getenv("DATABASE_URL"), "DSN PostgreSQL")
	cmd.Flags().StringVar(&f.sqlite, "sqlite", envOr("SQLITE_PATH", "habits.db"), "путь к файлу SQLite")
	cmd.Flags().StringVar(&f.balance, "balance", os.Getenv("BALANCE_FILE"), "YAML с балансом (пусто — встроенный)")
}

// open подключает хранилище и применяет миграции.
func (f *storeFlags) open(ctx context.Context) (players.Store, func(), error) {
	switch f.driver {
	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, f.sqlite)
		if err != nil {
			return nil, nil, err
		}
		return players.NewSQLiteStore(db), func() { _ = db.Close() }, nil
	case config.DriverPostgres:
		if f.dsn == "" {
			return nil, nil, fmt.Errorf("для postgres нужен --dsn или DATABASE_URL")
		}
		pool, err := postgres.Open(ctx, f.dsn, 2, 0)
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return players.NewRepository(pool), pool.Close, nil
	}
	return nil, nil, fmt.Errorf("неизвестный драйвер %q (postgres|sqlite)", f.driver)
}

func (f *storeFlags) service(ctx context.Context) (*players.Service, func(), error) {
	balance, err := config.LoadBalance(f.balance)
	if err != nil {
		return nil, nil, err
	}
	store, cleanup, err := f.open(ctx)
	if err != nil {
		return nil, nil, err
	}
	return players.NewService(store, engine.New(balance)), cleanup, nil
}

func newMigrateCmd() *cobra.Command {
	var flags storeFlags
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Создать или обновить схему базы",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cleanup, err := flags.open(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			fmt.Fprintln(cmd.OutOrStdout(), "✅ Схема актуальна")
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}

// newExportCmd: ops export <user_id> > save.json
func newExportCmd() *cobra.Command {
	var flags storeFlags
	cmd := &cobra.Command{
		Use:   "export <user_id>",
		Short: "Выгрузить сохранение игрока в stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("некорректный user_id %q", args[0])
			}
			svc, cleanup, err := flags.service(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			_, state, err := svc.View(cmd.Context(), userID)
			if err != nil {
				return err
			}
			data, err := engine.Save(state)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(append(data, '\n'))
			return err
		},
	}
	flags.bind(cmd)
	return cmd
}

// newImportCmd: ops import <user_id> save.json
func newImportCmd() *cobra.Command {
	var flags storeFlags
	cmd := &cobra.Command{
		Use:   "import <user_id> <файл>",
		Short: "Заменить состояние игрока сохранением из файла",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("некорректный user_id %q", args[0])
			}
			data, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			svc, cleanup, err := flags.service(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			sess, warnings, err := svc.Import(cmd.Context(), players.Identity{UserID: userID}, data)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, w := range warnings {
				fmt.Fprintf(out, "⚠️ %s\n", w)
			}
			fmt.Fprintf(out, "✅ Игрок %d: уровень %d, привычек %d\n", userID, sess.State.Stats.Level, len(sess.State.Habits))
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
