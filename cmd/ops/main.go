// Package main — ops: служебная утилита рядом с ботом.
// Хеш пароля админки, проверка расписаний, миграции, выгрузка и загрузка сохранений.
package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "ops",
	Short:         "Служебные команды habit-bot",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	log.SetOutput(os.Stderr)
	log.SetLevel(log.WarnLevel)

	rootCmd.AddCommand(
		newHashCmd(),
		newDueCmd(),
		newMigrateCmd(),
		newExportCmd(),
		newImportCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "❌ "+err.Error())
		os.Exit(1)
	}
}
