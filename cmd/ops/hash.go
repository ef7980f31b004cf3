package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"serotonyl.ru/habit-bot/internal/features/admin"
)

// newHashCmd: ops hash <пароль>. Результат вставьте в .env как ADMIN_PASSWORD_HASH.
func newHashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash <пароль>",
		Short: "Argon2id-хеш пароля для ADMIN_PASSWORD_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := admin.HashPassword(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Хеш пароля (вставьте в .env как ADMIN_PASSWORD_HASH):")
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
