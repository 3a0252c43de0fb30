package cli

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"landingpress/internal/config"
	"landingpress/internal/store"
)

var operatorCmd = &cobra.Command{
	Use:   "operator",
	Short: "Manage admin operators",
}

var operatorCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an operator account",
	Long: `Create an operator who can sign in to the admin. The operator enrolls
in TOTP two-factor authentication on first login.`,
	RunE: runOperatorCreate,
}

var operatorFlags struct {
	email    string
	password string
	name     string
}

func init() {
	operatorCreateCmd.Flags().StringVar(&operatorFlags.email, "email", "", "login email (required)")
	operatorCreateCmd.Flags().StringVar(&operatorFlags.password, "password", "", "initial password (required)")
	operatorCreateCmd.Flags().StringVar(&operatorFlags.name, "name", "", "display name")
	operatorCreateCmd.MarkFlagRequired("email")
	operatorCreateCmd.MarkFlagRequired("password")

	operatorCmd.AddCommand(operatorCreateCmd)
	rootCmd.AddCommand(operatorCmd)
}

func runOperatorCreate(cmd *cobra.Command, _ []string) error {
	email := strings.ToLower(strings.TrimSpace(operatorFlags.email))
	if !strings.Contains(email, "@") {
		return fmt.Errorf("invalid email %q", operatorFlags.email)
	}
	if len(operatorFlags.password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	name := operatorFlags.name
	if name == "" {
		name = email
	}

	return withDB(cmd, func(_ *config.Config, db *sql.DB) error {
		op, err := store.NewOperatorStore(db).Create(cmd.Context(), email, operatorFlags.password, name)
		if err != nil {
			if errors.Is(err, store.ErrConflict) {
				return fmt.Errorf("operator %s already exists", email)
			}
			return err
		}
		slog.Info("operator created", "id", op.ID, "email", op.Email)
		return nil
	})
}
