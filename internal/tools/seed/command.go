package seed

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/authhybrid/backend/internal/config"
	"github.com/authhybrid/backend/internal/database"
	"github.com/authhybrid/backend/internal/tools/common"
)

type options struct {
	envFile string
	ci      bool
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{Use: "seed", Short: "Local development data tooling"}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path to env file")
	cmd.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")
	cmd.AddCommand(newApplyCommand(opts), newDryRunCommand(opts), newVerifyEmailCommand(opts))
	return cmd
}

func newApplyCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "apply",
		Short: "Insert local development fixtures",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := loadConfigDB(opts.envFile)
			if err == nil {
				err = database.SeedDevData(db, cfg.BcryptCost)
			}
			details := []string{
				"ensured users: alice@example.dev, bob@example.dev (verified), carol@example.dev (unverified)",
				"ensured direct conversation between alice and bob",
			}
			common.PrintResult(opts.ci, err == nil, "seed apply", details, err)
			if err != nil {
				os.Exit(3)
			}
			return nil
		},
	}
}

func newDryRunCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "dry-run",
		Short: "Show what seeding would do",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, err := loadConfigDB(opts.envFile)
			details := []string{
				"would ensure credential users: alice@example.dev, bob@example.dev, carol@example.dev",
				"would ensure a direct conversation with two seed messages",
			}
			common.PrintResult(opts.ci, err == nil, "seed dry-run", details, err)
			if err != nil {
				os.Exit(3)
			}
			return nil
		},
	}
}

func newVerifyEmailCommand(opts *options) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "verify-email",
		Short: "Mark a credential user's email as verified",
		RunE: func(cmd *cobra.Command, args []string) error {
			var details []string
			_, db, err := loadConfigDB(opts.envFile)
			if err == nil {
				err = database.VerifyEmail(db, email)
			}
			if err == nil {
				details = []string{fmt.Sprintf("marked email verified: %s", email)}
			}
			common.PrintResult(opts.ci, err == nil, "seed verify-email", details, err)
			if err != nil {
				os.Exit(3)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email to mark verified")
	return cmd
}

func loadConfigDB(envFile string) (*config.Config, *gorm.DB, error) {
	if err := common.LoadEnvFile(envFile); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}
