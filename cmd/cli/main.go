package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/birddigital/login-form/internal/config"
	"github.com/birddigital/login-form/internal/logger"
	"github.com/birddigital/login-form/internal/loginform"
	"github.com/birddigital/login-form/internal/storage"
	"github.com/birddigital/login-form/internal/validation"
)

var verbose bool

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// The login command has already printed its message
		if !errors.Is(err, errLoginFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "login-form",
		Short:         "CLI for the login form service",
		Long:          `Command-line interface for submitting credentials, managing the user schema and adding users.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Login command
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Submit credentials to the login endpoint",
		RunE:  runLogin,
	}
	loginCmd.Flags().String("username", "", "Username to submit")
	loginCmd.Flags().String("password", "", "Password to submit")
	loginCmd.Flags().String("endpoint", loginform.DefaultEndpoint, "Login endpoint URL")
	loginCmd.Flags().Duration("timeout", 0, "Request timeout (0 waits indefinitely)")

	// Migrate commands
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the users schema",
	}
	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				runner, err := migrationRunner()
				if err != nil {
					return err
				}
				return runner.Up()
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the last migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				runner, err := migrationRunner()
				if err != nil {
					return err
				}
				return runner.Down()
			},
		},
	)

	// Users commands
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Manage login users",
	}
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a user to the PostgreSQL store",
		RunE:  runUsersAdd,
	}
	addCmd.Flags().String("username", "", "Username (required)")
	addCmd.Flags().String("password", "", "Password (required)")
	usersCmd.AddCommand(addCmd)

	rootCmd.AddCommand(loginCmd, migrateCmd, usersCmd)
	return rootCmd
}

func runLogin(cmd *cobra.Command, args []string) error {
	username, _ := cmd.Flags().GetString("username")
	password, _ := cmd.Flags().GetString("password")
	endpoint, _ := cmd.Flags().GetString("endpoint")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	result := submitLogin(cmd.Context(), cmd.OutOrStdout(), endpoint, timeout, username, password)
	if result.Outcome != loginform.OutcomeSuccess {
		return errLoginFailed
	}
	return nil
}

var errLoginFailed = errors.New("login failed")

// submitLogin runs one form submission and prints the displayed message
func submitLogin(ctx context.Context, out io.Writer, endpoint string, timeout time.Duration, username, password string) loginform.Result {
	if ctx == nil {
		ctx = context.Background()
	}

	var opts []loginform.HandlerOption
	if verbose {
		l, _, _ := logger.New(logger.Config{Level: "debug", Format: "console"})
		opts = append(opts, loginform.WithLogger(l))
	}

	display := loginform.NewStateDisplay()
	handler := loginform.NewSubmitHandler(
		loginform.FieldValue(username),
		loginform.FieldValue(password),
		display,
		loginform.NewClient(endpoint, timeout),
		opts...,
	)

	result := handler.HandleSubmit(ctx, loginform.NoopEvent)

	state := display.State()
	mark := "✗"
	if state.Class == loginform.ClassSuccess {
		mark = "✓"
	}
	fmt.Fprintf(out, "%s %s\n", mark, state.Text)
	if verbose && result.Status != 0 {
		fmt.Fprintf(out, "  Status: %d\n", result.Status)
	}

	return result
}

func runUsersAdd(cmd *cobra.Command, args []string) error {
	input := validation.CreateUserInput{}
	input.Username, _ = cmd.Flags().GetString("username")
	input.Password, _ = cmd.Flags().GetString("password")

	ctx := cmd.Context()
	if err := validation.ValidateStruct(ctx, input); err != nil {
		return err
	}

	cfg, err := loadDatabaseConfig()
	if err != nil {
		return err
	}

	pool, err := storage.NewPool(ctx, cfg.Storage.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	user, err := storage.NewPostgresUserStore(pool).CreateUser(ctx, input.Username, input.Password)
	if err != nil {
		return fmt.Errorf("failed to add user: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ User added successfully\n")
	fmt.Fprintf(cmd.OutOrStdout(), "  ID: %s\n", user.ID)
	fmt.Fprintf(cmd.OutOrStdout(), "  Username: %s\n", user.Username)
	return nil
}

func migrationRunner() (*storage.MigrationRunner, error) {
	cfg, err := loadDatabaseConfig()
	if err != nil {
		return nil, err
	}

	level := "info"
	if verbose {
		level = "debug"
	}
	l, _, err := logger.New(logger.Config{Level: level, Format: "console"})
	if err != nil {
		return nil, err
	}

	return storage.NewMigrationRunner(cfg.Storage.DatabaseURL, l), nil
}

func loadDatabaseConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Storage.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required for this command")
	}
	return cfg, nil
}
