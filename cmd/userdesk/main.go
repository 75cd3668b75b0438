package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	usersapi "userdesk/frontend/usersApi"
	"userdesk/infrastructure/audit"
	"userdesk/infrastructure/config"
	httpserver "userdesk/infrastructure/http"
	"userdesk/infrastructure/logging"
	"userdesk/infrastructure/sqlite"
)

type options struct {
	configPath string
	envFiles   []string
	cfg        *config.Config
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "userdesk",
		Short:         "User directory backend and admin screen",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadDotEnv(opts.envFiles...); err != nil {
				return err
			}
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			logging.Setup(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "userdesk.yaml", "Config file (YAML); missing file means defaults")
	root.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", nil, "Dotenv files to load before reading config (default .env)")

	root.AddCommand(newServeCmd(opts), newMigrateCmd(opts), newSeedCmd(opts))
	return root
}

func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the users API and serve the admin screen",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := openMigrated(cmd.Context(), opts.cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			server := httpserver.NewServer(opts.cfg, db, audit.NewService())
			if err := server.Start(); err != nil {
				return fmt.Errorf("start server: %w", err)
			}
			slog.Info("userdesk listening", slog.String("addr", server.Addr), slog.String("latency", opts.cfg.GetLatency().String()))

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()

			if err := server.Stop(); err != nil {
				slog.Error("graceful shutdown error", slog.Any("err", err))
			}
			return nil
		},
	}
}

func newMigrateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := sqlite.OpenDB(opts.cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			applied, err := migrate(cmd.Context(), db, opts.cfg)
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "database is up to date")
				return nil
			}
			for _, name := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", name)
			}
			return nil
		},
	}
}

func newSeedCmd(opts *options) *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the demo user directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := openMigrated(cmd.Context(), opts.cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := usersapi.SeedUsers(cmd.Context(), db, audit.NewService(), usersapi.DemoUsers(), reset)
			if err != nil {
				return err
			}
			total, err := usersapi.CountUsers(cmd.Context(), db)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d users (%d total)\n", n, total)
			return nil
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "Delete every user before seeding")
	return cmd
}

func openMigrated(ctx context.Context, cfg *config.Config) (*sqlite.DB, error) {
	db, err := sqlite.OpenDB(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := migrate(ctx, db, cfg); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrate(ctx context.Context, db *sqlite.DB, cfg *config.Config) ([]string, error) {
	var (
		applied []string
		err     error
	)
	if cfg.Database.MigrationsDir != "" {
		applied, err = sqlite.ApplyMigrationsFromDir(ctx, db, cfg.Database.MigrationsDir)
	} else {
		applied, err = sqlite.ApplyEmbeddedMigrations(ctx, db)
	}
	if err != nil {
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	return applied, nil
}
