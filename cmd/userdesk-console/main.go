package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	adminusers "userdesk/frontend/adminUsers"
	"userdesk/frontend/adminUsers/console"
	"userdesk/infrastructure/config"
	"userdesk/infrastructure/logging"
	"userdesk/infrastructure/userapi"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		apiURL     string
		logPath    string
		fragment   string
	)
	cmd := &cobra.Command{
		Use:          "userdesk-console",
		Short:        "Terminal admin screen for the user directory",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadDotEnv(); err != nil {
				return err
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if apiURL != "" {
				cfg.Screen.APIURL = apiURL
			}

			// The terminal belongs to bubbletea; logs go to a file or nowhere.
			logOut, closeLog, err := openLog(logPath)
			if err != nil {
				return err
			}
			defer closeLog()
			logger := logging.New(logOut, cfg.Logging.Level, cfg.Logging.Format)

			return run(cmd.Context(), cfg, logger, fragment)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "userdesk.yaml", "Config file (YAML)")
	cmd.Flags().StringVar(&apiURL, "api", "", "Users API base URL (overrides screen.api_url)")
	cmd.Flags().StringVar(&logPath, "log-file", "", "Write logs to this file")
	cmd.Flags().StringVar(&fragment, "open", "", `Initial location, e.g. "#/users/7"`)
	return cmd
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, fragment string) error {
	client := userapi.New(cfg.Screen.APIURL, userapi.WithTimeout(cfg.GetRequestTimeout()))
	renderer := console.NewRenderer()
	screen := adminusers.NewScreen(client, renderer,
		adminusers.WithLogger(logger),
		adminusers.WithPageSize(cfg.Screen.PageSize),
		adminusers.WithSearchDelay(cfg.GetSearchDelay()),
		adminusers.WithLocation(adminusers.NewMemoryLocation(fragment)),
	)

	g, gctx := errgroup.WithContext(ctx)
	screenCtx, stopScreen := context.WithCancel(gctx)
	queue := console.NewQueue(screen, 1024)
	program := tea.NewProgram(console.NewModel(queue), tea.WithAltScreen(), tea.WithContext(gctx))
	renderer.Attach(program)

	g.Go(func() error {
		return screen.Run(screenCtx)
	})
	g.Go(func() error {
		return queue.Run(screenCtx)
	})
	g.Go(func() error {
		defer stopScreen()
		_, err := program.Run()
		if errors.Is(err, tea.ErrProgramKilled) && gctx.Err() != nil {
			return nil
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("console: %w", err)
	}
	return nil
}

func openLog(path string) (io.Writer, func(), error) {
	if path == "" {
		return io.Discard, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
