package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/sandeepkv93/todosync/internal/config"
	"github.com/sandeepkv93/todosync/internal/fakeapi"
	"github.com/sandeepkv93/todosync/internal/logging"
	"github.com/sandeepkv93/todosync/internal/storage"
	"github.com/spf13/cobra"
)

func newFakeServerCmd(app *App) *cobra.Command {
	var (
		addr   string
		dbPath string
	)
	cmd := &cobra.Command{
		Use:   "fake-server",
		Short: "Serve a local task collection for development",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := config.ParseLogLevel(app.cfg.LogLevel)
			if err != nil {
				return err
			}
			// Request logs stay at the configured level.
			logger := logging.New(cmd.ErrOrStderr(), level)

			var repo storage.Repository = storage.NewMemoryRepository()
			if dbPath != "" {
				sqliteRepo, err := storage.OpenSQLite(dbPath)
				if err != nil {
					return fmt.Errorf("open %s: %w", dbPath, err)
				}
				defer sqliteRepo.Close()
				repo = sqliteRepo
				logger.Info("using sqlite store", "path", dbPath)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := fakeapi.New(repo, fakeapi.Options{Logger: logger})
			return srv.ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "localhost:8000", "Listen address")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite file to persist tasks in, in-memory when empty")
	return cmd
}
