package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"shopledger/internal/adapters/web"
	"shopledger/internal/app"
	"shopledger/internal/core"
	"shopledger/internal/db"
	"shopledger/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Connects to Postgres and serves the shopledger JSON API.

The server shuts down gracefully on SIGINT or SIGTERM, draining
in-flight requests before closing the database pool.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("serve")

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		return err
	}
	defer pool.Close()

	stock := core.NewStockLedger()
	ledger := core.NewCustomerLedger(pool)
	numbering := core.NewInvoiceNumbering()

	svc := app.NewAppService(
		core.NewProductService(pool),
		core.NewCustomerService(pool),
		ledger,
		core.NewInvoiceProcessor(pool, stock, ledger, numbering),
		core.NewReportingService(pool),
	)

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           web.NewHandler(svc, cfg.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}
