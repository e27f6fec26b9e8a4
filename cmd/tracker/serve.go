package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"timetracker.com/timetracker/app"
	"timetracker.com/timetracker/web"
)

func newServeCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app.App) error {
				ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer stop()

				if migrate {
					if err := a.DB.Migrate(ctx); err != nil {
						return err
					}
				}
				return serve(ctx, a)
			})
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "migrate the schema before serving")
	return cmd
}

func serve(ctx context.Context, a *app.App) error {
	if a.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	services, err := a.Services()
	if err != nil {
		return err
	}
	router := web.NewRouter(services, web.RouterOptions{
		ServiceName:  a.Config.ServiceName,
		CORSOrigins:  a.Config.Server.CORSOrigins,
		SecureCookie: a.Config.IsProduction(),
		Location:     a.Location,
	})

	srv := &http.Server{
		Addr:              a.Config.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			a.ReportError(context.Background(), "tracker stopped: "+err.Error())
		}
		return err
	case <-ctx.Done():
	}

	a.Log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
