package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"MenuScout/controllers"
	"MenuScout/middleware"
	v1 "MenuScout/routes/v1"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var flagPort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scraping HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&flagPort, "port", "", "Listen port (default from config or PORT)")
}

func newRouter(scrap *controllers.ScrapController, restaurant *controllers.RestaurantController, jwtSecret string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.ErrorHandlerMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST"},
		AllowHeaders:  []string{"Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))
	v1.RegisterRoutes(r, scrap, restaurant, jwtSecret)
	return r
}

func runServe(cmd *cobra.Command, args []string) error {
	applySinkFlags()
	if flagPort != "" {
		cfg.Server.Port = flagPort
	}
	if !cfg.Verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, appOptions{noBrowser: flagNoBrowser, placeSearch: true, stdout: cmd.OutOrStdout()})
	if err != nil {
		return err
	}
	defer a.close()

	router := newRouter(controllers.NewScrapController(a.batch), controllers.NewRestaurantController(a.sink), cfg.Server.JWTSecret)
	srv := &http.Server{Addr: ":" + cfg.Server.Port, Handler: router}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("server running")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
