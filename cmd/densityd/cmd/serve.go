package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/materials-commons/partdensity/pkg/config"
	"github.com/materials-commons/partdensity/pkg/densdb"
	"github.com/materials-commons/partdensity/pkg/densdb/stor"
	"github.com/materials-commons/partdensity/pkg/densityapi/webapi"
	"github.com/materials-commons/partdensity/pkg/lot"
	"github.com/materials-commons/partdensity/pkg/registry"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST API server",
	Run: func(cmd *cobra.Command, args []string) {
		c := config.GetConfig()
		db := densdb.MustConnectToDB(c)

		if migrate, _ := cmd.Flags().GetBool("migrate"); migrate {
			if err := densdb.RunMigrations(db); err != nil {
				log.Fatalf("Unable to migrate database: %s", err)
			}
		}

		stors := stor.NewGormStors(db)
		parts := registry.NewPartRegistry(stors)

		e := echo.New()
		e.HideBanner = true
		e.HidePort = true
		e.HTTPErrorHandler = webapi.HTTPErrorHandler
		e.Use(middleware.Recover())
		e.Use(webapi.RequestLogger())

		setupRoutes(e, RouteOpts{
			db:           db,
			refData:      registry.NewReferenceData(stors),
			parts:        parts,
			orchestrator: lot.NewOrchestrator(parts, stors.SerialStor, c.GetIntKeyWithDefault("LOT_WORKERS", lot.DefaultWorkers)),
		})

		go shutdownOnSignal(e)

		port := c.GetKeyWithDefault("DENSITYD_PORT", "1362")
		log.Infof("densityd listening on port %s", port)
		if err := e.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Unable to start server: %v", err)
		}
	},
}

func shutdownOnSignal(e *echo.Echo) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	sig := <-c
	log.Infof("Got %s signal, shutting down...", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Errorf("Shutdown failed: %s", err)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Bool("migrate", false, "Run database migrations before serving")
}
