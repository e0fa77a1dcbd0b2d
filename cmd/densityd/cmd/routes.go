package cmd

import (
	"github.com/labstack/echo/v4"
	"github.com/materials-commons/partdensity/pkg/densityapi/webapi"
	"github.com/materials-commons/partdensity/pkg/lot"
	"github.com/materials-commons/partdensity/pkg/registry"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

type RouteOpts struct {
	db           *gorm.DB
	refData      *registry.ReferenceData
	parts        *registry.PartRegistry
	orchestrator *lot.Orchestrator
}

func setupRoutes(e *echo.Echo, opts RouteOpts) {
	e.GET("/healthz", webapi.NewHealthController(opts.db).Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	g := e.Group("/api")

	logController := webapi.NewLogController()
	g.GET("/logging", logController.ShowLogging)
	g.POST("/logging", logController.SetLogging)

	elementController := webapi.NewElementController(opts.refData)
	g.GET("/elements", elementController.ListElements)
	g.POST("/elements", elementController.CreateElement)
	g.GET("/elements/:symbol", elementController.GetElement)
	g.PUT("/elements/:symbol", elementController.UpdateElement)
	g.DELETE("/elements/:symbol", elementController.DeleteElement)

	alloyController := webapi.NewAlloyController(opts.refData)
	g.GET("/alloys", alloyController.ListAlloys)
	g.POST("/alloys", alloyController.CreateAlloy)
	g.GET("/alloys/by-slug/:slug", alloyController.GetAlloyBySlug)
	g.GET("/alloys/:id", alloyController.GetAlloy)
	g.PUT("/alloys/:id", alloyController.UpdateAlloy)
	g.DELETE("/alloys/:id", alloyController.DeleteAlloy)

	partController := webapi.NewPartController(opts.parts)
	g.POST("/parts", partController.CreatePart)
	g.GET("/parts/:code", partController.GetPart)
	g.PUT("/parts/:code", partController.UpdatePart)
	g.DELETE("/parts/:code", partController.DeletePart)
	g.GET("/parts/:code/name", partController.GetPartName)
	g.GET("/parts/:code/theoretical-density", partController.GetTheoreticalDensity)
	g.GET("/users/:user_id/parts", partController.ListPartsByOwner)
	g.GET("/users/:user_id/part-codes", partController.ListPartCodesByOwner)

	calcController := webapi.NewCalcController(opts.parts)
	g.POST("/calc/measured-density", calcController.MeasuredDensity)
	g.POST("/calc/master-density", calcController.MasterDensity)
	g.POST("/calc/compactness", calcController.CompactnessRatio)
	g.POST("/calc/porosity", calcController.Porosity)
	g.POST("/calc/theoretical-density", calcController.TheoreticalDensity)

	lotController := webapi.NewLotController(opts.orchestrator)
	g.POST("/lots", lotController.ComputeLot)
	g.POST("/serials", lotController.NextSerialBlock)
}
