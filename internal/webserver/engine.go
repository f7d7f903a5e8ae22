package webserver

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mdouchement/clouddrive/internal/database"
	"github.com/mdouchement/clouddrive/internal/storage"
	middlewarepkg "github.com/mdouchement/clouddrive/internal/webserver/middleware"
	"github.com/mdouchement/clouddrive/internal/webserver/service"
	"github.com/mdouchement/clouddrive/internal/webserver/static"
	"github.com/mdouchement/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// A Controller is an Iversion Of Control pattern used to init the server package.
type Controller struct {
	Version  string
	Logger   logger.Logger
	Database database.Client
	Storage  storage.Backend
}

// EchoEngine instantiates the wep server.
func EchoEngine(ctrl Controller) *echo.Echo {
	log := ctrl.Logger.WithPrefix("[webserver]")

	engine := echo.New()
	engine.HideBanner = true
	engine.HidePort = true
	engine.Use(middleware.Recover())
	engine.Use(middlewarepkg.Metrics())
	engine.Use(middlewarepkg.Logger(log))
	engine.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		// Byte ranges are computed on the identity encoding.
		// The metrics handler compresses by itself.
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Path(), "/download/") || c.Path() == "/metrics"
		},
	}))

	engine.HTTPErrorHandler = middlewarepkg.NewHTTPErrorHandler(log)

	//
	//
	//

	router := engine.Group("")

	// Generic handlers
	//
	router.GET("/", func(c echo.Context) error {
		return c.HTMLBlob(http.StatusOK, static.Index)
	})
	router.GET("/version", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"version": ctrl.Version,
		})
	})
	router.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Catalog
	//
	file := file{
		logger:   log,
		db:       ctrl.Database,
		storage:  ctrl.Storage,
		uploader: service.NewFileUploader(ctrl.Database, ctrl.Storage),
	}
	router.GET("/files", file.List)
	router.POST("/upload", file.Upload)
	router.GET("/download/:id", file.Download)
	router.DELETE("/delete/:id", file.Delete)

	// Chunked upload
	//
	upload := upload{
		writer: service.NewChunkWriter(ctrl.Storage),
		merger: service.NewMerger(ctrl.Logger, ctrl.Database, ctrl.Storage),
	}
	router.POST("/upload-chunk", upload.Chunk)
	router.POST("/upload-complete", upload.Complete)

	return engine
}

// PrintRoutes prints the Echo engin exposed routes.
func PrintRoutes(e *echo.Echo) {
	ignored := map[string]bool{
		"":   true,
		".":  true,
		"/*": true,
	}

	routes := e.Routes()
	sort.Slice(routes, func(i int, j int) bool {
		return routes[i].Path < routes[j].Path
	})

	fmt.Println("Routes:")
	for _, route := range routes {
		if ignored[route.Path] {
			continue
		}
		fmt.Printf("%6s %s\n", route.Method, route.Path)
	}
}
