package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/openmined/dsmanager/internal/server/handlers/dataset"
	"github.com/openmined/dsmanager/internal/server/middlewares"
	"github.com/openmined/dsmanager/internal/version"
)

func SetupRoutes(cfg *HTTPConfig, svc *Services) (http.Handler, error) {
	r := gin.New()
	r.MaxMultipartMemory = 32 << 20 // 32 MiB

	dsH := dataset.New(svc.Dataset, svc.Catalog)

	r.Use(middlewares.Logger())
	r.Use(gin.Recovery())
	r.Use(middlewares.GZIP())
	r.Use(middlewares.CORS())
	r.Use(middlewares.Secure(cfg.TLS()))

	r.GET("/healthz", HealthHandler)
	r.GET("/version", VersionHandler)

	if cfg.StaticDir == "" {
		r.GET("/", IndexHandler)
	}

	apiGroup := r.Group("/api")
	apiGroup.Use(middlewares.TokenAuth(cfg.APIToken))
	{
		apiGroup.GET("/folders", dsH.ListFolders)
		apiGroup.GET("/images", dsH.ListImages)
		apiGroup.GET("/image/:type/:filename", dsH.GetImage)
		apiGroup.GET("/caption/:filename", dsH.GetCaption)
		apiGroup.POST("/compare-datasets", dsH.CompareDatasets)
	}

	mutating := apiGroup.Group("")
	if cfg.RateLimit != "" {
		limit, err := middlewares.RateLimiter(cfg.RateLimit)
		if err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
		mutating.Use(limit)
	}
	{
		mutating.POST("/create-dataset", dsH.CreateDataset)
		mutating.POST("/caption/:filename", dsH.SetCaption)
		mutating.DELETE("/delete/:filename", dsH.Delete)
		mutating.POST("/transfer/:filename", dsH.Transfer)
		mutating.POST("/reshuffle", dsH.Reshuffle)
		mutating.POST("/compress", dsH.Compress)
		mutating.POST("/export", dsH.Export)
		mutating.POST("/save/:filename", dsH.SaveImage)
	}

	// the ui is served from whatever the api routes leave unmatched
	var ui http.Handler
	if cfg.StaticDir != "" {
		ui = http.FileServer(gin.Dir(cfg.StaticDir, false))
	}

	r.NoRoute(func(c *gin.Context) {
		if ui != nil && !strings.HasPrefix(c.Request.URL.Path, "/api/") &&
			(c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead) {
			ui.ServeHTTP(c.Writer, c.Request)
			return
		}
		c.JSON(http.StatusNotFound, gin.H{
			"error": "not found",
		})
	})

	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"error": "method not allowed",
		})
	})

	return r.Handler(), nil
}

func IndexHandler(ctx *gin.Context) {
	ctx.String(http.StatusOK, version.DetailedWithApp())
}

func HealthHandler(ctx *gin.Context) {
	ctx.PureJSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

func VersionHandler(ctx *gin.Context) {
	ctx.PureJSON(http.StatusOK, gin.H{
		"version":  version.Version,
		"revision": version.Revision,
		"build":    version.BuildDate,
	})
}

func init() {
	gin.SetMode(gin.ReleaseMode)
}
