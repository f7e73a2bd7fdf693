package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/advocates/api/handlers"
	"github.com/meghashyamc/advocates/db/advocatedb"
	"github.com/meghashyamc/advocates/logger"
	"github.com/meghashyamc/advocates/metrics"
	"github.com/meghashyamc/advocates/validation"
)

func setupRoutes(router *gin.Engine, logger logger.Logger, advocateDB advocatedb.DB, validator *validation.Validator, searchTimeout time.Duration) {
	router.GET("/health", health())
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	handlers.SetupAdvocates(router, logger, advocateDB, validator, searchTimeout)
}

func health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	}
}

func newRouter(logger logger.Logger) *gin.Engine {
	router := gin.New()
	router.UseRawPath = true
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware(logger))
	router.Use(metrics.Middleware())
	router.Use(_CORSMiddleware())
	router.Use(gin.Recovery())

	return router
}
