package api

import (
	"time"

	"github.com/csoj/csoj/internal/config"
	"github.com/csoj/csoj/internal/core"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// zapLogger mirrors gin.Logger's access-log line through the structured
// zap logger the rest of the judge uses, grounded on the teacher's
// zap.ReplaceGlobals + zap.S() convention.
func zapLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()
		zap.S().Infow("request",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}

// NewRouter builds the judge's single HTTP engine, grounded on the teacher's
// NewUserRouter/NewAdminRouter: one gin.Engine, CORS and logging middleware,
// flat top-level routes (no version prefix, matching spec.md §6 literally).
func NewRouter(state *core.State, cfg *config.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), zapLogger(), CORSMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/hello/:name", hello)
	r.POST("/internal/exit", internalExit)

	r.POST("/users", postUsers(state))
	r.GET("/users", getUsers(state))

	r.POST("/contests", postContests(state, cfg))
	r.GET("/contests", getContests(state))
	r.GET("/contests/:id", getContestByID(state))
	r.GET("/contests/:id/ranklist", getRanklist(state, cfg))

	r.POST("/jobs", postJobs(state, cfg))
	r.GET("/jobs", getJobs(state))
	r.GET("/jobs/:id", getJobByID(state))
	r.PUT("/jobs/:id", putJob(state, cfg))

	return r
}
