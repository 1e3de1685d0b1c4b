// Package api is an in-process deployment agent speaking the agent's HTTP
// API. Commands and the agent client are tested against it.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/balaji-balu/lizzy-client/internal/api/handlers"
	"github.com/balaji-balu/lizzy-client/internal/api/middleware"
	"github.com/balaji-balu/lizzy-client/internal/api/store"
)

// RouterConfig wires the router to its collaborators.
type RouterConfig struct {
	Store    *store.Store
	Recorder *middleware.Recorder
	Token    string
	Version  func() string
	Output   func() string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cfg.Recorder.Handler())
	r.Use(middleware.Envelope(cfg.Version, cfg.Output))
	r.Use(middleware.BearerAuth(cfg.Token))
	r.Use(middleware.Failures(cfg.Store))

	st := cfg.Store
	api := r.Group("/api")
	{
		api.POST("/stacks", func(c *gin.Context) { handlers.CreateStack(c, st) })
		api.GET("/stacks", func(c *gin.Context) { handlers.ListStacks(c, st) })
		api.GET("/stacks/:id", func(c *gin.Context) { handlers.GetStack(c, st) })
		api.PATCH("/stacks/:id", func(c *gin.Context) { handlers.UpdateStack(c, st) })
		api.DELETE("/stacks/:id", func(c *gin.Context) { handlers.DeleteStack(c, st) })
		api.GET("/stacks/:id/traffic", func(c *gin.Context) { handlers.GetTraffic(c, st) })
	}

	return r
}
