package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/noah-isme/erp-api/internal/middleware"
	"github.com/noah-isme/erp-api/internal/models"
	"github.com/noah-isme/erp-api/pkg/config"
)

func registerRoutes(r *gin.Engine, cfg *config.Config, a *app) {
	r.GET("/health", a.metrics.Health)
	r.GET("/ready", a.metrics.Ready)
	r.GET("/metrics", a.metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(a.tokens))

	approvers := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RoleManager)
	for _, h := range a.documents {
		h.Register(api, approvers)
	}

	policies := api.Group("/approval-policies")
	policies.GET("", a.policies.List)
	policies.PUT("/:feature", middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin), a.policies.Update)

	notifications := api.Group("/notifications")
	notifications.GET("", a.notifications.List)
	notifications.PUT("/:id/read", a.notifications.MarkRead)
}
