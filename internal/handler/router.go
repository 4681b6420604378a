package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type RouterDeps struct {
	Auth    *AuthHandler
	Metrics http.Handler
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.POST("/auth/signup", deps.Auth.Signup)
	api.POST("/auth/verify-otp", deps.Auth.VerifyOTP)
	api.POST("/auth/signin", deps.Auth.Signin)
	api.POST("/auth/logout", deps.Auth.Logout)
	api.GET("/auth/me", deps.Auth.Me)

	api.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if deps.Metrics != nil {
		api.GET("/metrics", gin.WrapH(deps.Metrics))
	}
}
