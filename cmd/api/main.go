package main

import (
	"net/http"
	"os"
	"time"

	"github.com/AkshiGarg/nagarro-leave-manager/internal/app"
	"github.com/AkshiGarg/nagarro-leave-manager/internal/bootstrap"
	"github.com/AkshiGarg/nagarro-leave-manager/internal/middleware"
	"github.com/AkshiGarg/nagarro-leave-manager/internal/shared/apperror"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	_ = godotenv.Load()
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	apperror.Init()

	infra, err := app.ConnectInfra()
	if err != nil {
		logger.Fatal("connect infrastructure failed", zap.Error(err))
	}

	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(logger),
		middleware.RateLimitByIP(rate.Limit(20), 40),
	)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	app.RegisterModules(r, infra)

	auditLogger := bootstrap.NewStdoutAuditLogger()
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	bootstrap.StartHTTPServer(
		r,
		bootstrap.ServerConfig{
			Port:         port,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		auditLogger,
	)
}
