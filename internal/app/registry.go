package app

import (
	"os"
	"strconv"
	"time"

	"github.com/AkshiGarg/nagarro-leave-manager/internal/classifier"
	"github.com/AkshiGarg/nagarro-leave-manager/internal/conversation"
	"github.com/AkshiGarg/nagarro-leave-manager/internal/dates"
	"github.com/AkshiGarg/nagarro-leave-manager/internal/holiday"
	"github.com/AkshiGarg/nagarro-leave-manager/internal/ledger"
	"github.com/AkshiGarg/nagarro-leave-manager/internal/messaging/kafka"
	"github.com/AkshiGarg/nagarro-leave-manager/internal/middleware"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RegisterModules wires every feature and mounts the API.
func RegisterModules(router *gin.Engine, infra *Infra) {
	// --- Repositories ---
	ledgerRepo := ledger.NewRepository(infra.DB)
	outboxRepo := kafka.NewOutboxRepository(infra.DB)
	holidayRepo := holiday.NewFileRepository(os.Getenv("HOLIDAYS_FILE"))

	// --- Services ---
	ledgerService := ledger.NewServiceWithOutbox(infra.DB, ledgerRepo, outboxRepo)
	holidayService := holiday.NewService(holidayRepo, infra.Redis)
	classifierClient := classifier.NewHTTPClassifier(classifier.LoadConfig())
	resolver := dates.NewResolver(dates.NewRecognizer())
	engine := conversation.NewService(classifierClient, resolver, ledgerService, holidayService)

	// --- Handlers ---
	store := conversation.NewRedisStore(infra.Redis)
	turnHandler := conversation.NewHandler(engine, store)

	// --- Routes ---
	api := router.Group("/api/v1")
	api.Use(
		middleware.ChannelAuth(),
		middleware.RateLimitByChannel(rate.Limit(turnRatePerSecond()), 10),
		middleware.Idempotency(infra.Redis, 24*time.Hour),
	)
	conversation.RegisterRoutes(api, turnHandler)
}

func turnRatePerSecond() float64 {
	if raw := os.Getenv("TURN_RATE_PER_SECOND"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v > 0 {
			return v
		}
	}
	return 5
}
