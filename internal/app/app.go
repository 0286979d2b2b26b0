package app

import (
	"database/sql"
	"os"

	"github.com/AkshiGarg/nagarro-leave-manager/internal/ledger"
	"github.com/AkshiGarg/nagarro-leave-manager/internal/messaging/kafka"
	"github.com/AkshiGarg/nagarro-leave-manager/internal/shared/connection"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Infra carries the shared infrastructure handles the registry wires
// modules with.
type Infra struct {
	GormDB *gorm.DB
	DB     *sql.DB
	Redis  *redis.Client
}

// ConnectInfra dials postgres and redis and runs schema migration.
func ConnectInfra() (*Infra, error) {
	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return nil, err
	}
	zap.L().Info("database connection established")

	if err := gormDB.AutoMigrate(
		&ledger.LeaveRecord{},
		&ledger.LeaveRequest{},
		&kafka.OutboxEvent{},
	); err != nil {
		return nil, err
	}

	db, err := gormDB.DB()
	if err != nil {
		return nil, err
	}

	redisClient, err := connection.ConnectRedisWithRetry(os.Getenv("REDIS_ADDR"), 5)
	if err != nil {
		return nil, err
	}
	zap.L().Info("redis connection established")

	return &Infra{GormDB: gormDB, DB: db, Redis: redisClient}, nil
}
