package app

import (
	"log/slog"
	"net/http"

	"github.com/authhybrid/backend/internal/config"
	"github.com/authhybrid/backend/internal/observability"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// App bundles everything the entrypoint needs to run and later tear
// down the process.
type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	Server        *http.Server
	Observability *observability.Runtime
	DB            *gorm.DB
	Redis         redis.UniversalClient
}

func New(
	cfg *config.Config,
	logger *slog.Logger,
	server *http.Server,
	runtime *observability.Runtime,
	db *gorm.DB,
	redisClient redis.UniversalClient,
) *App {
	return &App{
		Config:        cfg,
		Logger:        logger,
		Server:        server,
		Observability: runtime,
		DB:            db,
		Redis:         redisClient,
	}
}
