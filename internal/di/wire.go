//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"github.com/authhybrid/backend/internal/app"
)

// InitializeApp assembles the full application graph: config, the
// observability runtime, the database and Redis clients, repositories,
// services, handlers, and the HTTP server.
func InitializeApp() (*app.App, error) {
	wire.Build(
		ConfigSet,
		ObservabilitySet,
		RuntimeInfraSet,
		RepositorySet,
		SecuritySet,
		ServiceSet,
		HTTPSet,
		AppSet,
	)
	return nil, nil
}
