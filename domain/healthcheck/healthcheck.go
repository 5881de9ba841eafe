package healthcheck

import (
	"github.com/x-xyz/musicnft/base/ctx"
)

// HealthCheckUsecase represents the healthCheck's usecases
type HealthCheckUsecase interface {
	Check(context ctx.Ctx) error
}

// HealthCheckRepo is one dependency probed by the health check
type HealthCheckRepo interface {
	Name() string
	Ping(context ctx.Ctx) error
}
