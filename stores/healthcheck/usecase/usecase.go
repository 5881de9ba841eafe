package usecase

import (
	"strings"

	"golang.org/x/xerrors"

	"github.com/x-xyz/musicnft/base/ctx"
	hcdomain "github.com/x-xyz/musicnft/domain/healthcheck"
)

type impl struct {
	repos []hcdomain.HealthCheckRepo
}

// New checks every repo on each call. An empty list is always healthy, which is
// the in-memory deployment.
func New(repos ...hcdomain.HealthCheckRepo) hcdomain.HealthCheckUsecase {
	return &impl{
		repos: repos,
	}
}

func (im *impl) Check(context ctx.Ctx) error {
	failed := []string{}
	for _, r := range im.repos {
		if err := r.Ping(context); err != nil {
			failed = append(failed, r.Name())
		}
	}
	if len(failed) > 0 {
		return xerrors.Errorf("unhealthy: %s", strings.Join(failed, ","))
	}
	return nil
}
