package usecase

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/x-xyz/musicnft/base/ctx"
)

type fakeRepo struct {
	name string
	err  error
}

func (r *fakeRepo) Name() string {
	return r.name
}

func (r *fakeRepo) Ping(ctx.Ctx) error {
	return r.err
}

func TestCheck(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()

	req.NoError(New().Check(c))
	req.NoError(New(&fakeRepo{name: "mongo"}, &fakeRepo{name: "redis"}).Check(c))

	err := New(&fakeRepo{name: "mongo", err: errors.New("down")}, &fakeRepo{name: "redis"}).Check(c)
	req.EqualError(err, "unhealthy: mongo")
}
