package domain

import "github.com/x-xyz/musicnft/base/ctx"

// TxRunner runs fn as one atomic unit. Every write made through the ctx handed
// to fn is committed together or not at all. A nested call joins the
// surrounding transaction.
type TxRunner interface {
	RunWithTransaction(c ctx.Ctx, fn func(ctx.Ctx) error) error
}

// Locker serializes mutations on a key. Lock returns ErrLockTimeout when the
// key can't be acquired within the configured bound.
type Locker interface {
	Lock(c ctx.Ctx, key string) (unlock func(), err error)
}
