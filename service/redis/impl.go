package redis

import (
	"fmt"
	"time"

	"github.com/gomodule/redigo/redis"

	"github.com/x-xyz/musicnft/base/ctx"
	"github.com/x-xyz/musicnft/base/log"
	"github.com/x-xyz/musicnft/base/metrics"
	"github.com/x-xyz/musicnft/domain/keys"
)

// delIfEqualScript deletes KEYS[1] when it holds ARGV[1]
var delIfEqualScript = redis.NewScript(1, `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// getDelScript is GETDEL for servers older than 6.2
var getDelScript = redis.NewScript(1, `
local v = redis.call("GET", KEYS[1])
if v then
	redis.call("DEL", KEYS[1])
end
return v`)

type redImpl struct {
	name string
	met  metrics.Service
	pool *redis.Pool
}

// New wraps a connection pool, name is used as the cluster tag of metrics
func New(name string, met metrics.Service, pool *redis.Pool) Service {
	return &redImpl{
		name: name,
		met:  met,
		pool: pool,
	}
}

func (r *redImpl) getConn() (redis.Conn, error) {
	defer r.met.BumpTime("getconn.time", "cluster", r.name).End()
	if r.pool == nil {
		return nil, ErrNoPool
	}

	conn := r.pool.Get()
	if err := conn.Err(); err != nil {
		r.met.BumpSum("getConn.err", 1, "cluster", r.name, "reason", err.Error())
		return nil, err
	}
	return conn, nil
}

// connDo bounds the command by the ctx deadline when there is one
func (r *redImpl) connDo(context ctx.Ctx, commandName string, args ...interface{}) (interface{}, error) {
	if err := context.Err(); err != nil {
		return nil, err
	}
	conn, err := r.getConn()
	if err != nil {
		return nil, err
	}

	var reply interface{}
	if deadline, ok := context.Deadline(); ok {
		reply, err = redis.DoWithTimeout(conn, time.Until(deadline), commandName, args...)
	} else {
		reply, err = conn.Do(commandName, args...)
	}

	// Closing conn explicitly asap improves redigo's performance, the pool
	// handles fewer connections at the same time.
	if err := conn.Close(); err != nil {
		r.met.BumpSum("conn.Close.err", 1, "cluster", r.name)
	}
	return reply, err
}

func (r *redImpl) evalScript(context ctx.Ctx, script *redis.Script, keysAndArgs ...interface{}) (interface{}, error) {
	conn, err := r.getConn()
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	return script.Do(conn, keysAndArgs...)
}

func (r *redImpl) tags(funcName, key string) []string {
	return []string{"func", funcName, "cluster", r.name, "prefix", keys.GetPrefix(key)}
}

func (r *redImpl) Get(context ctx.Ctx, key string) ([]byte, error) {
	tags := r.tags("get", key)
	defer r.met.BumpTime("time", tags...).End()

	val, err := redis.Bytes(r.connDo(context, "GET", key))
	if err != nil {
		if err != ErrNotFound {
			context.WithFields(log.Fields{"err": err, "key": key}).Error("GET redis failed")
		}
		return nil, err
	}
	r.met.BumpHistogram("bytes", float64(len(val)), tags...)
	return val, nil
}

func (r *redImpl) Set(context ctx.Ctx, key string, val []byte, expire time.Duration) error {
	tags := r.tags("set", key)
	defer r.met.BumpTime("time", tags...).End()
	r.met.BumpHistogram("bytes", float64(len(val)), tags...)

	var err error
	if expire == Forever {
		_, err = r.connDo(context, "SET", key, val)
	} else {
		_, err = r.connDo(context, "SET", key, val, "PX", int64(expire/time.Millisecond))
	}
	if err != nil {
		context.WithFields(log.Fields{"err": err, "key": key}).Error("SET redis failed")
	}
	return err
}

func (r *redImpl) SetNX(context ctx.Ctx, key string, val []byte, expire time.Duration) error {
	tags := r.tags("setnx", key)
	defer r.met.BumpTime("time", tags...).End()

	var err error
	if expire == Forever {
		_, err = redis.String(r.connDo(context, "SET", key, val, "NX"))
	} else {
		_, err = redis.String(r.connDo(context, "SET", key, val, "NX", "PX", int64(expire/time.Millisecond)))
	}
	return err
}

func (r *redImpl) GetDel(context ctx.Ctx, key string) ([]byte, error) {
	defer r.met.BumpTime("time", r.tags("getdel", key)...).End()

	val, err := redis.Bytes(r.evalScript(context, getDelScript, key))
	if err != nil && err != ErrNotFound {
		context.WithFields(log.Fields{"err": err, "key": key}).Error("GETDEL redis failed")
	}
	return val, err
}

func (r *redImpl) Del(context ctx.Ctx, ks ...string) (int, error) {
	if len(ks) == 0 {
		return 0, fmt.Errorf("length of keys is 0")
	}
	defer r.met.BumpTime("time", r.tags("del", ks[0])...).End()

	affected, err := redis.Int(r.connDo(context, "DEL", redis.Args{}.AddFlat(ks)...))
	if err != nil {
		context.WithField("err", err).Error("DEL redis failed")
		return 0, err
	}
	return affected, nil
}

func (r *redImpl) DelIfEqual(context ctx.Ctx, key string, val []byte) (bool, error) {
	defer r.met.BumpTime("time", r.tags("delifequal", key)...).End()

	n, err := redis.Int(r.evalScript(context, delIfEqualScript, key, val))
	if err != nil {
		context.WithFields(log.Fields{"err": err, "key": key}).Error("DelIfEqual redis failed")
		return false, err
	}
	return n == 1, nil
}

func (r *redImpl) Publish(context ctx.Ctx, channel string, msg []byte) (int, error) {
	tags := []string{"func", "publish", "cluster", r.name, "channel", channel}
	defer r.met.BumpTime("time", tags...).End()

	receivers, err := redis.Int(r.connDo(context, "PUBLISH", channel, msg))
	if err != nil {
		context.WithFields(log.Fields{"err": err, "channel": channel}).Error("PUBLISH redis failed")
		return 0, err
	}
	return receivers, nil
}

func (r *redImpl) Ping(context ctx.Ctx) error {
	_, err := redis.String(r.connDo(context, "PING"))
	return err
}
