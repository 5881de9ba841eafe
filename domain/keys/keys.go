package keys

import (
	"fmt"
	"strings"
)

const (
	// PfxHealthCheck is used for prefixing health check redis key
	PfxHealthCheck = "healthcheck"
	// PfxNonce is used for prefixing sign-in nonce redis key
	PfxNonce = "nonce"
	// PfxTokenLock is used for prefixing per token lock keys
	PfxTokenLock = "tokenLock"
	// PfxCounter is used for prefixing sequence counters
	PfxCounter = "counter"
	// PfxMetadata is used for prefixing cached web resources
	PfxMetadata = "metadata"

	// ChannelMarketEvents is the redis pub/sub channel market events are published on
	ChannelMarketEvents = "musicnft:events"
)

// CustomKey is used to join the customized key by componets with specified delimiter
func CustomKey(delimiter string, components ...string) string {
	return strings.Join(components, delimiter)
}

// RedisKey is used to join the redis key by componets
func RedisKey(components ...string) string {
	return CustomKey(":", components...)
}

// TokenLockKey is the lock key serializing mutations of one token
func TokenLockKey(id uint64) string {
	return RedisKey(PfxTokenLock, fmt.Sprintf("%d", id))
}

// GetPrefix extracts the prefix of a key, used as metrics tag
func GetPrefix(key string) string {
	s := strings.Split(key, ":")
	if len(s) > 1 {
		return s[0]
	}
	return ""
}
