package cache

import (
	"context"
	"strings"
	"time"

	"github.com/matzehuels/cptree/pkg/observability"
)

type instrumented struct {
	Cache
}

// Instrument reports every Get and Set of c to [observability.Cache]. Hooks
// receive the key's kind ("tree", "diff", ...) rather than the full key.
func Instrument(c Cache) Cache {
	return instrumented{c}
}

func (c instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := c.Cache.Get(ctx, key)
	if err == nil {
		if ok {
			observability.Cache().OnCacheHit(ctx, keyKind(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, keyKind(key))
		}
	}
	return data, ok, err
}

func (c instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := c.Cache.Set(ctx, key, data, ttl)
	if err == nil {
		observability.Cache().OnCacheSet(ctx, keyKind(key), len(data))
	}
	return err
}

// keyKind returns the last prefix segment before the hash, so scoped keys
// such as "cptree:diff:ab12" report "diff".
func keyKind(key string) string {
	i := strings.LastIndexByte(key, ':')
	if i < 0 {
		return key
	}
	head := key[:i]
	if j := strings.LastIndexByte(head, ':'); j >= 0 {
		return head[j+1:]
	}
	return head
}
