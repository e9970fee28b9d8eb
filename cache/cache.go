package cache

import (
	"context"
	"errors"
)

var ErrKeyNotFound = errors.New("key not found")

type Cache[S any] interface {
	Set(ctx context.Context, key string, val S) error
	Get(ctx context.Context, key string) (S, bool, error)
	Del(ctx context.Context, key string) error
}
