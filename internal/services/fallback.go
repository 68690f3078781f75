package services

import (
	"context"
	"errors"
)

// errMiss means a source had nothing to offer. It moves the chain along
// without being reported as a failure.
var errMiss = errors.New("no data")

type source[T any] struct {
	name  string
	fetch func(ctx context.Context) (T, error)
}

func from[T any](name string, fetch func(ctx context.Context) (T, error)) source[T] {
	return source[T]{name: name, fetch: fetch}
}

// firstOK tries each source in order and returns the first value produced,
// with the name of the source that produced it. When every source misses the
// error is the last real failure, or errMiss if there was none.
func firstOK[T any](ctx context.Context, sources ...source[T]) (T, string, error) {
	var zero T
	var lastErr error
	for _, s := range sources {
		v, err := s.fetch(ctx)
		if err == nil {
			return v, s.name, nil
		}
		if !errors.Is(err, errMiss) {
			lastErr = err
		}
	}
	if lastErr == nil {
		lastErr = errMiss
	}
	return zero, "", lastErr
}
