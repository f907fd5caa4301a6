// Package kv is the persistence boundary: serialized values under fixed keys.
package kv

import (
	"context"
	"fmt"
	"regexp"
)

type Store interface {
	// Get reports found=false when nothing was ever stored under key.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

var validKey = regexp.MustCompile(`^[a-z0-9_]+$`)

func checkKey(key string) error {
	if !validKey.MatchString(key) {
		return fmt.Errorf("invalid key %q", key)
	}
	return nil
}
