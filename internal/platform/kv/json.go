package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// GetJSON decodes the value under key into v. A missing or blank value
// reports found=false and leaves v untouched.
func GetJSON(ctx context.Context, s Store, key string, v any) (bool, error) {
	payload, found, err := s.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if !found || strings.TrimSpace(payload) == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func SetJSON(ctx context.Context, s Store, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, string(payload))
}
