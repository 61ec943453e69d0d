package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformed is returned by Load when the stored bytes cannot be decoded.
var ErrMalformed = errors.New("malformed value")

// Load decodes the JSON value stored under collection/key into dst.
// A missing key leaves dst untouched and returns nil, so callers can
// pre-populate dst with defaults.
func Load(ctx context.Context, s Store, collection, key string, dst any) error {
	raw, err := s.Get(ctx, collection, key)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %s/%s: %v", ErrMalformed, collection, key, err)
	}
	return nil
}

// Save encodes v as JSON and stores it under collection/key.
func Save(ctx context.Context, s Store, collection, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s/%s: %w", collection, key, err)
	}
	return s.Set(ctx, collection, key, raw)
}
