package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a key has no object behind it.
var ErrNotFound = errors.New("object not found")

// Store abstracts where the libretto library lives. Keys are
// slash-separated paths relative to the library root, e.g.
// "mozart/le-nozze-di-figaro/base.libretto.json".
type Store interface {
	Read(ctx context.Context, key string) ([]byte, error)

	// Write replaces the object at key in one step: a failed write must
	// never leave a truncated object behind.
	Write(ctx context.Context, key string, data []byte) error

	Exists(ctx context.Context, key string) bool

	// List returns the keys under prefix that end in suffix, sorted.
	List(ctx context.Context, prefix, suffix string) ([]string, error)
}

// ReadJSON reads the object at key and unmarshals it into v.
func ReadJSON(ctx context.Context, store Store, key string, v any) error {
	data, err := store.Read(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return nil
}

// WriteJSON marshals v with two-space indentation, the format the
// hand-edited overlay files use, and writes it to key.
func WriteJSON(ctx context.Context, store Store, key string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := store.Write(ctx, key, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
