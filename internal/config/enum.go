package config

import (
	"fmt"
	"sort"
	"strings"
)

// enum maps case-insensitive names to typed values, falling back to a default.
type enum[T comparable] struct {
	values   map[string]T
	fallback T
}

func newEnum[T comparable](values map[string]T, fallback T) enum[T] {
	return enum[T]{values: values, fallback: fallback}
}

func (e enum[T]) normalize(raw string) T {
	if v, ok := e.values[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return v
	}
	return e.fallback
}

func (e enum[T]) parse(raw string) (T, error) {
	if v, ok := e.values[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid value %q, valid options: %v", raw, e.keys())
}

func (e enum[T]) keys() []string {
	keys := make([]string, 0, len(e.values))
	for k := range e.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
