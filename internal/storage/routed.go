package storage

import (
	"context"
	"errors"
)

// RoutedStore sends the listed keys to secrets and everything else to data.
type RoutedStore struct {
	data    Store
	secrets Store
	keys    map[string]struct{}
}

func NewRoutedStore(data, secrets Store, secretKeys ...string) *RoutedStore {
	keys := make(map[string]struct{}, len(secretKeys))
	for _, k := range secretKeys {
		keys[k] = struct{}{}
	}
	return &RoutedStore{data: data, secrets: secrets, keys: keys}
}

func (s *RoutedStore) route(key string) Store {
	if _, ok := s.keys[key]; ok {
		return s.secrets
	}
	return s.data
}

func (s *RoutedStore) Get(ctx context.Context, key string) (string, bool, error) {
	return s.route(key).Get(ctx, key)
}

func (s *RoutedStore) Set(ctx context.Context, key, value string) error {
	return s.route(key).Set(ctx, key, value)
}

func (s *RoutedStore) Delete(ctx context.Context, key string) error {
	return s.route(key).Delete(ctx, key)
}

func (s *RoutedStore) Close() error {
	return errors.Join(s.data.Close(), s.secrets.Close())
}
