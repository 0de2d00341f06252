package store

import (
	"context"
	"database/sql"
	"errors"
)

// GetConfig returns the raw stored value for key, with ok=false if the
// key has never been set. It applies no defaulting or normalization;
// see package config for that layer.
func (s *Store) GetConfig(ctx context.Context, key string) (string, bool, error) {
	var m configModel
	err := s.db.NewSelect().Model(&m).Where("key = ?", key).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return m.Value, true, nil
}

// SetConfig persists value under key, overwriting any prior value.
func (s *Store) SetConfig(ctx context.Context, key, value string) error {
	_, err := s.db.NewInsert().
		Model(&configModel{Key: key, Value: value}).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Exec(ctx)
	return err
}
