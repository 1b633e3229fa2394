package main

import (
	"bytes"
	"database/sql"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMigrate(t *testing.T) {
	applied := func(*sql.DB) error { return nil }

	t.Run("logs schema version", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))
		err := migrate(logger, nil, applied, func(*sql.DB) (int64, error) { return 3, nil })
		require.NoError(t, err)
		require.Contains(t, buf.String(), `"msg":"migrations applied"`)
		require.Contains(t, buf.String(), `"version":3`)
	})

	t.Run("version failure is a warning", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))
		err := migrate(logger, nil, applied, func(*sql.DB) (int64, error) { return 0, errors.New("relation goose_db_version does not exist") })
		require.NoError(t, err)
		require.Contains(t, buf.String(), `"level":"WARN"`)
		require.Contains(t, buf.String(), "goose_db_version")
		require.NotContains(t, buf.String(), "migrations applied")
	})

	t.Run("apply failure stops startup", func(t *testing.T) {
		logger := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
		boom := errors.New("dirty schema")
		err := migrate(logger, nil, func(*sql.DB) error { return boom }, nil)
		require.ErrorIs(t, err, boom)
	})
}
