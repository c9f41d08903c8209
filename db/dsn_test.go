// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"

	"github.com/danielhkuo/goodreads/cliparse"
)

func TestSQLiteDSN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"file:app.db", "file:app.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"},
		{"file:app.db?mode=rwc", "file:app.db?mode=rwc&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"},
		{"file:app.db?_pragma=foreign_keys(0)", "file:app.db?_pragma=foreign_keys(0)&_pragma=busy_timeout(5000)"},
		{"file:app.db?_pragma=busy_timeout(100)", "file:app.db?_pragma=busy_timeout(100)&_pragma=foreign_keys(1)"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, sqliteDSN(tt.in))
		})
	}
}

func TestDriverAndDialect(t *testing.T) {
	driver, err := driverName(cliparse.DatabaseSQLite)
	assert.NoError(t, err)
	assert.Equal(t, "sqlite", driver)

	driver, err = driverName(cliparse.DatabasePostgres)
	assert.NoError(t, err)
	assert.Equal(t, "postgres", driver)

	dialect, err := gooseDialect(cliparse.DatabasePostgres)
	assert.NoError(t, err)
	assert.Equal(t, goose.DialectPostgres, dialect)

	_, err = driverName("mysql")
	assert.Error(t, err)
	_, err = gooseDialect("mysql")
	assert.Error(t, err)
}

func TestOpenRejectsUnknownType(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "whatever")
	assert.ErrorContains(t, err, `unsupported database type "oracle"`)
}
