package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUndefinedTable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"undefined table", &pgconn.PgError{Code: "42P01"}, true},
		{"wrapped", fmt.Errorf("find chunks: %w", &pgconn.PgError{Code: "42P01"}), true},
		{"undefined type", &pgconn.PgError{Code: "42704"}, true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUndefinedTable(tt.err))
		})
	}
}
