package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestClasificacionErroresPostgres(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	fk := &pgconn.PgError{Code: "23503"}
	undefined := fmt.Errorf("select: %w", &pgconn.PgError{Code: "42P01"})

	assert.True(t, isUniqueViolation(unique))
	assert.False(t, isUniqueViolation(fk))
	assert.False(t, isUniqueViolation(nil))
	assert.True(t, isUniqueViolation(errors.New("ERROR: duplicate key (SQLSTATE 23505)")))

	assert.True(t, isForeignKeyViolation(fk))
	assert.True(t, IsUndefinedTable(undefined))
	assert.False(t, isCheckViolation(unique))
}

func TestPaginate(t *testing.T) {
	l, o := paginate(0, -3)
	assert.Equal(t, 20, l)
	assert.Equal(t, 0, o)

	l, _ = paginate(1000, 0)
	assert.Equal(t, 200, l)
}

func TestNullable(t *testing.T) {
	assert.Nil(t, nullable(""))
	assert.Equal(t, "x", deref(nullable("x")))
	assert.Equal(t, "", deref(nil))
}
