package database

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestDuplicateKeyForms(t *testing.T) {
	raw := &pgconn.PgError{Code: "23505", ConstraintName: "idx_participants_email"}

	assert.True(t, IsDuplicateKey(raw))
	assert.True(t, IsDuplicateKey(fmt.Errorf("create participant: %w", raw)))
	assert.Equal(t, "email", DuplicateColumn(fmt.Errorf("create participant: %w", raw)))

	// What the Postgres dialector hands back when translation is enabled.
	translated := postgres.Dialector{}.Translate(raw)
	assert.ErrorIs(t, translated, gorm.ErrDuplicatedKey)
	assert.True(t, IsDuplicateKey(translated))
	assert.Empty(t, DuplicateColumn(translated))

	assert.False(t, IsDuplicateKey(&pgconn.PgError{Code: "23503"}))
	assert.Empty(t, DuplicateColumn(&pgconn.PgError{Code: "23503", ConstraintName: "fk_x_y"}))
	assert.False(t, IsDuplicateKey(gorm.ErrRecordNotFound))
}

func TestPostgresKeepsDriverErrors(t *testing.T) {
	for _, driver := range []string{"", "postgres", "postgresql"} {
		assert.False(t, gormConfig(false, translatesErrors(driver)).TranslateError, driver)
	}
	for _, driver := range []string{"mysql", "sqlite"} {
		assert.True(t, gormConfig(false, translatesErrors(driver)).TranslateError, driver)
	}
}
