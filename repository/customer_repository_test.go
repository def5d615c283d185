package repository_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/jacquesmit/myriad-green/repository"
)

func TestCustomerUpsert_EmptyEmailIsNoop(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormCustomerRepository(gormDB)

	id, err := repo.Upsert(context.Background(), "   ", "Jane", "")
	assert.NoError(t, err)
	assert.Equal(t, "", id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerUpsert_CreatesWhenAbsent(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormCustomerRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "customers"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "customers"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	id, err := repo.Upsert(context.Background(), "  Jane@Example.com ", "Jane Doe", "+27 82 000 0000")
	assert.NoError(t, err)
	assert.Equal(t, "jane@example.com", id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerUpsert_UpdatesWhenPresent(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormCustomerRepository(gormDB)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "customers"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at", "updated_at"}).
			AddRow("jane@example.com", "Jane", now, now))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "customers" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	id, err := repo.Upsert(context.Background(), "jane@example.com", "Jane Doe", "")
	assert.NoError(t, err)
	assert.Equal(t, "jane@example.com", id)
	assert.NoError(t, mock.ExpectationsWereMet())
}
