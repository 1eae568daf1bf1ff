package storage

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-dictadmin/components/dictionary"
)

var fixedNow = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

func newMockRepository(t *testing.T) (*DictionaryRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewDictionaryRepository(sqlx.NewDb(db, "mysql"))
	repo.now = func() time.Time { return fixedNow }
	return repo, mock
}

func dictionaryColumns() []string {
	return []string{"id", "type", "label", "value", "sort", "description", "created_at", "updated_at"}
}

func TestDictionaryRepository_List(t *testing.T) {
	tests := []struct {
		name      string
		query     dictionary.ListQuery
		setupMock func(mock sqlmock.Sqlmock)
		wantLen   int
		wantTotal int
		wantErr   bool
	}{
		{
			name:  "unfiltered page",
			query: dictionary.ListQuery{Page: 2, PageSize: 2},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM dictionaries")).
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
				mock.ExpectQuery(regexp.QuoteMeta("FROM dictionaries ORDER BY type, sort, id LIMIT ? OFFSET ?")).
					WithArgs(2, 2).
					WillReturnRows(sqlmock.NewRows(dictionaryColumns()).
						AddRow(3, "status", "Active", "active", 1, "", fixedNow, fixedNow))
			},
			wantLen:   1,
			wantTotal: 3,
		},
		{
			name:  "filters escape like wildcards",
			query: dictionary.ListQuery{Page: 1, PageSize: 10, Type: "gen_der", Label: "50%"},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM dictionaries WHERE type LIKE ? ESCAPE '!' AND label LIKE ? ESCAPE '!'")).
					WithArgs("%gen!_der%", "%50!%%").
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
				mock.ExpectQuery(regexp.QuoteMeta("ORDER BY type, sort, id LIMIT ? OFFSET ?")).
					WithArgs("%gen!_der%", "%50!%%", 10, 0).
					WillReturnRows(sqlmock.NewRows(dictionaryColumns()))
			},
			wantLen: 0,
		},
		{
			name:  "count failure",
			query: dictionary.ListQuery{Page: 1, PageSize: 10},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM dictionaries")).
					WillReturnError(errors.New("connection refused"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepository(t)
			tt.setupMock(mock)

			got, err := repo.List(context.Background(), tt.query)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got.Dictionaries, tt.wantLen)
			assert.NotNil(t, got.Dictionaries)
			assert.Equal(t, tt.wantTotal, got.Total)
			if tt.wantLen > 0 {
				assert.Equal(t, "2024-01-02T03:04:05Z", got.Dictionaries[0].CreatedAt)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDictionaryRepository_Create(t *testing.T) {
	draft := dictionary.Draft{Type: "gender", Label: "Male", Value: "m", Sort: 1}
	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		wantErr   error
	}{
		{
			name: "inserts",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM dictionaries WHERE type = ? AND value = ? AND id <> ?")).
					WithArgs("gender", "m", 0).
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
				mock.ExpectExec(regexp.QuoteMeta("INSERT INTO dictionaries")).
					WithArgs("gender", "Male", "m", 1, "", fixedNow, fixedNow).
					WillReturnResult(sqlmock.NewResult(5, 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "duplicate pair",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM dictionaries WHERE type = ?")).
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
				mock.ExpectRollback()
			},
			wantErr: dictionary.ErrDuplicateValue,
		},
		{
			name: "unique violation from concurrent writer",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM dictionaries WHERE type = ?")).
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
				mock.ExpectExec(regexp.QuoteMeta("INSERT INTO dictionaries")).
					WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
				mock.ExpectRollback()
			},
			wantErr: dictionary.ErrDuplicateValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepository(t)
			tt.setupMock(mock)

			item, err := repo.Create(context.Background(), draft)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, int64(5), item.ID)
				assert.Equal(t, "2024-01-02T03:04:05Z", item.UpdatedAt)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDictionaryRepository_UpdateNotFound(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM dictionaries WHERE id = ?")).
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows(dictionaryColumns()))
	mock.ExpectRollback()

	_, err := repo.Update(context.Background(), dictionary.Draft{ID: 9, Type: "gender", Label: "x", Value: "x"})
	assert.ErrorIs(t, err, dictionary.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDictionaryRepository_Update(t *testing.T) {
	repo, mock := newMockRepository(t)
	created := fixedNow.Add(-time.Hour)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM dictionaries WHERE id = ?")).
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows(dictionaryColumns()).
			AddRow(4, "gender", "Male", "m", 1, "", created, created))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM dictionaries WHERE type = ?")).
		WithArgs("gender", "male", 4).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE dictionaries SET")).
		WithArgs("gender", "Man", "male", 2, "renamed", fixedNow, 4).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	item, err := repo.Update(context.Background(), dictionary.Draft{ID: 4, Type: "gender", Label: "Man", Value: "male", Sort: 2, Description: "renamed"})
	require.NoError(t, err)
	assert.Equal(t, "Man", item.Label)
	assert.Equal(t, dictionary.FormatTimestamp(created), item.CreatedAt)
	assert.Equal(t, "2024-01-02T03:04:05Z", item.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDictionaryRepository_Delete(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{name: "removes", affected: 1},
		{name: "missing", affected: 0, wantErr: dictionary.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepository(t)
			mock.ExpectExec(regexp.QuoteMeta("DELETE FROM dictionaries WHERE id = ?")).
				WithArgs(3).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			err := repo.Delete(context.Background(), 3)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	db, err := Open(Config{Driver: DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, Migrate(ctx, db))
	require.NoError(t, Migrate(ctx, db), "migrate must be idempotent")

	repo := NewDictionaryRepository(db)
	male, err := repo.Create(ctx, dictionary.Draft{Type: "gender", Label: "Male", Value: "m", Sort: 2})
	require.NoError(t, err)
	_, err = repo.Create(ctx, dictionary.Draft{Type: "gender", Label: "Female", Value: "f", Sort: 1})
	require.NoError(t, err)
	_, err = repo.Create(ctx, dictionary.Draft{Type: "status", Label: "Active", Value: "active"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, dictionary.Draft{Type: "gender", Label: "Man", Value: "m"})
	assert.ErrorIs(t, err, dictionary.ErrDuplicateValue)

	page, err := repo.List(ctx, dictionary.ListQuery{Page: 1, PageSize: 10, Type: "gend"})
	require.NoError(t, err)
	require.Equal(t, 2, page.Total)
	assert.Equal(t, "Female", page.Dictionaries[0].Label)
	assert.Equal(t, "Male", page.Dictionaries[1].Label)

	_, err = repo.Update(ctx, dictionary.Draft{ID: male.ID, Type: "gender", Label: "Male", Value: "f"})
	assert.ErrorIs(t, err, dictionary.ErrDuplicateValue)

	require.NoError(t, repo.Delete(ctx, male.ID))
	assert.ErrorIs(t, repo.Delete(ctx, male.ID), dictionary.ErrNotFound)

	all, err := repo.List(ctx, dictionary.ListQuery{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, all.Total)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "postgres"})
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}

func TestMySQLDSN(t *testing.T) {
	dsn := mysqlDSN(Config{Host: "db", Port: 3306, Name: "dicts", Username: "admin", Password: "pw"})
	assert.True(t, strings.HasPrefix(dsn, "admin:pw@tcp(db:3306)/dicts?"), dsn)
	assert.Contains(t, dsn, "parseTime=true")
}
