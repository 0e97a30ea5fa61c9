package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/cloudforge/invoice-service/internal/domain"
)

func TestEventRepo_AppendByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewEventRepo(db)

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO user_events").
			WithArgs("ada@x.com", "LOGIN_ATTEMPT", "cli", "127.0.0.1").
			WillReturnResult(sqlmock.NewResult(1, 1))

		err := repo.AppendByEmail(context.Background(), " Ada@X.com ", domain.EventLoginAttempt, "cli", "127.0.0.1")
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown_email_affects_zero_rows", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO user_events").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.AppendByEmail(context.Background(), "ghost@x.com", domain.EventLoginAttempt, "", "")
		assert.True(t, domain.Is(err, "user_not_found"))
	})

	t.Run("db_failure_maps_to_unavailable", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO user_events").
			WillReturnError(errors.New("conn refused"))

		err := repo.AppendByEmail(context.Background(), "ada@x.com", domain.EventLoginAttempt, "", "")
		assert.True(t, domain.Is(err, "db_unavailable"))
	})
}

func TestEventRepo_AppendByUserID(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewEventRepo(db)

	mock.ExpectExec("INSERT INTO user_events").
		WithArgs("u1", "PROFILE_UPDATE", "web", "10.0.0.1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = repo.AppendByUserID(context.Background(), "u1", domain.EventProfileUpdate, "web", "10.0.0.1")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())

	assert.True(t, domain.Is(
		repo.AppendByUserID(context.Background(), " ", domain.EventProfileUpdate, "", ""),
		"missing_field",
	))
}

func TestEventRepo_ListByUserID(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewEventRepo(db)

	t.Run("orders_and_maps_rows", func(t *testing.T) {
		now := time.Now().UTC()
		rows := sqlmock.NewRows([]string{"id", "user_id", "type", "device", "ip_address", "created_at"}).
			AddRow(int64(1), "u1", "REGISTRATION", "", "", now.Add(-time.Hour)).
			AddRow(int64(2), "u1", "LOGIN_ATTEMPT_SUCCESS", "cli", "127.0.0.1", now)

		mock.ExpectQuery("SELECT (.+) FROM user_events").
			WithArgs("u1").
			WillReturnRows(rows)

		events, err := repo.ListByUserID(context.Background(), "u1")
		assert.NoError(t, err)
		assert.Len(t, events, 2)
		assert.Equal(t, domain.EventRegistration, events[0].Type)
		assert.Equal(t, domain.EventLoginAttemptSuccess, events[1].Type)
		assert.Equal(t, "cli", events[1].Device)
	})

	t.Run("no_rows_is_empty_trail", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM user_events").
			WithArgs("u1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "type", "device", "ip_address", "created_at"}))

		events, err := repo.ListByUserID(context.Background(), "u1")
		assert.NoError(t, err)
		assert.Empty(t, events)
	})
}
