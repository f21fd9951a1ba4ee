package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/bowling-lane-reservation/internal/model"
	"github.com/iliyamo/bowling-lane-reservation/internal/utils"
)

func TestUserCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewUserRepo(db)

	mock.ExpectExec("INSERT INTO users").
		WithArgs("Ann", "ann@example.com", sqlmock.AnyArg(), model.RoleCustomer).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	id, err := repo.Create(context.Background(), " Ann ", " Ann@Example.com", "secret123", model.RoleCustomer, bcrypt.MinCost)
	require.NoError(t, err)
	assert.Equal(t, uint64(11), id)

	_, err = repo.Create(context.Background(), "Ann", "ann@example.com", "secret123", model.RoleCustomer, bcrypt.MinCost)
	assert.ErrorIs(t, err, ErrEmailExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserEnsureStaff(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("ON DUPLICATE KEY UPDATE").
		WithArgs("Front Desk", "desk@bowling.local", sqlmock.AnyArg(), model.RoleStaff).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, NewUserRepo(db).EnsureStaff(context.Background(), "Front Desk", "Desk@Bowling.local", "changeme", bcrypt.MinCost))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserGetByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewUserRepo(db)

	hash, err := utils.HashPassword("pw", bcrypt.MinCost)
	require.NoError(t, err)
	cols := []string{"id", "name", "email", "password_hash", "role", "created_at"}
	mock.ExpectQuery("FROM users WHERE email").WithArgs("ann@example.com").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(3, "Ann", "ann@example.com", hash, model.RoleCustomer, time.Now()))
	mock.ExpectQuery("FROM users WHERE email").WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows(cols))

	u, err := repo.GetByEmail(context.Background(), "ANN@example.com")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), u.ID)
	assert.True(t, utils.VerifyPassword(u.PasswordHash, "pw"))

	_, err = repo.GetByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateRefresh(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewTokenRepo(db)

	cols := []string{"user_id", "expires_at", "revoked_at"}
	future := time.Now().UTC().Add(time.Hour)
	past := time.Now().UTC().Add(-time.Hour)

	mock.ExpectQuery("FROM refresh_tokens").WithArgs("live").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(9, future, nil))
	mock.ExpectQuery("FROM refresh_tokens").WithArgs("revoked").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(9, future, past))
	mock.ExpectQuery("FROM refresh_tokens").WithArgs("expired").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(9, past, nil))
	mock.ExpectQuery("FROM refresh_tokens").WithArgs("unknown").
		WillReturnRows(sqlmock.NewRows(cols))

	id, err := repo.ValidateRefresh(context.Background(), "live")
	require.NoError(t, err)
	assert.Equal(t, uint64(9), id)

	for _, h := range []string{"revoked", "expired", "unknown"} {
		_, err := repo.ValidateRefresh(context.Background(), h)
		assert.ErrorIs(t, err, ErrTokenInvalid, h)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurgeExpired(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cutoff := time.Date(2024, 3, 1, 3, 0, 0, 0, time.UTC)
	mock.ExpectExec("DELETE FROM refresh_tokens").WithArgs(cutoff, cutoff).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := NewTokenRepo(db).PurgeExpired(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRevokeByHashSingleWinner(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewTokenRepo(db)

	mock.ExpectExec("UPDATE refresh_tokens SET revoked_at").WithArgs("h").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE refresh_tokens SET revoked_at").WithArgs("h").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("UPDATE refresh_tokens SET revoked_at").WithArgs(9).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.RevokeByHash(context.Background(), "h"))
	assert.ErrorIs(t, repo.RevokeByHash(context.Background(), "h"), ErrTokenInvalid)
	assert.NoError(t, repo.RevokeAllForUser(context.Background(), 9), "revoking nothing is fine for logout-all")
	assert.NoError(t, mock.ExpectationsWereMet())
}
