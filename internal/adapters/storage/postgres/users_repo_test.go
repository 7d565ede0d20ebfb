package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vet-clinic/internal/domain/users"
	"vet-clinic/internal/ports/auth"
)

var userCols = []string{
	"user_id", "user_firstname", "user_lastname",
	"user_email", "user_contact", "user_password",
	"user_role", "created_at", "updated_at",
}

func TestUsersRepo_Create_OwnerInsertsBothRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).
		WithArgs("u1", "Ana", "Lopez", "ana@example.com", nil, "hash", "owner", now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO owner`)).
		WithArgs("u1", "Calle 1", nil, nil, nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = NewUsersRepo(db).Create(context.Background(), users.User{
		ID: "u1", FirstName: "Ana", LastName: "Lopez", Email: "ana@example.com",
		PasswordHash: "hash", Role: auth.RoleOwner, CreatedAt: now, UpdatedAt: now,
	}, &users.OwnerProfile{UserID: "u1", Address: "Calle 1"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUsersRepo_Create_DuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_uniq"})
	mock.ExpectRollback()

	err = NewUsersRepo(db).Create(context.Background(), users.User{ID: "u2", Role: auth.RoleDoctor}, nil)
	assert.ErrorIs(t, err, users.ErrEmailTaken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUsersRepo_Create_PrimaryKeyConflictIsNotEmailTaken(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	pkErr := &pgconn.PgError{Code: "23505", ConstraintName: "users_pkey"}
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).WillReturnError(pkErr)
	mock.ExpectRollback()

	err = NewUsersRepo(db).Create(context.Background(), users.User{ID: "u2"}, nil)
	assert.False(t, errors.Is(err, users.ErrEmailTaken))
	var got *pgconn.PgError
	assert.True(t, errors.As(err, &got))
}

func TestUsersRepo_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`FROM users WHERE user_id = \$1`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("u1", "Ana", "Lopez", "ana@example.com", nil, "hash", "clinician", now, now))

	u, err := NewUsersRepo(db).GetByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleClinician, u.Role)
	assert.Nil(t, u.Contact)
	assert.Equal(t, "hash", u.PasswordHash)
}

func TestUsersRepo_GetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM users WHERE user_id = \$1`).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(userCols))

	_, err = NewUsersRepo(db).GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, users.ErrNotFound)
}

func TestUsersRepo_GetOwnerProfile_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM owner`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "owner_address", "a", "b", "c", "d"}))

	_, err = NewUsersRepo(db).GetOwnerProfile(context.Background(), "u1")
	assert.ErrorIs(t, err, users.ErrNotFound)
}

func TestUsersRepo_EmailTaken_ExcludesSelf(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`lower(user_email) = lower($1) AND user_id <> $2`)).
		WithArgs("Ana@Example.com", "u1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	taken, err := NewUsersRepo(db).EmailTaken(context.Background(), "Ana@Example.com", "u1")
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestUsersRepo_UpdateProfile_NotFoundRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err = NewUsersRepo(db).UpdateProfile(context.Background(), users.User{ID: "missing"}, &users.OwnerProfile{})
	assert.ErrorIs(t, err, users.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUsersRepo_UpdateProfile_UpsertsOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`ON CONFLICT (user_id) DO UPDATE`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = NewUsersRepo(db).UpdateProfile(context.Background(), users.User{ID: "u1"}, &users.OwnerProfile{Address: "Calle 2"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUsersRepo_UpdatePassword_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET user_password = $2`)).
		WithArgs("missing", "hash").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewUsersRepo(db).UpdatePassword(context.Background(), "missing", "hash")
	assert.ErrorIs(t, err, users.ErrNotFound)
}
