package users

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/accounts/internal/common"
	"github.com/dmitrijs2005/accounts/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ts0 = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	ts1 = ts0.Add(time.Minute)

	columns = []string{"id", "email", "first_name", "last_name", "password",
		"is_active", "is_staff", "is_superuser", "created_at", "updated_at"}
)

const (
	insertQ      = `(?s)^INSERT\s+INTO\s+users\s*\(id,\s*email,\s*first_name,\s*last_name,\s*password,\s*is_active,\s*is_staff,\s*is_superuser\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6,\s*\$7,\s*\$8\)\s*RETURNING\s+created_at,\s*updated_at\s*$`
	upsertQ      = `(?s)^INSERT\s+INTO\s+users\s*\(.*\)\s*VALUES\s*\(.*\)\s*ON\s+CONFLICT\s*\(email\)\s*DO\s+NOTHING\s*RETURNING\s+created_at,\s*updated_at\s*$`
	selectByIDQ  = `(?s)^SELECT\s+id,\s*email,.*updated_at\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1\s*$`
	selectByMail = `(?s)^SELECT\s+id,\s*email,.*updated_at\s+FROM\s+users\s+WHERE\s+email\s*=\s*\$1\s*$`
	listQ        = `(?s)^SELECT\s+id,\s*email,.*FROM\s+users\s+ORDER\s+BY\s+created_at,\s*id\s+LIMIT\s+\$1\s+OFFSET\s+\$2\s*$`
	countQ       = `^SELECT COUNT\(\*\) FROM users$`
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func newUser() *models.User {
	return &models.User{
		ID:           "6f1c0d5e-0000-4000-8000-000000000001",
		Email:        "ada@example.com",
		FirstName:    "Ada",
		LastName:     "Lovelace",
		PasswordHash: "$2a$10$hash",
		IsActive:     true,
	}
}

func userArgs(u *models.User) []driver.Value {
	return []driver.Value{
		sqlmock.AnyArg(), // id
		sqlmock.AnyArg(), // email
		sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
		u.IsActive, u.IsStaff, u.IsSuperuser,
	}
}

func userRow(rows *sqlmock.Rows, u *models.User) *sqlmock.Rows {
	return rows.AddRow(u.ID, u.Email, u.FirstName, u.LastName, u.PasswordHash,
		u.IsActive, u.IsStaff, u.IsSuperuser, ts0, ts1)
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	u := newUser()
	mock.ExpectQuery(insertQ).
		WithArgs(u.ID, u.Email, u.FirstName, u.LastName, u.PasswordHash, true, false, false).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(ts0, ts0))

	got, err := repo.Create(context.Background(), u)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if !got.CreatedAt.Equal(ts0) || !got.UpdatedAt.Equal(ts0) {
		t.Fatalf("timestamps not populated: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	u := newUser()
	mock.ExpectQuery(insertQ).
		WithArgs(userArgs(u)...).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

	_, err := repo.Create(context.Background(), u)
	if !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("want common.ErrorAlreadyExists, got %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	u := newUser()
	mock.ExpectQuery(insertQ).
		WithArgs(userArgs(u)...).
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), u)
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetOrCreate_Inserts(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	u := newUser()
	mock.ExpectQuery(upsertQ).
		WithArgs(userArgs(u)...).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(ts0, ts0))

	got, created, err := repo.GetOrCreate(context.Background(), u)
	if err != nil {
		t.Fatalf("GetOrCreate error: %v", err)
	}
	if !created || got.ID != u.ID {
		t.Fatalf("expected fresh row, got created=%v %+v", created, got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestGetOrCreate_ConflictReturnsStoredRow(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	stored := newUser()
	stored.ID = "6f1c0d5e-0000-4000-8000-0000000000ff"

	candidate := newUser()
	mock.ExpectQuery(upsertQ).
		WithArgs(userArgs(candidate)...).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}))
	mock.ExpectQuery(selectByMail).
		WithArgs(candidate.Email).
		WillReturnRows(userRow(sqlmock.NewRows(columns), stored))

	got, created, err := repo.GetOrCreate(context.Background(), candidate)
	if err != nil {
		t.Fatalf("GetOrCreate error: %v", err)
	}
	if created {
		t.Fatal("expected created=false on conflict")
	}
	if got.ID != stored.ID {
		t.Fatalf("expected stored id %q, got %q", stored.ID, got.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestGetOrCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	u := newUser()
	mock.ExpectQuery(upsertQ).WithArgs(userArgs(u)...).WillReturnError(errors.New("db err"))

	_, _, err := repo.GetOrCreate(context.Background(), u)
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetUserByID_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	u := newUser()
	mock.ExpectQuery(selectByIDQ).
		WithArgs(u.ID).
		WillReturnRows(userRow(sqlmock.NewRows(columns), u))

	got, err := repo.GetUserByID(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("GetUserByID error: %v", err)
	}
	if got.Email != u.Email || got.FirstName != "Ada" || !got.IsActive || !got.UpdatedAt.Equal(ts1) {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestGetUserByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(selectByMail).
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetUserByEmail(context.Background(), "ghost@example.com")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestGetUserByEmail_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(selectByMail).
		WithArgs("ada@example.com").
		WillReturnError(errors.New("db err"))

	_, err := repo.GetUserByEmail(context.Background(), "ada@example.com")
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestList_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	a := newUser()
	b := newUser()
	b.ID = "6f1c0d5e-0000-4000-8000-000000000002"
	b.Email = "grace@example.com"

	rows := sqlmock.NewRows(columns)
	userRow(rows, a)
	userRow(rows, b)
	mock.ExpectQuery(listQ).WithArgs(20, 0).WillReturnRows(rows)

	got, err := repo.List(context.Background(), 20, 0)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(got) != 2 || got[0].Email != a.Email || got[1].Email != b.Email {
		t.Fatalf("unexpected list: %+v", got)
	}
}

func TestList_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(listQ).WithArgs(20, 40).WillReturnError(errors.New("db err"))

	_, err := repo.List(context.Background(), 20, 40)
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestCount(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(countQ).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := repo.Count(context.Background())
	if err != nil {
		t.Fatalf("Count error: %v", err)
	}
	if n != 3 {
		t.Fatalf("unexpected count: %d", n)
	}
}
