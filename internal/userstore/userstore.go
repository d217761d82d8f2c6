package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Person is the natural-person record owned by an AppUser. ID is the
// backend-assigned surrogate key and UUID the externally visible stable
// identifier; callers never supply either on create.
type Person struct {
	ID        int64      `json:"id"`
	UUID      uuid.UUID  `json:"uuid"`
	Firstname string     `json:"firstname"`
	Lastname  string     `json:"lastname"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	CreatedOn *time.Time `json:"created_on,omitempty"`
	UpdatedOn *time.Time `json:"updated_on,omitempty"`
}

// AppUser is a credentialed account bound to exactly one Person.
// Password holds the derived auth key on the write path only; every
// read path blanks it to the empty string before the value leaves the
// storage layer.
type AppUser struct {
	ID          int64      `json:"id"`
	UUID        uuid.UUID  `json:"uuid"`
	Login       string     `json:"login"`
	Password    string     `json:"password,omitempty"`
	Photo       *string    `json:"photo,omitempty"`
	CreatedOn   *time.Time `json:"created_on,omitempty"`
	UpdatedOn   *time.Time `json:"updated_on,omitempty"`
	LastLoginOn *time.Time `json:"lastlogin_on,omitempty"`
	Person      Person     `json:"person"`
}

// Storage is the persistence port consumed by the domain service. Not
// found is a nil value with a nil error, never an error. Every method
// may block on a pooled connection and must honor ctx.
type Storage interface {
	Login(ctx context.Context, key string) (*AppUser, error)

	GetUser(ctx context.Context, id uuid.UUID) (*AppUser, error)
	GetAllUsers(ctx context.Context) ([]AppUser, error)
	CreateUser(ctx context.Context, user AppUser) (AppUser, error)
	UpdateUser(ctx context.Context, user AppUser) (AppUser, error)
	DeleteUser(ctx context.Context, user AppUser) error

	GetPersonByUUID(ctx context.Context, id uuid.UUID) (*Person, error)
	GetPersonByID(ctx context.Context, id int64) (*Person, error)
	GetAllPersons(ctx context.Context) ([]Person, error)
	CreatePerson(ctx context.Context, person Person) (Person, error)
	UpdatePerson(ctx context.Context, person Person) (Person, error)
	DeletePerson(ctx context.Context, person Person) error
}

var (
	// ErrInvalidCredentials is the only error a login caller ever sees;
	// wrong password and backend failure collapse into it on purpose.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrStorageUnavailable signals pool exhaustion or a network-level
	// failure talking to the backend.
	ErrStorageUnavailable = errors.New("storage backend unavailable")

	// ErrConstraintViolation signals a unique or foreign-key violation,
	// e.g. deleting a Person still referenced by an AppUser.
	ErrConstraintViolation = errors.New("storage constraint violation")

	// ErrNotImplemented marks port methods a backend has not built yet.
	ErrNotImplemented = errors.New("storage operation not implemented")
)
