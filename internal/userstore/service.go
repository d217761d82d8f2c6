package userstore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// ServiceAPI is the domain contract consumed by the transport layer.
type ServiceAPI interface {
	Login(ctx context.Context, login, password string) (*AppUser, error)

	GetAllUsers(ctx context.Context) ([]AppUser, error)
	GetUser(ctx context.Context, id uuid.UUID) (*AppUser, error)
	CreateUser(ctx context.Context, user AppUser) (AppUser, error)
	UpdateUser(ctx context.Context, user AppUser) (AppUser, error)
	DeleteUser(ctx context.Context, user AppUser) error

	GetAllPersons(ctx context.Context) ([]Person, error)
	GetPerson(ctx context.Context, id uuid.UUID) (*Person, error)
	CreatePerson(ctx context.Context, person Person) (Person, error)
	UpdatePerson(ctx context.Context, person Person) (Person, error)
	DeletePerson(ctx context.Context, person Person) error
}

// Service orchestrates credential checks and entity lifecycle against
// the Storage port. It holds no state of its own; every call is a
// stateless request/response against the backend.
type Service struct {
	storage Storage
	logger  *slog.Logger
}

func NewService(storage Storage, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// Login derives the auth key and looks it up. A missing user and a
// failing backend both come back as ErrInvalidCredentials so callers
// cannot distinguish "wrong password" from "backend down".
func (s *Service) Login(ctx context.Context, login, password string) (*AppUser, error) {
	user, err := s.storage.Login(ctx, DeriveAuthKey(login, password))
	if err != nil {
		s.logger.Error("login: storage failure", "error", err)
		return nil, ErrInvalidCredentials
	}
	if user == nil {
		s.logger.Info("login: no matching credential", "login", login)
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *Service) GetAllUsers(ctx context.Context) ([]AppUser, error) {
	users, err := s.storage.GetAllUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("get all users: %w", err)
	}
	return users, nil
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*AppUser, error) {
	user, err := s.storage.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// CreateUser persists a new account. The caller supplies the plaintext
// password; the stored credential column only ever holds the derived
// lookup key.
func (s *Service) CreateUser(ctx context.Context, user AppUser) (AppUser, error) {
	user.Password = DeriveAuthKey(user.Login, user.Password)
	created, err := s.storage.CreateUser(ctx, user)
	if err != nil {
		return AppUser{}, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

// UpdateUser re-persists the embedded Person first, then the user row.
// The two statements are deliberately not wrapped in a transaction: a
// failure between them leaves the person updated and the user not.
func (s *Service) UpdateUser(ctx context.Context, user AppUser) (AppUser, error) {
	if _, err := s.storage.UpdatePerson(ctx, user.Person); err != nil {
		return AppUser{}, fmt.Errorf("update user: person step: %w", err)
	}
	updated, err := s.storage.UpdateUser(ctx, user)
	if err != nil {
		return AppUser{}, fmt.Errorf("update user: %w", err)
	}
	return updated, nil
}

func (s *Service) DeleteUser(ctx context.Context, user AppUser) error {
	if err := s.storage.DeleteUser(ctx, user); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func (s *Service) GetAllPersons(ctx context.Context) ([]Person, error) {
	persons, err := s.storage.GetAllPersons(ctx)
	if err != nil {
		return nil, fmt.Errorf("get all persons: %w", err)
	}
	return persons, nil
}

func (s *Service) GetPerson(ctx context.Context, id uuid.UUID) (*Person, error) {
	person, err := s.storage.GetPersonByUUID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get person: %w", err)
	}
	return person, nil
}

func (s *Service) CreatePerson(ctx context.Context, person Person) (Person, error) {
	created, err := s.storage.CreatePerson(ctx, person)
	if err != nil {
		return Person{}, fmt.Errorf("create person: %w", err)
	}
	return created, nil
}

func (s *Service) UpdatePerson(ctx context.Context, person Person) (Person, error) {
	updated, err := s.storage.UpdatePerson(ctx, person)
	if err != nil {
		return Person{}, fmt.Errorf("update person: %w", err)
	}
	return updated, nil
}

func (s *Service) DeletePerson(ctx context.Context, person Person) error {
	if err := s.storage.DeletePerson(ctx, person); err != nil {
		return fmt.Errorf("delete person: %w", err)
	}
	return nil
}
