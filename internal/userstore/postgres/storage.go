// Package postgres implements the userstore storage port against a
// relational database through GORM, using raw parameterized SQL only.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/helixkit/userstore/internal/userstore"
)

const DefaultQueryTimeout = 5 * time.Second

// Storage translates port calls into SQL over a shared, bounded
// connection pool. The password column is never selected on read
// paths, so returned users always carry an empty credential.
type Storage struct {
	db           *gorm.DB
	queryTimeout time.Duration
}

func NewStorage(db *gorm.DB, queryTimeout time.Duration) *Storage {
	if queryTimeout <= 0 {
		queryTimeout = DefaultQueryTimeout
	}
	return &Storage{db: db, queryTimeout: queryTimeout}
}

type personRow struct {
	ID        int64      `gorm:"column:id"`
	UUID      uuid.UUID  `gorm:"column:uuid"`
	Firstname string     `gorm:"column:firstname"`
	Lastname  string     `gorm:"column:lastname"`
	Email     string     `gorm:"column:email"`
	Phone     string     `gorm:"column:phone"`
	CreatedOn *time.Time `gorm:"column:created_on"`
	UpdatedOn *time.Time `gorm:"column:updated_on"`
}

func (r personRow) toPerson() userstore.Person {
	return userstore.Person{
		ID:        r.ID,
		UUID:      r.UUID,
		Firstname: r.Firstname,
		Lastname:  r.Lastname,
		Email:     r.Email,
		Phone:     r.Phone,
		CreatedOn: r.CreatedOn,
		UpdatedOn: r.UpdatedOn,
	}
}

type userRow struct {
	ID              int64      `gorm:"column:id"`
	UUID            uuid.UUID  `gorm:"column:uuid"`
	Login           string     `gorm:"column:login"`
	Photo           *string    `gorm:"column:photo"`
	CreatedOn       *time.Time `gorm:"column:created_on"`
	UpdatedOn       *time.Time `gorm:"column:updated_on"`
	LastLoginOn     *time.Time `gorm:"column:lastlogin_on"`
	PersonID        int64      `gorm:"column:person_id"`
	PersonUUID      uuid.UUID  `gorm:"column:person_uuid"`
	PersonFirstname string     `gorm:"column:person_firstname"`
	PersonLastname  string     `gorm:"column:person_lastname"`
	PersonEmail     string     `gorm:"column:person_email"`
	PersonPhone     string     `gorm:"column:person_phone"`
	PersonCreatedOn *time.Time `gorm:"column:person_created_on"`
	PersonUpdatedOn *time.Time `gorm:"column:person_updated_on"`
}

func (r userRow) toUser() userstore.AppUser {
	return userstore.AppUser{
		ID:          r.ID,
		UUID:        r.UUID,
		Login:       r.Login,
		Password:    "",
		Photo:       r.Photo,
		CreatedOn:   r.CreatedOn,
		UpdatedOn:   r.UpdatedOn,
		LastLoginOn: r.LastLoginOn,
		Person: userstore.Person{
			ID:        r.PersonID,
			UUID:      r.PersonUUID,
			Firstname: r.PersonFirstname,
			Lastname:  r.PersonLastname,
			Email:     r.PersonEmail,
			Phone:     r.PersonPhone,
			CreatedOn: r.PersonCreatedOn,
			UpdatedOn: r.PersonUpdatedOn,
		},
	}
}

// selectUser joins the user row to its owned person; users without a
// linked person fall out of the inner join and read as not found.
const selectUser = `
SELECT u.id, u.uuid, u.login, u.photo, u.created_on, u.updated_on, u.lastlogin_on,
       p.id AS person_id, p.uuid AS person_uuid,
       p.firstname AS person_firstname, p.lastname AS person_lastname,
       p.email AS person_email, p.phone AS person_phone,
       p.created_on AS person_created_on, p.updated_on AS person_updated_on
FROM applicationuser u
JOIN person p ON p.id = u.person_id`

func (s *Storage) Login(ctx context.Context, key string) (*userstore.AppUser, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var rows []userRow
	res := s.db.WithContext(ctx).Raw(selectUser+" WHERE u.password = ?", key).Scan(&rows)
	if res.Error != nil {
		return nil, s.translate("login", res.Error)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	user := rows[0].toUser()
	return &user, nil
}

func (s *Storage) GetUser(ctx context.Context, id uuid.UUID) (*userstore.AppUser, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var rows []userRow
	res := s.db.WithContext(ctx).Raw(selectUser+" WHERE u.uuid = ?", id).Scan(&rows)
	if res.Error != nil {
		return nil, s.translate("get user", res.Error)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	user := rows[0].toUser()
	return &user, nil
}

func (s *Storage) GetAllUsers(ctx context.Context) ([]userstore.AppUser, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var rows []userRow
	res := s.db.WithContext(ctx).Raw(selectUser + " WHERE u.person_id IS NOT NULL ORDER BY u.login ASC").Scan(&rows)
	if res.Error != nil {
		return nil, s.translate("get all users", res.Error)
	}

	users := make([]userstore.AppUser, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toUser())
	}
	return users, nil
}

type generatedIdentity struct {
	ID   int64     `gorm:"column:id"`
	UUID uuid.UUID `gorm:"column:uuid"`
}

func (s *Storage) CreateUser(ctx context.Context, user userstore.AppUser) (userstore.AppUser, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	now := time.Now().UTC()
	user.CreatedOn = &now

	// id and uuid are DEFAULT columns assigned by the backend; whatever
	// the caller supplied is discarded and the generated pair read back.
	var gen generatedIdentity
	res := s.db.WithContext(ctx).Raw(`
INSERT INTO applicationuser (login, password, photo, created_on, person_id)
VALUES (?, ?, ?, ?, ?)
RETURNING id, uuid`,
		user.Login, user.Password, user.Photo, user.CreatedOn, user.Person.ID,
	).Scan(&gen)
	if res.Error != nil {
		return userstore.AppUser{}, s.translate("create user", res.Error)
	}

	user.ID = gen.ID
	user.UUID = gen.UUID
	return user, nil
}

func (s *Storage) UpdateUser(ctx context.Context, user userstore.AppUser) (userstore.AppUser, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	now := time.Now().UTC()
	user.UpdatedOn = &now

	res := s.db.WithContext(ctx).Exec(`
UPDATE applicationuser
SET login = ?, password = ?, photo = ?, updated_on = ?, lastlogin_on = ?, person_id = ?
WHERE id = ?`,
		user.Login, user.Password, user.Photo, user.UpdatedOn, user.LastLoginOn, user.Person.ID,
		user.ID,
	)
	if res.Error != nil {
		return userstore.AppUser{}, s.translate("update user", res.Error)
	}
	return user, nil
}

func (s *Storage) DeleteUser(ctx context.Context, user userstore.AppUser) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	res := s.db.WithContext(ctx).Exec("DELETE FROM applicationuser WHERE id = ?", user.ID)
	if res.Error != nil {
		return s.translate("delete user", res.Error)
	}
	return nil
}

func (s *Storage) GetPersonByUUID(ctx context.Context, id uuid.UUID) (*userstore.Person, error) {
	return s.getPerson(ctx, "uuid = ?", id)
}

func (s *Storage) GetPersonByID(ctx context.Context, id int64) (*userstore.Person, error) {
	return s.getPerson(ctx, "id = ?", id)
}

func (s *Storage) getPerson(ctx context.Context, predicate string, arg any) (*userstore.Person, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var rows []personRow
	query := "SELECT id, uuid, firstname, lastname, email, phone, created_on, updated_on FROM person WHERE " + predicate
	res := s.db.WithContext(ctx).Raw(query, arg).Scan(&rows)
	if res.Error != nil {
		return nil, s.translate("get person", res.Error)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	person := rows[0].toPerson()
	return &person, nil
}

func (s *Storage) GetAllPersons(ctx context.Context) ([]userstore.Person, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var rows []personRow
	res := s.db.WithContext(ctx).Raw(
		"SELECT id, uuid, firstname, lastname, email, phone, created_on, updated_on FROM person ORDER BY firstname ASC",
	).Scan(&rows)
	if res.Error != nil {
		return nil, s.translate("get all persons", res.Error)
	}

	persons := make([]userstore.Person, 0, len(rows))
	for _, row := range rows {
		persons = append(persons, row.toPerson())
	}
	return persons, nil
}

func (s *Storage) CreatePerson(ctx context.Context, person userstore.Person) (userstore.Person, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	now := time.Now().UTC()
	person.CreatedOn = &now

	var gen generatedIdentity
	res := s.db.WithContext(ctx).Raw(`
INSERT INTO person (firstname, lastname, email, phone, created_on)
VALUES (?, ?, ?, ?, ?)
RETURNING id, uuid`,
		person.Firstname, person.Lastname, person.Email, person.Phone, person.CreatedOn,
	).Scan(&gen)
	if res.Error != nil {
		return userstore.Person{}, s.translate("create person", res.Error)
	}

	person.ID = gen.ID
	person.UUID = gen.UUID
	return person, nil
}

func (s *Storage) UpdatePerson(ctx context.Context, person userstore.Person) (userstore.Person, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	now := time.Now().UTC()
	person.UpdatedOn = &now

	res := s.db.WithContext(ctx).Exec(`
UPDATE person
SET firstname = ?, lastname = ?, email = ?, phone = ?, updated_on = ?
WHERE id = ?`,
		person.Firstname, person.Lastname, person.Email, person.Phone, person.UpdatedOn,
		person.ID,
	)
	if res.Error != nil {
		return userstore.Person{}, s.translate("update person", res.Error)
	}
	return person, nil
}

func (s *Storage) DeletePerson(ctx context.Context, person userstore.Person) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	res := s.db.WithContext(ctx).Exec("DELETE FROM person WHERE id = ?", person.ID)
	if res.Error != nil {
		return s.translate("delete person", res.Error)
	}
	return nil
}

// bound caps every backend round-trip with the configured timeout.
func (s *Storage) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.queryTimeout)
}

// translate maps driver errors onto the port's error kinds. GORM's
// error translation covers both dialects used here (postgres in
// production, sqlite in tests); the pgconn branch catches codes that
// surface outside GORM's callbacks.
func (s *Storage) translate(op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey), errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%s: %w: %v", op, userstore.ErrConstraintViolation, err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fmt.Errorf("%s: %w: %v", op, userstore.ErrStorageUnavailable, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23505" || pgErr.Code == "23503":
			return fmt.Errorf("%s: %w: %v", op, userstore.ErrConstraintViolation, err)
		case strings.HasPrefix(pgErr.Code, "08"):
			return fmt.Errorf("%s: %w: %v", op, userstore.ErrStorageUnavailable, err)
		}
	}

	if strings.Contains(err.Error(), "constraint") {
		return fmt.Errorf("%s: %w: %v", op, userstore.ErrConstraintViolation, err)
	}

	return fmt.Errorf("%s: %w", op, err)
}
