package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/GoSim-25-26J-441/taskhub-backend/internal/domain"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/storage/postgres"
	"github.com/google/uuid"
)

type Repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

const userColumns = `id::text, name, email, is_admin, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }, u *domain.User) error {
	return row.Scan(&u.ID, &u.Name, &u.Email, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt)
}

// Create inserts u with its password hash; a taken email yields domain.ErrConflict.
func (r *Repo) Create(ctx context.Context, u *domain.User, passwordHash string) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))

	const q = `
INSERT INTO users (id, name, email, password_hash, is_admin)
VALUES ($1, $2, $3, NULLIF($4, ''), $5)
RETURNING created_at, updated_at;
`
	err := r.db.QueryRowContext(ctx, q, u.ID, u.Name, u.Email, passwordHash, u.IsAdmin).
		Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("email %s: %w", u.Email, domain.ErrConflict)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1;`

	var u domain.User
	if err := scanUser(r.db.QueryRowContext(ctx, q, id), &u); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// GetByEmail also returns the stored password hash ("" for federated-only users).
func (r *Repo) GetByEmail(ctx context.Context, email string) (*domain.User, string, error) {
	q := `SELECT ` + userColumns + `, COALESCE(password_hash, '') FROM users WHERE email = $1;`

	var u domain.User
	var hash string
	err := r.db.QueryRowContext(ctx, q, strings.ToLower(strings.TrimSpace(email))).
		Scan(&u.ID, &u.Name, &u.Email, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt, &hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", domain.ErrNotFound
		}
		return nil, "", fmt.Errorf("get user by email: %w", err)
	}
	return &u, hash, nil
}

type FirebaseUser struct {
	UID           string
	Email         string
	EmailVerified bool
	Name          string
}

// EnsureFirebaseUser maps a verified federated identity onto a user row. A known uid
// wins; otherwise an existing account is linked by email only when the email is
// verified and the account is not bound to another uid. Any other clash with an
// existing email yields domain.ErrUnauthorized.
func (r *Repo) EnsureFirebaseUser(ctx context.Context, fu FirebaseUser) (*domain.User, error) {
	if fu.UID == "" {
		return nil, fmt.Errorf("firebase uid required")
	}

	u, err := r.getByFirebaseUID(ctx, fu.UID)
	if err == nil || !errors.Is(err, domain.ErrNotFound) {
		return u, err
	}

	email := strings.ToLower(strings.TrimSpace(fu.Email))
	if email == "" {
		email = fu.UID + "@firebase.local"
	} else if fu.EmailVerified {
		u, err = r.linkFirebaseUID(ctx, email, fu.UID)
		if err == nil || !errors.Is(err, domain.ErrNotFound) {
			return u, err
		}
	}

	name := strings.TrimSpace(fu.Name)
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}

	q := `
INSERT INTO users (id, name, email, firebase_uid)
VALUES ($1, $2, $3, $4)
ON CONFLICT (email) DO NOTHING
RETURNING ` + userColumns + `;`

	u = &domain.User{}
	if err := scanUser(r.db.QueryRowContext(ctx, q, uuid.NewString(), name, email, fu.UID), u); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("email %s belongs to another account: %w", email, domain.ErrUnauthorized)
		}
		return nil, fmt.Errorf("insert firebase user: %w", err)
	}
	return withFirebaseUID(u, fu.UID), nil
}

func (r *Repo) getByFirebaseUID(ctx context.Context, uid string) (*domain.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE firebase_uid = $1;`

	var u domain.User
	if err := scanUser(r.db.QueryRowContext(ctx, q, uid), &u); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get user by firebase uid: %w", err)
	}
	return withFirebaseUID(&u, uid), nil
}

func (r *Repo) linkFirebaseUID(ctx context.Context, email, uid string) (*domain.User, error) {
	q := `
UPDATE users SET firebase_uid = $2, updated_at = now()
WHERE email = $1 AND (firebase_uid IS NULL OR firebase_uid = $2)
RETURNING ` + userColumns + `;`

	var u domain.User
	if err := scanUser(r.db.QueryRowContext(ctx, q, email, uid), &u); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("link firebase uid: %w", err)
	}
	return withFirebaseUID(&u, uid), nil
}

func withFirebaseUID(u *domain.User, uid string) *domain.User {
	u.FirebaseUID = &uid
	return u
}

// List returns every user as a picker entry ordered by name.
func (r *Repo) List(ctx context.Context) ([]domain.UserSummary, error) {
	const q = `SELECT id::text, name, email FROM users ORDER BY lower(name), id;`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	out := make([]domain.UserSummary, 0, 16)
	for rows.Next() {
		var s domain.UserSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Email); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) Exists(ctx context.Context, id string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1);`

	var ok bool
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&ok); err != nil {
		return false, fmt.Errorf("user exists: %w", err)
	}
	return ok, nil
}

// SetAdmin is used by the seeder to promote accounts.
func (r *Repo) SetAdmin(ctx context.Context, id string, admin bool) error {
	const q = `UPDATE users SET is_admin = $2, updated_at = $3 WHERE id = $1;`

	res, err := r.db.ExecContext(ctx, q, id, admin, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set admin: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
