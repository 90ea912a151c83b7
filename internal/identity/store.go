package identity

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken     = errors.New("email already registered")
	ErrBadCredentials = errors.New("invalid email or password")
)

// Store persists login credentials. Hashing is delegated to bcrypt; raw
// passwords never touch the database.
type Store struct {
	db   *sql.DB
	cost int
}

// NewStore creates a credential store with the given bcrypt cost.
func NewStore(db *sql.DB, cost int) *Store {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Store{db: db, cost: cost}
}

// CreateTx hashes the password and inserts a credential row inside the
// caller's transaction. Returns ErrEmailTaken on a duplicate email.
func (s *Store) CreateTx(ctx context.Context, tx *sql.Tx, userID, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO credentials (user_id, email, password_hash)
		VALUES ($1, $2, $3)
	`, userID, email, hash)
	if isUniqueViolation(err) {
		return ErrEmailTaken
	}
	return err
}

// Verify checks a password against the stored hash and returns the user
// id. Unknown emails and wrong passwords both yield ErrBadCredentials.
func (s *Store) Verify(ctx context.Context, email, password string) (string, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT user_id, password_hash FROM credentials WHERE email = $1
	`, email)
	var userID string
	var hash []byte
	if err := row.Scan(&userID, &hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrBadCredentials
		}
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return "", ErrBadCredentials
	}
	return userID, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
