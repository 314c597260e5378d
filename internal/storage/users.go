package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/findosh/slideomni/internal/models"
	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

// UserRepository provides user data access
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

var _ Users = (*UserRepository)(nil)

const userColumns = `id, username, email, password_hash, salt, permissions, omnitokens, omnicoins, last_reset, created_at, updated_at`

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID.String(),
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Salt,
		user.Permissions.String(),
		user.Omnitokens,
		user.Omnicoins,
		user.LastReset.UTC(),
		user.CreatedAt.UTC(),
		user.UpdatedAt.UTC(),
	)
	if isUniqueViolation(err) {
		return ErrUserExists
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = ?`
	return scanUser(r.db.QueryRowContext(ctx, query, username))
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return scanUser(r.db.QueryRowContext(ctx, query, id.String()))
}

// List returns every user ordered by username
func (r *UserRepository) List(ctx context.Context) ([]*models.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdatePermissions rewrites the permission blob inside one transaction
func (r *UserRepository) UpdatePermissions(ctx context.Context, username string, fn func(models.Permissions) models.Permissions) (models.Permissions, error) {
	var updated models.Permissions
	err := WithTx(ctx, r.db.DB, nil, func(ctx context.Context, tx DBTX) error {
		var blob string
		err := tx.QueryRowContext(ctx, `SELECT permissions FROM users WHERE username = ?`, username).Scan(&blob)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		updated = fn(models.ParsePermissions(blob))
		_, err = tx.ExecContext(ctx,
			`UPDATE users SET permissions = ?, updated_at = ? WHERE username = ?`,
			updated.String(), time.Now().UTC(), username)
		return err
	})
	return updated, err
}

// Charge resets lapsed counters, then performs a conditional decrement
func (r *UserRepository) Charge(ctx context.Context, username string, counter models.Counter, amount int, now time.Time) (models.Credits, error) {
	col, err := counterColumn(counter)
	if err != nil {
		return models.Credits{}, err
	}

	var (
		credits      models.Credits
		insufficient bool
	)
	err = WithTx(ctx, r.db.DB, nil, func(ctx context.Context, tx DBTX) error {
		c, err := resetIfLapsed(ctx, tx, username, now)
		if err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE users SET `+col+` = `+col+` - ?, updated_at = ? WHERE username = ? AND `+col+` >= ?`,
			amount, now.UTC(), username, amount)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			// keep any reset applied above
			insufficient = true
			credits = c
			return nil
		}

		if counter == models.CounterCoins {
			c.Omnicoins -= amount
		} else {
			c.Omnitokens -= amount
		}
		credits = c
		return nil
	})
	if err != nil {
		return models.Credits{}, err
	}
	if insufficient {
		return credits, ErrInsufficientCredit
	}
	return credits, nil
}

// Balance returns the counters after applying a lapsed reset
func (r *UserRepository) Balance(ctx context.Context, username string, now time.Time) (models.Credits, error) {
	var credits models.Credits
	err := WithTx(ctx, r.db.DB, nil, func(ctx context.Context, tx DBTX) error {
		c, err := resetIfLapsed(ctx, tx, username, now)
		credits = c
		return err
	})
	return credits, err
}

// ResetCredits sets both counters to baseline and stamps last_reset
func (r *UserRepository) ResetCredits(ctx context.Context, username string, now time.Time) (models.Credits, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET omnitokens = ?, omnicoins = ?, last_reset = ?, updated_at = ? WHERE username = ?`,
		models.BaselineOmnitokens, models.BaselineOmnicoins, now.UTC(), now.UTC(), username)
	if err != nil {
		return models.Credits{}, fmt.Errorf("failed to reset credits: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Credits{}, ErrNotFound
	}
	return models.Credits{Omnitokens: models.BaselineOmnitokens, Omnicoins: models.BaselineOmnicoins}, nil
}

func resetIfLapsed(ctx context.Context, tx DBTX, username string, now time.Time) (models.Credits, error) {
	var (
		c         models.Credits
		lastReset time.Time
	)
	err := tx.QueryRowContext(ctx,
		`SELECT omnitokens, omnicoins, last_reset FROM users WHERE username = ?`, username,
	).Scan(&c.Omnitokens, &c.Omnicoins, &lastReset)
	if errors.Is(err, sql.ErrNoRows) {
		return c, ErrNotFound
	}
	if err != nil {
		return c, err
	}

	if !models.NeedsReset(lastReset, now) {
		return c, nil
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE users SET omnitokens = ?, omnicoins = ?, last_reset = ?, updated_at = ? WHERE username = ?`,
		models.BaselineOmnitokens, models.BaselineOmnicoins, now.UTC(), now.UTC(), username)
	if err != nil {
		return c, err
	}
	return models.Credits{Omnitokens: models.BaselineOmnitokens, Omnicoins: models.BaselineOmnicoins}, nil
}

func counterColumn(c models.Counter) (string, error) {
	switch c {
	case models.CounterTokens:
		return "omnitokens", nil
	case models.CounterCoins:
		return "omnicoins", nil
	}
	return "", fmt.Errorf("unknown counter %q", c)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		user  models.User
		id    string
		perms string
	)

	err := row.Scan(
		&id,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Salt,
		&perms,
		&user.Omnitokens,
		&user.Omnicoins,
		&user.LastReset,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	user.ID, _ = uuid.Parse(id)
	user.Permissions = models.ParsePermissions(perms)
	return &user, nil
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
