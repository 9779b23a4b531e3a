package bootstrap

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// The bootstrap waits for the database with a fixed, not exponential,
// delay: it runs at stack startup where the database is seconds away.
const (
	defaultMaxAttempts = 15
	defaultRetryDelay  = 2 * time.Second
)

const createUsersTableStmt = `
	CREATE TABLE IF NOT EXISTS admin_users(
		id SERIAL PRIMARY KEY,
		username TEXT UNIQUE NOT NULL,
		email TEXT,
		first_name TEXT,
		last_name TEXT,
		password_hash TEXT NOT NULL,
		is_admin BOOLEAN DEFAULT TRUE,
		created_at TIMESTAMP DEFAULT NOW()
	)`

const upsertUserStmt = `
	INSERT INTO admin_users (username, email, first_name, last_name, password_hash, is_admin)
	VALUES ($1, $2, $3, $4, $5, TRUE)
	ON CONFLICT (username) DO UPDATE SET password_hash = EXCLUDED.password_hash`

// User describes the admin account to create or update.
type User struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Password  string
}

// Options tune the wait-for-database loop. Zero values take the
// defaults above.
type Options struct {
	MaxAttempts int
	RetryDelay  time.Duration
}

// HashPassword bcrypt-hashes a plaintext password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// EnsureAdmin creates the admin user, or updates its password when the
// user already exists. The database may still be starting, so the whole
// attempt is repeated with a fixed delay until the budget runs out; the
// final error is returned for logging, but callers are expected not to
// fail startup over it.
func EnsureAdmin(ctx context.Context, db *sql.DB, user User, opts Options, log *zap.SugaredLogger) error {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = defaultRetryDelay
	}

	hash, err := HashPassword(user.Password)
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		lastErr = ensureOnce(ctx, db, user, hash)
		if lastErr == nil {
			log.Infow("admin user setup completed", "username", user.Username, "attempt", attempt)
			return nil
		}

		log.Warnw("admin user setup attempt failed",
			"attempt", attempt,
			"max_attempts", opts.MaxAttempts,
			"error", lastErr,
		)

		if attempt == opts.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(opts.RetryDelay):
		}
	}
	return lastErr
}

func ensureOnce(ctx context.Context, db *sql.DB, user User, hash string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, createUsersTableStmt); err != nil {
		tx.Rollback()
		return err
	}

	if _, err := tx.ExecContext(ctx, upsertUserStmt,
		user.Username, user.Email, user.FirstName, user.LastName, hash,
	); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}
