package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/shared"
)

// AccountRepository implements [models.Repository] for [models.Account] persistence.
type AccountRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.Account] = (*AccountRepository)(nil)

// NewAccountRepository creates a new [AccountRepository] with the given database connection
func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `id, sequence, email, password_hash, created_at, updated_at, last_sign_in_at, deleted_at`

// Create inserts a new account with generated ID and sequence.
//
// Returns [shared.ErrEmailExists] when another account already holds the email.
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	account.SetID(shared.GenerateID())
	if err := account.Validate(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	sequence, err := NextSequence(ctx, r.db, "accounts")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}
	account.SetSequence(sequence)

	query := `
		INSERT INTO accounts (id, sequence, email, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		account.ID(), sequence, account.Email(), account.PasswordHash(), account.CreatedAt(), account.UpdatedAt())
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", shared.ErrEmailExists, account.Email())
	}
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}

	return nil
}

// Get retrieves an account by ID, excluding soft-deleted accounts
func (r *AccountRepository) Get(ctx context.Context, id string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = ? AND deleted_at IS NULL`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id), id)
}

// GetByEmail retrieves an account by its normalized email, excluding soft-deleted accounts
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	email = shared.NormalizeEmail(email)
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = ? AND deleted_at IS NULL`
	return r.scanOne(r.db.QueryRowContext(ctx, query, email), email)
}

// Update modifies the password hash of an existing account
func (r *AccountRepository) Update(ctx context.Context, account *models.Account) error {
	if err := account.Validate(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	now := time.Now().UTC()
	account.SetUpdatedAt(now)

	query := `
		UPDATE accounts
		SET password_hash = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, account.PasswordHash(), now, account.ID())
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	return expectOneRow(result, account.ID())
}

// TouchSignIn records a successful sign-in.
func (r *AccountRepository) TouchSignIn(ctx context.Context, id string, at time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET last_sign_in_at = ? WHERE id = ? AND deleted_at IS NULL`, at, id)
	if err != nil {
		return fmt.Errorf("failed to record sign-in: %w", err)
	}
	return expectOneRow(result, id)
}

// Delete soft-deletes an account by ID
func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	query := `
		UPDATE accounts
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return expectOneRow(result, id)
}

// List retrieves all accounts matching the given criteria, excluding soft-deleted accounts.
//
// The only supported criterion is "email".
func (r *AccountRepository) List(ctx context.Context, criteria map[string]any) ([]*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE deleted_at IS NULL`
	args := []any{}

	if email, ok := criteria["email"].(string); ok && email != "" {
		query += " AND email = ?"
		args = append(args, shared.NormalizeEmail(email))
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return accounts, nil
}

func (r *AccountRepository) scanOne(row *sql.Row, key string) (*models.Account, error) {
	account, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrAccountNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query account: %w", err)
	}
	return account, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(s scanner) (*models.Account, error) {
	var (
		id           string
		sequence     int
		email        string
		passwordHash string
		createdAt    time.Time
		updatedAt    time.Time
		lastSignIn   sql.NullTime
		deletedAt    sql.NullTime
	)

	if err := s.Scan(&id, &sequence, &email, &passwordHash, &createdAt, &updatedAt, &lastSignIn, &deletedAt); err != nil {
		return nil, err
	}

	account := models.NewAccount(sequence, email, passwordHash)
	account.SetID(id)
	account.SetCreatedAt(createdAt)
	account.SetUpdatedAt(updatedAt)
	if lastSignIn.Valid {
		account.SetLastSignInAt(&lastSignIn.Time)
	}
	if deletedAt.Valid {
		account.SetDeletedAt(&deletedAt.Time)
	}
	return account, nil
}

func expectOneRow(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrAccountNotFound, id)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
