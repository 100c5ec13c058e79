package models

import (
	"fmt"
	"net/mail"
	"time"
)

// Account is a credential record owned by the local identity provider.
type Account struct {
	id           string
	sequence     int
	email        string
	passwordHash string
	createdAt    time.Time
	updatedAt    time.Time
	lastSignIn   *time.Time
	deletedAt    *time.Time
}

var _ Model = (*Account)(nil)

// NewAccount creates an Account with creation timestamps set to now.
func NewAccount(sequence int, email, passwordHash string) *Account {
	now := time.Now().UTC()
	return &Account{
		sequence:     sequence,
		email:        email,
		passwordHash: passwordHash,
		createdAt:    now,
		updatedAt:    now,
	}
}

func (a *Account) ID() string { return a.id }
func (a *Account) Sequence() int { return a.sequence }
func (a *Account) Email() string { return a.email }
func (a *Account) PasswordHash() string { return a.passwordHash }
func (a *Account) CreatedAt() time.Time { return a.createdAt }
func (a *Account) UpdatedAt() time.Time { return a.updatedAt }
func (a *Account) LastSignInAt() *time.Time { return a.lastSignIn }
func (a *Account) DeletedAt() *time.Time { return a.deletedAt }

func (a *Account) SetID(id string) { a.id = id }
func (a *Account) SetSequence(seq int) { a.sequence = seq }
func (a *Account) SetPasswordHash(hash string) { a.passwordHash = hash }
func (a *Account) SetCreatedAt(t time.Time) { a.createdAt = t }
func (a *Account) SetUpdatedAt(t time.Time) { a.updatedAt = t }
func (a *Account) SetLastSignInAt(t *time.Time) { a.lastSignIn = t }
func (a *Account) SetDeletedAt(t *time.Time) { a.deletedAt = t }
func (a *Account) IsDeleted() bool { return a.deletedAt != nil }
func (a *Account) Identity() *Identity { return &Identity{ID: a.id, Email: a.email} }

// Validate checks that the account has an id, a well-formed email and a password hash.
func (a *Account) Validate() error {
	if a.id == "" {
		return fmt.Errorf("account id is required")
	}
	if a.email == "" {
		return fmt.Errorf("account email is required")
	}
	if _, err := mail.ParseAddress(a.email); err != nil {
		return fmt.Errorf("invalid email %q: %w", a.email, err)
	}
	if a.passwordHash == "" {
		return fmt.Errorf("account password hash is required")
	}
	return nil
}
