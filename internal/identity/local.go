package identity

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/repositories"
	"github.com/desertthunder/reelx/internal/shared"
)

// LocalProvider implements [Provider] on top of the local accounts table.
type LocalProvider struct {
	notifier
	accounts *repositories.AccountRepository
	cost     int
	logger   *log.Logger
	now      func() time.Time
}

// LocalOpts configures a [LocalProvider].
type LocalOpts struct {
	// Cost is the bcrypt cost. Zero means [bcrypt.DefaultCost].
	Cost   int
	Logger *log.Logger
}

// NewLocalProvider creates a provider backed by accounts.
func NewLocalProvider(accounts *repositories.AccountRepository, opts LocalOpts) *LocalProvider {
	cost := opts.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &LocalProvider{
		accounts: accounts,
		cost:     cost,
		logger:   logger.WithPrefix("identity"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (p *LocalProvider) Name() string { return "local" }

// Subscribe implements [Provider].
func (p *LocalProvider) Subscribe(fn Listener) func() { return p.subscribe(fn) }

// CreateAccount hashes password, stores a new account and signs it in.
func (p *LocalProvider) CreateAccount(ctx context.Context, email, password string) (*models.Identity, error) {
	email = shared.NormalizeEmail(email)
	if err := checkCredentials(email, password); err != nil {
		return nil, err
	}
	if len(password) < MinPasswordLength {
		return nil, NewError(CodeWeakPassword)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return nil, &Error{Code: CodeInternal, Message: err.Error(), Err: err}
	}

	account := models.NewAccount(0, email, string(hash))
	if err := p.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, shared.ErrEmailExists) {
			return nil, NewError(CodeEmailExists)
		}
		return nil, &Error{Code: CodeInternal, Message: err.Error(), Err: err}
	}

	identity := account.Identity()
	p.logger.Debug("account created", "id", identity.ID, "email", identity.Email)
	p.publish(identity)
	return identity, nil
}

// VerifyCredentials checks password against the stored hash and signs the account in.
func (p *LocalProvider) VerifyCredentials(ctx context.Context, email, password string) (*models.Identity, error) {
	email = shared.NormalizeEmail(email)
	if err := checkCredentials(email, password); err != nil {
		return nil, err
	}

	account, err := p.accounts.GetByEmail(ctx, email)
	if errors.Is(err, shared.ErrAccountNotFound) {
		return nil, NewError(CodeInvalidCredentials)
	}
	if err != nil {
		return nil, &Error{Code: CodeInternal, Message: err.Error(), Err: err}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash()), []byte(password)); err != nil {
		p.logger.Debug("password mismatch", "email", email)
		return nil, NewError(CodeInvalidCredentials)
	}

	if err := p.accounts.TouchSignIn(ctx, account.ID(), p.now()); err != nil {
		p.logger.Warn("failed to record sign-in", "id", account.ID(), "error", err)
	}

	identity := account.Identity()
	p.logger.Debug("signed in", "id", identity.ID)
	p.publish(identity)
	return identity, nil
}

// EndSession signs out whoever is signed in.
func (p *LocalProvider) EndSession(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return &Error{Code: CodeInternal, Message: err.Error(), Err: err}
	}
	p.logger.Debug("signed out")
	p.publish(nil)
	return nil
}

func checkCredentials(email, password string) error {
	if _, err := mail.ParseAddress(email); email == "" || err != nil {
		return NewError(CodeInvalidEmail)
	}
	if password == "" {
		return NewError(CodeMissingPassword)
	}
	return nil
}

// String describes the provider for status output.
func (p *LocalProvider) String() string {
	return fmt.Sprintf("local (bcrypt cost %d)", p.cost)
}
