package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/repositories"
	"github.com/desertthunder/reelx/internal/session"
	"github.com/urfave/cli/v3"
)

type sessionCall func(m *session.Manager, ctx context.Context, email, password string) error

// AuthSignUp creates an account with the configured identity provider.
func (r *Runner) AuthSignUp(ctx context.Context, cmd *cli.Command) error {
	sessions, err := r.authenticate(ctx, cmd, (*session.Manager).SignUp)
	if err != nil {
		return err
	}
	defer sessions.Close()

	r.logger.Info("account created", "email", sessions.CurrentUser().Email)
	return r.writeIdentity("✓ Signed up", sessions.CurrentUser(), cmd.Bool("json"))
}

// AuthSignIn verifies credentials against the configured identity provider.
func (r *Runner) AuthSignIn(ctx context.Context, cmd *cli.Command) error {
	sessions, err := r.authenticate(ctx, cmd, (*session.Manager).SignIn)
	if err != nil {
		return err
	}
	defer sessions.Close()

	return r.writeIdentity("✓ Signed in", sessions.CurrentUser(), cmd.Bool("json"))
}

// AuthLogOut signs in and immediately ends the session, exercising the provider's sign out.
func (r *Runner) AuthLogOut(ctx context.Context, cmd *cli.Command) error {
	sessions, err := r.authenticate(ctx, cmd, (*session.Manager).SignIn)
	if err != nil {
		return err
	}
	defer sessions.Close()

	email := sessions.CurrentUser().Email
	if err := sessions.LogOut(ctx); err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}

	r.logger.Info("signed out", "email", email)
	return r.writePlain("✓ Signed out %s\n", email)
}

type accountStatus struct {
	Email      string     `json:"email"`
	CreatedAt  time.Time  `json:"created_at"`
	LastSignIn *time.Time `json:"last_sign_in,omitempty"`
}

type authStatus struct {
	Provider string          `json:"provider"`
	Accounts []accountStatus `json:"accounts,omitempty"`
}

// AuthStatus reports the configured identity provider and, for the local provider, the stored accounts.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	p, err := r.identityProvider()
	if err != nil {
		return err
	}

	status := authStatus{Provider: p.Name()}
	if r.db != nil {
		accounts, err := repositories.NewAccountRepository(r.db).List(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to list accounts: %w", err)
		}
		for _, a := range accounts {
			status.Accounts = append(status.Accounts, accountStatus{
				Email:      a.Email(),
				CreatedAt:  a.CreatedAt(),
				LastSignIn: a.LastSignInAt(),
			})
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(status, true)
	}

	r.writePlainHeader("Identity")
	r.writePlain("Provider: %s\n", status.Provider)
	if r.db == nil {
		return r.writePlain("Accounts are managed by the remote provider\n")
	}

	r.writePlainln("Accounts (%d)", len(status.Accounts))
	for _, a := range status.Accounts {
		last := "never"
		if a.LastSignIn != nil {
			last = a.LastSignIn.Local().Format(time.DateTime)
		}
		r.writePlain("  %-32s created %s, last sign in %s\n", a.Email, a.CreatedAt.Local().Format(time.DateOnly), last)
	}
	return nil
}

// authenticate runs call against a fresh session. Provider failures are printed as they are alerted.
func (r *Runner) authenticate(ctx context.Context, cmd *cli.Command, call sessionCall) (*session.Manager, error) {
	nav := session.NavigatorFunc(func(route string) {
		r.logger.Debug("navigate", "route", route)
	})
	alerts := session.AlerterFunc(func(message string) {
		r.writePlain("✗ %s\n", message)
	})

	sessions, err := r.newSession(nav, alerts)
	if err != nil {
		return nil, err
	}

	if err := sessions.WaitReady(ctx); err != nil {
		sessions.Close()
		return nil, err
	}

	if err := call(sessions, ctx, cmd.String("email"), cmd.String("password")); err != nil {
		sessions.Close()
		return nil, err
	}
	return sessions, nil
}

func (r *Runner) writeIdentity(title string, id *models.Identity, asJSON bool) error {
	if asJSON {
		return r.writeJSON(id, true)
	}
	r.writePlain("%s as %s\n", title, id.Email)
	return r.writePlain("ID: %s\n", id.ID)
}
