package main

import (
	"context"
	"fmt"
	"net"

	"github.com/desertthunder/reelx/internal/server"
	"github.com/desertthunder/reelx/internal/session"
	"github.com/desertthunder/reelx/internal/shared"
	"github.com/desertthunder/reelx/internal/web"
	"github.com/urfave/cli/v3"
)

// Serve runs the web front end until the process is interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr()
	}

	app, sessions, err := r.webApp(ctx)
	if err != nil {
		return err
	}
	defer sessions.Close()

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	url := "http://" + ln.Addr().String() + session.LoginRoute
	r.writePlain("Serving on %s\n", url)

	if cmd.Bool("open") {
		if err := shared.OpenBrowser(url); err != nil {
			r.logger.Warn("failed to open browser", "error", err)
		}
	}

	return server.New(addr, app.Handler(), r.logger).Serve(ctx, ln)
}

func (r *Runner) webApp(ctx context.Context) (*web.App, *session.Manager, error) {
	loader, err := r.catalogLoader(ctx)
	if err != nil {
		return nil, nil, err
	}

	history := web.NewHistory()
	flash := web.NewFlash()
	sessions, err := r.newSession(history, flash)
	if err != nil {
		return nil, nil, err
	}

	app, err := web.New(web.Opts{
		Session:   sessions,
		Loader:    loader,
		History:   history,
		Flash:     flash,
		Logger:    r.logger,
		Metrics:   r.metrics,
		ImageBase: r.imageBase(),
	})
	if err != nil {
		sessions.Close()
		return nil, nil, err
	}
	return app, sessions, nil
}
