package main

import (
	"github.com/desertthunder/reelx/internal/formatter"
	"github.com/urfave/cli/v3"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

func credentialFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "email",
			Aliases:  []string{"e"},
			Usage:    "Account email address",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "password",
			Aliases:  []string{"p"},
			Usage:    "Account password",
			Sources:  cli.EnvVars("REELX_PASSWORD"),
			Required: true,
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Print the signed in identity as JSON",
		},
	}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create the configuration file and initialize the database",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write a config.toml populated with defaults",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent migration",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupRollback,
			},
		},
	}
}

func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage accounts with the configured identity provider",
		Commands: []*cli.Command{
			{
				Name:   "signup",
				Usage:  "Create an account and sign in",
				Flags:  credentialFlags(),
				Action: r.AuthSignUp,
			},
			{
				Name:   "signin",
				Usage:  "Check credentials by signing in",
				Flags:  credentialFlags(),
				Action: r.AuthSignIn,
			},
			{
				Name:   "logout",
				Usage:  "Sign in, then end the session",
				Flags:  credentialFlags(),
				Action: r.AuthLogOut,
			},
			{
				Name:  "status",
				Usage: "Show the identity provider and known accounts",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output as JSON"},
				},
				Action: r.AuthStatus,
			},
		},
	}
}

func catalogCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "Fetch the catalog from TMDB",
		Commands: []*cli.Command{
			{
				Name:  "page",
				Usage: "Load all eight categories of the home page",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output as JSON"},
					&cli.BoolFlag{Name: "pretty", Usage: "Indent JSON output"},
				},
				Action: r.CatalogPage,
			},
			{
				Name:      "row",
				Usage:     "Fetch a single category",
				ArgsUsage: "<category>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "category"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output as JSON"},
				},
				Action: r.CatalogRow,
			},
			{
				Name:      "get",
				Usage:     "Make a raw GET request against the TMDB API",
				ArgsUsage: "<path>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output compact JSON"},
				},
				Action: r.CatalogGet,
			},
			{
				Name:  "export",
				Usage: "Export the home page to files",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format (json, csv, markdown, text)",
						Value:   string(formatter.JSON),
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file, or directory with --split and markdown",
					},
					&cli.BoolFlag{
						Name:  "split",
						Usage: "Write one file per category",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent writers used with --split",
						Value: 4,
					},
				},
				Action: r.CatalogExport,
			},
		},
	}
}

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the web front end",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address, overrides [server] in the config",
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the login page in a browser",
			},
		},
		Action: r.Serve,
	}
}

func browseCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "browse",
		Usage:  "Browse the catalog in the terminal",
		Action: r.Browse,
	}
}
