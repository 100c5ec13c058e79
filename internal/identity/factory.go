package identity

import (
	"database/sql"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/reelx/internal/repositories"
	"github.com/desertthunder/reelx/internal/shared"
)

// NewFromConfig builds the provider selected by cfg.Provider.
//
// db is only used by the local provider and may be nil otherwise.
func NewFromConfig(cfg shared.IdentityConfig, db *sql.DB, client *http.Client, logger *log.Logger) (Provider, error) {
	switch cfg.Provider {
	case "", "local":
		if db == nil {
			return nil, fmt.Errorf("%w: the local identity provider needs a database", shared.ErrMissingConfig)
		}
		return NewLocalProvider(repositories.NewAccountRepository(db), LocalOpts{Logger: logger}), nil
	case "firebase":
		return NewToolkitProvider(ToolkitOpts{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			HTTPClient: client,
			Logger:     logger,
		})
	default:
		return nil, fmt.Errorf("%w: unknown identity provider %q", shared.ErrInvalidConfig, cfg.Provider)
	}
}
