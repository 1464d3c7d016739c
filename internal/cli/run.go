package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sinner-cli/sinner/internal/remote"
	"github.com/sinner-cli/sinner/internal/router"
	"github.com/sinner-cli/sinner/internal/store"
)

// loggerSetter is implemented by clients that accept a logger.
type loggerSetter interface {
	SetLogger(*zap.Logger)
}

// newRouter builds a router over the configured inference client.
func newRouter() (*router.Router, error) {
	client, err := newClient(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("create llm client: %w", err)
	}
	if ls, ok := client.(loggerSetter); ok {
		ls.SetLogger(logger.Named("llm"))
	}
	return router.New(client, router.WithLogger(logger.Named("router"))), nil
}

// openHistory opens the history database, or returns nil when history is
// disabled.
func openHistory() (*store.DB, error) {
	if !cfg.History.Enabled {
		return nil, nil
	}
	path := cfg.History.Path
	if path == "" {
		var err error
		path, err = store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve db path: %w", err)
		}
	}
	db, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return db, nil
}

// generate runs one command locally or through --remote and returns the
// formatted output.
func generate(ctx context.Context, cmd router.Command, input string, opts router.Options) (string, error) {
	if useRemote() {
		c := remote.NewClient(cfg.ServerURL(), cfg.LLM.Timeout)
		logger.Debug("remote run", zap.String("server", c.URL()), zap.String("command", string(cmd)))
		resp, err := c.Run(ctx, cmd, input, opts)
		if err != nil {
			return "", err
		}
		return resp.Output, nil
	}

	r, err := newRouter()
	if err != nil {
		return "", err
	}
	res, err := r.Execute(ctx, cmd, input, opts)
	if err != nil {
		return "", err
	}

	// History is best effort; a broken database never loses the output.
	db, err := openHistory()
	if err != nil {
		logger.Warn("history unavailable", zap.Error(err))
		return res.Output, nil
	}
	if db != nil {
		defer db.Close()
		if err := db.Record(string(res.Command), input, res.Output, res.Provider, res.Model,
			res.Route.Temperature, res.Duration); err != nil {
			logger.Warn("record generation", zap.Error(err))
		}
	}
	return res.Output, nil
}
