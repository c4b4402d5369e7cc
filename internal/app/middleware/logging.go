package middleware

import (
	"context"
	"log/slog"
	"time"

	"innkeep/internal/app/commands"
	"innkeep/internal/app/queries"
)

// Logging records every dispatched command with its outcome and latency.
func Logging(log *slog.Logger) CommandMiddleware {
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			start := time.Now()
			res, err := nextFn(ctx, cmd)
			if log != nil {
				if err != nil {
					log.Warn("command failed", "key", cmd.Key(), "duration", time.Since(start), "error", err)
				} else {
					log.Info("command handled", "key", cmd.Key(), "duration", time.Since(start))
				}
			}
			return res, err
		})
	}
}

// QueryLogging records failed queries; successful reads stay quiet.
func QueryLogging(log *slog.Logger) QueryMiddleware {
	return func(next queries.Bus) queries.Bus {
		nextFn := wrapQuery(next)
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			res, err := nextFn(ctx, q)
			if err != nil && log != nil {
				log.Debug("query failed", "key", q.Key(), "error", err)
			}
			return res, err
		})
	}
}
