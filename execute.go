package sqlbridge

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/joacominatel/sqlbridge/drivers"
)

// Execute runs exactly one SQL statement against the target and
// drains every result set it produces. The connection and all
// statement resources are released before returning, on every path.
// No failure is retried; errors other than ErrInvalidArgument and the
// drivers package's own kinds are wrapped in ErrQueryExecution with
// the cause preserved.
func (c *Client) Execute(ctx context.Context, target Target, query string, opts Options) (*QueryResult, error) {
	if target.URL == "" {
		return nil, &ErrInvalidArgument{Name: "connection URL"}
	}
	if query == "" {
		return nil, &ErrInvalidArgument{Name: "SQL text"}
	}

	fam, err := c.registry.Resolve(target.URL)
	if err != nil {
		return nil, err
	}

	log := c.log.With(
		zap.String("run_id", uuid.NewString()),
		zap.String("driver", string(fam.ID)),
	)

	if err := c.registry.EnsureActivated(fam.ID, true); err != nil {
		return nil, err
	}

	res := &QueryResult{}

	// Notices arrive while the statement runs; they are appended to
	// the result only after draining completes, in arrival order.
	var notices []string
	var warn drivers.WarningSink
	if opts.CollectWarnings {
		warn = func(message string) {
			notices = append(notices, message)
		}
	}

	db, err := fam.Open(target, warn)
	if err != nil {
		return nil, &ErrQueryExecution{Cause: err}
	}
	dbx := sqlx.NewDb(db, string(fam.ID))
	defer dbx.Close()

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	rows, err := dbx.QueryxContext(ctx, query)
	if err != nil {
		return nil, &ErrQueryExecution{Cause: err}
	}
	defer rows.Close()

	if err := drainOutcomes(&rowOutcomes{rows: rows}, res); err != nil {
		return nil, &ErrQueryExecution{Cause: err}
	}

	for _, message := range notices {
		res.appendWarning(message)
	}

	log.Debug("statement drained",
		zap.Int("rows", len(res.Rows)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}
