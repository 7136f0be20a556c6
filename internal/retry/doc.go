// Package retry retries establishing a PostgreSQL connection with
// exponential backoff.
//
// It is only used while opening the source pool. Table extraction and
// loading are never retried.
//
//	executor := retry.NewExecutor(retry.NewConnectionErrorClassifier(), retry.NewExponentialBackoff(3))
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    return pool.Ping(ctx)
//	})
package retry
