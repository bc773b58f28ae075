package migrations

import (
	"context"
	"fmt"

	"strategy-gate/internal/storage/postgres"
)

// RunPostgresMigrations applies every Postgres migration. The files use
// IF NOT EXISTS so reapplying is harmless.
func RunPostgresMigrations(ctx context.Context, pool *postgres.Pool) error {
	ms, err := Postgres()
	if err != nil {
		return err
	}
	for _, m := range ms {
		if _, err := pool.Exec(ctx, m.SQL); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.Name, err)
		}
	}
	return nil
}
