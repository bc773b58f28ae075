// Package migrations holds the embedded Postgres and ClickHouse schema.
package migrations

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed postgres/*.sql
var postgresFS embed.FS

//go:embed clickhouse/*.sql
var clickhouseFS embed.FS

// Migration is one embedded SQL file.
type Migration struct {
	Name string
	SQL  string
}

// Postgres returns the Postgres migrations in apply order.
func Postgres() ([]Migration, error) {
	return load(postgresFS, "postgres")
}

// Clickhouse returns the ClickHouse migrations in apply order.
func Clickhouse() ([]Migration, error) {
	return load(clickhouseFS, "clickhouse")
}

// load reads dir/*.sql sorted by name, skipping blank files.
func load(fsys fs.FS, dir string) ([]Migration, error) {
	names, err := fs.Glob(fsys, dir+"/*.sql")
	if err != nil {
		return nil, fmt.Errorf("list %s migrations: %w", dir, err)
	}
	sort.Strings(names)

	out := make([]Migration, 0, len(names))
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		if strings.TrimSpace(string(data)) == "" {
			continue
		}
		out = append(out, Migration{Name: strings.TrimPrefix(name, dir+"/"), SQL: string(data)})
	}
	return out, nil
}
