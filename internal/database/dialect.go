package database

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// dialect captures the few places SQLite and Postgres disagree.
type dialect struct {
	name string
}

var (
	sqliteDialect   = dialect{name: "sqlite"}
	postgresDialect = dialect{name: "postgres"}
)

// rebind rewrites ? placeholders into $n for Postgres.
func (d dialect) rebind(query string) string {
	if d.name != "postgres" {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 16)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// limitAll is the LIMIT value meaning "no limit", needed when only OFFSET is set.
func (d dialect) limitAll() string {
	if d.name == "postgres" {
		return "ALL"
	}
	return "-1"
}

func (d dialect) schemaVersion(conn *sql.DB) (int, error) {
	var version int
	if d.name == "postgres" {
		if _, err := conn.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
			return 0, fmt.Errorf("creating schema_version: %w", err)
		}
		err := conn.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
		if err != nil {
			return 0, fmt.Errorf("reading schema version: %w", err)
		}
		return version, nil
	}
	if err := conn.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return version, nil
}

func (d dialect) setSchemaVersion(conn *sql.DB, version int) error {
	if d.name == "postgres" {
		_, err := conn.Exec(`INSERT INTO schema_version (version) VALUES ($1)`, version)
		return err
	}
	// PRAGMA cannot run inside the migration transaction under modernc/sqlite.
	_, err := conn.Exec(fmt.Sprintf("PRAGMA user_version = %d", version))
	return err
}

// placeholders returns "?,?,?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func stringArgs(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}

// maxBatchIDs bounds the ids bound into one IN list. SQLite and Postgres both
// cap the number of bind parameters per statement.
const maxBatchIDs = 500

// chunkIDs splits ids into slices of at most size.
func chunkIDs(ids []string, size int) [][]string {
	var chunks [][]string
	for len(ids) > size {
		chunks = append(chunks, ids[:size])
		ids = ids[size:]
	}
	if len(ids) > 0 {
		chunks = append(chunks, ids)
	}
	return chunks
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
