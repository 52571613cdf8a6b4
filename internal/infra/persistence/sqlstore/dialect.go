package sqlstore

import (
	"database/sql"
	"strconv"
	"time"
)

// Dialect captures the differences between the supported SQL engines.
type Dialect struct {
	Name        string
	ddl         string
	placeholder func(n int) string
	// lower names the SQL function folding case for name matching.
	lower string
	// readOnlyTx requests READ ONLY transactions for sessions.
	readOnlyTx bool
	// limitAll is the LIMIT operand meaning "no limit", needed before OFFSET.
	limitAll string
	// resetSequences runs after Import so later inserts do not collide.
	resetSequences []string
}

var (
	// Postgres uses numbered placeholders and read-only sessions.
	Postgres = Dialect{
		Name:        "postgres",
		ddl:         postgresDDL,
		placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
		lower:       "lower",
		readOnlyTx:  true,
		limitAll:    "ALL",
		resetSequences: []string{
			resetSequence("city"),
			resetSequence("street"),
			resetSequence("building"),
			resetSequence("activity"),
			resetSequence("organisation_address"),
			resetSequence("organisation"),
			resetSequence("phone"),
			resetSequence("organisation_activity"),
		},
	}
	// SQLite uses positional placeholders. Its built-in lower() folds ASCII
	// only, so the sqlite package registers LowerFunc with full Unicode folding.
	SQLite = Dialect{
		Name:        "sqlite",
		ddl:         sqliteDDL,
		placeholder: func(int) string { return "?" },
		lower:       LowerFunc,
		limitAll:    "-1",
	}
)

// LowerFunc is the Unicode-aware lower-case function SQLite connections must
// provide.
const LowerFunc = "go_lower"

func resetSequence(table string) string {
	return "SELECT setval(pg_get_serial_sequence('" + table + "', 'id'), COALESCE(MAX(id), 0) + 1, false) FROM " + table
}

func (d Dialect) lowerFunc() string {
	if d.lower == "" {
		return "lower"
	}
	return d.lower
}

// DDL returns the schema script for the dialect.
func (d Dialect) DDL() string { return d.ddl }

func (d Dialect) txOptions() *sql.TxOptions {
	return &sql.TxOptions{ReadOnly: d.readOnlyTx}
}

// PoolOptions bounds the connection pool.
type PoolOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Configure applies the non-zero pool options to db.
func (o PoolOptions) Configure(db *sql.DB) {
	if o.MaxOpenConns > 0 {
		db.SetMaxOpenConns(o.MaxOpenConns)
	}
	if o.MaxIdleConns > 0 {
		db.SetMaxIdleConns(o.MaxIdleConns)
	}
	if o.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(o.ConnMaxLifetime)
	}
}
