package catalog

import (
	"context"
	"fmt"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"

	// Registers the "pgx" database/sql driver.
	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	serverVersionQuery = `SELECT version()`

	cacheHitRatioQuery = `
		SELECT coalesce(round(100.0 * sum(blks_hit) / nullif(sum(blks_hit) + sum(blks_read), 0), 1), 0)
		FROM pg_stat_database`

	unusedIndexesQuery = `
		SELECT s.schemaname AS schema_name, s.relname AS table_name, s.indexrelname AS index_name, s.idx_scan AS scans
		FROM pg_stat_user_indexes s
		JOIN pg_index i ON i.indexrelid = s.indexrelid
		WHERE s.idx_scan = 0 AND NOT i.indisunique
		ORDER BY s.schemaname, s.relname, s.indexrelname`

	securitySettingsQuery = `
		SELECT
			current_setting('ssl') AS ssl,
			current_setting('password_encryption') AS password_encryption,
			(SELECT count(*) FROM pg_roles WHERE rolsuper) AS superusers`

	topStatementsQuery = `
		SELECT calls, mean_exec_time, query
		FROM pg_stat_statements
		ORDER BY mean_exec_time DESC
		LIMIT $1`
)

// IndexedColumn is one (table, column) pair covered by an index.
type IndexedColumn struct {
	Table  string `db:"table_name"`
	Column string `db:"column_name"`
	Index  string `db:"index_name"`
}

// TableScanStats summarizes scan activity for one user table.
type TableScanStats struct {
	Schema     string `db:"schema_name"`
	Table      string `db:"table_name"`
	SeqScans   int64  `db:"seq_scan"`
	IndexScans int64  `db:"idx_scan"`
	LiveRows   int64  `db:"n_live_tup"`
}

// IndexUsage reports how often one index has been scanned.
type IndexUsage struct {
	Schema string `db:"schema_name"`
	Table  string `db:"table_name"`
	Index  string `db:"index_name"`
	Scans  int64  `db:"scans"`
}

// SecuritySettings carries the security-relevant server settings the health
// checks inspect.
type SecuritySettings struct {
	SSL                string `db:"ssl"`
	PasswordEncryption string `db:"password_encryption"`
	Superusers         int    `db:"superusers"`
}

// StatementStat is one pg_stat_statements row.
type StatementStat struct {
	Calls    int64   `db:"calls"`
	MeanTime float64 `db:"mean_exec_time"`
	Query    string  `db:"query"`
}

// Catalog reads schema and statistics metadata from a live database.
type Catalog struct {
	DB *sqlx.DB
}

// Open connects to the database and pings it.
func Open(ctx context.Context, dsn string) (*Catalog, error) {
	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	return &Catalog{DB: db}, nil
}

// New wraps an existing connection.
func New(db *sqlx.DB) *Catalog {
	return &Catalog{DB: db}
}

func (c *Catalog) Close() error {
	return c.DB.Close()
}

// Indexes returns every indexed column of the given tables. An empty table
// list returns no rows.
func (c *Catalog) Indexes(ctx context.Context, tables []string) ([]IndexedColumn, error) {
	if len(tables) == 0 {
		return nil, nil
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("t.relname AS table_name", "a.attname AS column_name", "i.relname AS index_name")
	sb.From("pg_index ix")
	sb.Join("pg_class i", "i.oid = ix.indexrelid")
	sb.Join("pg_class t", "t.oid = ix.indrelid")
	sb.Join("pg_attribute a", "a.attrelid = t.oid", "a.attnum = ANY(ix.indkey)")
	sb.Where(sb.In("t.relname", sqlbuilder.Flatten(tables)...))
	sb.OrderBy("t.relname", "i.relname", "a.attnum")

	query, args := sb.Build()

	var cols []IndexedColumn
	if err := c.DB.SelectContext(ctx, &cols, query, args...); err != nil {
		return nil, fmt.Errorf("querying indexes: %w", err)
	}
	return cols, nil
}

// ServerVersion returns the full version() string.
func (c *Catalog) ServerVersion(ctx context.Context) (string, error) {
	var version string
	if err := c.DB.GetContext(ctx, &version, serverVersionQuery); err != nil {
		return "", fmt.Errorf("querying server version: %w", err)
	}
	return version, nil
}

// CacheHitRatio returns the cluster-wide shared buffer hit percentage.
func (c *Catalog) CacheHitRatio(ctx context.Context) (float64, error) {
	var ratio float64
	if err := c.DB.GetContext(ctx, &ratio, cacheHitRatioQuery); err != nil {
		return 0, fmt.Errorf("querying cache hit ratio: %w", err)
	}
	return ratio, nil
}

// SeqScanHeavyTables lists user tables whose sequential scans outnumber index
// scans and that hold at least minRows live rows.
func (c *Catalog) SeqScanHeavyTables(ctx context.Context, minRows int64) ([]TableScanStats, error) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("schemaname AS schema_name", "relname AS table_name", "seq_scan", "coalesce(idx_scan, 0) AS idx_scan", "n_live_tup")
	sb.From("pg_stat_user_tables")
	sb.Where(
		sb.GreaterThan("seq_scan", sqlbuilder.Raw("coalesce(idx_scan, 0)")),
		sb.GreaterEqualThan("n_live_tup", minRows),
	)
	sb.OrderBy("seq_scan").Desc()

	query, args := sb.Build()

	var stats []TableScanStats
	if err := c.DB.SelectContext(ctx, &stats, query, args...); err != nil {
		return nil, fmt.Errorf("querying table scan stats: %w", err)
	}
	return stats, nil
}

// UnusedIndexes lists non-unique indexes that have never been scanned.
func (c *Catalog) UnusedIndexes(ctx context.Context) ([]IndexUsage, error) {
	var idxs []IndexUsage
	if err := c.DB.SelectContext(ctx, &idxs, unusedIndexesQuery); err != nil {
		return nil, fmt.Errorf("querying unused indexes: %w", err)
	}
	return idxs, nil
}

// SecuritySettings reads the security-relevant server settings.
func (c *Catalog) SecuritySettings(ctx context.Context) (SecuritySettings, error) {
	var s SecuritySettings
	if err := c.DB.GetContext(ctx, &s, securitySettingsQuery); err != nil {
		return SecuritySettings{}, fmt.Errorf("querying security settings: %w", err)
	}
	return s, nil
}

// TopStatements returns the slowest statements by mean execution time. It
// fails when the pg_stat_statements extension is not installed; callers
// treat that as an optional check.
func (c *Catalog) TopStatements(ctx context.Context, limit int) ([]StatementStat, error) {
	var stats []StatementStat
	if err := c.DB.SelectContext(ctx, &stats, topStatementsQuery, limit); err != nil {
		return nil, fmt.Errorf("querying statement stats: %w", err)
	}
	return stats, nil
}
