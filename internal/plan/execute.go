package plan

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const explainPrefix = "EXPLAIN (ANALYZE, BUFFERS, FORMAT JSON) "

// Execute connects to the database, runs the query under EXPLAIN ANALYZE and
// returns the resulting plans.
func Execute(ctx context.Context, dsn string, sql string) ([]ExplainOutput, error) {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	defer conn.Close(ctx)

	return ExecuteConn(ctx, conn, sql)
}

// ExecuteConn runs the query under EXPLAIN ANALYZE on an existing connection.
// The statement executes inside a transaction that is always rolled back, so
// analyzed writes are not persisted.
func ExecuteConn(ctx context.Context, conn *pgx.Conn, sql string) ([]ExplainOutput, error) {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var jsonStr string
	if err := tx.QueryRow(ctx, explainPrefix+sql).Scan(&jsonStr); err != nil {
		return nil, fmt.Errorf("executing EXPLAIN: %w", err)
	}

	return Parse([]byte(jsonStr))
}
