package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/sqlbridge/sqlbridge/pkg/errcat"
	"github.com/sqlbridge/sqlbridge/pkg/utils"
)

// executor is satisfied by both *sql.Conn and *sql.Tx, so the primitives run
// the same path whether or not a caller-supplied transaction is in play.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// logExecFailure records a provider-level failure with enough context to
// diagnose it. The error itself is returned to the caller unchanged.
func (e *Engine) logExecFailure(op, text string, paramCount int, err error) {
	e.log.Critical(op+" failed", err,
		zap.String("statement", text),
		zap.Int("params", paramCount))
}

// ExecuteNonQuery runs the statement and then the provider's last-insert-id
// statement on the same connection or transaction, returning the affected
// row count and the parsed identifier.
//
// With tx == nil the engine creates its own connection and closes it on
// every exit path. With a transaction the transaction's connection is reused
// and left open for the caller. If the provider declares no last-insert-id
// statement the id is reported as 0.
func (e *Engine) ExecuteNonQuery(ctx context.Context, text string, params []Param, tx *Transaction) (rowsAffected, lastInsertID int64, err error) {
	var ex executor
	if tx != nil {
		ex = tx.tx
	} else {
		conn, cerr := e.CreateConnection(ctx)
		if cerr != nil {
			return 0, 0, cerr
		}
		defer conn.Close()
		ex = conn.conn
	}

	res, err := ex.ExecContext(ctx, text, bindArgs(params)...)
	if err != nil {
		e.logExecFailure("non-query", text, len(params), err)
		return 0, 0, err
	}

	rowsAffected, err = res.RowsAffected()
	if err != nil {
		e.logExecFailure("non-query rows-affected", text, len(params), err)
		return 0, 0, err
	}

	if e.provider.LastInsertIDStatement == "" {
		return rowsAffected, 0, nil
	}

	var raw any
	if err = ex.QueryRowContext(ctx, e.provider.LastInsertIDStatement).Scan(&raw); err != nil {
		e.logExecFailure("last-insert-id", e.provider.LastInsertIDStatement, 0, err)
		return rowsAffected, 0, err
	}

	lastInsertID, err = parseInsertID(raw)
	if err != nil {
		e.log.Critical("last-insert-id result not parsable", err,
			zap.Any("value", raw))
		return rowsAffected, 0, err
	}
	return rowsAffected, lastInsertID, nil
}

func parseInsertID(raw any) (int64, error) {
	id, ok := utils.ToInt64(raw)
	if !ok {
		return 0, errcat.New("LAST_INSERT_ID_PARSE_FAILED", fmt.Sprintf("%v (%T)", raw, raw))
	}
	return id, nil
}

// ExecuteScalar runs the statement and returns the first column of its first
// row, or nil when the result set is empty. The connection is scoped to the
// call.
func (e *Engine) ExecuteScalar(ctx context.Context, text string, params []Param) (any, error) {
	conn, err := e.CreateConnection(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	var value any
	err = conn.conn.QueryRowContext(ctx, text, bindArgs(params)...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		e.logExecFailure("scalar", text, len(params), err)
		return nil, err
	}
	return value, nil
}

// ExecuteReader runs the statement and returns a forward-only cursor. The
// connection is deliberately not released here: closing it would invalidate
// the open result set, so the returned Rows releases it on Close.
func (e *Engine) ExecuteReader(ctx context.Context, text string, params []Param) (*Rows, error) {
	conn, err := e.CreateConnection(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := conn.conn.QueryContext(ctx, text, bindArgs(params)...)
	if err != nil {
		conn.Close()
		e.logExecFailure("reader", text, len(params), err)
		return nil, err
	}
	return &Rows{Rows: rows, conn: conn}, nil
}

// Fill runs the statement and materializes the whole result set into an
// in-memory table. The connection is scoped to the call.
func (e *Engine) Fill(ctx context.Context, text string, params []Param) (*Table, error) {
	conn, err := e.CreateConnection(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	rows, err := conn.conn.QueryContext(ctx, text, bindArgs(params)...)
	if err != nil {
		e.logExecFailure("fill", text, len(params), err)
		return nil, err
	}
	defer rows.Close()

	return materialize(rows)
}
