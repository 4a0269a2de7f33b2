package engine

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/sqlbridge/sqlbridge/pkg/errcat"
)

// Transaction pairs a sql.Tx with the connection it runs on. The connection
// belongs to the caller for the transaction's whole lifetime; the engine
// never closes it.
type Transaction struct {
	tx   *sql.Tx
	conn *Connection
}

// Connection returns the connection the transaction runs on.
func (t *Transaction) Connection() *Connection {
	return t.conn
}

// OpenTransaction begins a transaction on the given connection.
func (e *Engine) OpenTransaction(ctx context.Context, conn *Connection) (*Transaction, error) {
	tx, err := conn.conn.BeginTx(ctx, nil)
	if err != nil {
		e.log.Critical("transaction could not be started", err,
			zap.String("connection", conn.ID))
		return nil, errcat.Wrap("TRANSACTION_OPEN_FAILED", conn.ID, err)
	}
	return &Transaction{tx: tx, conn: conn}, nil
}

// CommitTransaction commits. A nil transaction is a no-op.
func (e *Engine) CommitTransaction(tx *Transaction) error {
	if tx == nil {
		return nil
	}
	if err := tx.tx.Commit(); err != nil {
		e.log.Critical("transaction could not be committed", err,
			zap.String("connection", tx.conn.ID))
		return errcat.Wrap("TRANSACTION_COMMIT_FAILED", tx.conn.ID, err)
	}
	return nil
}

// RollbackTransaction rolls back. A nil transaction is a no-op.
func (e *Engine) RollbackTransaction(tx *Transaction) error {
	if tx == nil {
		return nil
	}
	if err := tx.tx.Rollback(); err != nil {
		e.log.Critical("transaction could not be rolled back", err,
			zap.String("connection", tx.conn.ID))
		return errcat.Wrap("TRANSACTION_ROLLBACK_FAILED", tx.conn.ID, err)
	}
	return nil
}
