package engine

import "database/sql"

// Rows is a forward-only cursor that owns its connection. Closing it closes
// the underlying result set and only then releases the connection (or the
// backup lock, when the cursor runs on the backup connection).
type Rows struct {
	*sql.Rows
	conn *Connection
}

// Close closes the cursor and releases its connection. Safe to call more
// than once.
func (r *Rows) Close() error {
	err := r.Rows.Close()
	if cerr := r.conn.Close(); err == nil {
		err = cerr
	}
	return err
}

// Table is a fully materialized result set.
type Table struct {
	Columns []string
	Rows    [][]any
}

// RowCount returns the number of materialized rows.
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// materialize drains rows into a Table.
func materialize(rows *sql.Rows) (*Table, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	table := &Table{Columns: cols}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		table.Rows = append(table.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return table, nil
}
