package mocks

import (
	"context"

	"github.com/phrazzld/taskboard-api/internal/store"
)

// Transactor runs transactional functions without a database, passing a nil *sql.Tx.
// Stores used with it must ignore the transaction handle, as the mocks in this package do.
type Transactor struct {
	// BeginErr, when set, is returned without calling fn.
	BeginErr error

	// Calls counts RunInTransaction invocations.
	Calls int
}

var _ store.Transactor = (*Transactor)(nil)

// RunInTransaction implements store.Transactor
func (t *Transactor) RunInTransaction(ctx context.Context, fn store.TxFn) error {
	t.Calls++
	if t.BeginErr != nil {
		return t.BeginErr
	}
	return fn(ctx, nil)
}
