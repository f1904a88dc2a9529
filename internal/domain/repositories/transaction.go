package repositories

import "context"

// TxFn is a function that runs within a central-store transaction
type TxFn func(ctx context.Context) error

// TransactionManager scopes a function to one central-store transaction.
// Only single-store promotion writes use it; sync never spans both stores
// with one transaction - the stores share no coordinator.
type TransactionManager interface {
	// ExecTx executes a function within a transaction
	ExecTx(ctx context.Context, fn TxFn) error
}
