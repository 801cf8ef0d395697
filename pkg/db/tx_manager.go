package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// TxFunc выполняется внутри транзакции; ctxTx живёт до commit/rollback.
type TxFunc func(ctxTx context.Context, tx pgx.Tx) error

type TxManager interface {
	// RunMaster: read-committed транзакция на запись.
	RunMaster(ctx context.Context, fn TxFunc) error
	// RunReadOnly: снимок для согласованного чтения нескольких запросов.
	RunReadOnly(ctx context.Context, fn TxFunc) error
	Conn() Querier
}

// Querier: общее у пула и pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
