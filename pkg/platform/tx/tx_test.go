package tx

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithTx(t *testing.T) {
	ctx := context.Background()

	t.Run("nil tx leaves context untouched", func(t *testing.T) {
		got := WithTx(ctx, nil)
		_, ok := From(got)
		assert.False(t, ok)
	})

	t.Run("stored tx is returned", func(t *testing.T) {
		sqlTx := &sql.Tx{}
		got, ok := From(WithTx(ctx, sqlTx))
		assert.True(t, ok)
		assert.Same(t, sqlTx, got)
		assert.Same(t, sqlTx, ExecerFrom(WithTx(ctx, sqlTx), nil))
	})

	t.Run("falls back to db", func(t *testing.T) {
		db := &sql.DB{}
		assert.Same(t, db, ExecerFrom(ctx, db))
	})
}

type failingBeginner struct{ err error }

func (b failingBeginner) BeginTx(context.Context, *sql.TxOptions) (*sql.Tx, error) {
	return nil, b.err
}

func TestRun(t *testing.T) {
	t.Run("begin failure is wrapped", func(t *testing.T) {
		cause := errors.New("pool exhausted")
		called := false
		err := Run(context.Background(), failingBeginner{err: cause}, func(context.Context) error {
			called = true
			return nil
		})
		assert.ErrorIs(t, err, cause)
		assert.False(t, called)
	})

	t.Run("joins an existing transaction", func(t *testing.T) {
		sqlTx := &sql.Tx{}
		ctx := WithTx(context.Background(), sqlTx)
		err := Run(ctx, failingBeginner{err: errors.New("must not begin")}, func(inner context.Context) error {
			got, ok := From(inner)
			assert.True(t, ok)
			assert.Same(t, sqlTx, got)
			return nil
		})
		assert.NoError(t, err)
	})
}
