package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
)

type fakeTx struct {
	committed  bool
	rolledBack bool
	commitErr  error
}

func (t *fakeTx) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, nil
}

func (t *fakeTx) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, nil
}

func (t *fakeTx) QueryRowContext(context.Context, string, ...interface{}) *sql.Row {
	return nil
}

func (t *fakeTx) Commit() error {
	t.committed = true
	return t.commitErr
}

func (t *fakeTx) Rollback() error {
	t.rolledBack = true
	return nil
}

type fakeBeginner struct {
	tx    *fakeTx
	opts  []*sql.TxOptions
	begin error
}

func (b *fakeBeginner) BeginTx(_ context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error) {
	b.opts = append(b.opts, opts)
	if b.begin != nil {
		return nil, b.begin
	}
	return b.tx, nil
}

func TestTransactionManager_Commit(t *testing.T) {
	b := &fakeBeginner{tx: &fakeTx{}}
	m := NewTransactionManager(b)

	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		assert.True(t, dbmetrics.IsInTransaction(ctx))
		return nil
	})

	require.NoError(t, err)
	assert.True(t, b.tx.committed)
	assert.False(t, b.tx.rolledBack)
	require.Len(t, b.opts, 1)
	assert.Equal(t, sql.LevelSerializable, b.opts[0].Isolation)
}

func TestTransactionManager_RollbackOnError(t *testing.T) {
	b := &fakeBeginner{tx: &fakeTx{}}
	m := NewTransactionManager(b)
	boom := errors.New("boom")

	err := m.Do(context.Background(), func(ctx context.Context) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.True(t, b.tx.rolledBack)
	assert.False(t, b.tx.committed)
}

func TestTransactionManager_NestedReusesOuterTx(t *testing.T) {
	b := &fakeBeginner{tx: &fakeTx{}}
	m := NewTransactionManager(b)

	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		return m.Do(ctx, func(ctx context.Context) error { return nil })
	})

	require.NoError(t, err)
	assert.Len(t, b.opts, 1)
}

func TestTransactionManager_SerializationFailure(t *testing.T) {
	t.Run("from callback", func(t *testing.T) {
		m := NewTransactionManager(&fakeBeginner{tx: &fakeTx{}})

		err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
			return fmt.Errorf("insert: %w", &pq.Error{Code: "40001"})
		})

		assert.ErrorIs(t, err, ErrSerializationFailure)
	})

	t.Run("from commit", func(t *testing.T) {
		m := NewTransactionManager(&fakeBeginner{tx: &fakeTx{commitErr: &pq.Error{Code: "40P01"}}})

		err := m.DoSerializable(context.Background(), func(ctx context.Context) error { return nil })

		assert.ErrorIs(t, err, ErrSerializationFailure)
	})

	t.Run("other commit error", func(t *testing.T) {
		m := NewTransactionManager(&fakeBeginner{tx: &fakeTx{commitErr: &pq.Error{Code: "23505"}}})

		err := m.DoSerializable(context.Background(), func(ctx context.Context) error { return nil })

		assert.ErrorIs(t, err, ErrCommitTx)
		assert.NotErrorIs(t, err, ErrSerializationFailure)
	})
}

func TestTransactionManager_BeginError(t *testing.T) {
	m := NewTransactionManager(&fakeBeginner{begin: errors.New("no connection")})

	err := m.Do(context.Background(), func(ctx context.Context) error { return nil })

	assert.ErrorIs(t, err, ErrBeginTx)
}
