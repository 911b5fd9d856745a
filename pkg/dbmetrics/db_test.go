package dbmetrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryOperation(t *testing.T) {
	assert.Equal(t, "select", queryOperation("SELECT id FROM appointments"))
	assert.Equal(t, "insert", queryOperation("\n  INSERT INTO appointments (id) VALUES ($1)"))
	assert.Equal(t, "other", queryOperation("LOCK TABLE appointments"))
	assert.Equal(t, "unknown", queryOperation("   "))
}

func TestGetExecutor(t *testing.T) {
	db := &DB{}
	ctx := context.Background()

	assert.False(t, IsInTransaction(ctx))
	assert.Same(t, db, GetExecutor(ctx, db))

	tx := &Tx{}
	txCtx := WithTx(ctx, tx)

	assert.True(t, IsInTransaction(txCtx))
	assert.Same(t, tx, GetExecutor(txCtx, db))
}
