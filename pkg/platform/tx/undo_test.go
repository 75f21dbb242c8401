package tx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUndoLog(t *testing.T) {
	t.Run("rolls back newest first", func(t *testing.T) {
		var order []int
		log := &UndoLog{}
		ctx := WithUndoLog(context.Background(), log)

		OnRollback(ctx, func() { order = append(order, 1) })
		OnRollback(ctx, func() { order = append(order, 2) })
		assert.Equal(t, 2, log.Len())

		log.Rollback()
		assert.Equal(t, []int{2, 1}, order)
		assert.Equal(t, 0, log.Len())
	})

	t.Run("no log bound is a no-op", func(t *testing.T) {
		called := false
		OnRollback(context.Background(), func() { called = true })
		assert.False(t, called)
	})
}
