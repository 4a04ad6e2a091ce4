package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPairKey(t *testing.T) {
	t.Run("Order Independent", func(t *testing.T) {
		assert.Equal(t, PairKey("alice", "bob"), PairKey("bob", "alice"))
	})

	t.Run("Sorted Encoding", func(t *testing.T) {
		assert.Equal(t, "alice:bob", PairKey("bob", "alice"))
		assert.Equal(t, "alice:bob", PairKey("alice", "bob"))
	})

	t.Run("Distinct Pairs Differ", func(t *testing.T) {
		assert.NotEqual(t, PairKey("alice", "bob"), PairKey("alice", "carol"))
	})
}
