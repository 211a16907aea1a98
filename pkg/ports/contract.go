package ports

import (
	"context"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunLedgerStoreContract runs a suite of tests to verify that a LedgerStore implementation
// adheres to the defined interface contract.
func RunLedgerStoreContract(t *testing.T, store LedgerStore) {
	ctx := context.Background()
	prefix := "contract-" + time.Now().Format("20060102150405") + ":"

	t.Run("Missing Key Reads Zero", func(t *testing.T) {
		v, err := store.Get(ctx, prefix+"missing")
		require.NoError(t, err)
		require.NotNil(t, v)
		assert.True(t, v.IsZero())
	})

	t.Run("Apply and Get", func(t *testing.T) {
		big := new(uint256.Int).Lsh(uint256.NewInt(1), 200)
		err := store.Apply(ctx, map[string]*uint256.Int{
			prefix + "a": uint256.NewInt(42),
			prefix + "b": big,
		})
		require.NoError(t, err, "Apply should not return error")

		a, err := store.Get(ctx, prefix+"a")
		require.NoError(t, err)
		assert.Equal(t, uint64(42), a.Uint64())

		b, err := store.Get(ctx, prefix+"b")
		require.NoError(t, err)
		assert.True(t, big.Eq(b), "values wider than 64 bits must round-trip")
	})

	t.Run("Returned Values Are Copies", func(t *testing.T) {
		require.NoError(t, store.Apply(ctx, map[string]*uint256.Int{prefix + "c": uint256.NewInt(7)}))

		v, err := store.Get(ctx, prefix+"c")
		require.NoError(t, err)
		v.SetUint64(1000)

		again, err := store.Get(ctx, prefix+"c")
		require.NoError(t, err)
		assert.Equal(t, uint64(7), again.Uint64())
	})

	t.Run("Overwrite With Zero", func(t *testing.T) {
		require.NoError(t, store.Apply(ctx, map[string]*uint256.Int{prefix + "d": uint256.NewInt(9)}))
		require.NoError(t, store.Apply(ctx, map[string]*uint256.Int{prefix + "d": new(uint256.Int)}))

		v, err := store.Get(ctx, prefix+"d")
		require.NoError(t, err)
		assert.True(t, v.IsZero())
	})

	t.Run("Keys", func(t *testing.T) {
		require.NoError(t, store.Apply(ctx, map[string]*uint256.Int{
			prefix + "keys:2": uint256.NewInt(2),
			prefix + "keys:1": uint256.NewInt(1),
			prefix + "other":  uint256.NewInt(3),
		}))

		keys, err := store.Keys(ctx, prefix+"keys:")
		require.NoError(t, err)
		assert.Equal(t, []string{prefix + "keys:1", prefix + "keys:2"}, keys)
	})
}
