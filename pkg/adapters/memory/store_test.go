package memory_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/aretw0/settsim/pkg/adapters/memory"
	"github.com/aretw0/settsim/pkg/ports"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunLedgerStoreContract(t, store)
}

func TestMemoryStore_ConcurrentApply(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = store.Apply(ctx, map[string]*uint256.Int{fmt.Sprintf("k:%02d", i): uint256.NewInt(uint64(i))})
		}(i)
	}
	wg.Wait()

	keys, err := store.Keys(ctx, "k:")
	require.NoError(t, err)
	assert.Len(t, keys, 16)
}
