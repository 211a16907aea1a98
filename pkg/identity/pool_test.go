package identity_test

import (
	"math/rand"
	"testing"

	"github.com/aretw0/settsim/pkg/domain"
	"github.com/aretw0/settsim/pkg/identity"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPool_ReservesAdminPrefix(t *testing.T) {
	accounts := identity.Generate(10)
	pool, err := identity.NewPool(accounts, identity.DefaultReserved)
	require.NoError(t, err)

	assert.Equal(t, accounts[:6], pool.Admin())
	assert.Equal(t, accounts[6:], pool.Available())
	assert.Equal(t, 4, pool.Len())
}

func TestNewPool_InvalidReserved(t *testing.T) {
	_, err := identity.NewPool(identity.Generate(3), 4)
	var cfgErr *domain.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestGenerate_Distinct(t *testing.T) {
	accounts := identity.Generate(100)
	seen := make(map[common.Address]bool)
	for _, a := range accounts {
		assert.False(t, seen[a], "duplicate %s", a.Hex())
		assert.NotEqual(t, common.Address{}, a)
		seen[a] = true
	}
}

func TestSample_DistinctAndDisjointFromAdmin(t *testing.T) {
	pool, err := identity.NewPool(identity.Generate(40), identity.DefaultReserved)
	require.NoError(t, err)

	chosen, err := pool.Sample(rand.New(rand.NewSource(42)), 10, 0)
	require.NoError(t, err)
	require.Len(t, chosen, 10)

	admin := make(map[common.Address]bool)
	for _, a := range pool.Admin() {
		admin[a] = true
	}
	seen := make(map[common.Address]bool)
	for _, a := range chosen {
		assert.False(t, seen[a], "duplicate identity %s", a.Hex())
		assert.False(t, admin[a], "admin identity %s sampled", a.Hex())
		seen[a] = true
	}
}

func TestSample_Deterministic(t *testing.T) {
	pool, err := identity.NewPool(identity.Generate(40), identity.DefaultReserved)
	require.NoError(t, err)

	a, err := pool.Sample(rand.New(rand.NewSource(7)), 10, 0)
	require.NoError(t, err)
	b, err := pool.Sample(rand.New(rand.NewSource(7)), 10, 0)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSample_WholePool(t *testing.T) {
	pool, err := identity.NewPool(identity.Generate(16), identity.DefaultReserved)
	require.NoError(t, err)

	chosen, err := pool.Sample(rand.New(rand.NewSource(1)), pool.Len(), 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, pool.Available(), chosen)
}

func TestSample_PoolTooSmall(t *testing.T) {
	pool, err := identity.NewPool(identity.Generate(8), identity.DefaultReserved)
	require.NoError(t, err)

	_, err = pool.Sample(rand.New(rand.NewSource(1)), 3, 0)
	assert.ErrorIs(t, err, domain.ErrPoolTooSmall)
}

func TestSample_AttemptLimit(t *testing.T) {
	pool, err := identity.NewPool(identity.Generate(1000), identity.DefaultReserved)
	require.NoError(t, err)

	// Fewer draws than identities requested can never succeed.
	_, err = pool.Sample(rand.New(rand.NewSource(1)), 10, 5)
	assert.ErrorIs(t, err, domain.ErrSamplingExhausted)
}
