package domain

import "github.com/ethereum/go-ethereum/common"

// Roles holds the privileged identities that control a target deployment.
type Roles struct {
	Governance     common.Address
	Strategist     common.Address
	VaultKeeper    common.Address
	StrategyKeeper common.Address
}

// Addresses returns the roles in a fixed order.
func (r Roles) Addresses() []common.Address {
	return []common.Address{r.Governance, r.Strategist, r.VaultKeeper, r.StrategyKeeper}
}

// Contains reports whether addr holds any privileged role.
func (r Roles) Contains(addr common.Address) bool {
	for _, a := range r.Addresses() {
		if a == addr {
			return true
		}
	}
	return false
}
