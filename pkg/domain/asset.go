package domain

import "github.com/holiman/uint256"

// Asset names a fungible token held in the target ledger.
type Asset string

// Assets known to the reference deployments.
const (
	AssetBadger        Asset = "BADGER"
	AssetDigg          Asset = "DIGG"
	AssetWBTC          Asset = "WBTC"
	AssetUniDiggWBTC   Asset = "UNI_DIGG_WBTC"
	AssetSushiDiggWBTC Asset = "SLP_DIGG_WBTC"
)

// AssetAmount pairs an asset with a quantity in its smallest unit.
type AssetAmount struct {
	Asset  Asset
	Amount *uint256.Int
}
