/*
Package vault is a reference target system: a single vault/strategy deployment
holding a want asset, kept as integer balances in a ports.LedgerStore.

It models the parts of a yield vault that simulated actions exercise:

  - Deposit and Withdraw convert between want and vault shares at the pool price.
  - Earn moves the vault's available want into the strategy.
  - Tend deploys want the strategy holds loose.
  - AdvanceTime accrues yield on deployed want at a fixed APR.
  - Harvest realizes accrued yield, paying performance fees to governance and the strategist.

Every mutation is written with a single LedgerStore.Apply, so a failed action leaves the
ledger unchanged.
*/
package vault
