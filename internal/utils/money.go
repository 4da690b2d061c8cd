package utils

import (
	"math/big"

	"github.com/fundmint-lab/fundmint/internal/constants"
)

// USDCentsToWei converts integer cents to the contract's base unit using the
// fixed decimal-exponent scale. Integer arithmetic only.
func USDCentsToWei(cents int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(cents), constants.WeiPerUSDCent)
}

// WeiToUSDCents converts a base-unit amount back to integer cents, truncating
// any sub-cent remainder.
func WeiToUSDCents(wei *big.Int) int64 {
	if wei == nil {
		return 0
	}
	return new(big.Int).Div(wei, constants.WeiPerUSDCent).Int64()
}
