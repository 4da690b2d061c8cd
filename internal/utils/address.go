package utils

import (
	"github.com/ethereum/go-ethereum/common"
)

// ValidAddress reports whether s is a well-formed 0x-prefixed Ethereum
// address.
func ValidAddress(s string) bool {
	return common.IsHexAddress(s)
}
