package utils

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUSDCentsToWei(t *testing.T) {
	t.Run("one dollar", func(t *testing.T) {
		// $1.00 maps to 1e18 wei-equivalent units.
		want, _ := new(big.Int).SetString("1000000000000000000", 10)
		assert.Equal(t, 0, want.Cmp(USDCentsToWei(100)))
	})

	t.Run("one cent", func(t *testing.T) {
		want, _ := new(big.Int).SetString("10000000000000000", 10)
		assert.Equal(t, 0, want.Cmp(USDCentsToWei(1)))
	})

	t.Run("zero", func(t *testing.T) {
		assert.Equal(t, 0, USDCentsToWei(0).Sign())
	})

	t.Run("large goal stays exact", func(t *testing.T) {
		// $10,000,000.00 exceeds int64 wei range; big.Int math must not wrap.
		want, _ := new(big.Int).SetString("10000000000000000000000000", 10)
		assert.Equal(t, 0, want.Cmp(USDCentsToWei(1_000_000_000)))
	})
}

func TestWeiToUSDCents(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		assert.Equal(t, int64(12_345), WeiToUSDCents(USDCentsToWei(12_345)))
	})

	t.Run("truncates sub-cent dust", func(t *testing.T) {
		wei := USDCentsToWei(500)
		wei.Add(wei, big.NewInt(999_999_999))
		assert.Equal(t, int64(500), WeiToUSDCents(wei))
	})

	t.Run("nil is zero", func(t *testing.T) {
		assert.Equal(t, int64(0), WeiToUSDCents(nil))
	})
}

func TestValidAddress(t *testing.T) {
	assert.True(t, ValidAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8"))
	assert.False(t, ValidAddress(""))
	assert.False(t, ValidAddress("not-an-address"))
	assert.False(t, ValidAddress("0x1234"))
}
