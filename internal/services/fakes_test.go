package services

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// fakeCrowdfund scripts the contract's view surface for the fake backend.
// Responses are ABI-packed the same way a node would return them.
type fakeCrowdfund struct {
	version   string
	total     uint64
	campaigns map[uint64]fakeCampaign
	balances  map[common.Address]int64
	tokens    map[common.Address][]int64
	editions  map[int64]fakeEdition
	uris      map[int64]string
}

type fakeCampaign struct {
	category    string
	metadataURI string
	goal        *big.Int
	grossRaised *big.Int
	netRaised   *big.Int
	minted      uint64
	max         uint64
	price       *big.Int
	active      bool
	closed      bool
}

type fakeEdition struct {
	campaignID    uint64
	editionNumber uint64
	frozen        bool
	soulbound     bool
}

func newFakeCrowdfund(version string) *fakeCrowdfund {
	return &fakeCrowdfund{
		version:   version,
		campaigns: make(map[uint64]fakeCampaign),
		balances:  make(map[common.Address]int64),
		tokens:    make(map[common.Address][]int64),
		editions:  make(map[int64]fakeEdition),
		uris:      make(map[int64]string),
	}
}

func selector(signature string) [4]byte {
	var sel [4]byte
	copy(sel[:], crypto.Keccak256([]byte(signature))[:4])
	return sel
}

func mustABIType(s string) abi.Type {
	t, err := abi.NewType(s, "", nil)
	if err != nil {
		panic(err)
	}
	return t
}

func packOutputs(typeNames []string, vals ...interface{}) []byte {
	args := make(abi.Arguments, 0, len(typeNames))
	for _, name := range typeNames {
		args = append(args, abi.Argument{Type: mustABIType(name)})
	}
	packed, err := args.Pack(vals...)
	if err != nil {
		panic(err)
	}
	return packed
}

func argUint256(data []byte, slot int) *big.Int {
	start := 4 + slot*32
	return new(big.Int).SetBytes(data[start : start+32])
}

func argAddress(data []byte, slot int) common.Address {
	start := 4 + slot*32
	return common.BytesToAddress(data[start+12 : start+32])
}

// handler dispatches on the call's method selector.
func (f *fakeCrowdfund) handler() func(msg ethereum.CallMsg) ([]byte, error) {
	totalSel := selector("totalCampaigns()")
	campaignSel := selector("getCampaign(uint256)")
	balanceSel := selector("balanceOf(address)")
	tokenSel := selector("tokenOfOwnerByIndex(address,uint256)")
	editionSel := selector("editionInfo(uint256)")
	uriSel := selector("tokenURI(uint256)")

	return func(msg ethereum.CallMsg) ([]byte, error) {
		if len(msg.Data) < 4 {
			return nil, fmt.Errorf("short call data")
		}
		var sel [4]byte
		copy(sel[:], msg.Data[:4])

		switch sel {
		case totalSel:
			return packOutputs([]string{"uint256"}, new(big.Int).SetUint64(f.total)), nil

		case campaignSel:
			id := argUint256(msg.Data, 0).Uint64()
			c, ok := f.campaigns[id]
			if !ok {
				return nil, fmt.Errorf("execution reverted: no campaign %d", id)
			}
			if f.version == "v2" {
				return packOutputs(
					[]string{"string", "string", "uint256", "uint256", "uint256", "uint256", "uint256", "uint256", "bool", "bool"},
					c.category, c.metadataURI, c.goal, c.grossRaised, c.netRaised,
					new(big.Int).SetUint64(c.minted), new(big.Int).SetUint64(c.max), c.price, c.active, c.closed,
				), nil
			}
			return packOutputs(
				[]string{"string", "string", "uint256", "uint256", "uint256", "uint256", "uint256", "bool", "bool"},
				c.category, c.metadataURI, c.goal, c.grossRaised,
				new(big.Int).SetUint64(c.minted), new(big.Int).SetUint64(c.max), c.price, c.active, c.closed,
			), nil

		case balanceSel:
			owner := argAddress(msg.Data, 0)
			return packOutputs([]string{"uint256"}, big.NewInt(f.balances[owner])), nil

		case tokenSel:
			owner := argAddress(msg.Data, 0)
			index := argUint256(msg.Data, 1).Int64()
			owned := f.tokens[owner]
			if index >= int64(len(owned)) {
				return nil, fmt.Errorf("execution reverted: index out of bounds")
			}
			return packOutputs([]string{"uint256"}, big.NewInt(owned[index])), nil

		case editionSel:
			tokenID := argUint256(msg.Data, 0).Int64()
			e, ok := f.editions[tokenID]
			if !ok {
				return nil, fmt.Errorf("execution reverted: no token %d", tokenID)
			}
			if f.version == "v2" {
				return packOutputs(
					[]string{"uint256", "uint256", "bool", "bool"},
					new(big.Int).SetUint64(e.campaignID), new(big.Int).SetUint64(e.editionNumber), e.frozen, e.soulbound,
				), nil
			}
			return packOutputs(
				[]string{"uint256", "uint256"},
				new(big.Int).SetUint64(e.campaignID), new(big.Int).SetUint64(e.editionNumber),
			), nil

		case uriSel:
			tokenID := argUint256(msg.Data, 0).Int64()
			return packOutputs([]string{"string"}, f.uris[tokenID]), nil

		default:
			return nil, fmt.Errorf("unscripted selector %x", sel)
		}
	}
}
