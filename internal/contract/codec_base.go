package contract

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// baseCodec holds the call-encoding half of a codec. Call layouts are stable
// across contract versions; only return tuples differ, so version structs
// embed baseCodec and supply their own decoders.
type baseCodec struct {
	version string
	abi     abi.ABI
}

func newBaseCodec(version, abiJSON string) (baseCodec, error) {
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		return baseCodec{}, fmt.Errorf("failed to parse %s ABI: %w", version, err)
	}
	return baseCodec{version: version, abi: parsed}, nil
}

func (c baseCodec) Version() string {
	return c.version
}

func (c baseCodec) EncodeCreateCampaign(p CreateCampaignParams) ([]byte, error) {
	return c.abi.Pack("createCampaign", p.Category, p.MetadataURI, p.Beneficiary, p.Goal, p.MaxEditions, p.PricePerEdition)
}

func (c baseCodec) EncodeMintEdition(campaignID *big.Int, recipient common.Address) ([]byte, error) {
	return c.abi.Pack("mintEdition", campaignID, recipient)
}

func (c baseCodec) EncodeTotalCampaigns() ([]byte, error) {
	return c.abi.Pack("totalCampaigns")
}

func (c baseCodec) DecodeTotalCampaigns(out []byte) (uint64, error) {
	vals, err := c.abi.Unpack("totalCampaigns", out)
	if err != nil {
		return 0, fmt.Errorf("failed to decode totalCampaigns: %w", err)
	}
	total, ok := vals[0].(*big.Int)
	if !ok {
		return 0, fmt.Errorf("unexpected totalCampaigns type %T", vals[0])
	}
	return total.Uint64(), nil
}

func (c baseCodec) EncodeGetCampaign(campaignID *big.Int) ([]byte, error) {
	return c.abi.Pack("getCampaign", campaignID)
}

func (c baseCodec) EncodeBalanceOf(owner common.Address) ([]byte, error) {
	return c.abi.Pack("balanceOf", owner)
}

func (c baseCodec) DecodeBalanceOf(out []byte) (*big.Int, error) {
	vals, err := c.abi.Unpack("balanceOf", out)
	if err != nil {
		return nil, fmt.Errorf("failed to decode balanceOf: %w", err)
	}
	balance, ok := vals[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected balanceOf type %T", vals[0])
	}
	return balance, nil
}

func (c baseCodec) EncodeTokenOfOwnerByIndex(owner common.Address, index *big.Int) ([]byte, error) {
	return c.abi.Pack("tokenOfOwnerByIndex", owner, index)
}

func (c baseCodec) DecodeTokenID(out []byte) (*big.Int, error) {
	vals, err := c.abi.Unpack("tokenOfOwnerByIndex", out)
	if err != nil {
		return nil, fmt.Errorf("failed to decode tokenOfOwnerByIndex: %w", err)
	}
	tokenID, ok := vals[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected token id type %T", vals[0])
	}
	return tokenID, nil
}

func (c baseCodec) EncodeEditionInfo(tokenID *big.Int) ([]byte, error) {
	return c.abi.Pack("editionInfo", tokenID)
}

func (c baseCodec) EncodeTokenURI(tokenID *big.Int) ([]byte, error) {
	return c.abi.Pack("tokenURI", tokenID)
}

func (c baseCodec) DecodeTokenURI(out []byte) (string, error) {
	vals, err := c.abi.Unpack("tokenURI", out)
	if err != nil {
		return "", fmt.Errorf("failed to decode tokenURI: %w", err)
	}
	uri, ok := vals[0].(string)
	if !ok {
		return "", fmt.Errorf("unexpected tokenURI type %T", vals[0])
	}
	return uri, nil
}

// ParseMintEvent extracts an EditionMinted entry from a receipt log. A false
// return means the log is some other event, not a decode failure.
func (c baseCodec) ParseMintEvent(lg types.Log) (*MintEvent, bool) {
	event := c.abi.Events["EditionMinted"]
	if len(lg.Topics) != 4 || lg.Topics[0] != event.ID {
		return nil, false
	}

	ev := &MintEvent{
		CampaignID: new(big.Int).SetBytes(lg.Topics[1].Bytes()).Uint64(),
		TokenID:    new(big.Int).SetBytes(lg.Topics[2].Bytes()),
		Recipient:  common.BytesToAddress(lg.Topics[3].Bytes()),
	}

	vals, err := event.Inputs.NonIndexed().Unpack(lg.Data)
	if err != nil || len(vals) != 1 {
		return nil, false
	}
	editionNumber, ok := vals[0].(*big.Int)
	if !ok {
		return nil, false
	}
	ev.EditionNumber = editionNumber.Uint64()

	return ev, true
}

// ParseCampaignCreated extracts the campaign identifier from a CampaignCreated
// log entry.
func (c baseCodec) ParseCampaignCreated(lg types.Log) (uint64, bool) {
	event := c.abi.Events["CampaignCreated"]
	if len(lg.Topics) != 3 || lg.Topics[0] != event.ID {
		return 0, false
	}
	return new(big.Int).SetBytes(lg.Topics[1].Bytes()).Uint64(), true
}

func unpackBigInt(vals []interface{}, i int) (*big.Int, error) {
	v, ok := vals[i].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("output %d: expected *big.Int, got %T", i, vals[i])
	}
	return v, nil
}

func unpackBool(vals []interface{}, i int) (bool, error) {
	v, ok := vals[i].(bool)
	if !ok {
		return false, fmt.Errorf("output %d: expected bool, got %T", i, vals[i])
	}
	return v, nil
}

func unpackString(vals []interface{}, i int) (string, error) {
	v, ok := vals[i].(string)
	if !ok {
		return "", fmt.Errorf("output %d: expected string, got %T", i, vals[i])
	}
	return v, nil
}
