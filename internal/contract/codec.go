package contract

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// CampaignState is the canonical decoded form of an on-chain campaign,
// independent of which contract version produced it.
type CampaignState struct {
	ID              uint64
	Category        string
	MetadataURI     string
	Goal            *big.Int
	GrossRaised     *big.Int
	NetRaised       *big.Int
	EditionsMinted  uint64
	MaxEditions     uint64
	PricePerEdition *big.Int
	Active          bool
	Closed          bool
}

// EditionInfo is the canonical decoded form of a token's edition data.
type EditionInfo struct {
	CampaignID    uint64
	EditionNumber uint64
	Frozen        bool
	Soulbound     bool
}

// MintEvent is one EditionMinted log entry.
type MintEvent struct {
	CampaignID    uint64
	TokenID       *big.Int
	Recipient     common.Address
	EditionNumber uint64
}

// CreateCampaignParams are the arguments to the contract's createCampaign call.
type CreateCampaignParams struct {
	Category        string
	MetadataURI     string
	Beneficiary     common.Address
	Goal            *big.Int
	MaxEditions     *big.Int
	PricePerEdition *big.Int
}

// Codec encodes calls to and decodes results from one deployed contract
// version. Exactly one decoder exists per version; callers select it through
// the binding's contract_version and never fall back between layouts.
type Codec interface {
	Version() string

	EncodeCreateCampaign(p CreateCampaignParams) ([]byte, error)
	EncodeMintEdition(campaignID *big.Int, recipient common.Address) ([]byte, error)
	EncodeTotalCampaigns() ([]byte, error)
	DecodeTotalCampaigns(out []byte) (uint64, error)
	EncodeGetCampaign(campaignID *big.Int) ([]byte, error)
	DecodeCampaign(campaignID uint64, out []byte) (CampaignState, error)
	EncodeBalanceOf(owner common.Address) ([]byte, error)
	DecodeBalanceOf(out []byte) (*big.Int, error)
	EncodeTokenOfOwnerByIndex(owner common.Address, index *big.Int) ([]byte, error)
	DecodeTokenID(out []byte) (*big.Int, error)
	EncodeEditionInfo(tokenID *big.Int) ([]byte, error)
	DecodeEditionInfo(tokenID *big.Int, out []byte) (EditionInfo, error)
	EncodeTokenURI(tokenID *big.Int) ([]byte, error)
	DecodeTokenURI(out []byte) (string, error)

	ParseMintEvent(lg types.Log) (*MintEvent, bool)
	ParseCampaignCreated(lg types.Log) (uint64, bool)
}

// ForVersion returns the codec for a binding's contract version.
func ForVersion(version string) (Codec, error) {
	switch version {
	case VersionV1:
		return newCodecV1()
	case VersionV2:
		return newCodecV2()
	default:
		return nil, fmt.Errorf("unknown contract version %q", version)
	}
}
