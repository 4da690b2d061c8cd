package contract

import (
	"fmt"
	"math/big"
)

// codecV2 decodes the second contract generation, which adds netRaised to the
// campaign tuple and freeze/soulbound flags to the edition tuple.
type codecV2 struct {
	baseCodec
}

func newCodecV2() (Codec, error) {
	base, err := newBaseCodec(VersionV2, abiJSONV2)
	if err != nil {
		return nil, err
	}
	return codecV2{baseCodec: base}, nil
}

func (c codecV2) DecodeCampaign(campaignID uint64, out []byte) (CampaignState, error) {
	vals, err := c.abi.Unpack("getCampaign", out)
	if err != nil {
		return CampaignState{}, fmt.Errorf("failed to decode v2 campaign: %w", err)
	}
	if len(vals) != 10 {
		return CampaignState{}, fmt.Errorf("v2 campaign tuple has %d outputs, want 10", len(vals))
	}

	state := CampaignState{ID: campaignID}
	if state.Category, err = unpackString(vals, 0); err != nil {
		return CampaignState{}, err
	}
	if state.MetadataURI, err = unpackString(vals, 1); err != nil {
		return CampaignState{}, err
	}
	if state.Goal, err = unpackBigInt(vals, 2); err != nil {
		return CampaignState{}, err
	}
	if state.GrossRaised, err = unpackBigInt(vals, 3); err != nil {
		return CampaignState{}, err
	}
	if state.NetRaised, err = unpackBigInt(vals, 4); err != nil {
		return CampaignState{}, err
	}
	editionsMinted, err := unpackBigInt(vals, 5)
	if err != nil {
		return CampaignState{}, err
	}
	maxEditions, err := unpackBigInt(vals, 6)
	if err != nil {
		return CampaignState{}, err
	}
	if state.PricePerEdition, err = unpackBigInt(vals, 7); err != nil {
		return CampaignState{}, err
	}
	if state.Active, err = unpackBool(vals, 8); err != nil {
		return CampaignState{}, err
	}
	if state.Closed, err = unpackBool(vals, 9); err != nil {
		return CampaignState{}, err
	}

	state.EditionsMinted = editionsMinted.Uint64()
	state.MaxEditions = maxEditions.Uint64()

	return state, nil
}

func (c codecV2) DecodeEditionInfo(tokenID *big.Int, out []byte) (EditionInfo, error) {
	vals, err := c.abi.Unpack("editionInfo", out)
	if err != nil {
		return EditionInfo{}, fmt.Errorf("failed to decode v2 edition info: %w", err)
	}
	if len(vals) != 4 {
		return EditionInfo{}, fmt.Errorf("v2 edition tuple has %d outputs, want 4", len(vals))
	}

	campaignID, err := unpackBigInt(vals, 0)
	if err != nil {
		return EditionInfo{}, err
	}
	editionNumber, err := unpackBigInt(vals, 1)
	if err != nil {
		return EditionInfo{}, err
	}
	frozen, err := unpackBool(vals, 2)
	if err != nil {
		return EditionInfo{}, err
	}
	soulbound, err := unpackBool(vals, 3)
	if err != nil {
		return EditionInfo{}, err
	}

	return EditionInfo{
		CampaignID:    campaignID.Uint64(),
		EditionNumber: editionNumber.Uint64(),
		Frozen:        frozen,
		Soulbound:     soulbound,
	}, nil
}
