package contract

import (
	"fmt"
	"math/big"
)

// codecV1 decodes the first contract generation. v1 reports no net raised
// figure and no per-token freeze/soulbound flags; the canonical struct gets
// the gross figure mirrored into NetRaised and false flags.
type codecV1 struct {
	baseCodec
}

func newCodecV1() (Codec, error) {
	base, err := newBaseCodec(VersionV1, abiJSONV1)
	if err != nil {
		return nil, err
	}
	return codecV1{baseCodec: base}, nil
}

func (c codecV1) DecodeCampaign(campaignID uint64, out []byte) (CampaignState, error) {
	vals, err := c.abi.Unpack("getCampaign", out)
	if err != nil {
		return CampaignState{}, fmt.Errorf("failed to decode v1 campaign: %w", err)
	}
	if len(vals) != 9 {
		return CampaignState{}, fmt.Errorf("v1 campaign tuple has %d outputs, want 9", len(vals))
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
	editionsMinted, err := unpackBigInt(vals, 4)
	if err != nil {
		return CampaignState{}, err
	}
	maxEditions, err := unpackBigInt(vals, 5)
	if err != nil {
		return CampaignState{}, err
	}
	if state.PricePerEdition, err = unpackBigInt(vals, 6); err != nil {
		return CampaignState{}, err
	}
	if state.Active, err = unpackBool(vals, 7); err != nil {
		return CampaignState{}, err
	}
	if state.Closed, err = unpackBool(vals, 8); err != nil {
		return CampaignState{}, err
	}

	state.EditionsMinted = editionsMinted.Uint64()
	state.MaxEditions = maxEditions.Uint64()
	state.NetRaised = new(big.Int).Set(state.GrossRaised)

	return state, nil
}

func (c codecV1) DecodeEditionInfo(tokenID *big.Int, out []byte) (EditionInfo, error) {
	vals, err := c.abi.Unpack("editionInfo", out)
	if err != nil {
		return EditionInfo{}, fmt.Errorf("failed to decode v1 edition info: %w", err)
	}
	if len(vals) != 2 {
		return EditionInfo{}, fmt.Errorf("v1 edition tuple has %d outputs, want 2", len(vals))
	}

	campaignID, err := unpackBigInt(vals, 0)
	if err != nil {
		return EditionInfo{}, err
	}
	editionNumber, err := unpackBigInt(vals, 1)
	if err != nil {
		return EditionInfo{}, err
	}

	return EditionInfo{
		CampaignID:    campaignID.Uint64(),
		EditionNumber: editionNumber.Uint64(),
	}, nil
}
