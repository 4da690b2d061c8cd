package services

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/fundmint-lab/fundmint/internal/contract"
	"github.com/fundmint-lab/fundmint/internal/models"
)

// read helpers shared by the write path (liveness checks, ID prediction) and
// the ownership read path. All of them are plain eth_call round trips.

func callContract(ctx context.Context, backend ChainBackend, to common.Address, data []byte) ([]byte, error) {
	return backend.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
}

func readTotalCampaigns(ctx context.Context, backend ChainBackend, codec contract.Codec, binding *models.ContractBinding) (uint64, error) {
	data, err := codec.EncodeTotalCampaigns()
	if err != nil {
		return 0, err
	}
	out, err := callContract(ctx, backend, common.HexToAddress(binding.ContractAddress), data)
	if err != nil {
		return 0, fmt.Errorf("failed to read total campaigns: %w", err)
	}
	return codec.DecodeTotalCampaigns(out)
}

func readCampaign(ctx context.Context, backend ChainBackend, codec contract.Codec, binding *models.ContractBinding, campaignID uint64) (contract.CampaignState, error) {
	data, err := codec.EncodeGetCampaign(new(big.Int).SetUint64(campaignID))
	if err != nil {
		return contract.CampaignState{}, err
	}
	out, err := callContract(ctx, backend, common.HexToAddress(binding.ContractAddress), data)
	if err != nil {
		return contract.CampaignState{}, fmt.Errorf("failed to read campaign %d: %w", campaignID, err)
	}
	return codec.DecodeCampaign(campaignID, out)
}

func readBalanceOf(ctx context.Context, backend ChainBackend, codec contract.Codec, binding *models.ContractBinding, owner common.Address) (*big.Int, error) {
	data, err := codec.EncodeBalanceOf(owner)
	if err != nil {
		return nil, err
	}
	out, err := callContract(ctx, backend, common.HexToAddress(binding.ContractAddress), data)
	if err != nil {
		return nil, fmt.Errorf("failed to read balance: %w", err)
	}
	return codec.DecodeBalanceOf(out)
}

func readTokenOfOwnerByIndex(ctx context.Context, backend ChainBackend, codec contract.Codec, binding *models.ContractBinding, owner common.Address, index int64) (*big.Int, error) {
	data, err := codec.EncodeTokenOfOwnerByIndex(owner, big.NewInt(index))
	if err != nil {
		return nil, err
	}
	out, err := callContract(ctx, backend, common.HexToAddress(binding.ContractAddress), data)
	if err != nil {
		return nil, fmt.Errorf("failed to read token at index %d: %w", index, err)
	}
	return codec.DecodeTokenID(out)
}

func readEditionInfo(ctx context.Context, backend ChainBackend, codec contract.Codec, binding *models.ContractBinding, tokenID *big.Int) (contract.EditionInfo, error) {
	data, err := codec.EncodeEditionInfo(tokenID)
	if err != nil {
		return contract.EditionInfo{}, err
	}
	out, err := callContract(ctx, backend, common.HexToAddress(binding.ContractAddress), data)
	if err != nil {
		return contract.EditionInfo{}, fmt.Errorf("failed to read edition info for token %s: %w", tokenID, err)
	}
	return codec.DecodeEditionInfo(tokenID, out)
}

func readTokenURI(ctx context.Context, backend ChainBackend, codec contract.Codec, binding *models.ContractBinding, tokenID *big.Int) (string, error) {
	data, err := codec.EncodeTokenURI(tokenID)
	if err != nil {
		return "", err
	}
	out, err := callContract(ctx, backend, common.HexToAddress(binding.ContractAddress), data)
	if err != nil {
		return "", fmt.Errorf("failed to read token URI for token %s: %w", tokenID, err)
	}
	return codec.DecodeTokenURI(out)
}
