package services

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fundmint-lab/fundmint/internal/constants"
	"github.com/fundmint-lab/fundmint/internal/contract"
	"github.com/fundmint-lab/fundmint/internal/models"
	"github.com/fundmint-lab/fundmint/internal/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// OwnedToken is one edition held by a wallet, flattened for display.
type OwnedToken struct {
	TokenID         int64  `json:"token_id"`
	CampaignID      uint64 `json:"campaign_id"`
	EditionNumber   int64  `json:"edition_number"`
	Title           string `json:"title"`
	ImageURL        string `json:"image_url"`
	Description     string `json:"description"`
	PriceUSD        int64  `json:"price_usd"` // cents
	IsFrozen        bool   `json:"is_frozen"`
	IsSoulbound     bool   `json:"is_soulbound"`
	ContractAddress string `json:"contract_address"`
	ChainID         string `json:"chain_id"`
	ChainName       string `json:"chain_name"`
	ExplorerURL     string `json:"explorer_url,omitempty"`
}

// ContractError reports one contract whose reads failed during aggregation.
type ContractError struct {
	ContractAddress string `json:"contract_address"`
	ChainID         string `json:"chain_id"`
	Message         string `json:"message"`
}

// WalletHoldings is a wallet's aggregated tokens across every active contract
// binding. Errors lists the contracts that could not be read; their absence
// from Tokens is partial data, not an empty wallet.
type WalletHoldings struct {
	WalletAddress string          `json:"wallet_address"`
	Tokens        []OwnedToken    `json:"tokens"`
	Errors        []ContractError `json:"errors,omitempty"`
}

// OwnershipService answers "what does this wallet hold" by enumerating every
// active contract binding on-chain. A failing contract never hides the
// holdings of the others.
type OwnershipService interface {
	Aggregate(ctx context.Context, walletAddress string) (*WalletHoldings, error)
}

type ownershipService struct {
	db       *gorm.DB
	chains   ChainService
	metadata *utils.MetadataResolver
	log      *logrus.Entry
}

func NewOwnershipService(db *gorm.DB, chains ChainService) OwnershipService {
	return &ownershipService{
		db:       db,
		chains:   chains,
		metadata: utils.NewMetadataResolver(),
		log:      logrus.WithField("component", "ownership_aggregator"),
	}
}

func (s *ownershipService) Aggregate(ctx context.Context, walletAddress string) (*WalletHoldings, error) {
	if !utils.ValidAddress(walletAddress) {
		return nil, fmt.Errorf("invalid wallet address %q", walletAddress)
	}

	bindings, err := s.chains.ListBindings()
	if err != nil {
		return nil, fmt.Errorf("failed to list contract bindings: %w", err)
	}

	holdings := &WalletHoldings{WalletAddress: walletAddress}
	owner := common.HexToAddress(walletAddress)

	for i := range bindings {
		binding := &bindings[i]
		tokens, err := s.collectFromBinding(ctx, binding, owner)
		if err != nil {
			// One broken RPC or contract degrades the answer, it does not
			// empty it.
			holdings.Errors = append(holdings.Errors, ContractError{
				ContractAddress: binding.ContractAddress,
				ChainID:         binding.Chain.NetworkID,
				Message:         err.Error(),
			})
			s.log.WithError(err).WithFields(logrus.Fields{
				"contract": binding.ContractAddress,
				"chain":    binding.Chain.NetworkID,
			}).Warn("contract skipped during ownership aggregation")
			continue
		}
		holdings.Tokens = append(holdings.Tokens, tokens...)
	}

	return holdings, nil
}

func (s *ownershipService) collectFromBinding(ctx context.Context, binding *models.ContractBinding, owner common.Address) ([]OwnedToken, error) {
	backend, err := s.chains.Backend(binding)
	if err != nil {
		return nil, err
	}
	codec, err := s.chains.Codec(binding)
	if err != nil {
		return nil, err
	}

	balance, err := readBalanceOf(ctx, backend, codec, binding, owner)
	if err != nil {
		return nil, err
	}
	if balance.Sign() == 0 {
		return nil, nil
	}

	// Campaign state is shared across every token of the same campaign, so
	// reads are cached per enumeration pass.
	campaigns := make(map[uint64]*campaignDisplay)

	var tokens []OwnedToken
	count := balance.Int64()
	for index := int64(0); index < count; index++ {
		tokenID, err := readTokenOfOwnerByIndex(ctx, backend, codec, binding, owner, index)
		if err != nil {
			return nil, fmt.Errorf("enumeration broke at index %d: %w", index, err)
		}

		info, err := readEditionInfo(ctx, backend, codec, binding, tokenID)
		if err != nil {
			return nil, fmt.Errorf("edition info unavailable for token %s: %w", tokenID, err)
		}

		campaignID := info.CampaignID
		display, ok := campaigns[campaignID]
		if !ok {
			display = s.resolveCampaignDisplay(ctx, backend, codec, binding, campaignID, tokenID)
			campaigns[campaignID] = display
		}

		token := OwnedToken{
			TokenID:         tokenID.Int64(),
			CampaignID:      campaignID,
			EditionNumber:   int64(info.EditionNumber),
			Title:           display.title,
			ImageURL:        display.imageURL,
			Description:     display.description,
			PriceUSD:        display.priceCents,
			IsFrozen:        info.Frozen,
			IsSoulbound:     info.Soulbound,
			ContractAddress: binding.ContractAddress,
			ChainID:         binding.Chain.NetworkID,
			ChainName:       binding.Chain.Name,
		}
		if binding.Chain.ExplorerBaseURL != "" {
			token.ExplorerURL = fmt.Sprintf("%s/token/%s?a=%d", binding.Chain.ExplorerBaseURL, binding.ContractAddress, token.TokenID)
		}
		if token.Title == "" {
			token.Title = fmt.Sprintf("Edition #%d", token.EditionNumber)
		}
		tokens = append(tokens, token)
	}

	return tokens, nil
}

type campaignDisplay struct {
	title       string
	imageURL    string
	description string
	priceCents  int64
}

// resolveCampaignDisplay builds the display fields for one campaign. The
// mirror row wins when present; token metadata fills the gaps; a placeholder
// covers the rest. Every step here is best-effort.
func (s *ownershipService) resolveCampaignDisplay(ctx context.Context, backend ChainBackend, codec contract.Codec, binding *models.ContractBinding, campaignID uint64, tokenID *big.Int) *campaignDisplay {
	display := &campaignDisplay{}

	var submission models.Submission
	err := s.db.Where("campaign_id = ? AND binding_id = ?", campaignID, binding.ID).First(&submission).Error
	haveSubmission := err == nil
	if haveSubmission {
		display.title = submission.Title
		display.imageURL = submission.ImageURL
		display.description = submission.Story
	}

	if display.title == "" || display.imageURL == "" {
		if uri, err := readTokenURI(ctx, backend, codec, binding, tokenID); err == nil {
			if metadata, err := s.metadata.Resolve(ctx, uri); err == nil {
				if display.title == "" {
					display.title = metadata.Name
				}
				if display.imageURL == "" {
					display.imageURL = metadata.Image
				}
				if display.description == "" {
					display.description = metadata.Description
				}
			}
		}
	}

	var chainPrice *big.Int
	chainPriceLoaded := false
	readPrice := func() *big.Int {
		if !chainPriceLoaded {
			chainPriceLoaded = true
			if campaign, err := readCampaign(ctx, backend, codec, binding, campaignID); err == nil {
				chainPrice = campaign.PricePerEdition
			}
		}
		return chainPrice
	}
	if haveSubmission {
		display.priceCents = resolveDisplayPriceCents(&submission, readPrice)
	} else if priceWei := readPrice(); priceWei != nil {
		display.priceCents = utils.WeiToUSDCents(priceWei)
	}

	return display
}

// resolveDisplayPriceCents applies the display price precedence: explicit
// admin price, creator price, goal spread over the copies, the live on-chain
// price, and finally the goal spread over an assumed edition count.
func resolveDisplayPriceCents(submission *models.Submission, readChainPrice func() *big.Int) int64 {
	if submission.NFTPriceUSD != nil {
		return *submission.NFTPriceUSD
	}
	if submission.PricePerCopyUSD != nil {
		return *submission.PricePerCopyUSD
	}
	if submission.NumCopies > 0 {
		return submission.GoalUSD / submission.NumCopies
	}
	if priceWei := readChainPrice(); priceWei != nil && priceWei.Sign() > 0 {
		return utils.WeiToUSDCents(priceWei)
	}
	return submission.GoalUSD / constants.DefaultEditionAssumption
}
