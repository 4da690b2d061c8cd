package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

// JSON is a custom type for JSON fields
type JSON map[string]interface{}

// Implement the driver.Valuer interface for JSON type
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Implement the sql.Scanner interface for JSON type
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	case nil:
		*j = nil
		return nil
	default:
		return errors.New("type assertion to []byte failed")
	}

	if len(bytes) == 0 {
		*j = nil
		return nil
	}

	return json.Unmarshal(bytes, j)
}

type SubmissionStatus string

const (
	SubmissionStatusPending  SubmissionStatus = "pending"
	SubmissionStatusApproved SubmissionStatus = "approved"
	SubmissionStatusMinted   SubmissionStatus = "minted"
	SubmissionStatusRejected SubmissionStatus = "rejected"
)

// Submission is the off-chain mirror of a campaign. Before provisioning it
// holds the creator's approved form data; after provisioning CampaignID joins
// it to the on-chain campaign. SoldCount and TotalRaisedUSD are caches of
// on-chain facts and are eventually consistent, never authoritative.
type Submission struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"not null" json:"title"`
	Story       string `gorm:"type:text" json:"story"`
	Category    string `json:"category"`
	ImageURL    string `json:"image_url"`
	MetadataURI string `json:"metadata_uri"`

	// All USD amounts are integer cents.
	GoalUSD         int64  `gorm:"not null" json:"goal_usd"`
	NumCopies       int64  `gorm:"not null" json:"num_copies"`
	PricePerCopyUSD *int64 `json:"price_per_copy_usd,omitempty"` // creator-set
	NFTPriceUSD     *int64 `json:"nft_price_usd,omitempty"`      // admin override

	SoldCount      int64 `gorm:"not null;default:0" json:"sold_count"`
	TotalRaisedUSD int64 `gorm:"not null;default:0" json:"total_raised_usd"`

	Status        SubmissionStatus `gorm:"default:pending;index" json:"status"`
	CreatorWallet string           `json:"creator_wallet"`
	CreatorEmail  string           `json:"creator_email"`

	// Set once at creation, never migrated to another binding.
	BindingID       uint    `gorm:"not null;index" json:"binding_id"`
	CampaignID      *uint64 `gorm:"index" json:"campaign_id,omitempty"`
	ContractAddress *string `json:"contract_address,omitempty"`
	TxHash          string  `json:"tx_hash"`

	Binding ContractBinding `gorm:"foreignKey:BindingID" json:"binding,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// PurchaseRecord is created exactly once per confirmed purchase transaction.
// TxHash is the idempotency key; only the annotation fields (Email, Note) are
// ever updated after creation.
type PurchaseRecord struct {
	ID             uint    `gorm:"primaryKey" json:"id"`
	TxHash         string  `gorm:"uniqueIndex;not null" json:"tx_hash"`
	CampaignID     uint64  `gorm:"not null;index" json:"campaign_id"`
	BindingID      uint    `gorm:"not null" json:"binding_id"`
	WalletAddress  string  `gorm:"not null" json:"wallet_address"`
	Quantity       int64   `gorm:"not null" json:"quantity"`
	AmountUSD      int64   `gorm:"not null" json:"amount_usd"` // cents
	AmountWei      string  `json:"amount_wei"`
	TipUSD         int64   `gorm:"not null;default:0" json:"tip_usd"` // cents
	TipWei         string  `json:"tip_wei"`
	MintedTokenIDs []int64 `gorm:"serializer:json" json:"minted_token_ids"`

	// Best-effort annotations, settable after creation.
	Email string `json:"email"`
	Note  string `gorm:"type:text" json:"note"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TokenRecord caches a minted edition token. Token IDs are only unique per
// contract, so the natural key is (token_id, chain_id, contract_address).
type TokenRecord struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	TokenID         int64  `gorm:"not null;uniqueIndex:idx_token_chain_contract" json:"token_id"`
	ChainID         uint   `gorm:"not null;uniqueIndex:idx_token_chain_contract" json:"chain_id"`
	ContractAddress string `gorm:"not null;uniqueIndex:idx_token_chain_contract" json:"contract_address"`
	CampaignID      uint64 `gorm:"not null;index" json:"campaign_id"`
	OwnerWallet     string `gorm:"index" json:"owner_wallet"`
	EditionNumber   int64  `json:"edition_number"`
	IsFrozen        bool   `gorm:"default:false" json:"is_frozen"`
	IsSoulbound     bool   `gorm:"default:false" json:"is_soulbound"`
	MintTxHash      string `json:"mint_tx_hash"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PurchaseEvent is an append-only, informational log entry. Duplicates are
// acceptable here and are never corrected.
type PurchaseEvent struct {
	ID         string    `gorm:"primaryKey" json:"id"`
	TxHash     string    `gorm:"index" json:"tx_hash"`
	CampaignID uint64    `gorm:"index" json:"campaign_id"`
	Kind       string    `gorm:"not null" json:"kind"`
	Payload    JSON      `gorm:"type:text" json:"payload"`
	CreatedAt  time.Time `json:"created_at"`
}
