package models

import (
	"time"
)

// Chain represents a blockchain network configuration. Rows are seeded at
// process start and treated as immutable afterwards.
type Chain struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	NetworkID       string `gorm:"column:chain_id;uniqueIndex;not null" json:"chain_id"` // e.g. "1" for Ethereum mainnet
	Name            string `gorm:"not null" json:"name"`
	RPC             string `gorm:"not null" json:"rpc"`
	NativeSymbol    string `gorm:"default:ETH" json:"native_symbol"`
	IsTestnet       bool   `gorm:"default:false" json:"is_testnet"`
	ExplorerBaseURL string `json:"explorer_base_url"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ContractBinding pins a deployed crowdfund contract to a chain and a codec
// version. A submission references exactly one binding for its lifetime.
type ContractBinding struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	ChainID         uint   `gorm:"not null;uniqueIndex:idx_binding_chain_addr" json:"chain_id"`
	ContractAddress string `gorm:"not null;uniqueIndex:idx_binding_chain_addr" json:"contract_address"`
	ContractVersion string `gorm:"not null;default:v1" json:"contract_version"`
	IsActive        bool   `gorm:"default:true" json:"is_active"`

	Chain Chain `gorm:"foreignKey:ChainID;references:ID" json:"chain,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
