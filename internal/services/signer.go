package services

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// SignerRole identifies a writer role. Each role owns an independent key so
// its nonce sequence is never contended by another concurrent writer.
type SignerRole string

const (
	RoleCampaignCreator SignerRole = "campaign-creator"
	RoleEditionMinter   SignerRole = "edition-minter"
)

// Signer holds one role's relayer key.
type Signer struct {
	role    SignerRole
	key     *ecdsa.PrivateKey
	address common.Address
}

// NewSignerFromHex parses a hex-encoded private key into a role signer.
func NewSignerFromHex(role SignerRole, privateKeyHex string) (*Signer, error) {
	if privateKeyHex == "" {
		return nil, fmt.Errorf("private key hex cannot be empty")
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	return &Signer{
		role:    role,
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

func (s *Signer) Role() SignerRole {
	return s.role
}

func (s *Signer) Address() common.Address {
	return s.address
}

// SignTx signs a transaction for the given chain.
func (s *Signer) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	return types.SignTx(tx, types.LatestSignerForChainID(chainID), s.key)
}

// SignerRegistry maps writer roles to their signers.
type SignerRegistry struct {
	mu      sync.RWMutex
	signers map[SignerRole]*Signer
}

func NewSignerRegistry() *SignerRegistry {
	return &SignerRegistry{signers: make(map[SignerRole]*Signer)}
}

func (r *SignerRegistry) Register(s *Signer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.signers[s.role] = s
}

// For returns the signer registered for a role.
func (r *SignerRegistry) For(role SignerRole) (*Signer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.signers[role]
	if !ok {
		return nil, fmt.Errorf("no signer registered for role %s", role)
	}
	return s, nil
}
