package services

import (
	"fmt"
	"sync"

	"github.com/fundmint-lab/fundmint/internal/contract"
	"github.com/fundmint-lab/fundmint/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChainService is the registry of chains and contract bindings. Rows are
// seeded at process start; afterwards the registry is read-only and hands out
// cached RPC backends and version codecs per binding.
type ChainService interface {
	Seed(chains []models.Chain, bindings []models.ContractBinding) error
	ListChains() ([]models.Chain, error)
	GetChain(id uint) (*models.Chain, error)
	ListBindings() ([]models.ContractBinding, error)
	GetBinding(id uint) (*models.ContractBinding, error)
	Backend(binding *models.ContractBinding) (ChainBackend, error)
	Codec(binding *models.ContractBinding) (contract.Codec, error)
}

type chainService struct {
	db   *gorm.DB
	dial BackendDialer

	mu       sync.Mutex
	backends map[string]ChainBackend
}

// NewChainService creates a ChainService backed by ethclient connections.
func NewChainService(db *gorm.DB) ChainService {
	return NewChainServiceWithDialer(db, dialEthclient)
}

// NewChainServiceWithDialer allows injecting the backend dialer.
func NewChainServiceWithDialer(db *gorm.DB, dial BackendDialer) ChainService {
	return &chainService{
		db:       db,
		dial:     dial,
		backends: make(map[string]ChainBackend),
	}
}

// Seed inserts chain and binding rows, leaving existing rows untouched so the
// registry stays immutable across restarts.
func (s *chainService) Seed(chains []models.Chain, bindings []models.ContractBinding) error {
	for i := range chains {
		err := s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "chain_id"}},
			DoNothing: true,
		}).Create(&chains[i]).Error
		if err != nil {
			return fmt.Errorf("failed to seed chain %s: %w", chains[i].NetworkID, err)
		}
	}
	for i := range bindings {
		err := s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "chain_id"}, {Name: "contract_address"}},
			DoNothing: true,
		}).Create(&bindings[i]).Error
		if err != nil {
			return fmt.Errorf("failed to seed binding %s: %w", bindings[i].ContractAddress, err)
		}
	}
	return nil
}

func (s *chainService) ListChains() ([]models.Chain, error) {
	var chains []models.Chain
	err := s.db.Find(&chains).Error
	return chains, err
}

func (s *chainService) GetChain(id uint) (*models.Chain, error) {
	var chain models.Chain
	if err := s.db.First(&chain, id).Error; err != nil {
		return nil, err
	}
	return &chain, nil
}

func (s *chainService) ListBindings() ([]models.ContractBinding, error) {
	var bindings []models.ContractBinding
	err := s.db.Preload("Chain").Where("is_active = ?", true).Find(&bindings).Error
	return bindings, err
}

func (s *chainService) GetBinding(id uint) (*models.ContractBinding, error) {
	var binding models.ContractBinding
	if err := s.db.Preload("Chain").First(&binding, id).Error; err != nil {
		return nil, err
	}
	return &binding, nil
}

// Backend returns the cached RPC connection for a binding's chain, dialing on
// first use.
func (s *chainService) Backend(binding *models.ContractBinding) (ChainBackend, error) {
	rpcURL := binding.Chain.RPC
	if rpcURL == "" {
		chain, err := s.GetChain(binding.ChainID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve chain for binding %d: %w", binding.ID, err)
		}
		rpcURL = chain.RPC
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if backend, ok := s.backends[rpcURL]; ok {
		return backend, nil
	}

	backend, err := s.dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", rpcURL, err)
	}
	s.backends[rpcURL] = backend
	return backend, nil
}

func (s *chainService) Codec(binding *models.ContractBinding) (contract.Codec, error) {
	return contract.ForVersion(binding.ContractVersion)
}
