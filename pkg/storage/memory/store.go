// Package memory provides an in-process Storage implementation used for local
// development and tests. Every read returns copies, so callers never share state
// with the store.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/chris/energy-vault/pkg/models"
	"github.com/chris/energy-vault/pkg/storage"
)

type customerLedger struct {
	vault        models.EnergyVault
	credits      []models.EnergyCredit
	creditIndex  map[string]int
	transactions []models.EnergyTransaction
}

// Store is a thread-safe in-memory implementation of storage.Storage.
type Store struct {
	mu          sync.RWMutex
	ledgers     map[string]*customerLedger
	plants      map[string]models.Plant
	readings    map[string][]models.InverterReading
	connections map[string]struct{}
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		ledgers:     make(map[string]*customerLedger),
		plants:      make(map[string]models.Plant),
		readings:    make(map[string][]models.InverterReading),
		connections: make(map[string]struct{}),
	}
}

// Make sure we conform to the interface
var _ storage.Storage = (*Store)(nil)

// LoadLedger returns a copy of the customer's ledger.
func (s *Store) LoadLedger(ctx context.Context, customerID string) (*models.Ledger, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.ledgers[customerID]
	if !ok {
		return &models.Ledger{Vault: models.EnergyVault{CustomerID: customerID}}, nil
	}

	return &models.Ledger{
		Vault:        l.vault,
		Credits:      append([]models.EnergyCredit(nil), l.credits...),
		Transactions: append([]models.EnergyTransaction(nil), l.transactions...),
	}, nil
}

// ListCustomers returns customer IDs in lexical order.
func (s *Store) ListCustomers(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.ledgers))
	for id := range s.ledgers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// CommitMutation applies the mutation under the write lock after checking the vault version.
func (s *Store) CommitMutation(ctx context.Context, m *models.Mutation) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.ledgers[m.CustomerID]
	current := int64(0)
	if ok {
		current = l.vault.Version
	}
	if current != m.ExpectedVersion {
		return storage.ErrConcurrencyConflict
	}
	if !ok {
		l = &customerLedger{creditIndex: make(map[string]int)}
		s.ledgers[m.CustomerID] = l
	}

	vault := m.Vault
	vault.Transactions = nil
	l.vault = vault

	for _, c := range m.PutCredits {
		if i, exists := l.creditIndex[c.ID]; exists {
			l.credits[i] = c
			continue
		}
		l.creditIndex[c.ID] = len(l.credits)
		l.credits = append(l.credits, c)
	}
	l.transactions = append(l.transactions, m.Append...)

	return nil
}
