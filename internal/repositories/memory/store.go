// Package memory is an in-process implementation of the settlement repositories.
// It backs the service tests and local runs with STOREDRIVER=memory.
package memory

import (
	"context"
	"sync"

	"github.com/Aaditya88888/netwin-tournament-sub001/internal/models"
	"github.com/Aaditya88888/netwin-tournament-sub001/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var _ repositories.TxManager = (*Store)(nil)

// Store holds every collection in maps guarded by one lock. Transactions are serialized and
// roll back through an undo log of their own writes, so writes made outside a transaction
// survive a concurrent rollback.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	tournaments   map[primitive.ObjectID]models.Tournament
	registrations map[primitive.ObjectID]models.Registration
	users         map[primitive.ObjectID]models.User
	deposits      map[primitive.ObjectID]models.FundingRequest
	withdrawals   map[primitive.ObjectID]models.FundingRequest
	transactions  map[primitive.ObjectID]models.Transaction
	distributions map[primitive.ObjectID]models.PrizeDistribution
	settings      *models.SettlementSettings
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		tournaments:   make(map[primitive.ObjectID]models.Tournament),
		registrations: make(map[primitive.ObjectID]models.Registration),
		users:         make(map[primitive.ObjectID]models.User),
		deposits:      make(map[primitive.ObjectID]models.FundingRequest),
		withdrawals:   make(map[primitive.ObjectID]models.FundingRequest),
		transactions:  make(map[primitive.ObjectID]models.Transaction),
		distributions: make(map[primitive.ObjectID]models.PrizeDistribution),
	}
}

// Repositories returns every repository backed by this store
func (s *Store) Repositories() *repositories.Repositories {
	return &repositories.Repositories{
		Tournaments:        &TournamentRepository{store: s},
		Registrations:      &RegistrationRepository{store: s},
		Users:              &UserRepository{store: s},
		Deposits:           &FundingRequestRepository{store: s, kind: models.FundingKindDeposit},
		Withdrawals:        &FundingRequestRepository{store: s, kind: models.FundingKindWithdrawal},
		Transactions:       &TransactionRepository{store: s},
		PrizeDistributions: &PrizeDistributionRepository{store: s},
		SettlementSettings: &SettlementSettingsRepository{store: s},
		TxManager:          s,
	}
}

type txKey struct{}

// txLog collects the inverse of every write made inside one transaction
type txLog struct {
	undo []func()
}

// WithTransaction runs fn and reverts the writes fn made if it fails
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	log := &txLog{}
	if err := fn(context.WithValue(ctx, txKey{}, log)); err != nil {
		s.mu.Lock()
		for i := len(log.undo) - 1; i >= 0; i-- {
			log.undo[i]()
		}
		s.mu.Unlock()
		return err
	}
	return nil
}

// recordUndo registers revert with the transaction carried by ctx, if any. Callers hold s.mu.
func recordUndo(ctx context.Context, revert func()) {
	if log, ok := ctx.Value(txKey{}).(*txLog); ok {
		log.undo = append(log.undo, revert)
	}
}

// put stores v under id and records how to revert it. Callers hold s.mu.
func put[V any](ctx context.Context, m map[primitive.ObjectID]V, id primitive.ObjectID, v V) {
	prev, existed := m[id]
	recordUndo(ctx, func() {
		if existed {
			m[id] = prev
		} else {
			delete(m, id)
		}
	})
	m[id] = v
}

func ptr[T any](v T) *T {
	return &v
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
