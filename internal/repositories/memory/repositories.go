package memory

import (
	"context"
	"sort"
	"time"

	"github.com/Aaditya88888/netwin-tournament-sub001/internal/models"
	"github.com/Aaditya88888/netwin-tournament-sub001/internal/repositories"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	_ repositories.TournamentRepository         = (*TournamentRepository)(nil)
	_ repositories.RegistrationRepository       = (*RegistrationRepository)(nil)
	_ repositories.UserRepository               = (*UserRepository)(nil)
	_ repositories.FundingRequestRepository     = (*FundingRequestRepository)(nil)
	_ repositories.TransactionRepository        = (*TransactionRepository)(nil)
	_ repositories.PrizeDistributionRepository  = (*PrizeDistributionRepository)(nil)
	_ repositories.SettlementSettingsRepository = (*SettlementSettingsRepository)(nil)
)

// TournamentRepository stores tournaments in memory
type TournamentRepository struct {
	store *Store
}

func cloneTournament(t models.Tournament) *models.Tournament {
	t.CompanyCommissionPercentage = clonePtr(t.CompanyCommissionPercentage)
	t.FirstPrizePercentage = clonePtr(t.FirstPrizePercentage)
	t.PerKillRewardPercentage = clonePtr(t.PerKillRewardPercentage)
	t.PrizePool = clonePtr(t.PrizePool)
	t.PrizesDistributedAt = clonePtr(t.PrizesDistributedAt)
	return &t
}

func (r *TournamentRepository) Create(ctx context.Context, tournament *models.Tournament) error {
	if tournament.ID.IsZero() {
		tournament.ID = primitive.NewObjectID()
	}
	tournament.CreatedAt = time.Now()
	tournament.UpdatedAt = tournament.CreatedAt

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	put(ctx, r.store.tournaments, tournament.ID, *cloneTournament(*tournament))
	return nil
}

func (r *TournamentRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.Tournament, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	t, ok := r.store.tournaments[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return cloneTournament(t), nil
}

func (r *TournamentRepository) MarkPrizesDistributed(ctx context.Context, id primitive.ObjectID, total decimal.Decimal, distributedBy string, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	t, ok := r.store.tournaments[id]
	if !ok {
		return repositories.ErrNotFound
	}
	if t.PrizesDistributed {
		return repositories.ErrConditionFailed
	}
	t.PrizesDistributed = true
	t.TotalDistributed = total
	t.PrizesDistributedAt = ptr(at)
	t.PrizesDistributedBy = distributedBy
	t.UpdatedAt = at
	put(ctx, r.store.tournaments, id, t)
	return nil
}

// RegistrationRepository stores registrations in memory
type RegistrationRepository struct {
	store *Store
}

func cloneRegistration(reg models.Registration) *models.Registration {
	reg.Position = clonePtr(reg.Position)
	return &reg
}

func (r *RegistrationRepository) Create(ctx context.Context, registration *models.Registration) error {
	if registration.ID.IsZero() {
		registration.ID = primitive.NewObjectID()
	}
	registration.CreatedAt = time.Now()
	registration.UpdatedAt = registration.CreatedAt

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	put(ctx, r.store.registrations, registration.ID, *cloneRegistration(*registration))
	return nil
}

func (r *RegistrationRepository) FindByTournament(_ context.Context, tournamentID primitive.ObjectID) ([]*models.Registration, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	registrations := []*models.Registration{}
	for _, reg := range r.store.registrations {
		if reg.TournamentID == tournamentID {
			registrations = append(registrations, cloneRegistration(reg))
		}
	}
	sort.Slice(registrations, func(i, j int) bool {
		return before(registrations[i].CreatedAt, registrations[i].ID, registrations[j].CreatedAt, registrations[j].ID)
	})
	return registrations, nil
}

func (r *RegistrationRepository) MarkRewarded(ctx context.Context, id primitive.ObjectID, reward decimal.Decimal) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	reg, ok := r.store.registrations[id]
	if !ok {
		return repositories.ErrNotFound
	}
	reg.Reward = reward
	reg.PrizeDistributed = true
	reg.UpdatedAt = time.Now()
	put(ctx, r.store.registrations, id, reg)
	return nil
}

// UserRepository stores users in memory. Balance updates happen under the store lock, which
// gives them the same atomicity as the conditional $inc used against MongoDB.
type UserRepository struct {
	store *Store
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	put(ctx, r.store.users, user.ID, *user)
	return nil
}

func (r *UserRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	user, ok := r.store.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &user, nil
}

func (r *UserRepository) IncrementBalance(ctx context.Context, id primitive.ObjectID, delta decimal.Decimal) (decimal.Decimal, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	user, ok := r.store.users[id]
	if !ok {
		return decimal.Zero, repositories.ErrNotFound
	}
	user.WalletBalance = user.WalletBalance.Add(delta)
	user.UpdatedAt = time.Now()
	put(ctx, r.store.users, id, user)
	return user.WalletBalance, nil
}

func (r *UserRepository) DecrementBalanceIfSufficient(ctx context.Context, id primitive.ObjectID, amount decimal.Decimal) (decimal.Decimal, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	user, ok := r.store.users[id]
	if !ok {
		return decimal.Zero, repositories.ErrNotFound
	}
	if user.WalletBalance.LessThan(amount) {
		return decimal.Zero, repositories.ErrConditionFailed
	}
	user.WalletBalance = user.WalletBalance.Sub(amount)
	user.UpdatedAt = time.Now()
	put(ctx, r.store.users, id, user)
	return user.WalletBalance, nil
}

// FundingRequestRepository stores one kind of funding request in memory
type FundingRequestRepository struct {
	store *Store
	kind  models.FundingKind
}

func (r *FundingRequestRepository) collection() map[primitive.ObjectID]models.FundingRequest {
	if r.kind == models.FundingKindWithdrawal {
		return r.store.withdrawals
	}
	return r.store.deposits
}

func (r *FundingRequestRepository) clone(req models.FundingRequest) *models.FundingRequest {
	req.Kind = r.kind
	req.VerifiedAt = clonePtr(req.VerifiedAt)
	req.TransactionID = clonePtr(req.TransactionID)
	req.ReconcileAttemptedAt = clonePtr(req.ReconcileAttemptedAt)
	return &req
}

func (r *FundingRequestRepository) Kind() models.FundingKind {
	return r.kind
}

func (r *FundingRequestRepository) Create(ctx context.Context, request *models.FundingRequest) error {
	if request.ID.IsZero() {
		request.ID = primitive.NewObjectID()
	}
	if request.Status == "" {
		request.Status = models.FundingStatusPending
	}
	request.Kind = r.kind
	request.CreatedAt = time.Now()
	request.UpdatedAt = request.CreatedAt

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	put(ctx, r.collection(), request.ID, *r.clone(*request))
	return nil
}

func (r *FundingRequestRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.FundingRequest, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	req, ok := r.collection()[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return r.clone(req), nil
}

func (r *FundingRequestRepository) TransitionStatus(ctx context.Context, id primitive.ObjectID, from models.FundingStatus, decision models.FundingDecision) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	req, ok := r.collection()[id]
	if !ok {
		return repositories.ErrNotFound
	}
	if req.Status != from {
		return repositories.ErrConditionFailed
	}
	req.Status = decision.Status
	req.VerifiedAt = ptr(decision.DecidedAt)
	req.VerifiedBy = decision.DecidedBy
	if decision.RejectionReason != "" {
		req.RejectionReason = decision.RejectionReason
	}
	req.UpdatedAt = decision.DecidedAt
	put(ctx, r.collection(), id, req)
	return nil
}

func (r *FundingRequestRepository) MarkTransactionSynced(ctx context.Context, id primitive.ObjectID, transactionID *primitive.ObjectID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	req, ok := r.collection()[id]
	if !ok {
		return repositories.ErrNotFound
	}
	req.TransactionSynced = true
	if transactionID != nil {
		req.TransactionID = clonePtr(transactionID)
	}
	req.UpdatedAt = time.Now()
	put(ctx, r.collection(), id, req)
	return nil
}

func (r *FundingRequestRepository) MarkReconcileAttempted(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	req, ok := r.collection()[id]
	if !ok {
		return repositories.ErrNotFound
	}
	req.ReconcileAttemptedAt = ptr(at)
	put(ctx, r.collection(), id, req)
	return nil
}

func (r *FundingRequestRepository) FindUnsynced(_ context.Context, limit int) ([]*models.FundingRequest, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var requests []*models.FundingRequest
	for _, req := range r.collection() {
		if req.Status.IsTerminal() && !req.TransactionSynced {
			requests = append(requests, r.clone(req))
		}
	}
	sort.Slice(requests, func(i, j int) bool {
		a, b := requests[i].ReconcileAttemptedAt, requests[j].ReconcileAttemptedAt
		switch {
		case a == nil && b != nil:
			return true
		case a != nil && b == nil:
			return false
		case a != nil && !a.Equal(*b):
			return a.Before(*b)
		}
		return before(requests[i].UpdatedAt, requests[i].ID, requests[j].UpdatedAt, requests[j].ID)
	})
	if limit > 0 && len(requests) > limit {
		requests = requests[:limit]
	}
	return requests, nil
}

// TransactionRepository stores ledger entries in memory
type TransactionRepository struct {
	store *Store
}

func cloneTransaction(tx models.Transaction) *models.Transaction {
	tx.TournamentID = clonePtr(tx.TournamentID)
	tx.RequestID = clonePtr(tx.RequestID)
	return &tx
}

func (r *TransactionRepository) Create(ctx context.Context, transaction *models.Transaction) error {
	if transaction.ID.IsZero() {
		transaction.ID = primitive.NewObjectID()
	}
	now := time.Now()
	if transaction.CreatedAt.IsZero() {
		transaction.CreatedAt = now
	}
	transaction.UpdatedAt = now

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	put(ctx, r.store.transactions, transaction.ID, *cloneTransaction(*transaction))
	return nil
}

func (r *TransactionRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	tx, ok := r.store.transactions[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return cloneTransaction(tx), nil
}

func (r *TransactionRepository) FindByRequestID(_ context.Context, requestID primitive.ObjectID) (*models.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, tx := range r.store.transactions {
		if tx.RequestID != nil && *tx.RequestID == requestID {
			return cloneTransaction(tx), nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *TransactionRepository) FindFirstPendingMatch(_ context.Context, userID primitive.ObjectID, txType models.TransactionType, amount decimal.Decimal) (*models.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var match *models.Transaction
	for _, tx := range r.store.transactions {
		if tx.UserID != userID || tx.Type != txType || tx.Status != models.TransactionStatusPending {
			continue
		}
		if tx.RequestID != nil || !tx.Amount.Equal(amount) {
			continue
		}
		if match == nil || before(tx.CreatedAt, tx.ID, match.CreatedAt, match.ID) {
			match = cloneTransaction(tx)
		}
	}
	if match == nil {
		return nil, repositories.ErrNotFound
	}
	return match, nil
}

func (r *TransactionRepository) TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to models.TransactionStatus, requestID primitive.ObjectID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	tx, ok := r.store.transactions[id]
	if !ok {
		return repositories.ErrNotFound
	}
	if tx.Status != from {
		return repositories.ErrConditionFailed
	}
	tx.Status = to
	tx.RequestID = ptr(requestID)
	tx.UpdatedAt = time.Now()
	put(ctx, r.store.transactions, id, tx)
	return nil
}

func (r *TransactionRepository) FindByUser(_ context.Context, userID primitive.ObjectID) ([]*models.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	transactions := []*models.Transaction{}
	for _, tx := range r.store.transactions {
		if tx.UserID == userID {
			transactions = append(transactions, cloneTransaction(tx))
		}
	}
	sort.Slice(transactions, func(i, j int) bool {
		return before(transactions[j].CreatedAt, transactions[j].ID, transactions[i].CreatedAt, transactions[i].ID)
	})
	return transactions, nil
}

// PrizeDistributionRepository stores distribution records in memory
type PrizeDistributionRepository struct {
	store *Store
}

func (r *PrizeDistributionRepository) Create(ctx context.Context, distribution *models.PrizeDistribution) error {
	if distribution.ID.IsZero() {
		distribution.ID = primitive.NewObjectID()
	}
	if distribution.CreatedAt.IsZero() {
		distribution.CreatedAt = time.Now()
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	d := *distribution
	d.Position = clonePtr(d.Position)
	put(ctx, r.store.distributions, d.ID, d)
	return nil
}

func (r *PrizeDistributionRepository) FindByTournament(_ context.Context, tournamentID primitive.ObjectID) ([]*models.PrizeDistribution, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	distributions := []*models.PrizeDistribution{}
	for _, d := range r.store.distributions {
		if d.TournamentID == tournamentID {
			d.Position = clonePtr(d.Position)
			distributions = append(distributions, ptr(d))
		}
	}
	sort.Slice(distributions, func(i, j int) bool {
		return distributions[i].PrizeAmount.GreaterThan(distributions[j].PrizeAmount)
	})
	return distributions, nil
}

// SettlementSettingsRepository stores the single settings document in memory
type SettlementSettingsRepository struct {
	store *Store
}

func (r *SettlementSettingsRepository) GetSettings(_ context.Context) (*models.SettlementSettings, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if r.store.settings == nil {
		return nil, repositories.ErrNotFound
	}
	return clonePtr(r.store.settings), nil
}

func (r *SettlementSettingsRepository) UpsertSettings(ctx context.Context, settings *models.SettlementSettings) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	now := time.Now()
	settings.UpdatedAt = now
	if r.store.settings == nil {
		if settings.ID.IsZero() {
			settings.ID = primitive.NewObjectID()
		}
		settings.CreatedAt = now
	} else {
		settings.ID = r.store.settings.ID
		settings.CreatedAt = r.store.settings.CreatedAt
	}
	prev := r.store.settings
	recordUndo(ctx, func() { r.store.settings = prev })
	r.store.settings = clonePtr(settings)
	return nil
}

// before orders by timestamp, then by id so that equal timestamps stay stable
func before(ta time.Time, ida primitive.ObjectID, tb time.Time, idb primitive.ObjectID) bool {
	if !ta.Equal(tb) {
		return ta.Before(tb)
	}
	return ida.Hex() < idb.Hex()
}
