package services

import (
	"sync"
	"testing"

	"github.com/Aaditya88888/netwin-tournament-sub001/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestApproveDepositCreditsWalletAndCompletesEntry(t *testing.T) {
	f := newFixture(t)
	user := f.user("1000")
	deposit := f.fundingRequest(f.repos.Deposits, user.ID, "200")
	entry := f.pendingEntry(user.ID, models.TransactionTypeDeposit, "200")

	outcome, err := f.funding.ApproveDeposit(f.ctx, deposit.ID, "admin-1")
	require.NoError(t, err)

	assert.True(t, outcome.Success)
	require.NotNil(t, outcome.NewBalance)
	assert.True(t, outcome.NewBalance.Equal(dec("1200")))
	assert.True(t, f.balance(user.ID).Equal(dec("1200")))

	assert.Equal(t, models.FundingStatusApproved, outcome.Request.Status)
	assert.Equal(t, "admin-1", outcome.Request.VerifiedBy)
	assert.NotNil(t, outcome.Request.VerifiedAt)
	assert.True(t, outcome.Request.TransactionSynced)
	assert.Equal(t, entry.ID, *outcome.Request.TransactionID)

	stored, err := f.repos.Transactions.FindByID(f.ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusCompleted, stored.Status)
	assert.Equal(t, deposit.ID, *stored.RequestID)
}

func TestApproveDepositWithoutLedgerEntryStillApproves(t *testing.T) {
	f := newFixture(t)
	user := f.user("10")
	deposit := f.fundingRequest(f.repos.Deposits, user.ID, "5")

	outcome, err := f.funding.ApproveDeposit(f.ctx, deposit.ID, "admin")
	require.NoError(t, err)
	assert.True(t, outcome.NewBalance.Equal(dec("15")))
	assert.Equal(t, models.FundingStatusApproved, outcome.Request.Status)
	assert.False(t, outcome.Request.TransactionSynced)
}

func TestApproveWithdrawalInsufficientFunds(t *testing.T) {
	f := newFixture(t)
	user := f.user("300")
	withdrawal := f.fundingRequest(f.repos.Withdrawals, user.ID, "500")
	entry := f.pendingEntry(user.ID, models.TransactionTypeWithdrawal, "500")

	_, err := f.funding.ApproveWithdrawal(f.ctx, withdrawal.ID, "admin")
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	assert.True(t, f.balance(user.ID).Equal(dec("300")))
	stored, err := f.repos.Withdrawals.FindByID(f.ctx, withdrawal.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FundingStatusPending, stored.Status)
	assert.Nil(t, stored.VerifiedAt)
	storedEntry, err := f.repos.Transactions.FindByID(f.ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusPending, storedEntry.Status)

	// Approvable once the balance covers it
	_, err = f.repos.Users.IncrementBalance(f.ctx, user.ID, dec("200"))
	require.NoError(t, err)
	outcome, err := f.funding.ApproveWithdrawal(f.ctx, withdrawal.ID, "admin")
	require.NoError(t, err)
	assert.True(t, outcome.NewBalance.IsZero())
}

func TestApproveWithdrawalDebitsWallet(t *testing.T) {
	f := newFixture(t)
	user := f.user("800")
	withdrawal := f.fundingRequest(f.repos.Withdrawals, user.ID, "250.50")
	entry := f.pendingEntry(user.ID, models.TransactionTypeWithdrawal, "250.50")

	outcome, err := f.funding.ApproveWithdrawal(f.ctx, withdrawal.ID, "admin")
	require.NoError(t, err)
	assert.True(t, outcome.NewBalance.Equal(dec("549.50")))

	stored, err := f.repos.Transactions.FindByID(f.ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusCompleted, stored.Status)
}

func TestRejectLeavesWalletUntouched(t *testing.T) {
	f := newFixture(t)
	user := f.user("700")
	deposit := f.fundingRequest(f.repos.Deposits, user.ID, "100")
	withdrawal := f.fundingRequest(f.repos.Withdrawals, user.ID, "100")
	depositEntry := f.pendingEntry(user.ID, models.TransactionTypeDeposit, "100")
	withdrawalEntry := f.pendingEntry(user.ID, models.TransactionTypeWithdrawal, "100")

	outcome, err := f.funding.RejectDeposit(f.ctx, deposit.ID, "admin", "receipt unreadable")
	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.Nil(t, outcome.NewBalance)
	assert.Equal(t, models.FundingStatusRejected, outcome.Request.Status)
	assert.Equal(t, "receipt unreadable", outcome.Request.RejectionReason)

	_, err = f.funding.RejectWithdrawal(f.ctx, withdrawal.ID, "admin", "kyc pending")
	require.NoError(t, err)

	assert.True(t, f.balance(user.ID).Equal(dec("700")))
	for _, id := range []primitive.ObjectID{depositEntry.ID, withdrawalEntry.ID} {
		stored, err := f.repos.Transactions.FindByID(f.ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.TransactionStatusRejected, stored.Status)
	}
}

func TestTerminalRequestsCannotTransition(t *testing.T) {
	f := newFixture(t)
	user := f.user("1000")
	approved := f.fundingRequest(f.repos.Deposits, user.ID, "50")
	rejected := f.fundingRequest(f.repos.Withdrawals, user.ID, "50")

	_, err := f.funding.ApproveDeposit(f.ctx, approved.ID, "admin")
	require.NoError(t, err)
	_, err = f.funding.RejectWithdrawal(f.ctx, rejected.ID, "admin", "duplicate")
	require.NoError(t, err)

	_, err = f.funding.ApproveDeposit(f.ctx, approved.ID, "admin")
	assert.ErrorIs(t, err, ErrNotPending)
	_, err = f.funding.RejectDeposit(f.ctx, approved.ID, "admin", "late")
	assert.ErrorIs(t, err, ErrNotPending)
	_, err = f.funding.ApproveWithdrawal(f.ctx, rejected.ID, "admin")
	assert.ErrorIs(t, err, ErrNotPending)
	_, err = f.funding.RejectWithdrawal(f.ctx, rejected.ID, "admin", "again")
	assert.ErrorIs(t, err, ErrNotPending)

	assert.True(t, f.balance(user.ID).Equal(dec("1050")))
}

func TestFundingRequestNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.funding.ApproveDeposit(f.ctx, primitive.NewObjectID(), "admin")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.funding.RejectWithdrawal(f.ctx, primitive.NewObjectID(), "admin", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConcurrentWithdrawalsNeverOverdraw(t *testing.T) {
	f := newFixture(t)
	user := f.user("1000")

	const requests = 10
	ids := make([]primitive.ObjectID, requests)
	for i := range ids {
		ids[i] = f.fundingRequest(f.repos.Withdrawals, user.ID, "300").ID
	}

	var wg sync.WaitGroup
	errs := make([]error, requests)
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id primitive.ObjectID) {
			defer wg.Done()
			_, errs[i] = f.funding.ApproveWithdrawal(f.ctx, id, "admin")
		}(i, id)
	}
	wg.Wait()

	approved := 0
	for _, err := range errs {
		if err == nil {
			approved++
			continue
		}
		assert.ErrorIs(t, err, ErrInsufficientFunds)
	}
	assert.Equal(t, 3, approved)
	assert.True(t, f.balance(user.ID).Equal(dec("100")))
}

func TestConcurrentApprovalsOfSameDepositCreditOnce(t *testing.T) {
	f := newFixture(t)
	user := f.user("0")
	deposit := f.fundingRequest(f.repos.Deposits, user.ID, "75")

	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.funding.ApproveDeposit(f.ctx, deposit.ID, "admin")
		}(i)
	}
	wg.Wait()

	approved := 0
	for _, err := range errs {
		if err == nil {
			approved++
			continue
		}
		assert.ErrorIs(t, err, ErrNotPending)
	}
	assert.Equal(t, 1, approved)
	assert.True(t, f.balance(user.ID).Equal(dec("75")))
}
