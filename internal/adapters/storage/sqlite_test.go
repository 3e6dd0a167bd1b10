package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xmarket/bot/internal/adapters/storage"
	"github.com/xmarket/bot/internal/domain"
)

func newTestLedger(t *testing.T) *storage.SQLiteLedger {
	t.Helper()
	db, err := storage.NewSQLiteLedger(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func registerUser(t *testing.T, db *storage.SQLiteLedger, xID string) domain.User {
	t.Helper()
	u, err := db.RegisterUser(context.Background(), xID, "user_"+xID, "0xwallet_"+xID)
	require.NoError(t, err)
	return u
}

func makeBet(userID string, amount float64) domain.Bet {
	return domain.Bet{
		ID:          uuid.NewString(),
		UserID:      userID,
		MarketID:    "0xmkt",
		MarketTitle: "Will X happen?",
		Side:        domain.SideYes,
		AmountUSDC:  amount,
		Status:      domain.BetPending,
		TweetID:     "tw123",
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}
}

func TestLedger_GetUser(t *testing.T) {
	db := newTestLedger(t)
	u := registerUser(t, db, "111")

	got, err := db.GetUserByXID(context.Background(), "111")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "user_111", got.XUsername)
	assert.Zero(t, got.BalanceUSDC)

	byWallet, err := db.GetUserByWallet(context.Background(), "0xWALLET_111")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byWallet.ID, "la búsqueda por wallet es case-insensitive")

	_, err = db.GetUserByXID(context.Background(), "999")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestLedger_SettleBetFilled_Atomic(t *testing.T) {
	db := newTestLedger(t)
	u := registerUser(t, db, "111")
	ctx := context.Background()

	require.NoError(t, db.CreditDeposit(ctx, u.ID, 50, "0xdep1"))

	bet := makeBet(u.ID, 10)
	require.NoError(t, db.CreateBet(ctx, bet))

	// CreateBet no toca el balance
	got, _ := db.GetUserByXID(ctx, "111")
	assert.InDelta(t, 50.0, got.BalanceUSDC, 0.001)

	require.NoError(t, db.SettleBetFilled(ctx, bet.ID, "ord-1", 0.45, 22.22))

	got, _ = db.GetUserByXID(ctx, "111")
	assert.InDelta(t, 40.0, got.BalanceUSDC, 0.001)

	filled, err := db.FilledBets(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, filled, 1)
	assert.Equal(t, "ord-1", filled[0].OrderID)
	assert.InDelta(t, 0.45, filled[0].Price, 0.001)
	assert.InDelta(t, 22.22, filled[0].Shares, 0.001)
	assert.Equal(t, domain.BetFilled, filled[0].Status)
	require.NotNil(t, filled[0].SettledAt)

	// Liquidar dos veces la misma bet falla
	err = db.SettleBetFilled(ctx, bet.ID, "ord-2", 0.45, 22.22)
	assert.Error(t, err)
}

func TestLedger_SettleBetFilled_InsufficientBalance(t *testing.T) {
	db := newTestLedger(t)
	u := registerUser(t, db, "111")
	ctx := context.Background()

	require.NoError(t, db.CreditDeposit(ctx, u.ID, 5, "0xdep1"))

	bet := makeBet(u.ID, 10)
	require.NoError(t, db.CreateBet(ctx, bet))

	err := db.SettleBetFilled(ctx, bet.ID, "ord-1", 0.45, 22.22)
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

	// Nada cambió: ni balance ni estado de la bet
	got, _ := db.GetUserByXID(ctx, "111")
	assert.InDelta(t, 5.0, got.BalanceUSDC, 0.001)

	pending, err := db.PendingBetTotal(ctx, u.ID)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, pending, 0.001)
}

func TestLedger_MarkBetFailed(t *testing.T) {
	db := newTestLedger(t)
	u := registerUser(t, db, "111")
	ctx := context.Background()

	bet := makeBet(u.ID, 10)
	require.NoError(t, db.CreateBet(ctx, bet))
	require.NoError(t, db.MarkBetFailed(ctx, bet.ID))

	pending, err := db.PendingBetTotal(ctx, u.ID)
	require.NoError(t, err)
	assert.Zero(t, pending)

	// Una bet failed no se puede volver a marcar
	assert.Error(t, db.MarkBetFailed(ctx, bet.ID))
}

func TestLedger_CreditDeposit_Idempotent(t *testing.T) {
	db := newTestLedger(t)
	u := registerUser(t, db, "111")
	ctx := context.Background()

	require.NoError(t, db.CreditDeposit(ctx, u.ID, 25, "0xhash1"))
	// Mismo hash repetido: no-op
	require.NoError(t, db.CreditDeposit(ctx, u.ID, 25, "0xhash1"))
	require.NoError(t, db.CreditDeposit(ctx, u.ID, 10, "0xhash2"))

	got, _ := db.GetUserByXID(ctx, "111")
	assert.InDelta(t, 35.0, got.BalanceUSDC, 0.001)

	total, err := db.TotalUserBalances(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 35.0, total, 0.001)
}

func TestLedger_DebitWithdrawal(t *testing.T) {
	db := newTestLedger(t)
	u := registerUser(t, db, "111")
	ctx := context.Background()

	require.NoError(t, db.CreditDeposit(ctx, u.ID, 20, "0xdep"))
	require.NoError(t, db.DebitWithdrawal(ctx, u.ID, 15, "0xwd"))

	got, _ := db.GetUserByXID(ctx, "111")
	assert.InDelta(t, 5.0, got.BalanceUSDC, 0.001)

	err := db.DebitWithdrawal(ctx, u.ID, 15, "0xwd2")
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
}

func TestLedger_LastMarkets(t *testing.T) {
	db := newTestLedger(t)
	ctx := context.Background()

	_, err := db.LastMarkets(ctx, "111")
	assert.ErrorIs(t, err, domain.ErrNoRecentMarkets)

	refs := []domain.MarketRef{
		{ID: "0xaaa", Question: "Will BTC hit 100k?", YesPrice: 0.62, NoPrice: 0.38},
		{ID: "0xbbb", Question: "Will ETH flip BTC?", YesPrice: 0.08, NoPrice: 0.92},
	}
	require.NoError(t, db.SaveLastMarkets(ctx, "111", refs))

	got, err := db.LastMarkets(ctx, "111")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "0xaaa", got[0].ID)
	assert.InDelta(t, 0.62, got[0].YesPrice, 0.001)

	// Una nueva búsqueda reemplaza el contexto anterior
	require.NoError(t, db.SaveLastMarkets(ctx, "111", refs[:1]))
	got, err = db.LastMarkets(ctx, "111")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
