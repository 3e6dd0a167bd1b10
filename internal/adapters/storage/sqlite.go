package storage

// sqlite.go — Ledger custodial en SQLite (pure Go, sin CGo).
//
// Invariante central: todo movimiento de balance va acompañado de su fila
// en transactions dentro de la MISMA transacción SQL. Nunca puede quedar
// un balance modificado sin movimiento auditable, ni al revés.

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/xmarket/bot/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id             TEXT PRIMARY KEY,
    x_user_id      TEXT NOT NULL UNIQUE,
    x_username     TEXT NOT NULL,
    wallet_address TEXT UNIQUE,
    balance_usdc   REAL NOT NULL DEFAULT 0,
    created_at     DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS bets (
    id           TEXT PRIMARY KEY,
    user_id      TEXT NOT NULL REFERENCES users(id),
    market_id    TEXT NOT NULL,
    market_title TEXT NOT NULL,
    side         TEXT NOT NULL,
    amount_usdc  REAL NOT NULL,
    price        REAL NOT NULL DEFAULT 0,
    shares       REAL NOT NULL DEFAULT 0,
    status       TEXT NOT NULL DEFAULT 'pending',
    order_id     TEXT,
    tweet_id     TEXT,
    created_at   DATETIME NOT NULL,
    settled_at   DATETIME
);

CREATE TABLE IF NOT EXISTS transactions (
    id          TEXT PRIMARY KEY,
    user_id     TEXT NOT NULL REFERENCES users(id),
    type        TEXT NOT NULL,
    amount_usdc REAL NOT NULL,
    tx_hash     TEXT UNIQUE,
    created_at  DATETIME NOT NULL
);

-- Última búsqueda por usuario, para resolver "bet 5 yes" sin market id
CREATE TABLE IF NOT EXISTS user_contexts (
    x_user_id    TEXT PRIMARY KEY,
    last_markets TEXT NOT NULL,
    updated_at   DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_bets_user   ON bets(user_id, status);
CREATE INDEX IF NOT EXISTS idx_tx_user     ON transactions(user_id);
CREATE INDEX IF NOT EXISTS idx_users_xid   ON users(x_user_id);
`

// SQLiteLedger implementa ports.Ledger.
type SQLiteLedger struct {
	db *sql.DB
}

// NewSQLiteLedger abre (o crea) la base de datos en la ruta dada.
func NewSQLiteLedger(path string) (*SQLiteLedger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteLedger: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteLedger: apply schema: %w", err)
	}
	return &SQLiteLedger{db: db}, nil
}

// Close cierra la conexión.
func (s *SQLiteLedger) Close() error {
	return s.db.Close()
}

// RegisterUser da de alta un usuario. El alta normal ocurre fuera del bot
// (web de signup contra esta misma base de datos).
func (s *SQLiteLedger) RegisterUser(ctx context.Context, xUserID, xUsername, walletAddress string) (domain.User, error) {
	u := domain.User{
		ID:            uuid.NewString(),
		XUserID:       xUserID,
		XUsername:     xUsername,
		WalletAddress: walletAddress,
		CreatedAt:     time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, x_user_id, x_username, wallet_address, balance_usdc, created_at)
		 VALUES (?, ?, ?, ?, 0, ?)`,
		u.ID, u.XUserID, u.XUsername, nullable(u.WalletAddress), u.CreatedAt,
	)
	if err != nil {
		return domain.User{}, fmt.Errorf("storage.RegisterUser: %w", err)
	}
	return u, nil
}

// GetUserByXID busca un usuario por su ID de X.
// Devuelve domain.ErrUserNotFound si no existe.
func (s *SQLiteLedger) GetUserByXID(ctx context.Context, xUserID string) (domain.User, error) {
	return s.getUser(ctx, `SELECT id, x_user_id, x_username, COALESCE(wallet_address, ''), balance_usdc, created_at
		FROM users WHERE x_user_id = ?`, xUserID)
}

// GetUserByWallet busca un usuario por su wallet registrada.
func (s *SQLiteLedger) GetUserByWallet(ctx context.Context, walletAddress string) (domain.User, error) {
	return s.getUser(ctx, `SELECT id, x_user_id, x_username, COALESCE(wallet_address, ''), balance_usdc, created_at
		FROM users WHERE wallet_address = ? COLLATE NOCASE`, walletAddress)
}

func (s *SQLiteLedger) getUser(ctx context.Context, query, arg string) (domain.User, error) {
	var u domain.User
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.XUserID, &u.XUsername, &u.WalletAddress, &u.BalanceUSDC, &u.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("storage.getUser: %w", err)
	}
	return u, nil
}

// TotalUserBalances suma los balances custodiales de todos los usuarios.
func (s *SQLiteLedger) TotalUserBalances(ctx context.Context) (float64, error) {
	var total float64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(balance_usdc), 0) FROM users`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("storage.TotalUserBalances: %w", err)
	}
	return total, nil
}

// CreateBet inserta una apuesta en estado pending. No toca balances:
// el débito ocurre en SettleBetFilled con los datos reales del fill.
func (s *SQLiteLedger) CreateBet(ctx context.Context, bet domain.Bet) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bets (id, user_id, market_id, market_title, side, amount_usdc, price, shares, status, order_id, tweet_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bet.ID, bet.UserID, bet.MarketID, bet.MarketTitle, string(bet.Side),
		bet.AmountUSDC, bet.Price, bet.Shares, string(bet.Status),
		nullable(bet.OrderID), nullable(bet.TweetID), bet.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("storage.CreateBet: %w", err)
	}
	return nil
}

// SettleBetFilled marca la bet como filled, debita el balance del usuario y
// registra la Transaction — todo en una única transacción SQL. El balance se
// revalida dentro de la transacción: si ya no alcanza (otra apuesta
// concurrente lo consumió), devuelve domain.ErrInsufficientBalance sin
// modificar nada.
func (s *SQLiteLedger) SettleBetFilled(ctx context.Context, betID, orderID string, price, shares float64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SettleBetFilled: begin: %w", err)
	}
	defer tx.Rollback()

	var userID string
	var amount float64
	var status string
	err = tx.QueryRowContext(ctx,
		`SELECT user_id, amount_usdc, status FROM bets WHERE id = ?`, betID,
	).Scan(&userID, &amount, &status)
	if err == sql.ErrNoRows {
		return fmt.Errorf("storage.SettleBetFilled: bet %s not found", betID)
	}
	if err != nil {
		return fmt.Errorf("storage.SettleBetFilled: load bet: %w", err)
	}
	if status != string(domain.BetPending) {
		return fmt.Errorf("storage.SettleBetFilled: bet %s already %s", betID, status)
	}

	var balance float64
	if err := tx.QueryRowContext(ctx,
		`SELECT balance_usdc FROM users WHERE id = ?`, userID,
	).Scan(&balance); err != nil {
		return fmt.Errorf("storage.SettleBetFilled: load balance: %w", err)
	}
	if balance < amount {
		return domain.ErrInsufficientBalance
	}

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET balance_usdc = balance_usdc - ? WHERE id = ?`,
		amount, userID,
	); err != nil {
		return fmt.Errorf("storage.SettleBetFilled: debit: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE bets SET status = ?, order_id = ?, price = ?, shares = ?, settled_at = ? WHERE id = ?`,
		string(domain.BetFilled), orderID, price, shares, now, betID,
	); err != nil {
		return fmt.Errorf("storage.SettleBetFilled: update bet: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO transactions (id, user_id, type, amount_usdc, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), userID, string(domain.TxBet), -amount, now,
	); err != nil {
		return fmt.Errorf("storage.SettleBetFilled: insert tx: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SettleBetFilled: commit: %w", err)
	}
	return nil
}

// MarkBetFailed deja la bet en estado terminal failed. No toca balances.
func (s *SQLiteLedger) MarkBetFailed(ctx context.Context, betID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE bets SET status = ?, settled_at = ? WHERE id = ? AND status = ?`,
		string(domain.BetFailed), time.Now().UTC(), betID, string(domain.BetPending),
	)
	if err != nil {
		return fmt.Errorf("storage.MarkBetFailed: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("storage.MarkBetFailed: bet %s not pending", betID)
	}
	return nil
}

// PendingBetTotal suma el importe de las bets pending de un usuario.
// Se usa para no sobre-comprometer el balance con apuestas en vuelo.
func (s *SQLiteLedger) PendingBetTotal(ctx context.Context, userID string) (float64, error) {
	var total float64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_usdc), 0) FROM bets WHERE user_id = ? AND status = ?`,
		userID, string(domain.BetPending),
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("storage.PendingBetTotal: %w", err)
	}
	return total, nil
}

// FilledBets devuelve las bets filled de un usuario, más recientes primero.
func (s *SQLiteLedger) FilledBets(ctx context.Context, userID string) ([]domain.Bet, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, market_id, market_title, side, amount_usdc, price, shares, status,
		        COALESCE(order_id, ''), COALESCE(tweet_id, ''), created_at, settled_at
		 FROM bets WHERE user_id = ? AND status = ? ORDER BY created_at DESC`,
		userID, string(domain.BetFilled),
	)
	if err != nil {
		return nil, fmt.Errorf("storage.FilledBets: %w", err)
	}
	defer rows.Close()

	var bets []domain.Bet
	for rows.Next() {
		var b domain.Bet
		var side, status string
		var settledAt sql.NullTime
		if err := rows.Scan(
			&b.ID, &b.UserID, &b.MarketID, &b.MarketTitle, &side,
			&b.AmountUSDC, &b.Price, &b.Shares, &status,
			&b.OrderID, &b.TweetID, &b.CreatedAt, &settledAt,
		); err != nil {
			return nil, fmt.Errorf("storage.FilledBets: scan: %w", err)
		}
		b.Side = domain.BetSide(side)
		b.Status = domain.BetStatus(status)
		if settledAt.Valid {
			t := settledAt.Time
			b.SettledAt = &t
		}
		bets = append(bets, b)
	}
	return bets, rows.Err()
}

// CreditDeposit incrementa el balance y registra la transaction deposit,
// atómico e idempotente sobre txHash: un hash ya registrado es un no-op.
func (s *SQLiteLedger) CreditDeposit(ctx context.Context, userID string, amountUSDC float64, txHash string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.CreditDeposit: begin: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM transactions WHERE tx_hash = ?`, txHash,
	).Scan(&exists); err != nil {
		return fmt.Errorf("storage.CreditDeposit: check hash: %w", err)
	}
	if exists > 0 {
		return nil
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET balance_usdc = balance_usdc + ? WHERE id = ?`,
		amountUSDC, userID,
	); err != nil {
		return fmt.Errorf("storage.CreditDeposit: credit: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO transactions (id, user_id, type, amount_usdc, tx_hash, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), userID, string(domain.TxDeposit), amountUSDC, txHash, time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("storage.CreditDeposit: insert tx: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.CreditDeposit: commit: %w", err)
	}
	return nil
}

// DebitWithdrawal debita el balance y registra la transaction withdrawal.
// Mismo invariante atómico que los depósitos; balance insuficiente aborta.
func (s *SQLiteLedger) DebitWithdrawal(ctx context.Context, userID string, amountUSDC float64, txHash string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.DebitWithdrawal: begin: %w", err)
	}
	defer tx.Rollback()

	var balance float64
	if err := tx.QueryRowContext(ctx,
		`SELECT balance_usdc FROM users WHERE id = ?`, userID,
	).Scan(&balance); err != nil {
		return fmt.Errorf("storage.DebitWithdrawal: load balance: %w", err)
	}
	if balance < amountUSDC {
		return domain.ErrInsufficientBalance
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET balance_usdc = balance_usdc - ? WHERE id = ?`,
		amountUSDC, userID,
	); err != nil {
		return fmt.Errorf("storage.DebitWithdrawal: debit: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO transactions (id, user_id, type, amount_usdc, tx_hash, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), userID, string(domain.TxWithdrawal), -amountUSDC, nullable(txHash), time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("storage.DebitWithdrawal: insert tx: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.DebitWithdrawal: commit: %w", err)
	}
	return nil
}

// SaveLastMarkets guarda el top de mercados de la última búsqueda del usuario.
func (s *SQLiteLedger) SaveLastMarkets(ctx context.Context, xUserID string, markets []domain.MarketRef) error {
	blob, err := json.Marshal(markets)
	if err != nil {
		return fmt.Errorf("storage.SaveLastMarkets: marshal: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO user_contexts (x_user_id, last_markets, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(x_user_id) DO UPDATE SET last_markets = excluded.last_markets, updated_at = excluded.updated_at`,
		xUserID, string(blob), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("storage.SaveLastMarkets: %w", err)
	}
	return nil
}

// LastMarkets devuelve los mercados de la última búsqueda del usuario.
// Sin búsqueda previa devuelve domain.ErrNoRecentMarkets.
func (s *SQLiteLedger) LastMarkets(ctx context.Context, xUserID string) ([]domain.MarketRef, error) {
	var blob string
	err := s.db.QueryRowContext(ctx,
		`SELECT last_markets FROM user_contexts WHERE x_user_id = ?`, xUserID,
	).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNoRecentMarkets
	}
	if err != nil {
		return nil, fmt.Errorf("storage.LastMarkets: %w", err)
	}

	var markets []domain.MarketRef
	if err := json.Unmarshal([]byte(blob), &markets); err != nil {
		return nil, fmt.Errorf("storage.LastMarkets: unmarshal: %w", err)
	}
	if len(markets) == 0 {
		return nil, domain.ErrNoRecentMarkets
	}
	return markets, nil
}

// nullable convierte un string vacío en NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
