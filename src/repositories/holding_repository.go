package repositories

import (
	"context"
	"errors"
	"fmt"

	"stockbot/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// HoldingReader is the read-only view of the position table.
type HoldingReader interface {
	// Get returns nil, nil when the user holds no shares of symbol.
	Get(ctx context.Context, userID, symbol string) (*models.Holding, error)
	// ListByUser returns every live holding of the user from a single snapshot.
	ListByUser(ctx context.Context, userID string) ([]models.Holding, error)
}

// HoldingTx is scoped to the (user, symbol) key passed to Lock.
type HoldingTx interface {
	Get(ctx context.Context) (*models.Holding, error)
	Upsert(ctx context.Context, h *models.Holding) error
	Delete(ctx context.Context) error
	RecordTrade(ctx context.Context, t *models.Trade) error
}

type HoldingRepository interface {
	HoldingReader
	ListSymbols(ctx context.Context) ([]models.HeldSymbol, error)
	// Lock runs fn with exclusive access to the (userID, symbol) key. Writes
	// made through tx are kept only when fn returns nil.
	Lock(ctx context.Context, userID, symbol string, fn func(tx HoldingTx) error) error
}

// ErrKeyMismatch is returned when a HoldingTx is asked to write another key.
var ErrKeyMismatch = errors.New("holding does not belong to the locked key")

const holdingColumns = `user_id, username, symbol, quantity, avg_price::text, currency, created_at, updated_at`

type holdingRepo struct {
	db *pgxpool.Pool
}

func NewHoldingRepository(db *pgxpool.Pool) HoldingRepository {
	return &holdingRepo{db: db}
}

func (r *holdingRepo) Get(ctx context.Context, userID, symbol string) (*models.Holding, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+holdingColumns+` FROM holdings WHERE user_id = $1 AND symbol = $2`,
		userID, symbol)
	return scanHolding(row)
}

func (r *holdingRepo) ListByUser(ctx context.Context, userID string) ([]models.Holding, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+holdingColumns+`
		FROM holdings
		WHERE user_id = $1 AND quantity > 0
		ORDER BY symbol`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list holdings: %w", err)
	}
	defer rows.Close()

	var holdings []models.Holding
	for rows.Next() {
		h, err := scanHolding(rows)
		if err != nil {
			return nil, err
		}
		holdings = append(holdings, *h)
	}
	return holdings, rows.Err()
}

func (r *holdingRepo) ListSymbols(ctx context.Context) ([]models.HeldSymbol, error) {
	rows, err := r.db.Query(ctx,
		`SELECT DISTINCT symbol, currency FROM holdings WHERE quantity > 0 ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("list held symbols: %w", err)
	}
	defer rows.Close()

	var symbols []models.HeldSymbol
	for rows.Next() {
		var s models.HeldSymbol
		var currency string
		if err := rows.Scan(&s.Symbol, &currency); err != nil {
			return nil, err
		}
		s.Currency = models.Currency(currency)
		symbols = append(symbols, s)
	}
	return symbols, rows.Err()
}

func (r *holdingRepo) Lock(ctx context.Context, userID, symbol string, fn func(tx HoldingTx) error) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin holding transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	// The advisory lock also covers keys that have no row yet.
	if _, err = tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, userID+":"+symbol); err != nil {
		return fmt.Errorf("lock holding %s/%s: %w", userID, symbol, err)
	}

	if err = fn(&pgHoldingTx{tx: tx, userID: userID, symbol: symbol}); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit holding transaction: %w", err)
	}
	return nil
}

type pgHoldingTx struct {
	tx     pgx.Tx
	userID string
	symbol string
}

func (t *pgHoldingTx) Get(ctx context.Context) (*models.Holding, error) {
	row := t.tx.QueryRow(ctx,
		`SELECT `+holdingColumns+` FROM holdings WHERE user_id = $1 AND symbol = $2 FOR UPDATE`,
		t.userID, t.symbol)
	return scanHolding(row)
}

func (t *pgHoldingTx) Upsert(ctx context.Context, h *models.Holding) error {
	if h.UserID != t.userID || h.Symbol != t.symbol {
		return ErrKeyMismatch
	}
	query := `
		INSERT INTO holdings (user_id, username, symbol, quantity, avg_price, currency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5::numeric, $6, now(), now())
		ON CONFLICT (user_id, symbol) DO UPDATE SET
			username = EXCLUDED.username,
			quantity = EXCLUDED.quantity,
			avg_price = EXCLUDED.avg_price,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at, updated_at`

	err := t.tx.QueryRow(ctx, query,
		h.UserID, h.Username, h.Symbol, h.Quantity, h.AvgPrice.String(), string(h.Currency),
	).Scan(&h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert holding %s/%s: %w", h.UserID, h.Symbol, err)
	}
	return nil
}

func (t *pgHoldingTx) Delete(ctx context.Context) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM holdings WHERE user_id = $1 AND symbol = $2`, t.userID, t.symbol)
	if err != nil {
		return fmt.Errorf("delete holding %s/%s: %w", t.userID, t.symbol, err)
	}
	return nil
}

func (t *pgHoldingTx) RecordTrade(ctx context.Context, trade *models.Trade) error {
	if trade.UserID != t.userID || trade.Symbol != t.symbol {
		return ErrKeyMismatch
	}
	return insertTrade(ctx, t.tx, trade)
}

func scanHolding(row pgx.Row) (*models.Holding, error) {
	var h models.Holding
	var avg, currency string
	err := row.Scan(&h.UserID, &h.Username, &h.Symbol, &h.Quantity, &avg, &currency, &h.CreatedAt, &h.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan holding: %w", err)
	}
	h.AvgPrice, err = decimal.NewFromString(avg)
	if err != nil {
		return nil, fmt.Errorf("parse avg_price %q: %w", avg, err)
	}
	h.Currency = models.Currency(currency)
	return &h, nil
}
