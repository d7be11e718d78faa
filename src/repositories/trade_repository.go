package repositories

import (
	"context"
	"fmt"

	"stockbot/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type TradeRepository interface {
	// ListTrades returns the user's most recent trades first, later inserts first
	// on equal execution times. A limit <= 0 returns all of them.
	ListTrades(ctx context.Context, userID string, limit int) ([]models.Trade, error)
}

type tradeRepo struct {
	db *pgxpool.Pool
}

func NewTradeRepository(db *pgxpool.Pool) TradeRepository {
	return &tradeRepo{db: db}
}

func (r *tradeRepo) ListTrades(ctx context.Context, userID string, limit int) ([]models.Trade, error) {
	query := `SELECT id::text, user_id, username, symbol, side, quantity, price::text, currency, total::text, executed_at
		FROM trades
		WHERE user_id = $1
		ORDER BY executed_at DESC, seq DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list trades: %w", err)
	}
	defer rows.Close()

	var trades []models.Trade
	for rows.Next() {
		var t models.Trade
		var side, currency, price, total string
		if err := rows.Scan(&t.ID, &t.UserID, &t.Username, &t.Symbol, &side, &t.Quantity, &price, &currency, &total, &t.ExecutedAt); err != nil {
			return nil, err
		}
		t.Side = models.TradeSide(side)
		t.Currency = models.Currency(currency)
		if t.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("parse trade price %q: %w", price, err)
		}
		if t.Total, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("parse trade total %q: %w", total, err)
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

func insertTrade(ctx context.Context, tx pgx.Tx, t *models.Trade) error {
	query := `
		INSERT INTO trades (id, user_id, username, symbol, side, quantity, price, currency, total, executed_at)
		VALUES ($1::uuid, $2, $3, $4, $5, $6, $7::numeric, $8, $9::numeric, $10)`

	_, err := tx.Exec(ctx, query,
		t.ID, t.UserID, t.Username, t.Symbol, string(t.Side), t.Quantity,
		t.Price.String(), string(t.Currency), t.Total.String(), t.ExecutedAt,
	)
	if err != nil {
		return fmt.Errorf("insert trade %s: %w", t.ID, err)
	}
	return nil
}
