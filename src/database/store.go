package database

import (
	"context"
	"fmt"

	"stockbot/src/config"
	"stockbot/src/repositories"
)

// Stores bundles the repositories of the configured backend.
type Stores struct {
	Holdings repositories.HoldingRepository
	Trades   repositories.TradeRepository
	close    func()
}

func (s *Stores) Close() {
	if s.close != nil {
		s.close()
	}
}

func OpenStores(ctx context.Context, cfg *config.Config) (*Stores, error) {
	switch cfg.Databases.SQL.Driver {
	case config.Memory, "":
		store := repositories.NewMemoryStore()
		return &Stores{Holdings: store, Trades: store}, nil
	case config.Postgres:
		pool, err := SetupDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Holdings: repositories.NewHoldingRepository(pool),
			Trades:   repositories.NewTradeRepository(pool),
			close:    pool.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown sql driver %q", cfg.Databases.SQL.Driver)
	}
}
