package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"stockbot/src/models"
)

type holdingKey struct {
	userID string
	symbol string
}

// MemoryStore keeps holdings and trades in process. It implements
// HoldingRepository and TradeRepository and is used when no SQL database is
// configured, and by tests.
type MemoryStore struct {
	mu       sync.RWMutex
	holdings map[holdingKey]models.Holding
	trades   map[string][]models.Trade

	locks keyedMutex
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		holdings: make(map[holdingKey]models.Holding),
		trades:   make(map[string][]models.Trade),
		locks:    keyedMutex{entries: make(map[holdingKey]*keyedEntry)},
		now:      time.Now,
	}
}

func (s *MemoryStore) Get(ctx context.Context, userID, symbol string) (*models.Holding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.holdings[holdingKey{userID, symbol}]
	if !ok {
		return nil, nil
	}
	return &h, nil
}

func (s *MemoryStore) ListByUser(ctx context.Context, userID string) ([]models.Holding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	var holdings []models.Holding
	for k, h := range s.holdings {
		if k.userID == userID {
			holdings = append(holdings, h)
		}
	}
	s.mu.RUnlock()

	sort.Slice(holdings, func(i, j int) bool { return holdings[i].Symbol < holdings[j].Symbol })
	return holdings, nil
}

func (s *MemoryStore) ListSymbols(ctx context.Context) ([]models.HeldSymbol, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	seen := make(map[models.HeldSymbol]bool)
	for _, h := range s.holdings {
		seen[models.HeldSymbol{Symbol: h.Symbol, Currency: h.Currency}] = true
	}
	s.mu.RUnlock()

	symbols := make([]models.HeldSymbol, 0, len(seen))
	for hs := range seen {
		symbols = append(symbols, hs)
	}
	sort.Slice(symbols, func(i, j int) bool {
		if symbols[i].Symbol != symbols[j].Symbol {
			return symbols[i].Symbol < symbols[j].Symbol
		}
		return symbols[i].Currency < symbols[j].Currency
	})
	return symbols, nil
}

func (s *MemoryStore) ListTrades(ctx context.Context, userID string, limit int) ([]models.Trade, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	journal := s.trades[userID]
	trades := make([]models.Trade, 0, len(journal))
	for i := len(journal) - 1; i >= 0; i-- {
		trades = append(trades, journal[i])
	}
	s.mu.RUnlock()

	// newest insert first, so the stable sort keeps it first among equal times
	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].ExecutedAt.After(trades[j].ExecutedAt)
	})
	if limit > 0 && len(trades) > limit {
		trades = trades[:limit]
	}
	return trades, nil
}

func (s *MemoryStore) Lock(ctx context.Context, userID, symbol string, fn func(tx HoldingTx) error) error {
	key := holdingKey{userID, symbol}
	if err := s.locks.lock(ctx, key); err != nil {
		return err
	}
	defer s.locks.unlock(key)

	tx := &memoryTx{store: s, key: key}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	tx.commit()
	return nil
}

type memoryTx struct {
	store *MemoryStore
	key   holdingKey

	dirty   bool
	pending *models.Holding
	trades  []models.Trade
}

func (t *memoryTx) Get(ctx context.Context) (*models.Holding, error) {
	if t.dirty {
		if t.pending == nil {
			return nil, nil
		}
		h := *t.pending
		return &h, nil
	}
	return t.store.Get(ctx, t.key.userID, t.key.symbol)
}

func (t *memoryTx) Upsert(_ context.Context, h *models.Holding) error {
	if h.UserID != t.key.userID || h.Symbol != t.key.symbol {
		return ErrKeyMismatch
	}
	now := t.store.now()
	if current, _ := t.Get(context.Background()); current != nil {
		h.CreatedAt = current.CreatedAt
	} else {
		h.CreatedAt = now
	}
	h.UpdatedAt = now
	pending := *h
	t.pending = &pending
	t.dirty = true
	return nil
}

func (t *memoryTx) Delete(_ context.Context) error {
	t.pending = nil
	t.dirty = true
	return nil
}

func (t *memoryTx) RecordTrade(_ context.Context, trade *models.Trade) error {
	if trade.UserID != t.key.userID || trade.Symbol != t.key.symbol {
		return ErrKeyMismatch
	}
	t.trades = append(t.trades, *trade)
	return nil
}

func (t *memoryTx) commit() {
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.dirty {
		if t.pending == nil {
			delete(s.holdings, t.key)
		} else {
			s.holdings[t.key] = *t.pending
		}
	}
	s.trades[t.key.userID] = append(s.trades[t.key.userID], t.trades...)
}

// keyedMutex hands out one mutex per key and forgets it once nobody holds or waits on it.
type keyedMutex struct {
	mu      sync.Mutex
	entries map[holdingKey]*keyedEntry
}

type keyedEntry struct {
	ch   chan struct{}
	refs int
}

func (k *keyedMutex) lock(ctx context.Context, key holdingKey) error {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &keyedEntry{ch: make(chan struct{}, 1)}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		k.release(key, e)
		return ctx.Err()
	}
}

func (k *keyedMutex) unlock(key holdingKey) {
	k.mu.Lock()
	e := k.entries[key]
	k.mu.Unlock()
	<-e.ch
	k.release(key, e)
}

func (k *keyedMutex) release(key holdingKey, e *keyedEntry) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(k.entries, key)
	}
}

var (
	_ HoldingRepository = (*MemoryStore)(nil)
	_ TradeRepository   = (*MemoryStore)(nil)
)
