package services

import (
	"context"
	"math"
	"time"

	"stockbot/src/metrics"
	"stockbot/src/models"
	"stockbot/src/repositories"
	"stockbot/src/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type LedgerServiceI interface {
	Buy(ctx context.Context, req BuyRequest) (*models.Holding, error)
	Sell(ctx context.Context, req SellRequest) (*SellResult, error)
}

type BuyRequest struct {
	UserID    string
	Username  string
	Symbol    string
	Quantity  int64
	UnitPrice decimal.Decimal
	Currency  models.Currency
}

type SellRequest struct {
	UserID    string
	Username  string
	Symbol    string
	Quantity  int64
	UnitPrice decimal.Decimal
}

type SellResult struct {
	// Holding is nil when the sell closed the position.
	Holding  *models.Holding
	Realized decimal.Decimal
	Currency models.Currency
}

// LedgerService is the only writer of holdings.
type LedgerService struct {
	holdingRepo repositories.HoldingRepository
	metrics     *metrics.LedgerMetrics

	newID func() string
	now   func() time.Time
}

func NewLedgerService(holdingRepo repositories.HoldingRepository, ledgerMetrics *metrics.LedgerMetrics) *LedgerService {
	return &LedgerService{
		holdingRepo: holdingRepo,
		metrics:     ledgerMetrics,
		newID:       uuid.NewString,
		now:         time.Now,
	}
}

// Buy adds quantity shares at unitPrice, creating the holding on the first buy
// and otherwise moving its average price to the quantity-weighted mean.
func (s *LedgerService) Buy(ctx context.Context, req BuyRequest) (holding *models.Holding, err error) {
	start := time.Now()
	symbol := models.CanonicalSymbol(req.Symbol)
	defer func() {
		s.observe(ctx, "buy", start, logrus.Fields{
			"user_id":  req.UserID,
			"symbol":   symbol,
			"quantity": req.Quantity,
			"price":    req.UnitPrice.String(),
		}, err)
		if err == nil {
			s.metrics.ObserveTrade(models.Buy, holding.Currency)
		}
	}()

	if err = validateTrade(req.UserID, symbol, req.Quantity, req.UnitPrice); err != nil {
		return nil, err
	}
	if !req.Currency.Valid() {
		return nil, &models.UnsupportedCurrencyError{Code: string(req.Currency)}
	}

	var result models.Holding
	err = s.holdingRepo.Lock(ctx, req.UserID, symbol, func(tx repositories.HoldingTx) error {
		current, err := tx.Get(ctx)
		if err != nil {
			return err
		}

		next := models.Holding{
			UserID:   req.UserID,
			Username: req.Username,
			Symbol:   symbol,
			Quantity: req.Quantity,
			AvgPrice: req.UnitPrice,
			Currency: req.Currency,
		}
		if current != nil {
			if current.Currency != req.Currency {
				return &models.CurrencyMismatchError{Symbol: symbol, Held: current.Currency, Requested: req.Currency}
			}
			if req.Quantity > math.MaxInt64-current.Quantity {
				return &models.InvalidQuantityError{Quantity: req.Quantity}
			}
			next.Quantity = current.Quantity + req.Quantity
			next.AvgPrice = weightedAverage(current.Quantity, current.AvgPrice, req.Quantity, req.UnitPrice)
		}

		if err := tx.Upsert(ctx, &next); err != nil {
			return err
		}
		if err := tx.RecordTrade(ctx, s.newTrade(req.UserID, req.Username, symbol, models.Buy, req.Quantity, req.UnitPrice, next.Currency)); err != nil {
			return err
		}
		result = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Sell removes quantity shares. The average price is left untouched and the
// holding is deleted when nothing remains.
func (s *LedgerService) Sell(ctx context.Context, req SellRequest) (result *SellResult, err error) {
	start := time.Now()
	symbol := models.CanonicalSymbol(req.Symbol)
	defer func() {
		s.observe(ctx, "sell", start, logrus.Fields{
			"user_id":  req.UserID,
			"symbol":   symbol,
			"quantity": req.Quantity,
			"price":    req.UnitPrice.String(),
		}, err)
		if err == nil {
			s.metrics.ObserveTrade(models.Sell, result.Currency)
		}
	}()

	if err = validateTrade(req.UserID, symbol, req.Quantity, req.UnitPrice); err != nil {
		return nil, err
	}

	err = s.holdingRepo.Lock(ctx, req.UserID, symbol, func(tx repositories.HoldingTx) error {
		current, err := tx.Get(ctx)
		if err != nil {
			return err
		}
		if current == nil {
			return &models.NoPositionError{UserID: req.UserID, Symbol: symbol}
		}
		if req.Quantity > current.Quantity {
			return &models.InsufficientQuantityError{Symbol: symbol, Held: current.Quantity, Requested: req.Quantity}
		}

		sold := &SellResult{
			Realized: req.UnitPrice.Mul(decimal.NewFromInt(req.Quantity)),
			Currency: current.Currency,
		}
		remaining := current.Quantity - req.Quantity
		if remaining == 0 {
			if err := tx.Delete(ctx); err != nil {
				return err
			}
		} else {
			next := *current
			next.Username = req.Username
			next.Quantity = remaining
			if err := tx.Upsert(ctx, &next); err != nil {
				return err
			}
			sold.Holding = &next
		}

		if err := tx.RecordTrade(ctx, s.newTrade(req.UserID, req.Username, symbol, models.Sell, req.Quantity, req.UnitPrice, current.Currency)); err != nil {
			return err
		}
		result = sold
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *LedgerService) newTrade(userID, username, symbol string, side models.TradeSide, quantity int64, price decimal.Decimal, currency models.Currency) *models.Trade {
	return &models.Trade{
		ID:         s.newID(),
		UserID:     userID,
		Username:   username,
		Symbol:     symbol,
		Side:       side,
		Quantity:   quantity,
		Price:      price,
		Currency:   currency,
		Total:      price.Mul(decimal.NewFromInt(quantity)),
		ExecutedAt: s.now().UTC(),
	}
}

func (s *LedgerService) observe(ctx context.Context, operation string, start time.Time, fields logrus.Fields, err error) {
	s.metrics.ObserveLatency(operation, start)
	logger := utils.LoggerFromContext(ctx).WithFields(fields)
	if err != nil {
		s.metrics.ObserveRejection(operation, err)
		logger.WithError(err).Warnf("%s rejected", operation)
		return
	}
	logger.Infof("%s accepted", operation)
}

func validateTrade(userID, symbol string, quantity int64, price decimal.Decimal) error {
	if userID == "" {
		return &models.InvalidUserError{UserID: userID}
	}
	if symbol == "" {
		return &models.InvalidSymbolError{Symbol: symbol}
	}
	if quantity <= 0 {
		return &models.InvalidQuantityError{Quantity: quantity}
	}
	if !price.IsPositive() {
		return &models.InvalidPriceError{Price: price}
	}
	return nil
}

// AvgPriceScale is the number of decimal places an average price is rounded
// to. Every buy into a holding rounds once, so after n buys the average is
// within n * 0.5e-AvgPriceScale of the exact weighted mean whatever the order.
const AvgPriceScale int32 = 12

// weightedAverage is (q1*p1 + q2*p2) / (q1 + q2), rounded to AvgPriceScale places.
func weightedAverage(q1 int64, p1 decimal.Decimal, q2 int64, p2 decimal.Decimal) decimal.Decimal {
	total := q1 + q2
	if total == 0 {
		return decimal.Zero
	}
	cost := p1.Mul(decimal.NewFromInt(q1)).Add(p2.Mul(decimal.NewFromInt(q2)))
	return cost.DivRound(decimal.NewFromInt(total), AvgPriceScale)
}
