package metrics

import (
	"errors"
	"net/http"
	"time"

	"stockbot/src/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "stockbot"

// Metrics holds the collectors of the service on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	Ledger *LedgerMetrics
	Quotes *QuoteMetrics
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	return &Metrics{
		registry: reg,
		Ledger:   NewLedgerMetrics(reg),
		Quotes:   NewQuoteMetrics(reg),
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

type LedgerMetrics struct {
	trades     *prometheus.CounterVec
	rejections *prometheus.CounterVec
	latency    *prometheus.HistogramVec
}

func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	factory := promauto.With(reg)
	return &LedgerMetrics{
		trades: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "trades_total",
			Help:      "Accepted simulated trades.",
		}, []string{"side", "currency"}),
		rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "rejections_total",
			Help:      "Ledger operations rejected, by reason.",
		}, []string{"operation", "reason"}),
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "operation_seconds",
			Help:      "Ledger operation latency.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}, []string{"operation"}),
	}
}

// The Observe methods are no-ops on a nil receiver.

func (m *LedgerMetrics) ObserveTrade(side models.TradeSide, currency models.Currency) {
	if m == nil {
		return
	}
	m.trades.WithLabelValues(string(side), string(currency)).Inc()
}

func (m *LedgerMetrics) ObserveRejection(operation string, err error) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(operation, Reason(err)).Inc()
}

func (m *LedgerMetrics) ObserveLatency(operation string, since time.Time) {
	if m == nil {
		return
	}
	m.latency.WithLabelValues(operation).Observe(time.Since(since).Seconds())
}

type QuoteMetrics struct {
	lookups *prometheus.CounterVec
}

func NewQuoteMetrics(reg prometheus.Registerer) *QuoteMetrics {
	return &QuoteMetrics{
		lookups: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "quotes",
			Name:      "lookups_total",
			Help:      "Price lookups by result (hit, miss, error).",
		}, []string{"result"}),
	}
}

func (m *QuoteMetrics) ObserveLookup(result string) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(result).Inc()
}

// Reason maps a ledger error to a metric label.
func Reason(err error) string {
	var (
		invalidQuantity *models.InvalidQuantityError
		invalidPrice    *models.InvalidPriceError
		invalidSymbol   *models.InvalidSymbolError
		invalidUser     *models.InvalidUserError
		badCurrency     *models.UnsupportedCurrencyError
		mismatch        *models.CurrencyMismatchError
		noPosition      *models.NoPositionError
		noPositions     *models.NoPositionsError
		insufficient    *models.InsufficientQuantityError
		unavailable     *models.PriceUnavailableError
	)
	switch {
	case errors.As(err, &invalidQuantity):
		return "invalid_quantity"
	case errors.As(err, &invalidPrice):
		return "invalid_price"
	case errors.As(err, &invalidSymbol):
		return "invalid_symbol"
	case errors.As(err, &invalidUser):
		return "invalid_user"
	case errors.As(err, &badCurrency):
		return "unsupported_currency"
	case errors.As(err, &mismatch):
		return "currency_mismatch"
	case errors.As(err, &noPosition):
		return "no_position"
	case errors.As(err, &noPositions):
		return "no_positions"
	case errors.As(err, &insufficient):
		return "insufficient_quantity"
	case errors.As(err, &unavailable):
		return "price_unavailable"
	default:
		return "internal"
	}
}
