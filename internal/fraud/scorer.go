package fraud

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"banking-transfers/internal/metrics"
	"banking-transfers/internal/models"
)

// NoFraudIndicators is the rationale given to transfers that pass every rule.
const NoFraudIndicators = "no fraud indicators"

// Config is the tuning surface of the scorer.
type Config struct {
	// HighAmountThreshold flags amounts strictly above it.
	HighAmountThreshold decimal.Decimal
	// MaxPerMinute flags a source account once it has originated this many
	// transfers (or more) within the last minute.
	MaxPerMinute int
	// SuspiciousHourStart and SuspiciousHourEnd bound the unusual-hour window
	// inclusively. The window wraps midnight: with the defaults 22 and 6,
	// hours 22, 23, 0..6 are all flagged.
	SuspiciousHourStart int
	SuspiciousHourEnd   int
}

// DefaultConfig returns the default thresholds.
func DefaultConfig() Config {
	return Config{
		HighAmountThreshold: decimal.NewFromInt(5000),
		MaxPerMinute:        3,
		SuspiciousHourStart: 22,
		SuspiciousHourEnd:   6,
	}
}

// Store is the slice of the ledger store the scorer reads from.
type Store interface {
	CountOriginatedSince(ctx context.Context, accountID string, since time.Time) (int, error)
	FindTransfersByStatus(ctx context.Context, statuses ...models.TransferStatus) ([]models.Transfer, error)
}

// Rule inspects a pending transfer and may adjust its disposition and append
// rationale. Rules run in a fixed order; later rules see earlier annotations.
type Rule func(ctx context.Context, t *models.Transfer)

// Scorer runs the ordered rule pipeline over pending transfers. It is safe
// for concurrent use across different transfers and never fails: every call
// returns a transfer with a defined disposition.
type Scorer struct {
	cfg     Config
	store   Store
	metrics *metrics.Metrics
	logger  *zap.Logger
	rules   []Rule
}

// NewScorer creates a scorer with the built-in rule set.
func NewScorer(cfg Config, store Store, m *metrics.Metrics, logger *zap.Logger) *Scorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Scorer{cfg: cfg, store: store, metrics: m, logger: logger}
	s.rules = []Rule{s.highAmountRule, s.frequencyRule, s.unusualHourRule}
	return s
}

// Score folds the rule pipeline over the transfer and finalizes the
// disposition: a transfer that accumulated no rationale is approved.
func (s *Scorer) Score(ctx context.Context, t *models.Transfer) *models.Transfer {
	for _, rule := range s.rules {
		rule(ctx, t)
	}

	if t.FraudRationale == "" && (t.Status == "" || t.Status == models.StatusPending) {
		t.Status = models.StatusApproved
		t.FraudRationale = NoFraudIndicators
	}

	s.logger.Info("fraud scoring completed",
		zap.String("transfer_id", t.ID),
		zap.String("status", string(t.Status)),
		zap.String("rationale", t.FraudRationale))
	return t
}

// SuspiciousTransfers returns all transfers held or rejected by scoring,
// newest first.
func (s *Scorer) SuspiciousTransfers(ctx context.Context) ([]models.Transfer, error) {
	return s.store.FindTransfersByStatus(ctx, models.StatusPending, models.StatusRejected)
}

func (s *Scorer) highAmountRule(_ context.Context, t *models.Transfer) {
	if t.Amount.Cmp(s.cfg.HighAmountThreshold) > 0 {
		t.Status = models.StatusPending
		t.AppendRationale("high amount: " + t.Amount.String())
		s.flag("high_amount")
		s.logger.Warn("transfer flagged for high amount",
			zap.String("transfer_id", t.ID),
			zap.String("amount", t.Amount.String()))
	}
}

func (s *Scorer) frequencyRule(ctx context.Context, t *models.Transfer) {
	since := time.Now().Add(-time.Minute)
	count, err := s.store.CountOriginatedSince(ctx, t.FromAccountID, since)
	if err != nil {
		// Scoring never fails; an unreadable count skips the rule.
		s.logger.Error("frequency rule skipped, count unavailable",
			zap.String("transfer_id", t.ID), zap.Error(err))
		return
	}

	if count >= s.cfg.MaxPerMinute {
		t.Status = models.StatusPending
		t.AppendRationale(fmt.Sprintf("high frequency: %d transfers in the last minute", count))
		s.flag("frequency")
		s.logger.Warn("transfer flagged for high frequency",
			zap.String("transfer_id", t.ID), zap.Int("count", count))
	}
}

func (s *Scorer) unusualHourRule(_ context.Context, t *models.Transfer) {
	hour := t.Timestamp.Hour()
	if hour < s.cfg.SuspiciousHourStart && hour > s.cfg.SuspiciousHourEnd {
		return
	}

	// A rejection from an earlier rule is sticky; this rule only escalates
	// otherwise-clean transfers to pending.
	if t.Status != models.StatusRejected {
		t.Status = models.StatusPending
	}
	t.AppendRationale(fmt.Sprintf("unusual hour: %d:00", hour))
	s.flag("unusual_hour")
	s.logger.Warn("transfer flagged for unusual hour",
		zap.String("transfer_id", t.ID), zap.Int("hour", hour))
}

func (s *Scorer) flag(rule string) {
	if s.metrics != nil {
		s.metrics.FraudFlagsTotal.WithLabelValues(rule).Inc()
	}
}
