package ledger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/chris/energy-vault/pkg/models"
	"github.com/shopspring/decimal"
)

// maxCreditWrites bounds the credits one commit rewrites. With the vault and one
// transaction a commit stays within DynamoDB's 100-item transaction limit.
const maxCreditWrites = 98

// ConsumptionResult reports what a ConsumeCredits call did.
type ConsumptionResult struct {
	// Consumed holds the credits marked consumed, including the consumed piece of a split credit.
	Consumed []models.EnergyCredit
	// Remainder is the new active credit left over from a split, if any.
	Remainder      *models.EnergyCredit
	ConsumedAmount decimal.Decimal
	Shortfall      decimal.Decimal
	// Transaction is the debit that settled the invoice. It has a zero amount when
	// nothing could be consumed.
	Transaction *models.EnergyTransaction
	// Replayed is true when the invoice had already been settled and nothing changed.
	Replayed bool
}

// ConsumeCredits consumes active credits oldest first until amount is covered.
// A credit larger than what is still needed is split: its ID keeps the consumed
// portion and a new active credit carries the rest. An invoice touching more
// credits than one commit can hold is settled over several commits; every one
// but the last records a partial consumption debit. Consuming the same invoice
// again returns the first result without mutating the vault, even when the
// first call found nothing to consume.
func (s *Service) ConsumeCredits(ctx context.Context, customerID string, amount decimal.Decimal, invoiceID string) (result *ConsumptionResult, err error) {
	ctx, done := s.observe(ctx, "consume_credits", customerID)
	defer func() { done(err) }()

	if err := validateIdentifier("customer_id", customerID); err != nil {
		return nil, err
	}
	if err := validateIdentifier("invoice_id", invoiceID); err != nil {
		return nil, err
	}
	if err := validateNonNegative("amount", amount); err != nil {
		return nil, err
	}

	consumedNow := decimal.Zero
	for first := true; ; first = false {
		var settled bool
		_, err = s.mutate(ctx, customerID, func(l *models.Ledger, now time.Time) (*models.Mutation, error) {
			h := invoiceHistory(l, invoiceID)
			if h.settled != nil {
				result = h.result(amount)
				result.Replayed = first
				settled = true
				return nil, nil
			}
			if amount.IsZero() && len(h.partials) == 0 {
				result = &ConsumptionResult{ConsumedAmount: decimal.Zero, Shortfall: decimal.Zero}
				settled = true
				return nil, nil
			}

			remaining := decimal.Max(decimal.Zero, amount.Sub(h.consumed()))
			plan := planConsumption(l.Credits, remaining, invoiceID, now, s.newID, maxCreditWrites)

			reason := models.ReasonConsumption
			description := fmt.Sprintf("Consumption for invoice %s", invoiceID)
			if plan.truncated {
				reason = models.ReasonPartialConsumption
				description = fmt.Sprintf("Partial consumption for invoice %s", invoiceID)
			}

			vault := nextVault(l, customerID, now)
			vault.AvailableCredits = vault.AvailableCredits.Sub(plan.ConsumedAmount)
			vault.ConsumedCredits = vault.ConsumedCredits.Add(plan.ConsumedAmount)

			tx := models.EnergyTransaction{
				ID:          s.newID(),
				CustomerID:  customerID,
				Sequence:    vault.Version,
				Type:        models.DEBIT,
				Reason:      reason,
				Amount:      plan.ConsumedAmount,
				Description: description,
				Timestamp:   now,
				InvoiceID:   invoiceID,
			}

			h.record(tx, plan.Consumed)
			result = h.result(amount)
			result.Remainder = plan.Remainder
			consumedNow = consumedNow.Add(plan.ConsumedAmount)
			settled = !plan.truncated

			return &models.Mutation{
				CustomerID:      customerID,
				ExpectedVersion: l.Vault.Version,
				Vault:           vault,
				PutCredits:      plan.writes,
				Append:          []models.EnergyTransaction{tx},
			}, nil
		})
		if err != nil {
			return nil, err
		}
		if settled {
			break
		}
	}

	creditsConsumedKWh.Add(consumedNow.InexactFloat64())
	if !result.Replayed {
		shortfallKWh.Add(result.Shortfall.InexactFloat64())
	}
	s.logger.Info("credits consumed",
		"customerId", customerID,
		"invoiceId", invoiceID,
		"requested", amount.String(),
		"consumed", result.ConsumedAmount.String(),
		"shortfall", result.Shortfall.String(),
		"replayed", result.Replayed,
	)
	return result, nil
}

type consumptionPlan struct {
	ConsumptionResult
	writes []models.EnergyCredit
	// truncated is set when credits were left unconsumed to stay within maxWrites.
	truncated bool
}

// planConsumption selects credits FIFO by IssuedAt, rewriting at most maxWrites
// credits. It never mutates the input slice.
func planConsumption(credits []models.EnergyCredit, amount decimal.Decimal, invoiceID string, now time.Time, newID func() string, maxWrites int) consumptionPlan {
	active := activeOldestFirst(credits)
	remaining := amount
	plan := consumptionPlan{}

	for _, c := range active {
		if !remaining.IsPositive() {
			break
		}

		split := c.Amount.GreaterThan(remaining)
		writes := 1
		if split {
			writes = 2
		}
		if len(plan.writes)+writes > maxWrites {
			plan.truncated = true
			break
		}

		consumedAt := now
		if !split {
			c.Status = models.CONSUMED
			c.ConsumedAt = &consumedAt
			c.InvoiceID = invoiceID
			remaining = remaining.Sub(c.Amount)
			plan.Consumed = append(plan.Consumed, c)
			plan.writes = append(plan.writes, c)
			continue
		}

		rest := models.EnergyCredit{
			ID:          newID(),
			CustomerID:  c.CustomerID,
			Amount:      c.Amount.Sub(remaining),
			Source:      c.Source,
			Description: c.Description,
			Status:      models.ACTIVE,
			IssuedAt:    c.IssuedAt,
			ParentID:    c.ID,
		}
		c.Amount = remaining
		c.Status = models.CONSUMED
		c.ConsumedAt = &consumedAt
		c.InvoiceID = invoiceID
		remaining = decimal.Zero

		plan.Consumed = append(plan.Consumed, c)
		plan.Remainder = &rest
		plan.writes = append(plan.writes, c, rest)
	}

	plan.ConsumedAmount = amount.Sub(remaining)
	plan.Shortfall = remaining
	return plan
}

// invoiceLedger is what a vault already holds for one invoice.
type invoiceLedger struct {
	partials []models.EnergyTransaction
	settled  *models.EnergyTransaction
	credits  []models.EnergyCredit
}

func invoiceHistory(l *models.Ledger, invoiceID string) *invoiceLedger {
	h := &invoiceLedger{}
	for _, t := range chronological(l.Transactions) {
		if t.InvoiceID != invoiceID {
			continue
		}
		switch t.Reason {
		case models.ReasonPartialConsumption:
			h.partials = append(h.partials, t)
		case models.ReasonConsumption:
			if h.settled == nil {
				tx := t
				h.settled = &tx
			}
		}
	}
	for _, c := range l.Credits {
		if c.Status == models.CONSUMED && c.InvoiceID == invoiceID {
			h.credits = append(h.credits, c)
		}
	}
	return h
}

func (h *invoiceLedger) consumed() decimal.Decimal {
	sum := decimal.Zero
	for _, t := range h.partials {
		sum = sum.Add(t.Amount)
	}
	if h.settled != nil {
		sum = sum.Add(h.settled.Amount)
	}
	return sum
}

// record adds a debit about to be committed for the invoice.
func (h *invoiceLedger) record(tx models.EnergyTransaction, consumed []models.EnergyCredit) {
	if tx.Reason == models.ReasonConsumption {
		h.settled = &tx
	} else {
		h.partials = append(h.partials, tx)
	}
	h.credits = append(h.credits, consumed...)
}

// result summarises the invoice against the requested amount.
func (h *invoiceLedger) result(requested decimal.Decimal) *ConsumptionResult {
	consumed := h.consumed()
	res := &ConsumptionResult{
		Consumed:       h.credits,
		ConsumedAmount: consumed,
		Shortfall:      decimal.Max(decimal.Zero, requested.Sub(consumed)),
		Transaction:    h.settled,
	}
	if h.settled == nil && len(h.partials) > 0 {
		last := h.partials[len(h.partials)-1]
		res.Transaction = &last
	}
	return res
}

func activeOldestFirst(credits []models.EnergyCredit) []models.EnergyCredit {
	var active []models.EnergyCredit
	for _, c := range credits {
		if c.Status == models.ACTIVE {
			active = append(active, c)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].IssuedAt.Before(active[j].IssuedAt)
	})
	return active
}
