package mapping

import (
	"time"

	"github.com/chris/energy-vault/pkg/api"
	"github.com/chris/energy-vault/pkg/ledger"
	"github.com/chris/energy-vault/pkg/models"
)

// ToApiVault converts a domain EnergyVault to the API Vault model.
func ToApiVault(v *models.EnergyVault) *api.Vault {
	txs := make([]api.Transaction, len(v.Transactions))
	for i := range v.Transactions {
		txs[i] = *ToApiTransaction(&v.Transactions[i])
	}
	return &api.Vault{
		CustomerId:       v.CustomerID,
		TotalCredits:     v.TotalCredits.String(),
		AvailableCredits: v.AvailableCredits.String(),
		ConsumedCredits:  v.ConsumedCredits.String(),
		ExpiredCredits:   v.ExpiredCredits.String(),
		LastUpdated:      optionalTime(v.LastUpdated),
		Version:          v.Version,
		Transactions:     txs,
	}
}

// ToApiCredit converts a domain EnergyCredit to the API model.
func ToApiCredit(c *models.EnergyCredit) *api.EnergyCredit {
	return &api.EnergyCredit{
		Id:          c.ID,
		CustomerId:  c.CustomerID,
		Amount:      c.Amount.String(),
		Source:      api.CreditSource(c.Source),
		Description: c.Description,
		Status:      api.CreditStatus(c.Status),
		IssuedAt:    c.IssuedAt,
		ConsumedAt:  c.ConsumedAt,
		ExpiredAt:   c.ExpiredAt,
		InvoiceId:   optionalString(c.InvoiceID),
		ParentId:    optionalString(c.ParentID),
	}
}

// ToApiCredits converts a slice of credits.
func ToApiCredits(credits []models.EnergyCredit) []api.EnergyCredit {
	out := make([]api.EnergyCredit, len(credits))
	for i := range credits {
		out[i] = *ToApiCredit(&credits[i])
	}
	return out
}

// ToApiTransaction converts a domain EnergyTransaction to the API model.
func ToApiTransaction(t *models.EnergyTransaction) *api.Transaction {
	return &api.Transaction{
		Id:          t.ID,
		CustomerId:  t.CustomerID,
		Sequence:    t.Sequence,
		Type:        api.TransactionType(t.Type),
		Reason:      string(t.Reason),
		Amount:      t.Amount.String(),
		Description: t.Description,
		Timestamp:   t.Timestamp,
		InvoiceId:   optionalString(t.InvoiceID),
		Reference:   optionalString(t.Reference),
	}
}

// ToApiTransactions converts a slice of transactions.
func ToApiTransactions(txs []models.EnergyTransaction) []api.Transaction {
	out := make([]api.Transaction, len(txs))
	for i := range txs {
		out[i] = *ToApiTransaction(&txs[i])
	}
	return out
}

// ToApiConsumption converts a ledger ConsumptionResult to the API model.
func ToApiConsumption(r *ledger.ConsumptionResult) *api.ConsumptionResult {
	out := &api.ConsumptionResult{
		Consumed:       ToApiCredits(r.Consumed),
		ConsumedAmount: r.ConsumedAmount.String(),
		Shortfall:      r.Shortfall.String(),
		Replayed:       r.Replayed,
	}
	if r.Remainder != nil {
		out.Remainder = ToApiCredit(r.Remainder)
	}
	if r.Transaction != nil {
		out.Transaction = ToApiTransaction(r.Transaction)
	}
	return out
}

// ToApiVerification converts a ledger VerifyReport to the API model.
func ToApiVerification(r *ledger.VerifyReport) *api.Verification {
	out := &api.Verification{
		CustomerId: r.CustomerID,
		Version:    r.Version,
		Stored:     toApiTotals(r.Stored),
		Replayed:   toApiTotals(r.Replayed),
		Derived:    toApiTotals(r.Derived),
		Consistent: r.Consistent,
	}
	if len(r.Problems) > 0 {
		problems := append([]string(nil), r.Problems...)
		out.Problems = &problems
	}
	return out
}

func toApiTotals(t ledger.Totals) api.Totals {
	return api.Totals{
		TotalCredits:     t.Total.String(),
		AvailableCredits: t.Available.String(),
		ConsumedCredits:  t.Consumed.String(),
		ExpiredCredits:   t.Expired.String(),
	}
}

// ToApiPlantSnapshot converts a telemetry snapshot to the API model.
func ToApiPlantSnapshot(s *models.PlantSnapshot) *api.PlantSnapshot {
	inverters := make([]api.InverterReading, len(s.Inverters))
	for i := range s.Inverters {
		inverters[i] = *ToApiReading(&s.Inverters[i])
	}
	return &api.PlantSnapshot{
		Plant: api.Plant{
			Id:          s.Plant.ID,
			Name:        s.Plant.Name,
			Location:    s.Plant.Location,
			CapacityKwp: s.Plant.CapacityKWp,
		},
		Status:          api.PlantStatus(s.Status),
		Efficiency:      s.Efficiency,
		TotalPower:      s.TotalPower,
		TotalEnergy:     s.TotalEnergy,
		OnlineInverters: s.OnlineInverters,
		TotalInverters:  s.TotalInverters,
		LastUpdate:      optionalTime(s.LastUpdate),
		Inverters:       inverters,
	}
}

// ToApiReading converts an inverter reading to the API model.
func ToApiReading(r *models.InverterReading) *api.InverterReading {
	return &api.InverterReading{
		Id:          optionalString(r.ID),
		PlantId:     optionalString(r.PlantID),
		InverterId:  r.InverterID,
		Timestamp:   optionalTime(r.Timestamp),
		Power:       r.Power,
		Energy:      r.Energy,
		Voltage:     r.Voltage,
		Current:     r.Current,
		Frequency:   r.Frequency,
		Temperature: r.Temperature,
		Status:      string(r.Status),
		Efficiency:  r.Efficiency,
	}
}

// ToDomainReading converts an API reading for plantID. The path plant wins over the body.
func ToDomainReading(plantID string, r *api.InverterReading) models.InverterReading {
	out := models.InverterReading{
		PlantID:     plantID,
		InverterID:  r.InverterId,
		Power:       r.Power,
		Energy:      r.Energy,
		Voltage:     r.Voltage,
		Current:     r.Current,
		Frequency:   r.Frequency,
		Temperature: r.Temperature,
		Status:      models.InverterStatus(r.Status),
		Efficiency:  r.Efficiency,
	}
	if r.Id != nil {
		out.ID = *r.Id
	}
	if r.Timestamp != nil {
		out.Timestamp = *r.Timestamp
	}
	return out
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
