// Package normalize maps internal records onto the canonical external
// schema. The mapping is total: every external field is populated from the
// record, and optional fields that the upstream never provided stay absent
// rather than becoming zero.
package normalize

import (
	"time"

	"StockPulse/internal/domain/models"
)

// ToCanonical converts a StockRecord to the external quote view.
func ToCanonical(r *models.StockRecord) models.ExternalQuoteView {
	name := r.Profile.Name
	if name == "" {
		name = r.Symbol
	}
	return models.ExternalQuoteView{
		Symbol:        r.Symbol,
		Name:          name,
		CurrentPrice:  r.Quote.Price,
		Change:        r.Quote.Change,
		ChangePercent: r.Quote.ChangePercent,
		Volume:        r.Quote.Volume,
		MarketCap:     r.Profile.MarketCap,
		PERatio:       r.Profile.PERatio,
		Sector:        r.Profile.Sector,
		Timestamp:     r.SyncedAt.UTC().Format(time.RFC3339),
		IsSynthetic:   r.Synthetic,
	}
}

// ToCanonicalAll converts a record slice, preserving order.
func ToCanonicalAll(records []*models.StockRecord) []models.ExternalQuoteView {
	out := make([]models.ExternalQuoteView, 0, len(records))
	for _, r := range records {
		out = append(out, ToCanonical(r))
	}
	return out
}
