package polymarket

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/xmarket/bot/internal/domain"
)

// mapGammaMarket convierte el DTO de Gamma a domain.Market.
func mapGammaMarket(gm gammaMarket) domain.Market {
	m := domain.Market{
		ID:          gm.ConditionID,
		Question:    gm.Question,
		Description: gm.Description,
		Active:      gm.Active && !gm.Closed,
	}
	if m.ID == "" {
		m.ID = gm.ID
	}

	outcomes := parseStringArray(gm.Outcomes)
	prices := parseStringArray(gm.OutcomePrices)
	for i := 0; i < 2; i++ {
		if i < len(outcomes) {
			m.Outcomes[i] = outcomes[i]
		}
		if i < len(prices) {
			m.OutcomePrices[i] = domain.ParsePrice(prices[i])
		} else {
			m.OutcomePrices[i] = 0.5
		}
	}

	m.Volume, _ = gm.Volume.Float64()
	m.Liquidity, _ = gm.Liquidity.Float64()

	if gm.EndDateISO != "" {
		if t, err := time.Parse(time.RFC3339, gm.EndDateISO); err == nil {
			m.EndDate = t
		} else if t, err := time.Parse("2006-01-02", gm.EndDateISO); err == nil {
			m.EndDate = t
		}
	}
	return m
}

// parseStringArray parsea un array JSON serializado dentro de un string.
// Gamma devuelve p.ej. `"[\"Yes\", \"No\"]"` en el campo outcomes.
func parseStringArray(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil
	}
	return out
}

// mapOrderBook convierte la respuesta del CLOB a domain.OrderBook.
func mapOrderBook(resp bookResponse) domain.OrderBook {
	return domain.OrderBook{
		TokenID: resp.AssetID,
		Bids:    mapBookEntries(resp.Bids, false),
		Asks:    mapBookEntries(resp.Asks, true),
	}
}

// mapBookEntries convierte entries raw a domain.BookEntry y los ordena.
// ascending=true → menor a mayor (asks), ascending=false → mayor a menor (bids).
func mapBookEntries(raw []bookEntryRaw, ascending bool) []domain.BookEntry {
	entries := make([]domain.BookEntry, 0, len(raw))
	for _, r := range raw {
		price := domain.ParsePrice(r.Price)
		size := domain.ParsePrice(r.Size)
		if price <= 0 || size <= 0 {
			continue
		}
		entries = append(entries, domain.BookEntry{Price: price, Size: size})
	}

	sort.Slice(entries, func(i, j int) bool {
		if ascending {
			return entries[i].Price < entries[j].Price
		}
		return entries[i].Price > entries[j].Price
	})

	return entries
}
