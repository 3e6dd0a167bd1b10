package matcher

// matcher.go — Matching de texto libre contra mercados activos.
//
// Scoring por ratio de keywords: la fracción de palabras de la query que
// aparece en el título pesa hasta 10, en la descripción hasta 5, y el
// volumen añade log10(volume+1). Palabras de menos de 3 caracteres se
// ignoran (artículos, "is", "in"...). Solo mercados binarios Yes/No entran
// en el ranking.

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/xmarket/bot/internal/domain"
	"github.com/xmarket/bot/internal/ports"
)

const (
	titleWeight = 10.0
	descWeight  = 5.0
	minWordLen  = 3

	// MaxResults es el tamaño del top que se guarda como contexto de usuario.
	MaxResults = 3
)

// Matcher busca mercados por relevancia de keywords.
type Matcher struct {
	markets ports.MarketProvider
}

// New crea un Matcher.
func New(markets ports.MarketProvider) *Matcher {
	return &Matcher{markets: markets}
}

// Search devuelve los MaxResults mercados más relevantes para la query,
// ordenados por score descendente. Sin coincidencias devuelve slice vacío.
func (m *Matcher) Search(ctx context.Context, query string) ([]domain.MatchResult, error) {
	markets, err := m.markets.FetchActiveMarkets(ctx)
	if err != nil {
		return nil, fmt.Errorf("matcher.Search: %w", err)
	}

	words := queryWords(query)
	if len(words) == 0 {
		return nil, nil
	}

	var results []domain.MatchResult
	for _, market := range markets {
		if !market.IsBinary() {
			continue
		}
		score := scoreMarket(market, words)
		if score <= 0 {
			continue
		}
		// El volumen desempata entre mercados con el mismo match
		score += math.Log10(market.Volume + 1)
		results = append(results, domain.MatchResult{
			Market:         market,
			RelevanceScore: score,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].RelevanceScore > results[j].RelevanceScore
	})
	if len(results) > MaxResults {
		results = results[:MaxResults]
	}

	slog.Debug("market search", "query", query, "candidates", len(markets), "matches", len(results))
	return results, nil
}

// scoreMarket puntúa por ratio de coincidencia: matches/total de palabras
// de la query, ponderado por campo. El score de keywords queda acotado a
// titleWeight+descWeight, de forma que el boost de volumen puede reordenar
// mercados con matches parciales.
func scoreMarket(market domain.Market, words []string) float64 {
	title := strings.ToLower(market.Question)
	desc := strings.ToLower(market.Description)

	var titleHits, descHits float64
	for _, w := range words {
		if strings.Contains(title, w) {
			titleHits++
		}
		if desc != "" && strings.Contains(desc, w) {
			descHits++
		}
	}

	total := float64(len(words))
	return titleHits/total*titleWeight + descHits/total*descWeight
}

// queryWords normaliza la query: minúsculas, sin palabras cortas.
func queryWords(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, "?!.,\"'")
		if len(f) < minWordLen {
			continue
		}
		words = append(words, f)
	}
	return words
}
