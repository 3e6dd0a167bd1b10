package matcher_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xmarket/bot/internal/application/matcher"
	"github.com/xmarket/bot/internal/domain"
)

type stubMarkets struct {
	markets []domain.Market
	err     error
}

func (s *stubMarkets) FetchActiveMarkets(_ context.Context) ([]domain.Market, error) {
	return s.markets, s.err
}

func (s *stubMarkets) FetchMarketByID(_ context.Context, id string) (domain.Market, error) {
	for _, m := range s.markets {
		if m.ID == id {
			return m, nil
		}
	}
	return domain.Market{}, errors.New("not found")
}

func makeMarket(id, question, desc string, volume float64) domain.Market {
	return domain.Market{
		ID:          id,
		Question:    question,
		Description: desc,
		Outcomes:    [2]string{"Yes", "No"},
		Volume:      volume,
		Active:      true,
	}
}

func TestSearch_TitleOutweighsDescription(t *testing.T) {
	provider := &stubMarkets{markets: []domain.Market{
		makeMarket("0xa", "Will Bitcoin hit 100k?", "", 1000),
		makeMarket("0xb", "Will ETH flip?", "related to bitcoin dominance", 1000),
	}}

	m := matcher.New(provider)
	results, err := m.Search(context.Background(), "bitcoin")

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "0xa", results[0].Market.ID, "match en título gana al de descripción")
	assert.Greater(t, results[0].RelevanceScore, results[1].RelevanceScore)
}

func TestSearch_VolumeBreaksTies(t *testing.T) {
	provider := &stubMarkets{markets: []domain.Market{
		makeMarket("0xlow", "Will Bitcoin hit 100k?", "", 10),
		makeMarket("0xhigh", "Will Bitcoin hit 150k?", "", 1_000_000),
	}}

	m := matcher.New(provider)
	results, err := m.Search(context.Background(), "bitcoin")

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "0xhigh", results[0].Market.ID)
}

func TestSearch_SkipsShortWordsAndNonBinary(t *testing.T) {
	multi := makeMarket("0xmulti", "Who will win the election?", "", 500)
	multi.Outcomes = [2]string{"Candidate A", "Candidate B"}

	provider := &stubMarkets{markets: []domain.Market{
		makeMarket("0xa", "Will it rain in NYC?", "", 100),
		multi,
	}}

	m := matcher.New(provider)

	// "is", "it" (<3 chars) se ignoran; sin palabras útiles no hay resultados
	results, err := m.Search(context.Background(), "is it")
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = m.Search(context.Background(), "rain")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "0xa", results[0].Market.ID)
}

func TestSearch_HitRatioCapsKeywordScore(t *testing.T) {
	// El score de keywords es matches/total ponderado, no un peso plano por
	// palabra: con queries multi-palabra el volumen puede reordenar un match
	// parcial de mucho volumen por delante de un match completo marginal.
	provider := &stubMarkets{markets: []domain.Market{
		makeMarket("0xfull", "bitcoin etf approval decision", "", 10),
		makeMarket("0xpartial", "bitcoin price prediction", "", 1e12),
	}}

	m := matcher.New(provider)
	results, err := m.Search(context.Background(), "bitcoin etf approval")

	require.NoError(t, err)
	require.Len(t, results, 2)

	// full: 3/3×10 + log10(11) ≈ 11.04; partial: 1/3×10 + log10(1e12) ≈ 15.33
	assert.Equal(t, "0xpartial", results[0].Market.ID)
	assert.InDelta(t, 15.33, results[0].RelevanceScore, 0.01)
	assert.InDelta(t, 11.04, results[1].RelevanceScore, 0.01)
}

func TestSearch_DescriptionRatioWeighted(t *testing.T) {
	provider := &stubMarkets{markets: []domain.Market{
		makeMarket("0xa", "Will the Fed cut rates?", "december fomc rate decision", 0),
	}}

	m := matcher.New(provider)
	results, err := m.Search(context.Background(), "fed rate december")

	require.NoError(t, err)
	require.Len(t, results, 1)
	// título: 2/3×10; descripción: 2/3×5; volumen 0 → log10(1)=0
	assert.InDelta(t, 10.0, results[0].RelevanceScore, 0.001)
}

func TestSearch_CapsAtTopThree(t *testing.T) {
	provider := &stubMarkets{markets: []domain.Market{
		makeMarket("0x1", "bitcoin question one", "", 100),
		makeMarket("0x2", "bitcoin question two", "", 200),
		makeMarket("0x3", "bitcoin question three", "", 300),
		makeMarket("0x4", "bitcoin question four", "", 400),
	}}

	m := matcher.New(provider)
	results, err := m.Search(context.Background(), "bitcoin")

	require.NoError(t, err)
	assert.Len(t, results, matcher.MaxResults)
}

func TestSearch_ProviderError(t *testing.T) {
	m := matcher.New(&stubMarkets{err: errors.New("gamma down")})
	_, err := m.Search(context.Background(), "bitcoin")
	assert.Error(t, err)
}
