package domain

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestCalculateShares(t *testing.T) {
	assert.InDelta(t, 11.111, CalculateShares(5, 0.45), 0.001)
	assert.Equal(t, 0.0, CalculateShares(5, 0))
	assert.Equal(t, 0.0, CalculateShares(5, -0.1))
}

func TestValidateBetAmount(t *testing.T) {
	assert.NoError(t, ValidateBetAmount(5, 1, 1000))
	assert.NoError(t, ValidateBetAmount(1, 1, 1000))
	assert.NoError(t, ValidateBetAmount(1000, 1, 1000))

	assert.EqualError(t, ValidateBetAmount(0, 1, 1000), "invalid amount")
	assert.EqualError(t, ValidateBetAmount(0.5, 1, 1000), "minimum bet is $1.00")
	assert.EqualError(t, ValidateBetAmount(1500, 1, 1000), "maximum bet is $1000.00")
}

func TestBetStatus_Terminal(t *testing.T) {
	assert.False(t, BetPending.Terminal())
	assert.True(t, BetFilled.Terminal())
	assert.True(t, BetFailed.Terminal())
	assert.True(t, BetSold.Terminal())
}

func TestMarket_IsBinary(t *testing.T) {
	yes := Market{Outcomes: [2]string{"Yes", "No"}}
	assert.True(t, yes.IsBinary())

	lower := Market{Outcomes: [2]string{"yes", "no"}}
	assert.True(t, lower.IsBinary())

	multi := Market{Outcomes: [2]string{"Candidate A", "Candidate B"}}
	assert.False(t, multi.IsBinary())
}

func TestMarket_PriceFor(t *testing.T) {
	m := Market{OutcomePrices: [2]float64{0.62, 0.38}}
	assert.Equal(t, 0.62, m.PriceFor(SideYes))
	assert.Equal(t, 0.38, m.PriceFor(SideNo))
}

func TestMarket_ShortID(t *testing.T) {
	m := Market{ID: "0xabc123def4567890"}
	assert.Equal(t, "0xabc123", m.ShortID())

	corto := Market{ID: "abc"}
	assert.Equal(t, "abc", corto.ShortID())
}

func TestFormatUSDC(t *testing.T) {
	assert.Equal(t, "$5.00", FormatUSDC(5))
	assert.Equal(t, "$12.35", FormatUSDC(12.349))
}

func TestFormatLargeNumber(t *testing.T) {
	assert.Equal(t, "$1.5M", FormatLargeNumber(1_500_000))
	assert.Equal(t, "$2.3K", FormatLargeNumber(2_300))
	assert.Equal(t, "$950", FormatLargeNumber(950))
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "45%", FormatPrice(0.45))
	assert.Equal(t, "100%", FormatPrice(1))
}

func TestTruncateQuestion(t *testing.T) {
	assert.Equal(t, "Short?", TruncateQuestion("Short?", "id", 50))

	long := "Will the Federal Reserve cut interest rates in December 2026?"
	got := TruncateQuestion(long, "id", 30)
	assert.Len(t, got, 30)
	assert.Equal(t, "...", got[27:])

	// Sin pregunta, cae al ID truncado.
	assert.Equal(t, "0x123456789012345678...", TruncateQuestion("", "0x1234567890123456789abcdef", 50))
}

func TestTruncateQuestion_MultibyteRunes(t *testing.T) {
	// El corte cuenta runas, no bytes: una pregunta con acentos no debe
	// partirse a mitad de carácter.
	long := "¿Ganará España el Mundial de fútbol en 2026 según las casas de apuestas?"
	got := TruncateQuestion(long, "id", 30)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 30, utf8.RuneCountInString(got))
	assert.Equal(t, "¿Ganará España el Mundial d...", got)
}
