package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand_Find(t *testing.T) {
	cmd := ParseCommand("@xmarketbot find fed rate cut december")
	assert.Equal(t, CmdFind, cmd.Type)
	assert.Equal(t, "fed rate cut december", cmd.Query)
}

func TestParseCommand_BetBasic(t *testing.T) {
	cmd := ParseCommand("@xmarketbot bet 5 yes")
	assert.Equal(t, CmdBet, cmd.Type)
	assert.Equal(t, 5.0, cmd.Amount)
	assert.Equal(t, SideYes, cmd.Side)
	assert.Empty(t, cmd.MarketID)
}

func TestParseCommand_BetWithUSDCAndID(t *testing.T) {
	cmd := ParseCommand("bet 12.50 USDC no #a1b2c3d4")
	assert.Equal(t, CmdBet, cmd.Type)
	assert.Equal(t, 12.50, cmd.Amount)
	assert.Equal(t, SideNo, cmd.Side)
	assert.Equal(t, "a1b2c3d4", cmd.MarketID)
}

func TestParseCommand_CaseInsensitive(t *testing.T) {
	cmd := ParseCommand("BET 5 YES")
	assert.Equal(t, CmdBet, cmd.Type)
	assert.Equal(t, SideYes, cmd.Side)

	assert.Equal(t, CmdFind, ParseCommand("FIND bitcoin").Type)
	assert.Equal(t, CmdBalance, ParseCommand("Balance").Type)
	assert.Equal(t, CmdPositions, ParseCommand("POSITIONS").Type)
}

func TestParseCommand_MentionsStripped(t *testing.T) {
	// La @mención al principio no debe interferir con el parseo.
	cmd := ParseCommand("@xmarketbot @someone balance")
	assert.Equal(t, CmdBalance, cmd.Type)
}

func TestParseCommand_Unknown(t *testing.T) {
	assert.Equal(t, CmdUnknown, ParseCommand("hola que tal").Type)
	assert.Equal(t, CmdUnknown, ParseCommand("bet yes").Type)
	assert.Equal(t, CmdUnknown, ParseCommand("bet 5 maybe").Type)
	assert.Equal(t, CmdUnknown, ParseCommand("").Type)
}

func TestParseCommand_NegativeAmountNotMatched(t *testing.T) {
	// La gramática solo admite cantidades positivas.
	assert.Equal(t, CmdUnknown, ParseCommand("bet -5 yes").Type)
}
