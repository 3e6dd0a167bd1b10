package domain

import (
	"regexp"
	"strconv"
	"strings"
)

// CommandType es el tipo de comando reconocido en una mención.
type CommandType string

const (
	CmdFind      CommandType = "find"
	CmdBet       CommandType = "bet"
	CmdBalance   CommandType = "balance"
	CmdPositions CommandType = "positions"
	CmdUnknown   CommandType = "unknown"
)

// ParsedCommand es el resultado de parsear el texto de una mención.
type ParsedCommand struct {
	Type     CommandType
	Query    string  // para find
	Amount   float64 // para bet
	Side     BetSide // para bet
	MarketID string  // short ID opcional (#a1b2c3d4) para bet
}

// Gramática de comandos, idéntica para todas las superficies del producto:
//   find <query>
//   bet <amount> [USDC] yes|no [#id]
//   balance
//   positions
var (
	mentionRe   = regexp.MustCompile(`@\w+`)
	findRe      = regexp.MustCompile(`(?i)find\s+(.+)`)
	betRe       = regexp.MustCompile(`(?i)bet\s+(\d+(?:\.\d+)?)\s*(usdc)?\s+(yes|no)(?:\s+#(\w+))?`)
	balanceRe   = regexp.MustCompile(`(?i)balance`)
	positionsRe = regexp.MustCompile(`(?i)positions`)
)

// ParseCommand interpreta el texto de un tweet como comando.
// Elimina las @menciones antes de matchear.
func ParseCommand(text string) ParsedCommand {
	clean := strings.TrimSpace(mentionRe.ReplaceAllString(text, ""))

	if m := findRe.FindStringSubmatch(clean); m != nil {
		return ParsedCommand{Type: CmdFind, Query: strings.TrimSpace(m[1])}
	}

	if m := betRe.FindStringSubmatch(clean); m != nil {
		amount, _ := strconv.ParseFloat(m[1], 64)
		return ParsedCommand{
			Type:     CmdBet,
			Amount:   amount,
			Side:     BetSide(strings.ToLower(m[3])),
			MarketID: m[4],
		}
	}

	if balanceRe.MatchString(clean) {
		return ParsedCommand{Type: CmdBalance}
	}

	if positionsRe.MatchString(clean) {
		return ParsedCommand{Type: CmdPositions}
	}

	return ParsedCommand{Type: CmdUnknown}
}
