package domain

import (
	"strings"
	"time"
)

// Market representa un mercado de predicción binario en Polymarket.
type Market struct {
	ID            string // condition_id en la API
	Question      string
	Description   string
	Outcomes      [2]string  // "Yes" | "No"
	OutcomePrices [2]float64 // precio actual de cada outcome
	Volume        float64
	Liquidity     float64
	Active        bool
	EndDate       time.Time
}

// MatchResult es un mercado junto a su score de relevancia para una búsqueda.
type MatchResult struct {
	Market         Market
	RelevanceScore float64
}

// YesPrice devuelve el precio actual del outcome YES.
func (m Market) YesPrice() float64 {
	return m.OutcomePrices[0]
}

// NoPrice devuelve el precio actual del outcome NO.
func (m Market) NoPrice() float64 {
	return m.OutcomePrices[1]
}

// PriceFor devuelve el precio del lado pedido.
func (m Market) PriceFor(side BetSide) float64 {
	if side == SideYes {
		return m.YesPrice()
	}
	return m.NoPrice()
}

// IsBinary devuelve true si el mercado es un Yes/No puro.
// Mercados multi-outcome (elecciones, etc.) quedan fuera del matching.
func (m Market) IsBinary() bool {
	return strings.EqualFold(m.Outcomes[0], "Yes") && strings.EqualFold(m.Outcomes[1], "No")
}

// ShortID devuelve el ID corto que se muestra en las respuestas (#a1b2c3d4).
func (m Market) ShortID() string {
	if len(m.ID) < 8 {
		return m.ID
	}
	return m.ID[:8]
}

// MarketRef es la referencia mínima a un mercado que se guarda en el contexto
// de usuario tras un "find", para que un "bet" posterior pueda resolverla.
type MarketRef struct {
	ID       string  `json:"id"`
	Question string  `json:"question"`
	YesPrice float64 `json:"yesPrice"`
	NoPrice  float64 `json:"noPrice"`
}
