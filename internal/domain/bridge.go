package domain

import "errors"

// ErrRouteUnavailable indica que el router externo no devolvió ninguna ruta.
// Es una condición terminal del flow — no se reintenta automáticamente.
var ErrRouteUnavailable = errors.New("no bridge route available")

// BridgeRoute es una ruta candidata para mover USDC de una chain a otra.
// Read-only una vez construida.
type BridgeRoute struct {
	FromChainID      int64
	ToChainID        int64
	Steps            []string // nombres de los hops de protocolo, en orden
	EstimatedSeconds int      // suma de las duraciones estimadas por step
	GasCostUSD       string   // coste estimado de gas; "?" si el router no lo informa
	RawRoute         []byte   // handle opaco del router, se devuelve tal cual al ejecutar
}

// EstimatedMinutes devuelve la duración estimada redondeada hacia arriba en minutos.
func (r BridgeRoute) EstimatedMinutes() int {
	if r.EstimatedSeconds <= 0 {
		return 0
	}
	return (r.EstimatedSeconds + 59) / 60
}
