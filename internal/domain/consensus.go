package domain

import "sort"

// ConsensusRow es una fila cruda del feed de consenso: un evento con sus
// precios medios home/draw/away y cuántos bookmakers contribuyeron.
// DrawPrice es 0 en mercados de dos resultados.
type ConsensusRow struct {
	Event     Event
	HomePrice float64
	DrawPrice float64
	AwayPrice float64
	Sources   int
}

// ConsensusPrice es el precio medio de consenso para una (evento, selección).
type ConsensusPrice struct {
	Event     Event
	Selection string
	MeanPrice float64
	Sources   int
}

// PivotConsensus reduce filas crudas del feed a un ConsensusPrice por
// (evento, selección). Filas con menos de minSources bookmakers o con
// precios fuera de rango se descartan — un consenso de pocas fuentes no
// es de fiar como referencia de fair value.
//
// El resultado está ordenado por Event.Key y selección para que el
// pipeline aguas abajo sea determinista.
func PivotConsensus(rows []ConsensusRow, minSources int) []ConsensusPrice {
	prices := make([]ConsensusPrice, 0, len(rows)*3)
	for _, row := range rows {
		if row.Sources < minSources {
			continue
		}
		if row.HomePrice > 1.0 {
			prices = append(prices, ConsensusPrice{
				Event:     row.Event,
				Selection: row.Event.HomeTeam,
				MeanPrice: row.HomePrice,
				Sources:   row.Sources,
			})
		}
		if row.DrawPrice > 1.0 {
			prices = append(prices, ConsensusPrice{
				Event:     row.Event,
				Selection: SelectionDraw,
				MeanPrice: row.DrawPrice,
				Sources:   row.Sources,
			})
		}
		if row.AwayPrice > 1.0 {
			prices = append(prices, ConsensusPrice{
				Event:     row.Event,
				Selection: row.Event.AwayTeam,
				MeanPrice: row.AwayPrice,
				Sources:   row.Sources,
			})
		}
	}

	sort.Slice(prices, func(i, j int) bool {
		ki, kj := prices[i].Event.Key(), prices[j].Event.Key()
		if ki != kj {
			return ki < kj
		}
		return prices[i].Selection < prices[j].Selection
	})
	return prices
}
