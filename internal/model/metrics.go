package model

// Metrics is the pricing engine output for one instrument: theoretical
// price and sensitivities. Delta and GammaP are per contract, Vega and
// Theta per unit of underlying price (percent-scaled where noted).
type Metrics struct {
	Price  float64
	Delta  float64
	GammaP float64
	Vega   float64
	Theta  float64
}
