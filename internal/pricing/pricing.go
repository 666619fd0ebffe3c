package pricing

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"main/internal/model"
	"main/internal/model/enum"
	"main/pkg/clock"
	"main/pkg/exception"
)

const (
	yearMillis   = int64(1000) * 60 * 60 * 24 * 365
	atmThreshold = 1e-8
)

// Engine computes Black-76 price and sensitivities for futures and European
// options, with implied volatility from a Hagan-style SABR approximation.
// Pure with respect to market state: everything flows in through arguments.
type Engine struct {
	clk clock.Clock

	beta                 float64
	volOfVol             float64
	rho                  float64
	timeAdjustedVolOfVol bool
}

// New validates the SABR parameter domains and builds the engine.
func New(clk clock.Clock, beta, volOfVol, rho float64, timeAdjustedVolOfVol bool) (*Engine, error) {
	if beta < 0 || beta > 1 {
		return nil, fmt.Errorf("%w: beta=%v outside [0, 1]", exception.ErrInvalidArgument, beta)
	}
	if volOfVol < 0 {
		return nil, fmt.Errorf("%w: volOfVol=%v < 0", exception.ErrInvalidArgument, volOfVol)
	}
	if rho <= -1 || rho >= 1 {
		return nil, fmt.Errorf("%w: rho=%v outside (-1, 1)", exception.ErrInvalidArgument, rho)
	}
	return &Engine{
		clk:                  clk,
		beta:                 beta,
		volOfVol:             volOfVol,
		rho:                  rho,
		timeAdjustedVolOfVol: timeAdjustedVolOfVol,
	}, nil
}

// Metrics prices the instrument at the given fair volatility and underlying
// futures price. Futures have unit delta and no optionality.
func (e *Engine) Metrics(inst model.Instrument, volatility, futuresPrice float64) model.Metrics {
	if inst.IsFuture() {
		return model.Metrics{Price: futuresPrice, Delta: 1}
	}
	t := e.yearsToMaturity(inst.ExpirationDate)
	strike := inst.Strike.InexactFloat64()
	sigma := e.sabrImpliedVolatility(volatility, futuresPrice, t, strike)
	return black76(inst.Kind, sigma, futuresPrice, t, strike)
}

// black76 follows the closed-form model for options on a futures price.
func black76(kind enum.InstrumentKind, s, f, t, x float64) model.Metrics {
	sqrtT := math.Sqrt(t)
	d1 := (math.Log(f/x) + (s*s/2)*t) / (s * sqrtT)
	d2 := d1 - s*sqrtT

	cdfD1 := normCDF(d1)
	densityD1 := normPDF(d1)

	delta := cdfD1
	gamma := densityD1 / (f * s * sqrtT)
	gammaP := gamma * f / 100
	vega := f * densityD1 * sqrtT / 100
	theta := (-(f * densityD1 * s) / (2 * sqrtT)) / 365

	var price float64
	if kind == enum.InstrumentEuropeanCall {
		price = f*cdfD1 - x*normCDF(d2)
	} else {
		price = x*normCDF(-d2) - f*(1-cdfD1)
		delta = delta - 1 // put-call parity
	}

	if price < 0 { // may happen with very OTM options
		price = 0
	}

	return model.Metrics{Price: price, Delta: delta, GammaP: gammaP, Vega: vega, Theta: theta}
}

// sabrImpliedVolatility is the Hagan-style approximation. The vol-of-vol
// term in the numerator deviates from the published formula; the quoting
// parameters are calibrated against this variant, so keep it as is.
func (e *Engine) sabrImpliedVolatility(volatility, futuresPrice, timeToMaturity, strike float64) float64 {
	volOfVol := e.volOfVol
	if e.timeAdjustedVolOfVol {
		volOfVol *= math.Sqrt(1 / timeToMaturity)
	}

	z := volOfVol / volatility *
		math.Pow(futuresPrice*strike, 0.5*(1-e.beta)) *
		math.Log(futuresPrice/strike)
	x := math.Log((math.Sqrt(1-2*e.rho*z+z*z) + z - e.rho) / (1 - e.rho))

	numerator := 1 + (math.Pow(1-e.beta, 2)/24*volatility*volatility/math.Pow(futuresPrice*strike, 1-e.beta)+
		0.25*e.rho*e.beta*volOfVol*volatility/math.Pow(futuresPrice*strike, 0.5*(1-e.beta))+
		(2-3*e.rho*e.rho)*volOfVol)*timeToMaturity

	if math.Abs((futuresPrice-strike)/futuresPrice) < atmThreshold {
		return volatility * numerator / math.Pow(futuresPrice, 1-e.beta)
	}

	logFK := math.Log(futuresPrice / strike)
	denominator := x * math.Pow(futuresPrice*strike, 0.5*(1-e.beta)) *
		(1 + math.Pow((1-e.beta)*logFK, 2)/24 + math.Pow((1-e.beta)*logFK, 4)/1920)

	return z * volatility * numerator / denominator
}

// yearsToMaturity divides the remaining lifetime by a 365-day year, rounded
// up at ten decimal digits.
func (e *Engine) yearsToMaturity(expiration time.Time) float64 {
	ms := expiration.Sub(e.clk.Now()).Milliseconds()
	return decimal.NewFromInt(ms).
		Div(decimal.NewFromInt(yearMillis)).
		RoundUp(10).
		InexactFloat64()
}

func normCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}

func normPDF(x float64) float64 {
	return math.Exp(-x*x/2) / math.Sqrt(2*math.Pi)
}
