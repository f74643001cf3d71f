package calculator

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidCashFlows is returned when fewer than two cash flows are supplied.
var ErrInvalidCashFlows = errors.New("at least two cash flows are required")

const (
	defaultIRRGuess = 0.02

	newtonMaxIterations = 50
	newtonTolerance     = 1e-9
	newtonMinDerivative = 1e-12
	newtonMaxRate       = 10.0

	bisectLow           = -0.99
	bisectHigh          = 5.0
	bisectTolerance     = 1e-6
	bisectMaxIterations = 1000
)

// IRRMethod names the strategy that produced a rate.
type IRRMethod string

const (
	MethodNewton      IRRMethod = "newton"
	MethodBisection   IRRMethod = "bisection"
	MethodApproximate IRRMethod = "approximation"
)

// IRR returns the periodic rate r such that sum(cf[t] / (1+r)^t) is ~0,
// starting Newton-Raphson from the default guess.
func IRR(cashFlows []float64) (float64, error) {
	rate, _, err := IRRWithGuess(cashFlows, defaultIRRGuess)
	return rate, err
}

// IRRWithGuess is IRR with an explicit Newton starting point. It also reports
// which strategy produced the rate.
//
// Newton-Raphson runs first; when it fails to converge the rate is bracketed by
// bisection over [-0.99, 5]; when no sign change exists there a closed-form
// approximation is used. Only malformed input is reported as an error.
func IRRWithGuess(cashFlows []float64, guess float64) (float64, IRRMethod, error) {
	if len(cashFlows) < 2 {
		return 0, "", fmt.Errorf("%w: got %d", ErrInvalidCashFlows, len(cashFlows))
	}

	if rate, ok := newtonIRR(cashFlows, guess); ok {
		return rate, MethodNewton, nil
	}
	if rate, ok := bisectIRR(cashFlows, bisectLow, bisectHigh); ok {
		return rate, MethodBisection, nil
	}
	return approximateIRR(cashFlows), MethodApproximate, nil
}

// npv returns the net present value and its derivative with respect to rate.
func npv(cashFlows []float64, rate float64) (value, derivative float64) {
	base := 1 + rate
	for t, cf := range cashFlows {
		denom := math.Pow(base, float64(t))
		value += cf / denom
		derivative -= float64(t) * cf / (denom * base)
	}
	return value, derivative
}

func newtonIRR(cashFlows []float64, guess float64) (float64, bool) {
	rate := guess
	for i := 0; i < newtonMaxIterations; i++ {
		value, derivative := npv(cashFlows, rate)
		if math.Abs(value) < newtonTolerance {
			return rate, true
		}
		if math.Abs(derivative) < newtonMinDerivative {
			return 0, false
		}

		step := value / derivative
		rate -= step
		if math.IsNaN(rate) || math.IsInf(rate, 0) || math.Abs(rate) > newtonMaxRate || rate <= -1 {
			return 0, false
		}
		// Large flows can keep |NPV| above the absolute tolerance from rounding
		// alone; a vanishing step means the root is as precise as it gets.
		if math.Abs(step) < 1e-14*math.Max(1, math.Abs(rate)) {
			return rate, true
		}
	}
	return 0, false
}

func bisectIRR(cashFlows []float64, lo, hi float64) (float64, bool) {
	fLo, _ := npv(cashFlows, lo)
	fHi, _ := npv(cashFlows, hi)
	if math.IsNaN(fLo) || math.IsNaN(fHi) || fLo*fHi > 0 {
		return 0, false
	}
	if fLo == 0 {
		return lo, true
	}
	if fHi == 0 {
		return hi, true
	}

	for i := 0; i < bisectMaxIterations; i++ {
		mid := (lo + hi) / 2
		fMid, _ := npv(cashFlows, mid)
		if math.Abs(fMid) < bisectTolerance || (hi-lo)/2 < bisectTolerance {
			return mid, true
		}
		if (fMid < 0) == (fLo < 0) {
			lo, fLo = mid, fMid
		} else {
			hi = mid
		}
	}
	return 0, false
}

// approximateIRR is (inflows / |outlay|)^(1/periods) - 1. Degenerate inputs yield 0.
func approximateIRR(cashFlows []float64) float64 {
	outlay := math.Abs(cashFlows[0])
	var inflow float64
	for _, cf := range cashFlows[1:] {
		if cf > 0 {
			inflow += cf
		}
	}
	periods := float64(len(cashFlows) - 1)
	if outlay == 0 || inflow == 0 || periods == 0 {
		return 0
	}
	rate := math.Pow(inflow/outlay, 1/periods) - 1
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0
	}
	return rate
}
