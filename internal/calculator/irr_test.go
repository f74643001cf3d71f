package calculator

import (
	"errors"
	"math"
	"testing"
)

// annuityFlows builds an outlay followed by n equal payments discounted at rate.
func annuityFlows(rate, payment float64, n int) []float64 {
	flows := make([]float64, n+1)
	var pv float64
	for t := 1; t <= n; t++ {
		flows[t] = payment
		pv += payment / math.Pow(1+rate, float64(t))
	}
	flows[0] = -pv
	return flows
}

func TestIRR_RecoversKnownRate(t *testing.T) {
	tests := []struct {
		name    string
		rate    float64
		payment float64
		periods int
	}{
		{name: "one percent monthly", rate: 0.01, payment: 1000, periods: 24},
		{name: "default guess rate", rate: 0.02, payment: 8500, periods: 12},
		{name: "high rate", rate: 0.07, payment: 12000, periods: 24},
		{name: "zero rate", rate: 0, payment: 500, periods: 10},
		{name: "negative rate", rate: -0.005, payment: 250, periods: 36},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flows := annuityFlows(tt.rate, tt.payment, tt.periods)
			got, err := IRR(flows)
			if err != nil {
				t.Fatalf("IRR() error = %v", err)
			}
			if math.Abs(got-tt.rate) > 1e-6 {
				t.Errorf("IRR() = %v, want %v", got, tt.rate)
			}
		})
	}
}

func TestIRR_RejectsShortInput(t *testing.T) {
	for _, flows := range [][]float64{nil, {}, {-100}} {
		if _, err := IRR(flows); !errors.Is(err, ErrInvalidCashFlows) {
			t.Errorf("IRR(%v) error = %v, want ErrInvalidCashFlows", flows, err)
		}
	}
}

func TestIRRWithGuess_FallbackChain(t *testing.T) {
	tests := []struct {
		name         string
		flows        []float64
		guess        float64
		wantMethod   IRRMethod
		validateFunc func(t *testing.T, rate float64)
	}{
		{
			name:         "newton converges from default guess",
			flows:        annuityFlows(0.03, 1000, 12),
			guess:        defaultIRRGuess,
			wantMethod:   MethodNewton,
			validateFunc: func(t *testing.T, rate float64) {
				if math.Abs(rate-0.03) > 1e-6 {
					t.Errorf("rate = %v, want 0.03", rate)
				}
			},
		},
		{
			name:         "divergent guess falls back to bisection",
			flows:        annuityFlows(0.03, 1000, 12),
			guess:        50,
			wantMethod:   MethodBisection,
			validateFunc: func(t *testing.T, rate float64) {
				if math.Abs(rate-0.03) > 1e-6 {
					t.Errorf("rate = %v, want 0.03", rate)
				}
			},
		},
		{
			name:         "root outside bisection bounds uses approximation",
			flows:        []float64{-1, 1000},
			guess:        defaultIRRGuess,
			wantMethod:   MethodApproximate,
			validateFunc: func(t *testing.T, rate float64) {
				if math.Abs(rate-999) > 1e-9 {
					t.Errorf("rate = %v, want 999", rate)
				}
			},
		},
		{
			name:         "zero outlay is degenerate",
			flows:        []float64{0, 100, 100},
			guess:        defaultIRRGuess,
			wantMethod:   MethodApproximate,
			validateFunc: func(t *testing.T, rate float64) {
				if rate != 0 {
					t.Errorf("rate = %v, want 0", rate)
				}
			},
		},
		{
			name:         "zero inflow is degenerate",
			flows:        []float64{-100, 0, 0},
			guess:        defaultIRRGuess,
			wantMethod:   MethodApproximate,
			validateFunc: func(t *testing.T, rate float64) {
				if rate != 0 {
					t.Errorf("rate = %v, want 0", rate)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rate, method, err := IRRWithGuess(tt.flows, tt.guess)
			if err != nil {
				t.Fatalf("IRRWithGuess() error = %v", err)
			}
			if method != tt.wantMethod {
				t.Errorf("method = %s, want %s", method, tt.wantMethod)
			}
			tt.validateFunc(t, rate)
		})
	}
}

func TestBisectIRR_NoSignChange(t *testing.T) {
	if _, ok := bisectIRR([]float64{100, 100, 100}, bisectLow, bisectHigh); ok {
		t.Error("expected bisection to fail without a sign change")
	}
}
