// Package ratepolicy resolves the annual IRR a tanda must reach: the market's
// minimum rate plus any ecosystem risk premium.
package ratepolicy

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownMarket is returned for a market with no configured target.
var ErrUnknownMarket = errors.New("unknown market")

// Default market minimum annual rates.
const (
	MarketAguascalientes = "aguascalientes"
	MarketEdomex         = "edomex"
)

// Policy holds per-market targets and per-ecosystem premiums.
type Policy struct {
	DefaultMarket string
	Targets       map[string]float64
	// PremiumsBps adds basis points on top of the market target.
	PremiumsBps map[string]int
	// ToleranceBps widens the comparison when checking a rate against its target.
	ToleranceBps int
}

// Default returns the built-in market targets with no premiums.
func Default() *Policy {
	return &Policy{
		DefaultMarket: MarketAguascalientes,
		Targets: map[string]float64{
			MarketAguascalientes: 0.255,
			MarketEdomex:         0.299,
		},
		PremiumsBps:  map[string]int{},
		ToleranceBps: 50,
	}
}

// Target returns the annual target for market plus the ecosystem premium.
// An empty market uses the default market.
func (p *Policy) Target(market, ecosystem string) (float64, error) {
	if market == "" {
		market = p.DefaultMarket
	}
	base, ok := p.Targets[strings.ToLower(market)]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownMarket, market)
	}
	return base + float64(p.PremiumsBps[ecosystem])/10000, nil
}

// WithinTolerance reports whether an annual rate reaches target once the
// configured tolerance is applied.
func (p *Policy) WithinTolerance(annual, target float64) bool {
	return annual+float64(p.ToleranceBps)/10000 >= target
}
