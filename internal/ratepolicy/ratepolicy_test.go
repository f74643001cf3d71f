package ratepolicy

import (
	"errors"
	"math"
	"testing"
)

func TestPolicy_Target(t *testing.T) {
	p := Default()
	p.PremiumsBps["ruta-centro-edomex"] = 150

	tests := []struct {
		name      string
		market    string
		ecosystem string
		want      float64
		wantErr   error
	}{
		{name: "default market", want: 0.255},
		{name: "aguascalientes", market: "aguascalientes", want: 0.255},
		{name: "edomex is case insensitive", market: "EdoMex", want: 0.299},
		{name: "ecosystem premium", market: "edomex", ecosystem: "ruta-centro-edomex", want: 0.314},
		{name: "unknown ecosystem adds nothing", market: "edomex", ecosystem: "other", want: 0.299},
		{name: "unknown market", market: "jalisco", wantErr: ErrUnknownMarket},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Target(tt.market, tt.ecosystem)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Target() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Target() error = %v", err)
			}
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Target() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPolicy_WithinTolerance(t *testing.T) {
	p := Default()
	if !p.WithinTolerance(0.251, 0.255) {
		t.Error("0.251 should be within 50 bps of 0.255")
	}
	if p.WithinTolerance(0.249, 0.255) {
		t.Error("0.249 should be outside 50 bps of 0.255")
	}
	p.ToleranceBps = 0
	if p.WithinTolerance(0.2549, 0.255) {
		t.Error("zero tolerance should be strict")
	}
}
