package calculator

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/mmynk/tandas/internal/models"
)

var csvHeader = []string{
	"name", "irr_annual", "meets_target", "awards_made", "first_award_month",
	"last_award_month", "active_share_avg", "deficit_months", "rescues_used",
}

// WriteResultsCSV writes one row per scenario. Percentages are rendered as
// percent values (IRR with two decimals, active share rounded).
func WriteResultsCSV(w io.Writer, results []models.ScenarioResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, r := range results {
		row := []string{
			r.Params.Name,
			strconv.FormatFloat(r.IRRAnnual*100, 'f', 2, 64),
			strconv.FormatBool(r.MeetsTarget),
			strconv.Itoa(r.Metrics.AwardsMade),
			optionalMonth(r.Metrics.FirstAwardMonth),
			optionalMonth(r.Metrics.LastAwardMonth),
			strconv.FormatFloat(r.Metrics.ActiveShareAvg*100, 'f', 0, 64),
			strconv.Itoa(r.Metrics.DeficitMonths),
			strconv.Itoa(r.Metrics.RescuesUsed),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func optionalMonth(m int) string {
	if m == 0 {
		return ""
	}
	return strconv.Itoa(m)
}
