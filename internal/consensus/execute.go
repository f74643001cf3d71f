package consensus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/mmynk/tandas/internal/delivery"
	"github.com/mmynk/tandas/internal/models"
)

type ExecuteResult struct {
	// Schedule is the group's schedule after the swap.
	Schedule []models.ScheduleEntry

	// Fund and Required are the amounts compared by the guardrail.
	Fund     float64
	Required float64
	// Shortfall is Required - Fund when the guardrail refused execution.
	Shortfall float64

	Rejection *Rejection
}

// ExecuteTransfer swaps delivery priority for an operator-approved transfer.
// The group's pooled fund must cover one delivery and both members must be on
// the schedule; otherwise nothing changes and the caller may retry later.
func (e *Engine) ExecuteTransfer(ctx context.Context, groupID, transferID string) (*ExecuteResult, error) {
	result := &ExecuteResult{}
	_, err := e.repo.Mutate(ctx, groupID, "transfer_executed", func(g *models.Group) (bool, error) {
		transfer := g.FindTransfer(transferID)
		if transfer == nil {
			return false, fmt.Errorf("%w: %s", ErrTransferNotFound, transferID)
		}
		if transfer.Status != models.TransferApproved {
			result.Rejection = &Rejection{
				Code:    models.RejectTransferNotApproved,
				Message: fmt.Sprintf("transfer is %s", transfer.Status),
			}
			return false, nil
		}

		if g.FindScheduleEntry(transfer.ToMemberID) == nil || g.FindScheduleEntry(transfer.FromMemberID) == nil {
			result.Rejection = &Rejection{
				Code:    models.RejectNoSchedule,
				Message: fmt.Sprintf("group is %s and has no delivery schedule yet", g.Status),
			}
			return false, nil
		}

		fund := delivery.Fund(g)
		required := decimal.NewFromFloat(g.TotalAmount)
		result.Fund = fund.InexactFloat64()
		result.Required = required.InexactFloat64()
		if fund.LessThan(required) {
			shortfall := required.Sub(fund)
			result.Shortfall = shortfall.InexactFloat64()
			result.Rejection = &Rejection{
				Code:    models.RejectInsufficientFunds,
				Message: fmt.Sprintf("group fund %s is %s short of the %s delivery amount", fund.StringFixed(2), shortfall.StringFixed(2), required.StringFixed(2)),
			}
			return false, nil
		}

		if err := delivery.Reassign(g, transfer.ToMemberID, transfer.FromMemberID); err != nil {
			if errors.Is(err, delivery.ErrEntryNotFound) {
				return false, fmt.Errorf("%w: %v", ErrMemberNotFound, err)
			}
			return false, err
		}
		transfer.Status = models.TransferExecuted
		transfer.ExecutedAt = e.now()

		result.Schedule = append([]models.ScheduleEntry(nil), g.Schedule...)
		return true, nil
	})
	record("execute", result.Rejection, err)
	if err != nil {
		return nil, err
	}

	if result.Rejection != nil {
		slog.WarnContext(ctx, "transfer execution refused",
			"group_id", groupID,
			"transfer_id", transferID,
			"code", result.Rejection.Code,
			"shortfall", result.Shortfall,
		)
		return result, nil
	}
	slog.InfoContext(ctx, "transfer executed", "group_id", groupID, "transfer_id", transferID)
	return result, nil
}
