// Package service implements the Connect handlers over the tanda domain packages.
package service

import (
	"context"
	"errors"

	"connectrpc.com/connect"

	"github.com/mmynk/tandas/internal/calculator"
	"github.com/mmynk/tandas/internal/consensus"
	"github.com/mmynk/tandas/internal/models"
	"github.com/mmynk/tandas/internal/ratepolicy"
	"github.com/mmynk/tandas/internal/storage"
	"github.com/mmynk/tandas/internal/tanda"
)

// toConnectError maps domain errors to Connect codes. Storage failures and
// anything unrecognized surface as internal errors.
func toConnectError(err error) *connect.Error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr
	}
	return connect.NewError(codeOf(err), err)
}

func codeOf(err error) connect.Code {
	switch {
	case errors.Is(err, storage.ErrGroupNotFound),
		errors.Is(err, tanda.ErrMemberNotFound),
		errors.Is(err, consensus.ErrMemberNotFound),
		errors.Is(err, consensus.ErrConsensusNotFound),
		errors.Is(err, consensus.ErrTransferNotFound):
		return connect.CodeNotFound
	case errors.Is(err, tanda.ErrInvalidInput),
		errors.Is(err, consensus.ErrInvalidInput),
		errors.Is(err, calculator.ErrInvalidInput),
		errors.Is(err, calculator.ErrInvalidCashFlows),
		errors.Is(err, ratepolicy.ErrUnknownMarket):
		return connect.CodeInvalidArgument
	case errors.Is(err, tanda.ErrGroupFull):
		return connect.CodeFailedPrecondition
	case errors.Is(err, context.Canceled):
		return connect.CodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return connect.CodeDeadlineExceeded
	default:
		return connect.CodeInternal
	}
}

// rejectionFields flattens a rejection into the success/message/code triple
// carried by operation responses.
func rejectionFields(r *models.Rejection) (success bool, message, code string) {
	if r == nil {
		return true, "", ""
	}
	return false, r.Message, string(r.Code)
}
