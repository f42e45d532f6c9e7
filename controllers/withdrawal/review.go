package withdrawal

import (
	"marketpay/helpers"
	"marketpay/middlewares"
	"marketpay/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
)

func Approve(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return helpers.JSONError(c, fiber.StatusBadRequest, "INVALID_WITHDRAWAL_ID")
	}

	actorID, _ := middlewares.Actor(c)

	wd, err := services.ApproveWithdrawal(c.Context(), actorID, uint(id))
	if err != nil {
		return helpers.JSONWorkflowError(c, err)
	}

	return helpers.JSONSuccess(c, "Withdrawal approved", wd)
}

type RejectRequest struct {
	Reason string `json:"reason"`
}

func Reject(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return helpers.JSONError(c, fiber.StatusBadRequest, "INVALID_WITHDRAWAL_ID")
	}

	var req RejectRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, fiber.StatusBadRequest, "INVALID_JSON")
	}

	actorID, _ := middlewares.Actor(c)

	wd, err := services.RejectWithdrawal(c.Context(), actorID, uint(id), req.Reason)
	if err != nil {
		return helpers.JSONWorkflowError(c, err)
	}

	return helpers.JSONSuccess(c, "Withdrawal rejected", wd)
}

type CompleteRequest struct {
	PayoutProof datatypes.JSON `json:"payout_proof"`
}

// Complete records the external payout confirmation and debits the
// wallet.
func Complete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return helpers.JSONError(c, fiber.StatusBadRequest, "INVALID_WITHDRAWAL_ID")
	}

	var req CompleteRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, fiber.StatusBadRequest, "INVALID_JSON")
	}

	wd, entry, err := services.CompleteWithdrawal(c.Context(), uint(id), req.PayoutProof)
	if err != nil {
		return helpers.JSONWorkflowError(c, err)
	}

	return helpers.JSONSuccess(c, "Withdrawal completed", fiber.Map{
		"withdrawal":  wd,
		"transaction": entry,
	})
}
