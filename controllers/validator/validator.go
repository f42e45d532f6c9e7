package validator

import (
	"marketpay/helpers"
	"marketpay/middlewares"
	"marketpay/services"

	"github.com/gofiber/fiber/v2"
)

type CreateRechargeRequest struct {
	UserID   string `json:"user_id"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

func CreateRecharge(c *fiber.Ctx) error {
	var req CreateRechargeRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, fiber.StatusBadRequest, "INVALID_JSON")
	}

	amount, err := helpers.ParsePositiveAmount(req.Amount)
	if err != nil {
		return helpers.JSONError(c, fiber.StatusBadRequest, "INVALID_AMOUNT")
	}

	r, err := services.CreateRecharge(c.Context(), services.CreateRechargeCmd{
		UserID:   req.UserID,
		Amount:   amount,
		Currency: req.Currency,
	})
	if err != nil {
		return helpers.JSONWorkflowError(c, err)
	}

	return helpers.JSONSuccess(c, "Recharge recorded", r)
}

// ValidateRecharge confirms the external cash-in and credits the
// user's wallet.
func ValidateRecharge(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return helpers.JSONError(c, fiber.StatusBadRequest, "INVALID_RECHARGE_ID")
	}

	actorID, _ := middlewares.Actor(c)

	r, entry, err := services.ValidateRecharge(c.Context(), actorID, uint(id))
	if err != nil {
		return helpers.JSONWorkflowError(c, err)
	}

	return helpers.JSONSuccess(c, "Recharge validated", fiber.Map{
		"recharge":    r,
		"transaction": entry,
	})
}

type RequestTransferRequest struct {
	CommissionAmount string `json:"commission_amount"`
	PaymentMethod    string `json:"payment_method"`
}

func RequestTransfer(c *fiber.Ctx) error {
	var req RequestTransferRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, fiber.StatusBadRequest, "INVALID_JSON")
	}

	commission, err := helpers.ParseAmount(req.CommissionAmount)
	if err != nil {
		return helpers.JSONError(c, fiber.StatusBadRequest, "INVALID_COMMISSION_AMOUNT")
	}

	actorID, _ := middlewares.Actor(c)

	t, err := services.RequestValidatorTransfer(c.Context(), services.RequestValidatorTransferCmd{
		ValidatorID:      actorID,
		CommissionAmount: commission,
		PaymentMethod:    req.PaymentMethod,
	})
	if err != nil {
		return helpers.JSONWorkflowError(c, err)
	}

	return helpers.JSONSuccess(c, "Transfer requested", t)
}

func ApproveTransfer(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return helpers.JSONError(c, fiber.StatusBadRequest, "INVALID_TRANSFER_ID")
	}

	actorID, _ := middlewares.Actor(c)

	t, entry, err := services.ApproveValidatorTransfer(c.Context(), actorID, uint(id))
	if err != nil {
		return helpers.JSONWorkflowError(c, err)
	}

	return helpers.JSONSuccess(c, "Transfer approved", fiber.Map{
		"transfer":    t,
		"transaction": entry,
	})
}

type RejectTransferRequest struct {
	Reason string `json:"reason"`
}

func RejectTransfer(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return helpers.JSONError(c, fiber.StatusBadRequest, "INVALID_TRANSFER_ID")
	}

	var req RejectTransferRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, fiber.StatusBadRequest, "INVALID_JSON")
	}

	actorID, _ := middlewares.Actor(c)

	t, err := services.RejectValidatorTransfer(c.Context(), actorID, uint(id), req.Reason)
	if err != nil {
		return helpers.JSONWorkflowError(c, err)
	}

	return helpers.JSONSuccess(c, "Transfer rejected", t)
}
