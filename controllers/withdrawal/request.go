package withdrawal

import (
	"marketpay/helpers"
	"marketpay/middlewares"
	"marketpay/services"

	"github.com/gofiber/fiber/v2"
)

type RequestWithdrawalRequest struct {
	WalletID      uint   `json:"wallet_id"`
	Amount        string `json:"amount"`
	PaymentMethod string `json:"payment_method"`
}

func RequestWithdrawal(c *fiber.Ctx) error {
	var req RequestWithdrawalRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, fiber.StatusBadRequest, "INVALID_JSON")
	}

	amount, err := helpers.ParsePositiveAmount(req.Amount)
	if err != nil {
		return helpers.JSONError(c, fiber.StatusBadRequest, "INVALID_AMOUNT")
	}

	actorID, _ := middlewares.Actor(c)

	wd, err := services.RequestWithdrawal(c.Context(), actorID, services.RequestWithdrawalCmd{
		WalletID:      req.WalletID,
		Amount:        amount,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		return helpers.JSONWorkflowError(c, err)
	}

	return helpers.JSONSuccess(c, "Withdrawal requested", wd)
}
