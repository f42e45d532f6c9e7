package wallet

import (
	"marketpay/helpers"
	"marketpay/middlewares"
	"marketpay/services"

	"github.com/gofiber/fiber/v2"
)

type CreateWalletRequest struct {
	OwnerID   string `json:"owner_id"`
	OwnerRole string `json:"owner_role"`
	Currency  string `json:"currency"`
}

// CreateWallet provisions a wallet at owner onboarding. Called by the
// admin backoffice or by the onboarding flow itself.
func CreateWallet(c *fiber.Ctx) error {
	var req CreateWalletRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, fiber.StatusBadRequest, "INVALID_JSON")
	}

	actorID, actorRole := middlewares.Actor(c)
	if actorRole != middlewares.RoleAdmin {
		// Non-admin actors may only onboard themselves.
		req.OwnerID = actorID
		req.OwnerRole = actorRole
	}

	w, err := services.CreateWallet(c.Context(), req.OwnerID, req.OwnerRole, req.Currency)
	if err != nil {
		return helpers.JSONWorkflowError(c, err)
	}

	return helpers.JSONSuccess(c, "Wallet ready", w)
}
