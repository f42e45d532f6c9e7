package wallet

import (
	"marketpay/helpers"
	"marketpay/middlewares"
	"marketpay/services"

	"github.com/gofiber/fiber/v2"
)

func CheckBalance(c *fiber.Ctx) error {
	actorID, _ := middlewares.Actor(c)

	w, err := services.GetWalletByOwner(c.Context(), actorID)
	if err != nil {
		return helpers.JSONWorkflowError(c, err)
	}

	return helpers.JSONSuccess(c, "Balance fetched", fiber.Map{
		"wallet_number": w.WalletNumber,
		"balance":       w.Balance,
		"currency":      w.Currency,
		"status":        w.Status,
	})
}

// ListMyTransactions returns the caller's own ledger history.
func ListMyTransactions(c *fiber.Ctx) error {
	actorID, _ := middlewares.Actor(c)

	w, err := services.GetWalletByOwner(c.Context(), actorID)
	if err != nil {
		return helpers.JSONWorkflowError(c, err)
	}

	entries, err := services.ListWalletTransactions(c.Context(), w.ID)
	if err != nil {
		return helpers.JSONWorkflowError(c, err)
	}

	return helpers.JSONSuccess(c, "Transactions fetched", entries)
}

// ListTransactions is the admin view over any wallet's ledger.
func ListTransactions(c *fiber.Ctx) error {
	walletID, err := c.ParamsInt("walletId")
	if err != nil || walletID <= 0 {
		return helpers.JSONError(c, fiber.StatusBadRequest, "INVALID_WALLET_ID")
	}

	entries, err := services.ListWalletTransactions(c.Context(), uint(walletID))
	if err != nil {
		return helpers.JSONWorkflowError(c, err)
	}

	return helpers.JSONSuccess(c, "Transactions fetched", entries)
}

// Suspend soft-disables a wallet; the row and its history remain.
func Suspend(c *fiber.Ctx) error {
	walletID, err := c.ParamsInt("walletId")
	if err != nil || walletID <= 0 {
		return helpers.JSONError(c, fiber.StatusBadRequest, "INVALID_WALLET_ID")
	}

	w, err := services.SuspendWallet(c.Context(), uint(walletID))
	if err != nil {
		return helpers.JSONWorkflowError(c, err)
	}

	return helpers.JSONSuccess(c, "Wallet suspended", w)
}
