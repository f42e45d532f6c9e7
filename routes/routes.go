package routes

import (
	"marketpay/controllers/dispute"
	"marketpay/controllers/referral"
	"marketpay/controllers/validator"
	"marketpay/controllers/wallet"
	"marketpay/controllers/withdrawal"
	"marketpay/middlewares"

	"github.com/gofiber/fiber/v2"
)

func Setup(app *fiber.App) {
	api := app.Group("/", middlewares.GatewayAuth())

	walletroutes := api.Group("/wallets")
	walletroutes.Post("/", wallet.CreateWallet)
	walletroutes.Get("/me/balance", wallet.CheckBalance)
	walletroutes.Get("/me/transactions", wallet.ListMyTransactions)
	walletroutes.Get("/:walletId/transactions", middlewares.RequireRole(middlewares.RoleAdmin), wallet.ListTransactions)
	walletroutes.Post("/:walletId/suspend", middlewares.RequireRole(middlewares.RoleAdmin), wallet.Suspend)

	wdroutes := api.Group("/withdrawals")
	wdroutes.Post("/", withdrawal.RequestWithdrawal)
	wdroutes.Post("/:id/approve", middlewares.RequireRole(middlewares.RoleAdmin, middlewares.RoleValidator), withdrawal.Approve)
	wdroutes.Post("/:id/reject", middlewares.RequireRole(middlewares.RoleAdmin, middlewares.RoleValidator), withdrawal.Reject)
	wdroutes.Post("/:id/complete", middlewares.RequireRole(middlewares.RoleAdmin), withdrawal.Complete)

	refroutes := api.Group("/referrals")
	refroutes.Post("/", middlewares.RequireRole(middlewares.RoleAffiliate), referral.CreateAffiliation)
	refroutes.Post("/:id/approve", middlewares.RequireRole(middlewares.RoleAffiliate), referral.Approve)
	refroutes.Post("/:id/commission", middlewares.RequireRole(middlewares.RoleAdmin), referral.PayCommission)

	disproutes := api.Group("/disputes")
	disproutes.Post("/", middlewares.RequireRole(middlewares.RoleSeller, middlewares.RoleProvider), dispute.Open)
	disproutes.Post("/:id/assign", middlewares.RequireRole(middlewares.RoleAdmin), dispute.Assign)
	disproutes.Post("/:id/resolve", middlewares.RequireRole(middlewares.RoleConciliator), dispute.Resolve)
	disproutes.Post("/:id/close", middlewares.RequireRole(middlewares.RoleAdmin, middlewares.RoleConciliator), dispute.Close)

	valroutes := api.Group("/validator")
	valroutes.Post("/recharges", validator.CreateRecharge)
	valroutes.Post("/recharges/:id/validate", middlewares.RequireRole(middlewares.RoleValidator), validator.ValidateRecharge)
	valroutes.Post("/transfers", middlewares.RequireRole(middlewares.RoleValidator), validator.RequestTransfer)
	valroutes.Post("/transfers/:id/approve", middlewares.RequireRole(middlewares.RoleAdmin), validator.ApproveTransfer)
	valroutes.Post("/transfers/:id/reject", middlewares.RequireRole(middlewares.RoleAdmin), validator.RejectTransfer)
}
