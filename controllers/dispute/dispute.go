package dispute

import (
	"marketpay/helpers"
	"marketpay/middlewares"
	"marketpay/services"

	"github.com/gofiber/fiber/v2"
)

type OpenDisputeRequest struct {
	OrderID     string `json:"order_id"`
	OrderAmount string `json:"order_amount"`
	Currency    string `json:"currency"`
	SellerID    string `json:"seller_id"`
	ProviderID  string `json:"provider_id"`
	Reason      string `json:"reason"`
}

func Open(c *fiber.Ctx) error {
	var req OpenDisputeRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, fiber.StatusBadRequest, "INVALID_JSON")
	}

	amount, err := helpers.ParsePositiveAmount(req.OrderAmount)
	if err != nil {
		return helpers.JSONError(c, fiber.StatusBadRequest, "INVALID_ORDER_AMOUNT")
	}

	actorID, _ := middlewares.Actor(c)

	d, err := services.OpenDispute(c.Context(), actorID, services.OpenDisputeCmd{
		OrderID:     req.OrderID,
		OrderAmount: amount,
		Currency:    req.Currency,
		SellerID:    req.SellerID,
		ProviderID:  req.ProviderID,
		Reason:      req.Reason,
	})
	if err != nil {
		return helpers.JSONWorkflowError(c, err)
	}

	return helpers.JSONSuccess(c, "Dispute opened", d)
}

type AssignRequest struct {
	ConciliatorID string `json:"conciliator_id"`
}

func Assign(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return helpers.JSONError(c, fiber.StatusBadRequest, "INVALID_DISPUTE_ID")
	}

	var req AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, fiber.StatusBadRequest, "INVALID_JSON")
	}

	d, err := services.AssignConciliator(c.Context(), uint(id), req.ConciliatorID)
	if err != nil {
		return helpers.JSONWorkflowError(c, err)
	}

	return helpers.JSONSuccess(c, "Conciliator assigned", d)
}

type ResolveRequest struct {
	ResolutionType string `json:"resolution_type"`
	Resolution     string `json:"resolution"`
}

// Resolve executes the conciliator's decision, including the refund
// transfer the policy table dictates.
func Resolve(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return helpers.JSONError(c, fiber.StatusBadRequest, "INVALID_DISPUTE_ID")
	}

	var req ResolveRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, fiber.StatusBadRequest, "INVALID_JSON")
	}

	actorID, _ := middlewares.Actor(c)

	d, entry, err := services.ResolveDispute(c.Context(), services.ResolveDisputeCmd{
		DisputeID:      uint(id),
		ConciliatorID:  actorID,
		ResolutionType: req.ResolutionType,
		Resolution:     req.Resolution,
	})
	if err != nil {
		return helpers.JSONWorkflowError(c, err)
	}

	return helpers.JSONSuccess(c, "Dispute resolved", fiber.Map{
		"dispute":     d,
		"transaction": entry,
	})
}

func Close(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return helpers.JSONError(c, fiber.StatusBadRequest, "INVALID_DISPUTE_ID")
	}

	d, err := services.CloseDispute(c.Context(), uint(id))
	if err != nil {
		return helpers.JSONWorkflowError(c, err)
	}

	return helpers.JSONSuccess(c, "Dispute closed", d)
}
