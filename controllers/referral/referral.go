package referral

import (
	"marketpay/helpers"
	"marketpay/middlewares"
	"marketpay/services"

	"github.com/gofiber/fiber/v2"
)

type CreateAffiliationRequest struct {
	ReferredUserID   string `json:"referred_user_id"`
	ApprovalFee      string `json:"approval_fee"`
	CommissionAmount string `json:"commission_amount"`
}

func CreateAffiliation(c *fiber.Ctx) error {
	var req CreateAffiliationRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, fiber.StatusBadRequest, "INVALID_JSON")
	}

	fee, err := helpers.ParseAmount(req.ApprovalFee)
	if err != nil {
		return helpers.JSONError(c, fiber.StatusBadRequest, "INVALID_APPROVAL_FEE")
	}
	commission, err := helpers.ParseAmount(req.CommissionAmount)
	if err != nil {
		return helpers.JSONError(c, fiber.StatusBadRequest, "INVALID_COMMISSION_AMOUNT")
	}

	actorID, _ := middlewares.Actor(c)

	a, err := services.CreateAffiliation(c.Context(), services.CreateAffiliationCmd{
		AffiliateID:      actorID,
		ReferredUserID:   req.ReferredUserID,
		ApprovalFee:      fee,
		CommissionAmount: commission,
	})
	if err != nil {
		return helpers.JSONWorkflowError(c, err)
	}

	return helpers.JSONSuccess(c, "Referral recorded", a)
}

// Approve charges the approval fee and activates the affiliation.
func Approve(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return helpers.JSONError(c, fiber.StatusBadRequest, "INVALID_AFFILIATION_ID")
	}

	actorID, _ := middlewares.Actor(c)

	a, entry, err := services.ApproveReferral(c.Context(), uint(id), actorID)
	if err != nil {
		return helpers.JSONWorkflowError(c, err)
	}

	return helpers.JSONSuccess(c, "Referral approved", fiber.Map{
		"affiliation": a,
		"transaction": entry,
	})
}

// PayCommission settles the affiliate's commission after the referred
// user converts. Admin only.
func PayCommission(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return helpers.JSONError(c, fiber.StatusBadRequest, "INVALID_AFFILIATION_ID")
	}

	a, entry, err := services.PayReferralCommission(c.Context(), uint(id))
	if err != nil {
		return helpers.JSONWorkflowError(c, err)
	}

	return helpers.JSONSuccess(c, "Commission paid", fiber.Map{
		"affiliation": a,
		"transaction": entry,
	})
}
