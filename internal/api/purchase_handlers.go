package api

import (
	"strconv"

	"github.com/fundmint-lab/fundmint/internal/services"
	"github.com/gofiber/fiber/v2"
)

// handlePurchase mints the requested editions to the buyer's wallet. A batch
// that fails mid-way still returns the units that minted.
func (s *APIServer) handlePurchase(c *fiber.Ctx) error {
	var req services.PurchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(map[string]string{
			"error": "Invalid request body",
		})
	}

	result, err := s.purchases.Purchase(c.Context(), req)
	if err != nil {
		return c.Status(422).JSON(map[string]string{
			"error": err.Error(),
		})
	}

	status := 200
	if result.Failure != nil {
		// Partial success: some editions minted before the batch stopped.
		status = 207
	}
	return c.Status(status).JSON(result)
}

// handleReconcile makes a confirmed purchase durable. Posting the same
// transaction hash twice is a successful no-op.
func (s *APIServer) handleReconcile(c *fiber.Ctx) error {
	var input services.ReconcileInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(map[string]string{
			"error": "Invalid request body",
		})
	}

	result, err := s.reconcile.Reconcile(c.Context(), input)
	if err != nil {
		return c.Status(422).JSON(map[string]string{
			"error": err.Error(),
		})
	}

	status := 200
	if result.Created {
		status = 201
	}
	return c.Status(status).JSON(result)
}

func (s *APIServer) handleAnnotatePurchase(c *fiber.Ctx) error {
	txHash := c.Params("tx_hash")

	var body struct {
		Email string `json:"email"`
		Note  string `json:"note"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(map[string]string{
			"error": "Invalid request body",
		})
	}

	if err := s.reconcile.AnnotatePurchase(txHash, body.Email, body.Note); err != nil {
		return c.Status(404).JSON(map[string]string{
			"error": err.Error(),
		})
	}

	purchase, err := s.reconcile.GetPurchase(txHash)
	if err != nil {
		return c.Status(500).JSON(map[string]string{
			"error": "Failed to load purchase",
		})
	}
	return c.JSON(purchase)
}

func (s *APIServer) handleListEvents(c *fiber.Ctx) error {
	campaignID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(400).JSON(map[string]string{
			"error": "Invalid campaign ID",
		})
	}
	limit, _ := strconv.Atoi(c.Query("limit", "100"))

	events, err := s.reconcile.ListEvents(campaignID, limit)
	if err != nil {
		return c.Status(500).JSON(map[string]string{
			"error": "Failed to list events",
		})
	}

	return c.JSON(map[string]interface{}{
		"events": events,
	})
}

// handleResync reports cache/chain divergence for one campaign without
// changing either side.
func (s *APIServer) handleResync(c *fiber.Ctx) error {
	campaignID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(400).JSON(map[string]string{
			"error": "Invalid campaign ID",
		})
	}
	bindingID, err := strconv.ParseUint(c.Query("binding_id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(map[string]string{
			"error": "binding_id query parameter is required",
		})
	}

	corrections, err := s.reconcile.Resync(c.Context(), uint(bindingID), campaignID)
	if err != nil {
		return c.Status(422).JSON(map[string]string{
			"error": err.Error(),
		})
	}

	return c.JSON(map[string]interface{}{
		"campaign_id": campaignID,
		"corrections": corrections,
		"in_sync":     len(corrections) == 0,
	})
}
