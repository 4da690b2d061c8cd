package api

import (
	"github.com/gofiber/fiber/v2"
)

// handleWalletTokens aggregates a wallet's holdings across every active
// contract. Contracts that could not be read are listed alongside the tokens
// so the caller can tell partial data from an empty wallet.
func (s *APIServer) handleWalletTokens(c *fiber.Ctx) error {
	address := c.Params("address")

	holdings, err := s.ownership.Aggregate(c.Context(), address)
	if err != nil {
		return c.Status(400).JSON(map[string]string{
			"error": err.Error(),
		})
	}

	return c.JSON(holdings)
}
