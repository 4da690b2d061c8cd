package api

import (
	"strconv"

	"github.com/fundmint-lab/fundmint/internal/models"
	"github.com/gofiber/fiber/v2"
)

// handleCreateSubmission stores a creator's campaign form for review.
func (s *APIServer) handleCreateSubmission(c *fiber.Ctx) error {
	var submission models.Submission
	if err := c.BodyParser(&submission); err != nil {
		return c.Status(400).JSON(map[string]string{
			"error": "Invalid request body",
		})
	}

	// Review state is server-assigned, never client-supplied.
	submission.Status = models.SubmissionStatusPending
	submission.CampaignID = nil
	submission.TxHash = ""

	if err := s.campaigns.CreateSubmission(&submission); err != nil {
		return c.Status(500).JSON(map[string]string{
			"error": "Failed to create submission",
		})
	}

	return c.Status(201).JSON(submission)
}

func (s *APIServer) handleListSubmissions(c *fiber.Ctx) error {
	status := models.SubmissionStatus(c.Query("status", ""))
	limit, _ := strconv.Atoi(c.Query("limit", "50"))

	submissions, err := s.campaigns.ListSubmissions(status, limit)
	if err != nil {
		return c.Status(500).JSON(map[string]string{
			"error": "Failed to list submissions",
		})
	}

	return c.JSON(map[string]interface{}{
		"submissions": submissions,
	})
}

func (s *APIServer) handleGetSubmission(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(map[string]string{
			"error": "Invalid submission ID",
		})
	}

	submission, err := s.campaigns.GetSubmission(uint(id))
	if err != nil {
		return c.Status(404).JSON(map[string]string{
			"error": "Submission not found",
		})
	}

	return c.JSON(submission)
}

// handleProvision creates the on-chain campaign for an approved submission.
// Retrying a completed provisioning returns the existing identifiers.
func (s *APIServer) handleProvision(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(map[string]string{
			"error": "Invalid submission ID",
		})
	}

	result, err := s.campaigns.Provision(c.Context(), uint(id))
	if err != nil {
		return c.Status(422).JSON(map[string]string{
			"error": err.Error(),
		})
	}

	return c.JSON(result)
}

func (s *APIServer) handleListChains(c *fiber.Ctx) error {
	chains, err := s.chains.ListChains()
	if err != nil {
		return c.Status(500).JSON(map[string]string{
			"error": "Failed to list chains",
		})
	}

	return c.JSON(map[string]interface{}{
		"chains": chains,
	})
}
