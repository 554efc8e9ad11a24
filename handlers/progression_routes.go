// handlers/progression_routes.go
package handlers

import (
	"errors"
	"time"

	"quiz-progression-system/middleware"
	"quiz-progression-system/models"
	"quiz-progression-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupProgressionRoutes(
	app *fiber.App,
	streakService *services.StreakService,
	duelService *services.DuelService,
	claimService *services.ClaimService,
	badgeService *services.BadgeService,
) {
	// 🔐 Secured routes — require user context from the Gateway
	securedGroup := app.Group("/s", middleware.UserContextMiddleware())

	securedGroup.Get("/profile", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		profile, err := streakService.EnsureProfile(userID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(profile)
	})

	securedGroup.Post("/streak/evaluate", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		profile, err := streakService.EnsureProfile(userID)
		if err != nil {
			return respondError(c, err)
		}

		// "Today" is the server's calendar day, never client-supplied, so
		// a client clock cannot manufacture streak days.
		today := time.Now().UTC().Format("2006-01-02")
		result, err := streakService.Evaluate(profile.ID, today)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(result)
	})

	securedGroup.Post("/challenges", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		profile, err := streakService.EnsureProfile(userID)
		if err != nil {
			return respondError(c, err)
		}

		var req struct {
			OpponentID string `json:"opponent_id"`
			QuizID     string `json:"quiz_id"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
		}

		challenge, err := duelService.CreateChallenge(profile.ID, req.OpponentID, req.QuizID)
		if errors.Is(err, models.ErrDuplicateChallenge) {
			// Retried request: same pending duel, safe outcome, not a failure.
			return c.JSON(fiber.Map{"challenge": challenge, "duplicate": true})
		}
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"challenge": challenge, "duplicate": false})
	})

	securedGroup.Post("/challenges/:id/score", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		profile, err := streakService.EnsureProfile(userID)
		if err != nil {
			return respondError(c, err)
		}

		var req struct {
			Score int64 `json:"score"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
		}

		challenge, err := duelService.SubmitScore(c.Params("id"), profile.ID, req.Score)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(challenge)
	})

	securedGroup.Post("/claimables/:id/claim", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		profile, err := streakService.EnsureProfile(userID)
		if err != nil {
			return respondError(c, err)
		}

		result, err := claimService.Claim(c.Params("id"), profile.ID)
		if errors.Is(err, models.ErrAlreadyClaimed) {
			// Safe outcome of a retried request: the payout already landed.
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error":   "reward already claimed",
				"claimed": true,
			})
		}
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(result)
	})

	securedGroup.Get("/claimables", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		profile, err := streakService.EnsureProfile(userID)
		if err != nil {
			return respondError(c, err)
		}

		var claimables []models.Claimable
		if err := claimService.DB.
			Where("profile_id = ? AND is_claimed = ?", profile.ID, false).
			Order("created_at DESC").
			Find(&claimables).Error; err != nil {
			return respondError(c, err)
		}
		return c.JSON(claimables)
	})

	securedGroup.Get("/badges/evaluate", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		profile, err := streakService.EnsureProfile(userID)
		if err != nil {
			return respondError(c, err)
		}

		newlyMet, err := badgeService.EvaluateForProfile(profile.ID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"newly_met": newlyMet})
	})
}

// respondError maps the core error taxonomy onto HTTP statuses.
func respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrValidation):
		status = fiber.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, models.ErrNotAParticipant), errors.Is(err, models.ErrNotEligible):
		status = fiber.StatusForbidden
	case errors.Is(err, models.ErrChallengeClosed), errors.Is(err, models.ErrAlreadyClaimed),
		errors.Is(err, models.ErrStorageConflict):
		status = fiber.StatusConflict
	case errors.Is(err, models.ErrClock):
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
