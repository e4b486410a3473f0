// FILE: internal/controller/feedback_controller.go
package controller

import (
	"regassist-be/internal/dto"
	"regassist-be/internal/pkg/serverutils"
	"regassist-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IFeedbackController interface {
	RegisterRoutes(r fiber.Router)
	Submit(ctx *fiber.Ctx) error
	GetOptions(ctx *fiber.Ctx) error
	ListByResponse(ctx *fiber.Ctx) error
}

type feedbackController struct {
	feedbackService service.IFeedbackService
}

func NewFeedbackController(feedbackService service.IFeedbackService) IFeedbackController {
	return &feedbackController{
		feedbackService: feedbackService,
	}
}

func (c *feedbackController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/qa/v1/feedback")
	h.Use(serverutils.OptionalJwtMiddleware)
	h.Post("", c.Submit)
	h.Get("/options/:responseId", c.GetOptions)
	// Reviewers inspect what was submitted against an answer.
	h.Get("/response/:responseId", serverutils.JwtMiddleware, serverutils.RequireRole("reviewer", "curator", "admin"), c.ListByResponse)
}

func (c *feedbackController) Submit(ctx *fiber.Ctx) error {
	var req dto.SubmitFeedbackRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	// Identity comes from the token, not the body.
	if _, ok := ctx.Locals("user_id").(string); !ok {
		req.Anonymous = true
	}

	res, err := c.feedbackService.Submit(ctx.Context(), &req)
	if err != nil {
		return err
	}
	if !res.Accepted {
		// Trust-gate rejection is a policy outcome, not a client error.
		return ctx.JSON(serverutils.SuccessResponse("Feedback rejected", res))
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Feedback recorded", res))
}

func (c *feedbackController) GetOptions(ctx *fiber.Ctx) error {
	responseId := ctx.Params("responseId")
	_, authed := ctx.Locals("user_id").(string)

	res, err := c.feedbackService.GetOptions(ctx.Context(), responseId, !authed)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *feedbackController) ListByResponse(ctx *fiber.Ctx) error {
	responseId := ctx.Params("responseId")

	res, err := c.feedbackService.ListByResponse(ctx.Context(), responseId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}
