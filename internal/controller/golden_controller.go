// FILE: internal/controller/golden_controller.go
package controller

import (
	"regassist-be/internal/dto"
	"regassist-be/internal/pkg/serverutils"
	"regassist-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IGoldenController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Verify(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type goldenController struct {
	goldenService service.IGoldenService
}

func NewGoldenController(goldenService service.IGoldenService) IGoldenController {
	return &goldenController{
		goldenService: goldenService,
	}
}

func (c *goldenController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/golden/v1")
	h.Use(serverutils.JwtMiddleware, serverutils.RequireRole("curator", "admin"))
	h.Post("", c.Create)
	h.Get("", c.List)
	h.Get(":id", c.Show)
	h.Put(":id", c.Update)
	h.Post(":id/verify", c.Verify)
	h.Delete(":id", c.Delete)

	// Curation automation (imports from the review desk) authenticates
	// with the service key instead of a staff token.
	internal := r.Group("/internal/golden/v1")
	internal.Use(serverutils.ServiceKeyMiddleware)
	internal.Post("", c.Create)
	internal.Put(":id", c.Update)
	internal.Post(":id/verify", c.Verify)
}

func (c *goldenController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateGoldenAnswerRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	// Service-key callers have no user id; attribute to the nil curator.
	curatorId := uuid.Nil
	if userIdStr, ok := ctx.Locals("user_id").(string); ok {
		if parsed, err := uuid.Parse(userIdStr); err == nil {
			curatorId = parsed
		}
	}

	res, err := c.goldenService.Create(ctx.Context(), curatorId, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Golden answer created", res))
}

func (c *goldenController) Update(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid golden answer id")
	}

	var req dto.UpdateGoldenAnswerRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.Id = id
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.goldenService.Update(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Golden answer updated", res))
}

func (c *goldenController) Verify(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid golden answer id")
	}

	res, err := c.goldenService.Verify(ctx.Context(), &dto.VerifyGoldenAnswerRequest{Id: id})
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Golden answer verified", res))
}

func (c *goldenController) Show(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid golden answer id")
	}

	res, err := c.goldenService.Show(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *goldenController) List(ctx *fiber.Ctx) error {
	topic := ctx.Query("topic", "")

	res, err := c.goldenService.List(ctx.Context(), topic)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *goldenController) Delete(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid golden answer id")
	}

	if err := c.goldenService.Delete(ctx.Context(), id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Golden answer deleted", nil))
}
