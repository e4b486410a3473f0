// FILE: internal/controller/auth_controller.go
package controller

import (
	"regassist-be/internal/dto"
	"regassist-be/internal/pkg/serverutils"
	"regassist-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IAuthController interface {
	RegisterRoutes(r fiber.Router)
	Login(ctx *fiber.Ctx) error
	Me(ctx *fiber.Ctx) error
	CreateStaff(ctx *fiber.Ctx) error
	ListStaff(ctx *fiber.Ctx) error
	SetStaffStatus(ctx *fiber.Ctx) error
	ChangePassword(ctx *fiber.Ctx) error
}

type authController struct {
	service service.IAuthService
}

func NewAuthController(service service.IAuthService) IAuthController {
	return &authController{service: service}
}

func (c *authController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/auth")
	h.Post("/login", c.Login)
	h.Get("/me", serverutils.JwtMiddleware, c.Me)
	h.Post("/change-password", serverutils.JwtMiddleware, c.ChangePassword)
	h.Post("/staff", serverutils.JwtMiddleware, serverutils.RequireRole("admin"), c.CreateStaff)
	h.Get("/staff", serverutils.JwtMiddleware, serverutils.RequireRole("admin"), c.ListStaff)
	h.Patch("/staff/:id/status", serverutils.JwtMiddleware, serverutils.RequireRole("admin"), c.SetStaffStatus)
}

func (c *authController) Login(ctx *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Login(ctx.Context(), &req)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Login successful", res))
}

func (c *authController) Me(ctx *fiber.Ctx) error {
	userIdStr, _ := ctx.Locals("user_id").(string)
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid token subject")
	}

	res, err := c.service.Me(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *authController) CreateStaff(ctx *fiber.Ctx) error {
	var req dto.CreateStaffRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.CreateStaff(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Staff account created", res))
}

func (c *authController) ListStaff(ctx *fiber.Ctx) error {
	role := ctx.Query("role")
	activeOnly := ctx.QueryBool("active", false)

	res, err := c.service.ListStaff(ctx.Context(), role, activeOnly)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *authController) SetStaffStatus(ctx *fiber.Ctx) error {
	callerIdStr, _ := ctx.Locals("user_id").(string)
	callerId, err := uuid.Parse(callerIdStr)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid token subject")
	}

	targetId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid staff id")
	}
	if targetId == callerId {
		return fiber.NewError(fiber.StatusBadRequest, "cannot change the status of your own account")
	}

	var req dto.UpdateStaffStatusRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.service.SetStaffStatus(ctx.Context(), callerId, targetId, req.Status); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Staff status updated", nil))
}

func (c *authController) ChangePassword(ctx *fiber.Ctx) error {
	userIdStr, _ := ctx.Locals("user_id").(string)
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid token subject")
	}

	var req dto.ChangePasswordRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.service.ChangePassword(ctx.Context(), userId, &req); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Password changed", nil))
}
