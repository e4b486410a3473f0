// FILE: internal/controller/qa_controller.go
package controller

import (
	"bufio"
	"log"

	"regassist-be/internal/dto"
	"regassist-be/internal/pkg/serverutils"
	"regassist-be/internal/service"
	"regassist-be/pkg/qa/stream"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

type IQAController interface {
	RegisterRoutes(r fiber.Router)
	CreateSession(ctx *fiber.Ctx) error
	GetSessions(ctx *fiber.Ctx) error
	GetHistory(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
	Ask(ctx *fiber.Ctx) error
	AskStream(ctx *fiber.Ctx) error
}

type qaController struct {
	qaService service.IQAService
}

func NewQAController(qaService service.IQAService) IQAController {
	return &qaController{
		qaService: qaService,
	}
}

func (c *qaController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/qa/v1")
	h.Use(serverutils.OptionalJwtMiddleware)
	h.Post("/session", c.CreateSession)
	h.Get("/sessions", c.GetSessions)
	h.Get("/session/:id/history", c.GetHistory)
	h.Delete("/session/:id", c.DeleteSession)
	h.Post("/ask", c.Ask)
	h.Post("/ask/stream", c.AskStream)
}

// resolveClientKey identifies the caller: authenticated staff use their
// user id, anonymous askers supply a stable X-Client-Key so their sessions
// survive across requests.
func resolveClientKey(ctx *fiber.Ctx) (clientKey string, anonymous bool, err error) {
	if userId, ok := ctx.Locals("user_id").(string); ok && userId != "" {
		return userId, false, nil
	}
	key := ctx.Get("X-Client-Key")
	if key == "" {
		return "", true, fiber.NewError(fiber.StatusBadRequest, "missing client identity: provide a bearer token or X-Client-Key header")
	}
	return key, true, nil
}

func (c *qaController) CreateSession(ctx *fiber.Ctx) error {
	clientKey, anonymous, err := resolveClientKey(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateQASessionRequest
	if err := ctx.BodyParser(&req); err != nil && err != fiber.ErrUnprocessableEntity {
		// Empty body is fine; the request has no required fields.
		req = dto.CreateQASessionRequest{}
	}
	req.Anonymous = req.Anonymous || anonymous

	res, err := c.qaService.CreateSession(ctx.Context(), clientKey, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create session", res))
}

func (c *qaController) GetSessions(ctx *fiber.Ctx) error {
	clientKey, _, err := resolveClientKey(ctx)
	if err != nil {
		return err
	}

	res, err := c.qaService.GetAllSessions(ctx.Context(), clientKey)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get sessions", res))
}

func (c *qaController) GetHistory(ctx *fiber.Ctx) error {
	clientKey, _, err := resolveClientKey(ctx)
	if err != nil {
		return err
	}

	sessionId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}

	res, err := c.qaService.GetHistory(ctx.Context(), clientKey, sessionId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get history", res))
}

func (c *qaController) DeleteSession(ctx *fiber.Ctx) error {
	clientKey, _, err := resolveClientKey(ctx)
	if err != nil {
		return err
	}

	sessionId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}

	req := dto.DeleteQASessionRequest{QASessionId: sessionId}
	if err := c.qaService.DeleteSession(ctx.Context(), clientKey, &req); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete session", nil))
}

func (c *qaController) Ask(ctx *fiber.Ctx) error {
	clientKey, _, err := resolveClientKey(ctx)
	if err != nil {
		return err
	}

	var req dto.AskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	req.Stream = false

	res, err := c.qaService.Ask(ctx.Context(), clientKey, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

// AskStream runs the same pipeline with SSE delivery. The pipeline executes
// inside the body stream writer because Fiber only starts streaming after
// the handler returns.
func (c *qaController) AskStream(ctx *fiber.Ctx) error {
	clientKey, _, err := resolveClientKey(ctx)
	if err != nil {
		return err
	}

	var req dto.AskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	req.Stream = true

	ctx.Set(fiber.HeaderContentType, stream.ContentType)
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set(fiber.HeaderConnection, "keep-alive")
	ctx.Set("X-Accel-Buffering", "no")

	userCtx := ctx.UserContext()
	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		writer := newSSEFrameWriter(w)
		resp, err := c.qaService.AskStream(userCtx, clientKey, &req, writer)
		if err != nil {
			// Too late for an HTTP status; surface the failure in-band.
			log.Printf("[QA-STREAM] pipeline error for session %s: %v", req.QASessionId, err)
			_ = writer.WriteChunk(userCtx, 0, "stream failed: "+err.Error())
			_ = writer.WriteDone(userCtx)
			return
		}
		if !resp.Streamed {
			// The pipeline answered without streaming (fallback, failure,
			// or disconnect). If the client is still here, deliver the
			// whole thing in one frame and terminate properly.
			switch {
			case resp.Answer != "":
				_ = writer.WriteChunk(userCtx, 0, resp.Answer)
			case resp.Failed:
				_ = writer.WriteChunk(userCtx, 0, "answer generation failed: "+resp.FailedCause)
			}
			_ = writer.WriteDone(userCtx)
		}
	}))
	return nil
}
