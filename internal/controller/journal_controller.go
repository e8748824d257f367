package controller

import (
	"bufio"
	"context"

	"ai-journaling-be/internal/dto"
	"ai-journaling-be/internal/pkg/serverutils"
	"ai-journaling-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

type IJournalController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Save(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	UpdateTitle(ctx *fiber.Ctx) error
	UpdateWriteContent(ctx *fiber.Ctx) error
	AskAI(ctx *fiber.Ctx) error
	AskAIStream(ctx *fiber.Ctx) error
}

type journalController struct {
	journalService service.IJournalService
}

func NewJournalController(journalService service.IJournalService) IJournalController {
	return &journalController{
		journalService: journalService,
	}
}

func (c *journalController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/journals")
	h.Get("", c.List)
	h.Post("", c.Save)
	h.Put("/title", c.UpdateTitle)
	h.Put("/write-content", c.UpdateWriteContent)
	h.Post("/ask-ai", c.AskAI)
	h.Post("/ask-ai/stream", c.AskAIStream)
	h.Get("/:id", c.Show)
	h.Delete("/:id", c.Delete)
}

func (c *journalController) List(ctx *fiber.Ctx) error {
	limit := ctx.QueryInt("limit", 20)
	offset := ctx.QueryInt("offset", 0)

	res, err := c.journalService.List(ctx.Context(), limit, offset)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list journals", res))
}

func (c *journalController) Save(ctx *fiber.Ctx) error {
	var req dto.SaveJournalRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.journalService.SaveJournal(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success save journal", res))
}

func (c *journalController) Show(ctx *fiber.Ctx) error {
	res, err := c.journalService.Get(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show journal", res))
}

func (c *journalController) Delete(ctx *fiber.Ctx) error {
	res, err := c.journalService.Delete(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete journal", res))
}

func (c *journalController) UpdateTitle(ctx *fiber.Ctx) error {
	var req dto.UpdateJournalTitleRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.journalService.UpdateTitle(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update title", res))
}

func (c *journalController) UpdateWriteContent(ctx *fiber.Ctx) error {
	var req dto.UpdateWriteContentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.journalService.UpdateWriteContent(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update write content", res))
}

func (c *journalController) AskAI(ctx *fiber.Ctx) error {
	var req dto.AskAIRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.journalService.AskAI(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success ask ai", res))
}

func (c *journalController) AskAIStream(ctx *fiber.Ctx) error {
	var req dto.AskAIRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, "text/event-stream")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set(fiber.HeaderConnection, "keep-alive")
	ctx.Set("X-Accel-Buffering", "no")

	journalService := c.journalService
	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		_ = journalService.AskAIStream(context.Background(), &req, sseEmitter(w))
	}))

	return nil
}
