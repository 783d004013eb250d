package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/dto"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/pkg/serverutils"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/service"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/retrieval"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	Index(ctx *fiber.Ctx) error
	PreviewChunks(ctx *fiber.Ctx) error
	ListChunks(ctx *fiber.Ctx) error
	Retrieve(ctx *fiber.Ctx) error
}

type documentController struct {
	indexingService  service.IIndexingService
	retrievalService service.IRetrievalService
}

func NewDocumentController(indexingService service.IIndexingService, retrievalService service.IRetrievalService) IDocumentController {
	return &documentController{
		indexingService:  indexingService,
		retrievalService: retrievalService,
	}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/document/v1")
	h.Post(":id/index", c.Index)
	h.Post(":id/chunks/preview", c.PreviewChunks)
	h.Get(":id/chunks", c.ListChunks)
	h.Post(":id/retrieve", c.Retrieve)
}

func documentIdParam(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid document id")
	}
	return id, nil
}

func (c *documentController) Index(ctx *fiber.Ctx) error {
	documentId, err := documentIdParam(ctx)
	if err != nil {
		return err
	}

	var req dto.IndexDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.indexingService.Enqueue(ctx.Context(), documentId, &req)
	if err != nil {
		return err
	}

	body := serverutils.SuccessResponse("Document queued for indexing", res)
	body.Code = fiber.StatusAccepted
	return ctx.Status(fiber.StatusAccepted).JSON(body)
}

// PreviewChunks runs the chunking pipeline on the body without storing it.
// The id only scopes the route.
func (c *documentController) PreviewChunks(ctx *fiber.Ctx) error {
	if _, err := documentIdParam(ctx); err != nil {
		return err
	}

	var req dto.PreviewChunksRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.indexingService.Preview(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success preview chunks", res))
}

func (c *documentController) ListChunks(ctx *fiber.Ctx) error {
	documentId, err := documentIdParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.indexingService.ListChunks(ctx.Context(), documentId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get chunks", res))
}

func (c *documentController) Retrieve(ctx *fiber.Ctx) error {
	documentId, err := documentIdParam(ctx)
	if err != nil {
		return err
	}

	var req dto.RetrieveRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.retrievalService.Retrieve(ctx.UserContext(), documentId, &req)
	if errors.Is(err, retrieval.ErrEmptyQuery) {
		return fiber.NewError(fiber.StatusBadRequest, "Query must not be empty")
	}
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success retrieve content", res))
}
