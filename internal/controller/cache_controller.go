package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/dto"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/pkg/serverutils"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/service"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/cache"
)

type ICacheController interface {
	RegisterRoutes(r fiber.Router)
	Stats(ctx *fiber.Ctx) error
	ClearStats(ctx *fiber.Ctx) error
	Invalidate(ctx *fiber.Ctx) error
	Peek(ctx *fiber.Ctx) error
}

type cacheController struct {
	service service.ICacheService
}

func NewCacheController(service service.ICacheService) ICacheController {
	return &cacheController{service: service}
}

func (c *cacheController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/cache/v1")
	h.Get("stats", c.Stats)
	h.Delete("stats", c.ClearStats)
	h.Post("invalidate", c.Invalidate)
	h.Get("entries", c.Peek)
}

func (c *cacheController) Stats(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get cache stats", c.service.Stats(ctx.Context())))
}

func (c *cacheController) ClearStats(ctx *fiber.Ctx) error {
	c.service.ClearStats(ctx.Context())
	return ctx.JSON(serverutils.SuccessResponse[any]("Success clear cache stats", nil))
}

func (c *cacheController) Invalidate(ctx *fiber.Ctx) error {
	var req dto.InvalidateCacheRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Invalidate(ctx.Context(), &req)
	if errors.Is(err, cache.ErrUnknownLayer) {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success invalidate cache", res))
}

// Peek reads raw entries of one layer: /cache/v1/entries?layer=retrieval&key=a&key=b
func (c *cacheController) Peek(ctx *fiber.Ctx) error {
	var req dto.PeekCacheRequest
	if err := ctx.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get cache entries", c.service.Peek(ctx.Context(), &req)))
}
