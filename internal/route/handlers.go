package route

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// DefaultPageSize bounds listings when the caller does not ask for a
// specific page size.
const DefaultPageSize = 10

// ThumbnailFn renders the SVG path for one saved route. Injected to
// keep the projector out of the persistence layer.
type ThumbnailFn func(ctx context.Context, r SavedRoute) (string, error)

func RegisterRoutes(r fiber.Router, svc *Service, thumbnail ThumbnailFn, authMiddleware fiber.Handler) {
	r.Get("/", func(c *fiber.Ctx) error {
		pageSize, err := strconv.Atoi(c.Query("page_size", strconv.Itoa(DefaultPageSize)))
		if err != nil || pageSize < 1 {
			return fiber.NewError(fiber.StatusBadRequest, "page_size must be a positive integer")
		}
		routes, err := svc.List(c.Context(), pageSize)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if routes == nil {
			routes = []SavedRoute{}
		}
		return c.JSON(routes)
	})

	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		var req Data
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if req.Title == "" || len(req.Points) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "title and points required")
		}
		req.UserID, _ = c.Locals("user_id").(string)
		saved, err := svc.Create(c.Context(), req)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(saved)
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		saved, err := svc.Get(c.Context(), c.Params("id"))
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "route not found")
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(saved)
	})

	r.Put("/:id", authMiddleware, func(c *fiber.Ctx) error {
		var req Data
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		userID, _ := c.Locals("user_id").(string)
		err := svc.Update(c.Context(), c.Params("id"), userID, req)
		switch {
		case errors.Is(err, ErrNotFound):
			return fiber.NewError(fiber.StatusNotFound, "route not found")
		case errors.Is(err, ErrUnauthorized):
			return fiber.NewError(fiber.StatusForbidden, "not the route owner")
		case err != nil:
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Delete("/:id", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		err := svc.Delete(c.Context(), c.Params("id"), userID)
		switch {
		case errors.Is(err, ErrNotFound):
			return fiber.NewError(fiber.StatusNotFound, "route not found")
		case errors.Is(err, ErrUnauthorized):
			return fiber.NewError(fiber.StatusForbidden, "not the route owner")
		case err != nil:
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Get("/:id/thumbnail", func(c *fiber.Ctx) error {
		saved, err := svc.Get(c.Context(), c.Params("id"))
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "route not found")
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		path, err := thumbnail(c.Context(), saved)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"path": path})
	})
}
