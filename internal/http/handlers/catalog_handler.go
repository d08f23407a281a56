package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "craftyard/internal/log"
	"craftyard/internal/repos"
	"craftyard/internal/services"
	"craftyard/internal/validate"
)

type CatalogHandler struct {
	Catalog *services.CatalogService
}

// Search serves the cached read path. Results are near-real-time: a page may
// lag inventory mutations by up to the cache TTL.
func (h *CatalogHandler) Search(c *fiber.Ctx) error {
	q := strings.TrimSpace(c.Query("q"))
	if q != "" {
		valid, okQ := validate.Q(q)
		if !okQ {
			applog.Security(c, "validation.fail", map[string]any{"field": "q"})
			return badRequest(c, "bad_request", "enter a valid keyword (letters/numbers only)")
		}
		q = valid
	}

	filters := repos.SearchFilters{}
	if category := strings.TrimSpace(c.Query("category")); category != "" {
		if _, okID := validate.ID(category); !okID {
			applog.Security(c, "validation.fail", map[string]any{"field": "category"})
			return badRequest(c, "bad_request", "invalid category")
		}
		filters.Category = category
	}
	if pt := strings.TrimSpace(c.Query("type")); pt != "" {
		if _, okT := validate.ProductType(pt); !okT {
			applog.Security(c, "validation.fail", map[string]any{"field": "type"})
			return badRequest(c, "bad_request", "invalid product type")
		}
		filters.ProductType = pt
	}
	filters.PriceMin = c.QueryFloat("price_min")
	filters.PriceMax = c.QueryFloat("price_max")

	page, err := h.Catalog.Search(q, filters, c.Query("sort"), c.QueryInt("page", 1), c.QueryInt("page_size", 20))
	if err != nil {
		applog.Error(c, "search.error", err, nil)
		return fail(c, err)
	}
	return ok(c, fiber.Map{"products": page.Products, "count": page.Count})
}

// Detail bypasses the cache and hides products that are not purchasable.
func (h *CatalogHandler) Detail(c *fiber.Ctx) error {
	id, okID := validate.ID(c.Params("id"))
	if !okID {
		return badRequest(c, "bad_request", "invalid product id")
	}
	p, err := h.Catalog.GetByID(id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"data": p})
}

func (h *CatalogHandler) Categories(c *fiber.Ctx) error {
	cats, err := h.Catalog.Categories()
	if err != nil {
		applog.Error(c, "categories.error", err, nil)
		return fail(c, err)
	}
	return ok(c, fiber.Map{"data": cats})
}
