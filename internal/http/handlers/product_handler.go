package handlers

import (
	"github.com/gofiber/fiber/v2"

	"craftyard/internal/domain"
	applog "craftyard/internal/log"
	"craftyard/internal/repos"
	"craftyard/internal/services"
	"craftyard/internal/validate"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

type createProductRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	ProductType string  `json:"productType"`
	Quantity    float64 `json:"quantity"`
	Status      string  `json:"status"`
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var req createProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "bad_request", "malformed body")
	}
	title, okTitle := validate.Title(req.Title)
	if !okTitle {
		return badRequest(c, "bad_request", "title is required (max 120 chars)")
	}
	if req.Price < 0 {
		return badRequest(c, "bad_request", "price must be non-negative")
	}
	pt, known := domain.ParseProductType(req.ProductType)
	if !known {
		return badRequest(c, "bad_request", "unknown product type")
	}
	qty, err := domain.ValidateQuantity(req.Quantity, "quantity")
	if err != nil {
		return fail(c, err)
	}
	var status domain.Status
	switch req.Status {
	case "":
	case string(domain.StatusActive), string(domain.StatusOutOfStock):
		status = domain.Status(req.Status)
	default:
		return badRequest(c, "bad_request", "unknown status")
	}

	p, err := h.Catalog.Create(artisanID(c), services.CreateProduct{
		Title:       title,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		ProductType: pt,
		Quantity:    qty,
		Status:      status,
	})
	if err != nil {
		applog.Error(c, "product.create.error", err, nil)
		return fail(c, err)
	}
	applog.Audit(c, "product.create", map[string]any{"product": p.ID})
	return ok(c, fiber.Map{"data": p})
}

type updateDetailsRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Price       *float64 `json:"price"`
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, okID := validate.ID(c.Params("id"))
	if !okID {
		return badRequest(c, "bad_request", "invalid product id")
	}
	var req updateDetailsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "bad_request", "malformed body")
	}
	if req.Price != nil && *req.Price < 0 {
		return badRequest(c, "bad_request", "price must be non-negative")
	}
	if req.Title != nil {
		title, okTitle := validate.Title(*req.Title)
		if !okTitle {
			return badRequest(c, "bad_request", "title is required (max 120 chars)")
		}
		req.Title = &title
	}

	p, err := h.Catalog.UpdateDetails(id, artisanID(c), repos.DetailsUpdate{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
	})
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "product.update", map[string]any{"product": id})
	return ok(c, fiber.Map{"data": p})
}

func (h *ProductHandler) Deactivate(c *fiber.Ctx) error {
	id, okID := validate.ID(c.Params("id"))
	if !okID {
		return badRequest(c, "bad_request", "invalid product id")
	}
	if err := h.Catalog.Deactivate(id, artisanID(c)); err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "product.deactivate", map[string]any{"product": id})
	return ok(c, nil)
}

type inventoryFieldsRequest struct {
	Stock             *float64 `json:"stock"`
	AvailableQuantity *float64 `json:"availableQuantity"`
	TotalCapacity     *float64 `json:"totalCapacity"`
	RemainingCapacity *float64 `json:"remainingCapacity"`
}

// SetInventory is the full-field inventory write (PUT .../inventory).
func (h *ProductHandler) SetInventory(c *fiber.Ctx) error {
	id, okID := validate.ID(c.Params("id"))
	if !okID {
		return badRequest(c, "bad_request", "invalid product id")
	}
	var req inventoryFieldsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "bad_request", "malformed body")
	}

	u := domain.InventoryUpdate{}
	fields := []struct {
		name string
		in   *float64
		out  **int64
	}{
		{"stock", req.Stock, &u.Stock},
		{"availableQuantity", req.AvailableQuantity, &u.AvailableQuantity},
		{"totalCapacity", req.TotalCapacity, &u.TotalCapacity},
		{"remainingCapacity", req.RemainingCapacity, &u.RemainingCapacity},
	}
	supplied := false
	for _, f := range fields {
		if f.in == nil {
			continue
		}
		v, err := domain.ValidateQuantity(*f.in, f.name)
		if err != nil {
			return fail(c, err)
		}
		*f.out = &v
		supplied = true
	}
	if !supplied {
		return badRequest(c, "bad_request", "no inventory fields supplied")
	}

	p, err := h.Catalog.UpdateInventoryFields(id, artisanID(c), u)
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "inventory.update", map[string]any{"product": id})
	return ok(c, fiber.Map{"data": p})
}

type quantityRequest struct {
	Quantity *float64 `json:"quantity"`
}

// SetQuantity is the "set" shorthand (PATCH .../quantity).
func (h *ProductHandler) SetQuantity(c *fiber.Ctx) error {
	return h.applyQuantity(c, "inventory.set", h.Catalog.SetQuantity)
}

// Reduce is the sale-time decrement (POST .../reduce).
func (h *ProductHandler) Reduce(c *fiber.Ctx) error {
	return h.applyQuantity(c, "inventory.reduce", h.Catalog.Reduce)
}

func (h *ProductHandler) applyQuantity(c *fiber.Ctx, action string, op func(id, artisanID string, q int64) (*domain.Product, error)) error {
	id, okID := validate.ID(c.Params("id"))
	if !okID {
		return badRequest(c, "bad_request", "invalid product id")
	}
	var req quantityRequest
	if err := c.BodyParser(&req); err != nil || req.Quantity == nil {
		return badRequest(c, "bad_request", "quantity is required")
	}
	qty, err := domain.ValidateQuantity(*req.Quantity, "quantity")
	if err != nil {
		return fail(c, err)
	}

	p, err := op(id, artisanID(c), qty)
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, action, map[string]any{"product": id, "quantity": qty})
	return ok(c, fiber.Map{"data": p})
}

type stockRequest struct {
	Stock *float64 `json:"stock"`
}

// SetStock writes the stock field unconditionally (PUT .../stock).
func (h *ProductHandler) SetStock(c *fiber.Ctx) error {
	id, okID := validate.ID(c.Params("id"))
	if !okID {
		return badRequest(c, "bad_request", "invalid product id")
	}
	var req stockRequest
	if err := c.BodyParser(&req); err != nil || req.Stock == nil {
		return badRequest(c, "bad_request", "stock is required")
	}
	qty, err := domain.ValidateQuantity(*req.Stock, "stock")
	if err != nil {
		return fail(c, err)
	}

	p, err := h.Catalog.SetStock(id, artisanID(c), qty)
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "inventory.stock.set", map[string]any{"product": id, "stock": qty})
	return ok(c, fiber.Map{"data": p})
}
