package domain

// ProductType says how a product is fulfilled. Exactly one inventory field is
// authoritative per type; TypeLegacy covers rows created before the type column
// existed and falls back to whichever inventory field is present.
type ProductType string

const (
	TypeReadyToShip    ProductType = "ready_to_ship"
	TypeMadeToOrder    ProductType = "made_to_order"
	TypeScheduledOrder ProductType = "scheduled_order"
	TypeLegacy         ProductType = ""
)

// ParseProductType maps a request value onto a known type.
// Empty input is legacy; anything else unknown is rejected by the caller.
func ParseProductType(s string) (ProductType, bool) {
	switch ProductType(s) {
	case TypeReadyToShip, TypeMadeToOrder, TypeScheduledOrder, TypeLegacy:
		return ProductType(s), true
	}
	return TypeLegacy, false
}

// Status is derived from inventory, never set independently
// (the one exception: an explicit override on creation).
type Status string

const (
	StatusActive     Status = "active"
	StatusOutOfStock Status = "out_of_stock"
)

type Product struct {
	ID          string      `db:"id" json:"id"`
	ArtisanID   string      `db:"artisan_id" json:"artisanId"`
	Title       string      `db:"title" json:"title"`
	Description string      `db:"description" json:"description"`
	Category    string      `db:"category" json:"category"`
	Price       float64     `db:"price" json:"price"`
	ProductType ProductType `db:"product_type" json:"productType"`
	Active      bool        `db:"active" json:"isActive"`
	Status      Status      `db:"status" json:"status"`

	// Inventory columns are nullable: only the type-appropriate ones are set.
	Stock             *int64 `db:"stock" json:"stock,omitempty"`
	AvailableQuantity *int64 `db:"available_quantity" json:"availableQuantity,omitempty"`
	TotalCapacity     *int64 `db:"total_capacity" json:"totalCapacity,omitempty"`
	RemainingCapacity *int64 `db:"remaining_capacity" json:"remainingCapacity,omitempty"`

	SoldCount int64  `db:"sold_count" json:"soldCount"`
	CreatedAt string `db:"created_at" json:"createdAt"`
	UpdatedAt string `db:"updated_at" json:"updatedAt"`
}

type Artisan struct {
	ID          string `db:"id" json:"id"`
	Email       string `db:"email" json:"email"`
	DisplayName string `db:"display_name" json:"displayName"`
	Hash        string `db:"password_hash" json:"-"`
}

type Category struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

func int64Ptr(v int64) *int64 { return &v }

func deref(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}
