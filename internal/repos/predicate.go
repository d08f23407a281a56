package repos

import "craftyard/internal/domain"

// Predicate is a parameterized WHERE fragment. Clauses are always combined with
// explicit parentheses so OR-groups inside either side keep their precedence.
type Predicate struct {
	Clause string
	Args   []any
}

// InventoryFilter is the single source of truth for "purchasable right now" at
// query time. It must stay in lockstep with domain.HasInventory: active not
// explicitly false, and the type-appropriate inventory field positive (legacy
// rows match on either availableQuantity or stock).
func InventoryFilter() Predicate {
	return Predicate{
		Clause: `COALESCE(p.active, 1) = 1 AND (
			(p.product_type = ? AND COALESCE(p.stock, 0) > 0)
			OR (p.product_type = ? AND COALESCE(p.remaining_capacity, 0) > 0)
			OR (p.product_type = ? AND COALESCE(p.available_quantity, 0) > 0)
			OR ((p.product_type IS NULL OR p.product_type = '')
				AND (COALESCE(p.available_quantity, 0) > 0 OR COALESCE(p.stock, 0) > 0))
		)`,
		Args: []any{
			string(domain.TypeReadyToShip),
			string(domain.TypeMadeToOrder),
			string(domain.TypeScheduledOrder),
		},
	}
}

// Merge ANDs two predicates. Both sides are wrapped in their own parens: an
// OR-group in either operand must not flatten into the other.
func Merge(a, b Predicate) Predicate {
	if a.Clause == "" {
		return b
	}
	if b.Clause == "" {
		return a
	}
	args := make([]any, 0, len(a.Args)+len(b.Args))
	args = append(args, a.Args...)
	args = append(args, b.Args...)
	return Predicate{Clause: "(" + a.Clause + ") AND (" + b.Clause + ")", Args: args}
}

// SearchFilters are the caller-supplied catalog filters.
type SearchFilters struct {
	Query       string
	Category    string
	ProductType string
	PriceMin    float64
	PriceMax    float64
}

// FiltersPredicate turns caller filters into one predicate. Empty filters
// yield an empty predicate, which Merge treats as neutral.
func FiltersPredicate(f SearchFilters) Predicate {
	pred := Predicate{}
	and := func(clause string, args ...any) {
		pred = Merge(pred, Predicate{Clause: clause, Args: args})
	}
	if f.Query != "" {
		like := "%" + f.Query + "%"
		and(`LOWER(p.title) LIKE ? OR LOWER(p.description) LIKE ?`, like, like)
	}
	if f.Category != "" {
		and(`p.category = ?`, f.Category)
	}
	if f.ProductType != "" {
		and(`p.product_type = ?`, f.ProductType)
	}
	if f.PriceMin > 0 {
		and(`p.price >= ?`, f.PriceMin)
	}
	if f.PriceMax > 0 {
		and(`p.price <= ?`, f.PriceMax)
	}
	return pred
}

// ByID scopes a predicate to one product.
func ByID(id string) Predicate {
	return Predicate{Clause: `p.id = ?`, Args: []any{id}}
}
