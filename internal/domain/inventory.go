package domain

import "math"

// Inventory rules are pure functions over Product: no I/O, no clock.
// The repo layer persists whatever these return; handlers map their errors.

// InventoryField names the authoritative inventory column for a type.
func InventoryField(t ProductType) string {
	switch t {
	case TypeReadyToShip:
		return "stock"
	case TypeMadeToOrder:
		return "remaining_capacity"
	case TypeScheduledOrder:
		return "available_quantity"
	default:
		return "available_quantity"
	}
}

// CurrentLevel reads the type-appropriate inventory level.
// Legacy rows use availableQuantity when present, else stock, else 0.
func CurrentLevel(p Product) int64 {
	switch p.ProductType {
	case TypeReadyToShip:
		return deref(p.Stock)
	case TypeMadeToOrder:
		return deref(p.RemainingCapacity)
	case TypeScheduledOrder:
		return deref(p.AvailableQuantity)
	default:
		if p.AvailableQuantity != nil {
			return *p.AvailableQuantity
		}
		return deref(p.Stock)
	}
}

func HasInventory(p Product) bool { return CurrentLevel(p) > 0 }

func DeriveStatus(p Product) Status {
	if HasInventory(p) {
		return StatusActive
	}
	return StatusOutOfStock
}

// ValidateQuantity rejects fractional, negative, non-finite, and
// int64-overflowing values before anything is read or written. No silent clamping.
func ValidateQuantity(v float64, field string) (int64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v >= 1<<63 || v != math.Trunc(v) {
		return 0, &InvalidQuantityError{Field: field, Value: v}
	}
	return int64(v), nil
}

// ApplySet implements the quantity "set" shorthand.
// Ready-to-ship writes stock and mirrors availableQuantity for legacy readers.
// Made-to-order treats q as the new total capacity and preserves units already
// consumed: remaining' = max(0, q - used).
func ApplySet(p Product, q int64) Product {
	switch p.ProductType {
	case TypeReadyToShip:
		p.Stock = int64Ptr(q)
		p.AvailableQuantity = int64Ptr(q)
	case TypeMadeToOrder:
		used := deref(p.TotalCapacity) - deref(p.RemainingCapacity)
		remaining := q - used
		if remaining < 0 {
			remaining = 0
		}
		p.TotalCapacity = int64Ptr(q)
		p.RemainingCapacity = int64Ptr(remaining)
	case TypeScheduledOrder:
		p.AvailableQuantity = int64Ptr(q)
	default:
		p.AvailableQuantity = int64Ptr(q)
	}
	p.Status = DeriveStatus(p)
	return p
}

// ApplyStockSet writes the stock field unconditionally, regardless of type,
// keeping the availableQuantity mirror in lockstep.
func ApplyStockSet(p Product, q int64) Product {
	p.Stock = int64Ptr(q)
	p.AvailableQuantity = int64Ptr(q)
	p.Status = DeriveStatus(p)
	return p
}

// InventoryUpdate is a full-field inventory write; nil fields are left alone.
type InventoryUpdate struct {
	Stock             *int64
	AvailableQuantity *int64
	TotalCapacity     *int64
	RemainingCapacity *int64
}

// ApplyInventoryUpdate merges explicit field values into the product.
// remainingCapacity may never end up above totalCapacity; for ready-to-ship,
// stock and availableQuantity stay mirrored whichever of the two was supplied.
func ApplyInventoryUpdate(p Product, u InventoryUpdate) (Product, error) {
	if u.Stock != nil {
		p.Stock = u.Stock
	}
	if u.AvailableQuantity != nil {
		p.AvailableQuantity = u.AvailableQuantity
	}
	if u.TotalCapacity != nil {
		p.TotalCapacity = u.TotalCapacity
	}
	if u.RemainingCapacity != nil {
		p.RemainingCapacity = u.RemainingCapacity
	}

	if p.TotalCapacity != nil && p.RemainingCapacity != nil && *p.RemainingCapacity > *p.TotalCapacity {
		return Product{}, &CapacityError{Total: *p.TotalCapacity, Remaining: *p.RemainingCapacity}
	}

	if p.ProductType == TypeReadyToShip {
		switch {
		case u.Stock != nil:
			p.AvailableQuantity = int64Ptr(*u.Stock)
		case u.AvailableQuantity != nil:
			p.Stock = int64Ptr(*u.AvailableQuantity)
		}
	}

	p.Status = DeriveStatus(p)
	return p, nil
}

// ApplyReduce is the sale-time decrement. It fails atomically when q exceeds
// the current level, reporting what was available; on success it decrements
// the authoritative field, bumps soldCount by q, and rederives status.
func ApplyReduce(p Product, q int64) (Product, error) {
	level := CurrentLevel(p)
	if q > level {
		return Product{}, &InsufficientInventoryError{Requested: q, Available: level}
	}

	next := level - q
	switch p.ProductType {
	case TypeReadyToShip:
		p.Stock = int64Ptr(next)
		p.AvailableQuantity = int64Ptr(next)
	case TypeMadeToOrder:
		p.RemainingCapacity = int64Ptr(next)
	case TypeScheduledOrder:
		p.AvailableQuantity = int64Ptr(next)
	default:
		if p.AvailableQuantity != nil {
			p.AvailableQuantity = int64Ptr(next)
		} else {
			p.Stock = int64Ptr(next)
		}
	}
	p.SoldCount += q
	p.Status = DeriveStatus(p)
	return p, nil
}
