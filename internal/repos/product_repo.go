package repos

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"craftyard/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

// ProductWithArtisan is a product row joined with its owner's display name.
type ProductWithArtisan struct {
	domain.Product
	ArtisanName string `db:"artisan_name" json:"artisanName"`
}

const joinedColumns = `
  p.id, p.artisan_id, p.title, COALESCE(p.description,'') AS description,
  COALESCE(p.category,'') AS category, p.price, COALESCE(p.product_type,'') AS product_type,
  COALESCE(p.active,1) AS active, p.status, p.stock, p.available_quantity,
  p.total_capacity, p.remaining_capacity, p.sold_count,
  p.created_at, COALESCE(p.updated_at,'') AS updated_at,
  COALESCE(a.display_name,'') AS artisan_name`

// Sort keys are whitelisted; anything unknown falls back to newest-first.
var sortClauses = map[string]string{
	"newest":       "p.created_at DESC",
	"price_asc":    "p.price ASC",
	"price_desc":   "p.price DESC",
	"best_sellers": "p.sold_count DESC",
}

// Find runs a predicate as-is; business meaning lives in the predicate builder.
func (r *ProductRepo) Find(pred Predicate, sortKey string, limit, offset int) ([]ProductWithArtisan, error) {
	order, ok := sortClauses[sortKey]
	if !ok {
		order = sortClauses["newest"]
	}
	where := pred.Clause
	if where == "" {
		where = "1=1"
	}
	query := `SELECT ` + joinedColumns + `
	  FROM products p
	  LEFT JOIN artisans a ON a.id = p.artisan_id
	  WHERE ` + where + `
	  ORDER BY ` + order + `
	  LIMIT ? OFFSET ?`
	args := append(append([]any{}, pred.Args...), limit, offset)

	out := []ProductWithArtisan{}
	err := r.db.Select(&out, query, args...)
	return out, err
}

// FindOne returns the single product matching the predicate, or
// ErrNotFoundOrForbidden when nothing matches.
func (r *ProductRepo) FindOne(pred Predicate) (*ProductWithArtisan, error) {
	query := `SELECT ` + joinedColumns + `
	  FROM products p
	  LEFT JOIN artisans a ON a.id = p.artisan_id
	  WHERE ` + pred.Clause + ` LIMIT 1`
	var p ProductWithArtisan
	err := r.db.Get(&p, query, pred.Args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFoundOrForbidden
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepo) FindByID(id string) (*ProductWithArtisan, error) {
	return r.FindOne(ByID(id))
}

// Create assigns the id and timestamps and returns the stored record.
func (r *ProductRepo) Create(p domain.Product) (*domain.Product, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	_, err := r.db.Exec(`
		INSERT INTO products(id, artisan_id, title, description, category, price,
		  product_type, active, status, stock, available_quantity, total_capacity,
		  remaining_capacity, sold_count, created_at)
		VALUES(?,?,?,?,NULLIF(?,''),?,NULLIF(?,''),?,?,?,?,?,?,?,CURRENT_TIMESTAMP)`,
		p.ID, p.ArtisanID, p.Title, p.Description, p.Category, p.Price,
		string(p.ProductType), p.Active, string(p.Status), p.Stock, p.AvailableQuantity,
		p.TotalCapacity, p.RemainingCapacity, p.SoldCount)
	if err != nil {
		return nil, err
	}
	stored, err := r.FindByID(p.ID)
	if err != nil {
		return nil, err
	}
	return &stored.Product, nil
}

const updateInventoryRetries = 3

// UpdateInventory runs the read-mutate-write loop for one product, scoped to its
// owner. The write is conditioned on the full inventory snapshot read at the
// start, so a concurrent writer makes the UPDATE match zero rows and we re-read
// and retry instead of overwriting blindly. Mutation errors abort immediately.
func (r *ProductRepo) UpdateInventory(id, artisanID string, mutate func(domain.Product) (domain.Product, error)) (*domain.Product, error) {
	for attempt := 0; attempt < updateInventoryRetries; attempt++ {
		var p domain.Product
		err := r.db.Get(&p, `
			SELECT id, artisan_id, title, COALESCE(description,'') AS description,
			  COALESCE(category,'') AS category, price, COALESCE(product_type,'') AS product_type,
			  COALESCE(active,1) AS active, status, stock, available_quantity,
			  total_capacity, remaining_capacity, sold_count,
			  created_at, COALESCE(updated_at,'') AS updated_at
			FROM products WHERE id=? AND artisan_id=?`, id, artisanID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFoundOrForbidden
		}
		if err != nil {
			return nil, err
		}

		next, err := mutate(p)
		if err != nil {
			return nil, err
		}

		res, err := r.db.Exec(`
			UPDATE products SET
			  stock=?, available_quantity=?, total_capacity=?, remaining_capacity=?,
			  sold_count=?, status=?, updated_at=CURRENT_TIMESTAMP
			WHERE id=? AND artisan_id=?
			  AND COALESCE(stock,-1)=COALESCE(?,-1)
			  AND COALESCE(available_quantity,-1)=COALESCE(?,-1)
			  AND COALESCE(total_capacity,-1)=COALESCE(?,-1)
			  AND COALESCE(remaining_capacity,-1)=COALESCE(?,-1)
			  AND sold_count=?`,
			next.Stock, next.AvailableQuantity, next.TotalCapacity, next.RemainingCapacity,
			next.SoldCount, string(next.Status),
			id, artisanID,
			p.Stock, p.AvailableQuantity, p.TotalCapacity, p.RemainingCapacity,
			p.SoldCount)
		if err != nil {
			return nil, err
		}
		if n, _ := res.RowsAffected(); n == 1 {
			stored, err := r.FindByID(id)
			if err != nil {
				return nil, err
			}
			return &stored.Product, nil
		}
		// snapshot went stale under us; loop re-reads
	}
	return nil, domain.ErrConflictRetryExhausted
}

// DetailsUpdate carries non-inventory field changes; nil means leave as is.
type DetailsUpdate struct {
	Title       *string
	Description *string
	Category    *string
	Price       *float64
}

func (r *ProductRepo) UpdateDetails(id, artisanID string, d DetailsUpdate) (*domain.Product, error) {
	sets := []string{"updated_at=CURRENT_TIMESTAMP"}
	args := []any{}
	if d.Title != nil {
		sets = append(sets, "title=?")
		args = append(args, *d.Title)
	}
	if d.Description != nil {
		sets = append(sets, "description=?")
		args = append(args, *d.Description)
	}
	if d.Category != nil {
		// empty string clears the category; the FK only admits NULL or a real id
		sets = append(sets, "category=NULLIF(?,'')")
		args = append(args, *d.Category)
	}
	if d.Price != nil {
		sets = append(sets, "price=?")
		args = append(args, *d.Price)
	}
	args = append(args, id, artisanID)

	res, err := r.db.Exec(`UPDATE products SET `+strings.Join(sets, ", ")+` WHERE id=? AND artisan_id=?`, args...)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, domain.ErrNotFoundOrForbidden
	}
	stored, err := r.FindByID(id)
	if err != nil {
		return nil, err
	}
	return &stored.Product, nil
}

// Deactivate is the soft delete; rows are never physically removed here.
func (r *ProductRepo) Deactivate(id, artisanID string) error {
	res, err := r.db.Exec(`UPDATE products SET active=0, updated_at=CURRENT_TIMESTAMP WHERE id=? AND artisan_id=?`, id, artisanID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFoundOrForbidden
	}
	return nil
}
