package repos_test

import (
	"errors"
	"sync"
	"testing"

	"craftyard/internal/domain"
	"craftyard/internal/repos"
)

func TestUpdateInventoryOwnershipScope(t *testing.T) {
	db := testDB(t)
	repo := repos.NewProductRepo(db)

	noop := func(p domain.Product) (domain.Product, error) { return p, nil }

	// wrong owner and missing id look identical
	if _, err := repo.UpdateInventory("prd-sourdough", "art-otis", noop); !errors.Is(err, domain.ErrNotFoundOrForbidden) {
		t.Fatalf("foreign product: want ErrNotFoundOrForbidden, got %v", err)
	}
	if _, err := repo.UpdateInventory("no-such-id", "art-mara", noop); !errors.Is(err, domain.ErrNotFoundOrForbidden) {
		t.Fatalf("missing product: want ErrNotFoundOrForbidden, got %v", err)
	}

	// right owner goes through
	p, err := repo.UpdateInventory("prd-sourdough", "art-mara", func(p domain.Product) (domain.Product, error) {
		return domain.ApplySet(p, 20), nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if *p.Stock != 20 || *p.AvailableQuantity != 20 {
		t.Fatalf("set not persisted: %+v", p)
	}
	if p.UpdatedAt == "" {
		t.Fatal("updatedAt not set on mutation")
	}
}

func TestUpdateInventoryMutationErrorAborts(t *testing.T) {
	db := testDB(t)
	repo := repos.NewProductRepo(db)

	_, err := repo.UpdateInventory("prd-stool", "art-otis", func(p domain.Product) (domain.Product, error) {
		return domain.ApplyReduce(p, 100) // seeded stock is 3
	})
	var ins *domain.InsufficientInventoryError
	if !errors.As(err, &ins) {
		t.Fatalf("want InsufficientInventoryError, got %v", err)
	}
	if ins.Available != 3 {
		t.Fatalf("want available=3, got %d", ins.Available)
	}

	// no partial effect
	p, err := repo.FindByID("prd-stool")
	if err != nil {
		t.Fatal(err)
	}
	if *p.Stock != 3 || p.SoldCount != 0 {
		t.Fatalf("failed reduce left a partial write: %+v", p.Product)
	}
}

func TestUpdateInventoryRetriesPastConflict(t *testing.T) {
	db := testDB(t)
	repo := repos.NewProductRepo(db)

	// First attempt reads a snapshot, then a conflicting write lands before the
	// conditional UPDATE; the loop must re-read and still apply the reduce.
	interfered := false
	p, err := repo.UpdateInventory("prd-sourdough", "art-mara", func(p domain.Product) (domain.Product, error) {
		if !interfered {
			interfered = true
			db.MustExec(`UPDATE products SET stock=5, available_quantity=5 WHERE id='prd-sourdough'`)
		}
		return domain.ApplyReduce(p, 2)
	})
	if err != nil {
		t.Fatal(err)
	}
	if *p.Stock != 3 { // 5 after interference, minus 2
		t.Fatalf("want stock=3 after retry, got %d", *p.Stock)
	}
	if p.SoldCount != 2 {
		t.Fatalf("want soldCount=2, got %d", p.SoldCount)
	}
}

func TestConcurrentReduceNeverOversells(t *testing.T) {
	db := testDB(t)
	repo := repos.NewProductRepo(db)

	db.MustExec(`INSERT INTO products(id,artisan_id,title,price,product_type,status,stock,available_quantity) VALUES
	  ('hot','art-mara','Flash Sale Loaf',5,'ready_to_ship','active',10,10)`)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.UpdateInventory("hot", "art-mara", func(p domain.Product) (domain.Product, error) {
				return domain.ApplyReduce(p, 6)
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successes, insufficient := 0, 0
	for err := range results {
		switch {
		case err == nil:
			successes++
		default:
			var ins *domain.InsufficientInventoryError
			if !errors.As(err, &ins) {
				t.Fatalf("unexpected error: %v", err)
			}
			insufficient++
		}
	}
	// 6+6 > 10: exactly one reduce may win
	if successes != 1 || insufficient != 1 {
		t.Fatalf("want 1 success and 1 insufficient, got %d/%d", successes, insufficient)
	}

	p, err := repo.FindByID("hot")
	if err != nil {
		t.Fatal(err)
	}
	if *p.Stock != 4 {
		t.Fatalf("want final stock=4, got %d", *p.Stock)
	}
	if *p.Stock < 0 {
		t.Fatal("stock went negative")
	}
	if p.SoldCount != 6 {
		t.Fatalf("want soldCount=6, got %d", p.SoldCount)
	}
}

func TestCreateAssignsIDAndTimestamps(t *testing.T) {
	db := testDB(t)
	repo := repos.NewProductRepo(db)

	stock := int64(4)
	p, err := repo.Create(domain.Product{
		ArtisanID:         "art-otis",
		Title:             "Cedar Planter",
		Price:             45,
		ProductType:       domain.TypeReadyToShip,
		Active:            true,
		Status:            domain.StatusActive,
		Stock:             &stock,
		AvailableQuantity: &stock,
	})
	if err != nil {
		t.Fatal(err)
	}
	if p.ID == "" || p.CreatedAt == "" {
		t.Fatalf("id/createdAt missing: %+v", p)
	}
	if *p.Stock != 4 {
		t.Fatalf("stock not persisted: %+v", p)
	}
}

func TestCreateAndUpdateWithoutCategory(t *testing.T) {
	db := testDB(t)
	repo := repos.NewProductRepo(db)

	stock := int64(4)
	// no category: the FK column must store NULL, not ''
	p, err := repo.Create(domain.Product{
		ArtisanID:         "art-mara",
		Title:             "Uncategorized Loaf",
		Price:             6,
		ProductType:       domain.TypeReadyToShip,
		Active:            true,
		Status:            domain.StatusActive,
		Stock:             &stock,
		AvailableQuantity: &stock,
	})
	if err != nil {
		t.Fatalf("create without category: %v", err)
	}
	if p.Category != "" {
		t.Fatalf("want empty category, got %q", p.Category)
	}

	// clearing an existing category behaves the same way
	empty := ""
	q, err := repo.UpdateDetails("prd-sourdough", "art-mara", repos.DetailsUpdate{Category: &empty})
	if err != nil {
		t.Fatalf("clear category: %v", err)
	}
	if q.Category != "" {
		t.Fatalf("category not cleared: %q", q.Category)
	}
}

func TestDeactivateHidesFromInventoryFilter(t *testing.T) {
	db := testDB(t)
	repo := repos.NewProductRepo(db)

	if err := repo.Deactivate("prd-stool", "art-mara"); !errors.Is(err, domain.ErrNotFoundOrForbidden) {
		t.Fatalf("foreign deactivate: want ErrNotFoundOrForbidden, got %v", err)
	}
	if err := repo.Deactivate("prd-stool", "art-otis"); err != nil {
		t.Fatal(err)
	}

	rows, err := repo.Find(repos.InventoryFilter(), "newest", 100, 0)
	if err != nil {
		t.Fatal(err)
	}
	if ids(rows)["prd-stool"] {
		t.Fatal("deactivated product still matches the inventory filter")
	}
}

func TestUpdateDetailsDoesNotTouchInventory(t *testing.T) {
	db := testDB(t)
	repo := repos.NewProductRepo(db)

	title := "Sourdough Boule"
	price := 9.25
	p, err := repo.UpdateDetails("prd-sourdough", "art-mara", repos.DetailsUpdate{Title: &title, Price: &price})
	if err != nil {
		t.Fatal(err)
	}
	if p.Title != title || p.Price != price {
		t.Fatalf("details not applied: %+v", p)
	}
	if *p.Stock != 12 || p.SoldCount != 0 {
		t.Fatalf("details update touched inventory: %+v", p)
	}
}
