package repos

import (
	"log"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	// modernc's sqlite returns busy errors under concurrent writers; a single
	// pooled connection serializes statements at the driver boundary instead.
	db.SetMaxOpenConns(1)

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Seed demo artisans and catalog if the DB is empty (idempotent)
	if err := seedIfEmpty(db); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Artisans (product owners)
CREATE TABLE IF NOT EXISTS artisans(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  display_name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_artisans_email ON artisans(LOWER(email));

-- Categories
CREATE TABLE IF NOT EXISTS categories(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_name_nocase ON categories(LOWER(name));

-- Products. product_type NULL/'' marks legacy rows that predate the column;
-- inventory columns are nullable because only the type-appropriate ones apply.
CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  artisan_id TEXT NOT NULL REFERENCES artisans(id) ON DELETE RESTRICT,
  title TEXT NOT NULL,
  description TEXT,
  category TEXT REFERENCES categories(id),
  price NUMERIC NOT NULL CHECK (price >= 0),
  product_type TEXT CHECK (product_type IN ('ready_to_ship','made_to_order','scheduled_order','') OR product_type IS NULL),
  active INTEGER NOT NULL DEFAULT 1,
  status TEXT NOT NULL DEFAULT 'active',
  stock INTEGER CHECK (stock IS NULL OR stock >= 0),
  available_quantity INTEGER CHECK (available_quantity IS NULL OR available_quantity >= 0),
  total_capacity INTEGER CHECK (total_capacity IS NULL OR total_capacity >= 0),
  remaining_capacity INTEGER CHECK (remaining_capacity IS NULL OR remaining_capacity >= 0),
  sold_count INTEGER NOT NULL DEFAULT 0,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_products_artisan   ON products(artisan_id);
CREATE INDEX IF NOT EXISTS idx_products_category  ON products(category);
CREATE INDEX IF NOT EXISTS idx_products_type      ON products(product_type);
CREATE INDEX IF NOT EXISTS idx_products_title     ON products(LOWER(title));

-- Sessions bind the 'sid' cookie to an artisan
CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,
  artisan_id TEXT NULL REFERENCES artisans(id) ON DELETE SET NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen  TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_artisan ON sessions(artisan_id);
`
	_, err := db.Exec(schema)
	return err
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM artisans`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo artisans/categories/products")

	hash := func(raw string) string {
		h, _ := bcrypt.GenerateFromPassword([]byte(raw), 12)
		return string(h)
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	tx.MustExec(`INSERT INTO artisans(id,email,display_name,password_hash) VALUES
	  ('art-mara','mara@craftyard.test','Maras Bakery',?),
	  ('art-otis','otis@craftyard.test','Otis Woodworks',?)`,
		hash("Passw0rd!"), hash("Passw0rd!"))

	tx.MustExec(`INSERT INTO categories(id,name) VALUES
	  ('bakery','Bakery'),
	  ('woodwork','Woodwork'),
	  ('ceramics','Ceramics')`)

	tx.MustExec(`INSERT INTO products(id,artisan_id,title,description,category,price,product_type,status,stock,available_quantity,total_capacity,remaining_capacity) VALUES
	  ('prd-sourdough','art-mara','Sourdough Loaf','Naturally leavened, baked daily','bakery',8.50,'ready_to_ship','active',12,12,NULL,NULL),
	  ('prd-cake','art-mara','Custom Celebration Cake','Made to order, two weeks lead time','bakery',85.00,'made_to_order','active',NULL,NULL,20,20),
	  ('prd-pastry-box','art-mara','Holiday Pastry Box','Scheduled pickup, December batch','bakery',42.00,'scheduled_order','active',NULL,30,NULL,NULL),
	  ('prd-stool','art-otis','Oak Step Stool','Hand-joined white oak','woodwork',120.00,'ready_to_ship','active',3,3,NULL,NULL),
	  ('prd-bowl','art-otis','Walnut Bowl','Older listing without a fulfillment type','woodwork',60.00,NULL,'active',NULL,4,NULL,NULL)`)

	return tx.Commit()
}
