package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/lib/pq"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	productIDs := seedProducts(db)
	seedFeeds(db, productIDs)

	log.Println("Seeding completed successfully!")
}

type variantSeed struct {
	Title       string
	PriceCents  int64
	Kind        string
	ManageStock bool
	Available   int
}

func seedProducts(db *sql.DB) map[string]int64 {
	products := []struct {
		Title      string
		Thumbnail  string
		Categories []string
		Variants   []variantSeed
	}{
		{
			"Arabica Coffee Beans 1kg",
			"https://images.unsplash.com/photo-1559056199-641a0ac8b55e?w=800",
			[]string{"coffee", "wholesale"},
			[]variantSeed{
				{"Whole Bean", 1800, "onetime", true, 500},
				{"Ground", 1900, "onetime", true, 350},
			},
		},
		{
			"Robusta Coffee Beans 1kg",
			"https://images.unsplash.com/photo-1447933601403-0c6688de566e?w=800",
			[]string{"coffee", "wholesale"},
			[]variantSeed{
				{"Whole Bean", 1200, "onetime", true, 800},
			},
		},
		{
			"Ceramic Pour-Over Dripper",
			"https://images.unsplash.com/photo-1544787219-7f47ccb76574?w=800",
			[]string{"equipment"},
			[]variantSeed{
				{"White", 2500, "onetime", true, 120},
				{"Black", 2500, "onetime", true, 90},
			},
		},
		{
			"Paper Filters 100pcs",
			"https://images.unsplash.com/photo-1521302080334-4bebac2763a6?w=800",
			[]string{"equipment", "consumables"},
			[]variantSeed{
				{"Size 02", 600, "onetime", true, 2000},
			},
		},
		{
			"Monthly Roast Subscription",
			"https://images.unsplash.com/photo-1509042239860-f550ce710b93?w=800",
			[]string{"coffee", "subscription"},
			[]variantSeed{
				{"250g Monthly", 1500, "subscription", false, 0},
				{"1kg Monthly", 4500, "subscription", false, 0},
			},
		},
		{
			"Reusable Cup 350ml",
			"https://images.unsplash.com/photo-1577937927133-66ef06acdf18?w=800",
			[]string{"merchandise"},
			[]variantSeed{
				{"Default", 1100, "onetime", true, 300},
			},
		},
	}

	fmt.Println("Seeding Products...")
	ids := make(map[string]int64)
	for _, p := range products {
		var prodID int64
		err := db.QueryRow("SELECT id FROM products WHERE title = $1", p.Title).Scan(&prodID)
		if err == sql.ErrNoRows {
			err = db.QueryRow(`
				INSERT INTO products (title, thumbnail, categories)
				VALUES ($1, $2, $3)
				RETURNING id;
			`, p.Title, p.Thumbnail, pq.Array(p.Categories)).Scan(&prodID)
		}
		if err != nil {
			log.Printf("Failed to seed product %s: %v", p.Title, err)
			continue
		}
		ids[p.Title] = prodID

		for _, v := range p.Variants {
			sku := skuFor(p.Title, v.Title)
			var variantID int64
			err := db.QueryRow("SELECT id FROM product_variants WHERE sku = $1", sku).Scan(&variantID)
			if err == sql.ErrNoRows {
				_, err = db.Exec(`
					INSERT INTO product_variants
						(product_id, variation_title, unit_price_cents, sku, payment_kind, manage_stock, available)
					VALUES ($1, $2, $3, $4, $5, $6, $7);
				`, prodID, v.Title, v.PriceCents, sku, v.Kind, v.ManageStock, v.Available)
			} else if err == nil {
				_, err = db.Exec(`
					UPDATE product_variants
					SET unit_price_cents = $2, available = $3
					WHERE id = $1;
				`, variantID, v.PriceCents, v.Available)
			}
			if err != nil {
				log.Printf("Failed to seed variant %s for %s: %v", v.Title, p.Title, err)
			}
		}
	}
	return ids
}

type tierSeed struct {
	MinQty          int64   `json:"minQty"`
	MaxQty          int64   `json:"maxQty"`
	DiscountPercent float64 `json:"discountPercent"`
}

func seedFeeds(db *sql.DB, productIDs map[string]int64) {
	feeds := []struct {
		Name    string
		Scope   string
		Product string
		Tiers   []tierSeed
	}{
		{
			"Storewide bulk discount", "global", "",
			[]tierSeed{
				{10, 24, 5},
				{25, 49, 10},
				{50, 0, 15},
			},
		},
		{
			"Arabica wholesale", "product", "Arabica Coffee Beans 1kg",
			[]tierSeed{
				{20, 99, 12},
				{100, 0, 20},
			},
		},
		{
			"Filter case pricing", "product", "Paper Filters 100pcs",
			[]tierSeed{
				{12, 0, 25},
			},
		},
	}

	fmt.Println("Seeding Feeds...")
	for _, f := range feeds {
		var exists int64
		err := db.QueryRow("SELECT id FROM feeds WHERE name = $1", f.Name).Scan(&exists)
		if err == nil {
			continue
		}
		if err != sql.ErrNoRows {
			log.Printf("Failed to check feed %s: %v", f.Name, err)
			continue
		}

		tiers, err := json.Marshal(f.Tiers)
		if err != nil {
			log.Printf("Failed to encode tiers for feed %s: %v", f.Name, err)
			continue
		}

		var productID sql.NullInt64
		if f.Scope == "product" {
			id, ok := productIDs[f.Product]
			if !ok {
				log.Printf("Missing product ID for feed %s", f.Name)
				continue
			}
			productID = sql.NullInt64{Int64: id, Valid: true}
		}

		_, err = db.Exec(`
			INSERT INTO feeds (name, scope, product_id, variant_ids, enabled, tiers)
			VALUES ($1, $2, $3, '{}', 'yes', $4);
		`, f.Name, f.Scope, productID, tiers)
		if err != nil {
			log.Printf("Failed to seed feed %s: %v", f.Name, err)
		}
	}
}

func skuFor(title, variant string) string {
	s := title + "-" + variant
	s = strings.ToUpper(strings.ReplaceAll(s, " ", "-"))
	return strings.ReplaceAll(s, "--", "-")
}
