// Command seed-db loads the demo catalog and promotions into the database,
// creating the schema first when needed. Safe to rerun: every row is upserted.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/novamart/storefront/internal/repository"
)

type productJSON struct {
	ID                 string           `json:"id"`
	Name               string           `json:"name"`
	Description        string           `json:"description"`
	Price              decimal.Decimal  `json:"price"`
	DiscountPrice      *decimal.Decimal `json:"discountPrice"`
	DiscountPercentage *decimal.Decimal `json:"discountPercentage"`
	Stock              int              `json:"stock"`
	Category           string           `json:"category"`
	Image              string           `json:"image"`
	Featured           bool             `json:"featured"`
}

type promotionJSON struct {
	ID              string           `json:"id"`
	Code            string           `json:"code"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	DiscountType    string           `json:"discountType"`
	DiscountValue   *decimal.Decimal `json:"discountValue"`
	MinimumPurchase *decimal.Decimal `json:"minimumPurchase"`
	ValidUntil      time.Time        `json:"validUntil"`
	AppliesTo       string           `json:"appliesTo"`
	CategoryName    string           `json:"categoryName"`
	ProductIDs      []string         `json:"productIds"`
}

const upsertProductSQL = `INSERT INTO products
	(id, name, description, price, discount_price, discount_percentage, stock, category, image, featured)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name, description = EXCLUDED.description, price = EXCLUDED.price,
		discount_price = EXCLUDED.discount_price, discount_percentage = EXCLUDED.discount_percentage,
		stock = EXCLUDED.stock, category = EXCLUDED.category, image = EXCLUDED.image,
		featured = EXCLUDED.featured`

const upsertPromotionSQL = `INSERT INTO promotions
	(id, code, title, description, discount_type, discount_value, minimum_purchase,
	 valid_until, applies_to, category_name, product_ids)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (id) DO UPDATE SET
		code = EXCLUDED.code, title = EXCLUDED.title, description = EXCLUDED.description,
		discount_type = EXCLUDED.discount_type, discount_value = EXCLUDED.discount_value,
		minimum_purchase = EXCLUDED.minimum_purchase, valid_until = EXCLUDED.valid_until,
		applies_to = EXCLUDED.applies_to, category_name = EXCLUDED.category_name,
		product_ids = EXCLUDED.product_ids`

func main() {
	var (
		databaseURL    string
		productsFile   string
		promotionsFile string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.StringVar(&promotionsFile, "promotions-file", "db/seed/promotions.json", "path to promotions JSON file")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, promotionsFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile, promotionsFile string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, pool, productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}

	if err := seedPromotions(ctx, pool, promotionsFile); err != nil {
		return errors.Wrap(err, "seed promotions")
	}

	return nil
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool, productsFile string) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	data, err := os.ReadFile(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var products []productJSON
	if err := json.Unmarshal(data, &products); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	slog.Info("upserting products", slog.Int("count", len(products)))

	for _, p := range products {
		_, err := pool.Exec(ctx, upsertProductSQL,
			p.ID, p.Name, p.Description, p.Price,
			nullDecimal(p.DiscountPrice), nullDecimal(p.DiscountPercentage),
			p.Stock, p.Category, p.Image, p.Featured,
		)
		if err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}

		slog.Info("upserted product", slog.String("id", p.ID), slog.String("name", p.Name))
	}

	return nil
}

func seedPromotions(ctx context.Context, pool *pgxpool.Pool, promotionsFile string) error {
	slog.Info("reading promotions file", slog.String("path", promotionsFile))

	data, err := os.ReadFile(promotionsFile)
	if err != nil {
		return errors.Wrap(err, "read promotions file")
	}

	var promotions []promotionJSON
	if err := json.Unmarshal(data, &promotions); err != nil {
		return errors.Wrap(err, "parse promotions JSON")
	}

	slog.Info("upserting promotions", slog.Int("count", len(promotions)))

	for _, p := range promotions {
		productIDs := p.ProductIDs
		if productIDs == nil {
			productIDs = []string{}
		}
		_, err := pool.Exec(ctx, upsertPromotionSQL,
			p.ID, p.Code, p.Title, p.Description, p.DiscountType,
			nullDecimal(p.DiscountValue), nullDecimal(p.MinimumPurchase),
			p.ValidUntil, p.AppliesTo, p.CategoryName, productIDs,
		)
		if err != nil {
			return errors.Wrapf(err, "upsert promotion %s", p.ID)
		}

		slog.Info("upserted promotion", slog.String("id", p.ID), slog.String("code", p.Code))
	}

	return nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}
