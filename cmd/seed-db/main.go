// Command seed-db loads branches, customers, and products from a JSON file
// into the database, running migrations first.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/primestore/sales-api/internal/domain/branch"
	"github.com/primestore/sales-api/internal/domain/customer"
	"github.com/primestore/sales-api/internal/domain/product"
	"github.com/primestore/sales-api/internal/storage/postgres"
)

type seedFile struct {
	Branches []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		City string `json:"city"`
	} `json:"branches"`
	Customers []struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	} `json:"customers"`
	Products []struct {
		ID       string          `json:"id"`
		Name     string          `json:"name"`
		Price    decimal.Decimal `json:"price"`
		Category string          `json:"category"`
	} `json:"products"`
}

func main() {
	var (
		databaseURL string
		seedPath    string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&seedPath, "seed-file", "db/seed/catalog.json", "path to catalog seed JSON file")
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

	if err := run(ctx, databaseURL, seedPath); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, seedPath string) error {
	slog.Info("reading seed file", slog.String("path", seedPath))

	data, err := os.ReadFile(seedPath)
	if err != nil {
		return errors.Wrap(err, "read seed file")
	}

	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return errors.Wrap(err, "parse seed JSON")
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	branches := postgres.NewBranchRepository(pool)
	slog.Info("seeding branches", slog.Int("count", len(seed.Branches)))
	for _, b := range seed.Branches {
		rec := branch.Branch{ID: b.ID, Name: b.Name, City: b.City}
		if err := branches.Update(ctx, &rec); errors.Is(err, branch.ErrNotFound) {
			err = branches.Create(ctx, &rec)
		}
		if err != nil {
			return errors.Wrapf(err, "seed branch %s", b.ID)
		}
	}

	customers := postgres.NewCustomerRepository(pool)
	slog.Info("seeding customers", slog.Int("count", len(seed.Customers)))
	for _, c := range seed.Customers {
		rec := customer.Customer{ID: c.ID, Name: c.Name, Email: c.Email, Phone: c.Phone}
		if err := customers.Update(ctx, &rec); errors.Is(err, customer.ErrNotFound) {
			err = customers.Create(ctx, &rec)
		}
		if err != nil {
			return errors.Wrapf(err, "seed customer %s", c.ID)
		}
	}

	products := postgres.NewProductRepository(pool)
	slog.Info("seeding products", slog.Int("count", len(seed.Products)))
	for _, p := range seed.Products {
		rec := product.Product{ID: p.ID, Name: p.Name, Price: p.Price, Category: p.Category}
		if err := products.Update(ctx, &rec); errors.Is(err, product.ErrNotFound) {
			err = products.Create(ctx, &rec)
		}
		if err != nil {
			return errors.Wrapf(err, "seed product %s", p.ID)
		}
	}

	return nil
}
