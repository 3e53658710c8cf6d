// Command sales-import ingests historical sales dumps into the database.
//
// Dumps are gzipped CSV files with one single-item sale per line:
//
//	number,date,customer_id,customer_name,branch_id,branch_name,
//	product_id,product_name,quantity,unit_price,discount
//
// Exports from legacy systems overlap heavily, so a bloom filter tracks sale
// numbers already submitted during the run and skips repeats without keeping
// every number in memory. The UNIQUE constraint on the number column is the
// exact backstop for filter false negatives and pre-existing rows.
package main

import (
	"bufio"
	"context"
	"encoding/csv"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/primestore/sales-api/internal/domain/sale"
	"github.com/primestore/sales-api/internal/storage/postgres"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.001
	progressEvery = 100_000
	recordFields  = 11
)

// record is one parsed line of a sales dump.
type record struct {
	number       string
	date         time.Time
	customerID   string
	customerName string
	branchID     string
	branchName   string
	productID    string
	productName  string
	quantity     int
	unitPrice    decimal.Decimal
	discount     decimal.Decimal
}

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing *.csv.gz sales dumps")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
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

	if err := run(ctx, dataDir, databaseURL); err != nil {
		slog.Error("sales import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("sales import completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "*.csv.gz"))
	if err != nil {
		return errors.Wrap(err, "glob data dir")
	}
	if len(files) == 0 {
		return errors.Errorf("no *.csv.gz files found in %s", dataDir)
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	repo := postgres.NewSaleRepository(pool)
	records := make(chan record, 1024)

	g, ctx := errgroup.WithContext(ctx)

	// Readers: stream and parse each dump concurrently.
	readers, readerCtx := errgroup.WithContext(ctx)
	for _, f := range files {
		readers.Go(streamDumpFile(readerCtx, f, records))
	}
	g.Go(func() error {
		defer close(records)
		return readers.Wait()
	})

	// Single writer: dedupe by number and insert.
	var imported, skipped, duplicate uint64
	g.Go(func() error {
		seen := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
		for rec := range records {
			if seen.TestAndAddString(rec.number) {
				skipped++
				continue
			}

			s, err := buildSale(rec)
			if err != nil {
				slog.Warn("invalid record",
					slog.String("number", rec.number),
					slog.String("error", err.Error()),
				)
				skipped++
				continue
			}

			switch err := repo.Save(ctx, s, 0); {
			case errors.Is(err, sale.ErrDuplicateNumber):
				duplicate++
			case err != nil:
				return errors.Wrapf(err, "insert sale %s", rec.number)
			default:
				imported++
				if imported%progressEvery == 0 {
					slog.Info("import progress", slog.Uint64("imported", imported))
				}
			}
		}

		slog.Info("import summary",
			slog.Uint64("imported", imported),
			slog.Uint64("skipped", skipped),
			slog.Uint64("already_present", duplicate),
		)
		return nil
	})

	return g.Wait()
}

// streamDumpFile parses one gzipped CSV dump and sends records downstream.
func streamDumpFile(ctx context.Context, path string, out chan<- record) func() error {
	return func() error {
		f, err := os.Open(path)
		if err != nil {
			return errors.Wrapf(err, "open %s", path)
		}
		defer f.Close()

		gz, err := pgzip.NewReader(bufio.NewReader(f))
		if err != nil {
			return errors.Wrapf(err, "gzip reader for %s", path)
		}
		defer gz.Close()

		r := csv.NewReader(gz)
		r.FieldsPerRecord = recordFields
		r.ReuseRecord = true

		var count uint64
		for {
			fields, err := r.Read()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return errors.Wrapf(err, "read %s", path)
			}

			rec, err := parseRecord(fields)
			if err != nil {
				slog.Warn("skipping malformed line",
					slog.String("file", path),
					slog.String("error", err.Error()),
				)
				continue
			}

			select {
			case out <- rec:
				count++
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		slog.Info("dump parsed", slog.String("file", path), slog.Uint64("records", count))
		return nil
	}
}

func parseRecord(fields []string) (record, error) {
	date, err := time.Parse(time.RFC3339, fields[1])
	if err != nil {
		return record{}, errors.Wrap(err, "parse date")
	}
	quantity, err := strconv.Atoi(fields[8])
	if err != nil {
		return record{}, errors.Wrap(err, "parse quantity")
	}
	unitPrice, err := decimal.NewFromString(fields[9])
	if err != nil {
		return record{}, errors.Wrap(err, "parse unit price")
	}
	discount, err := decimal.NewFromString(fields[10])
	if err != nil {
		return record{}, errors.Wrap(err, "parse discount")
	}

	return record{
		number:       fields[0],
		date:         date,
		customerID:   fields[2],
		customerName: fields[3],
		branchID:     fields[4],
		branchName:   fields[5],
		productID:    fields[6],
		productName:  fields[7],
		quantity:     quantity,
		unitPrice:    unitPrice,
		discount:     discount,
	}, nil
}

// buildSale runs the imported record through the aggregate so historical data
// obeys the same rules as live sales.
func buildSale(rec record) (*sale.Sale, error) {
	item, err := sale.NewItem(rec.productID, rec.productName, rec.quantity, rec.unitPrice, rec.discount)
	if err != nil {
		return nil, err
	}
	return sale.New(sale.NewSaleParams{
		Number:       rec.number,
		Date:         rec.date,
		CustomerID:   rec.customerID,
		CustomerName: rec.customerName,
		BranchID:     rec.branchID,
		BranchName:   rec.branchName,
		Items:        []sale.Item{item},
	})
}
