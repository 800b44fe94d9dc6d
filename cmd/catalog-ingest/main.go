// Command catalog-ingest bulk-imports dish catalogs from gzipped JSONL
// exports. Files are parsed concurrently; duplicate (restaurant, dish name)
// pairs across files are filtered with a bloom filter before a single
// COPY-based insert.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/jackc/pgx/v5"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/feastly/feastly/internal/repository"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.001
	// Scanner buffer large enough for catalog rows with long descriptions.
	maxLineBytes = 1 << 20
)

// dishRecord is one JSONL line of a catalog export.
type dishRecord struct {
	RestaurantID int64
	Name         string
	Ingredients  string
	Image        string
	Price        decimal.Decimal
	Description  string
	Category     string
}

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing catalog *.jsonl.gz files")
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
		slog.Error("catalog ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog ingest completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "*.jsonl.gz"))
	if err != nil {
		return errors.Wrap(err, "list catalog files")
	}
	if len(files) == 0 {
		return errors.Errorf("no *.jsonl.gz files found in %s", dataDir)
	}

	slog.Info("parsing catalog files", slog.Int("files", len(files)))

	// Parse all files concurrently, one result slice per file.
	parsed := make([][]dishRecord, len(files))

	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			records, err := parseFile(gctx, f)
			if err != nil {
				return errors.Wrapf(err, "parse %s", f)
			}
			slog.Info("parsed file", slog.String("path", f), slog.Int("records", len(records)))
			parsed[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// Deduplicate across files: same restaurant + dish name wins once.
	filter := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
	var unique []dishRecord
	var dropped int
	for _, records := range parsed {
		for _, rec := range records {
			key := fmt.Sprintf("%d|%s", rec.RestaurantID, strings.ToLower(rec.Name))
			if filter.TestOrAddString(key) {
				dropped++
				continue
			}
			unique = append(unique, rec)
		}
	}

	slog.Info("deduplicated catalog",
		slog.Int("unique", len(unique)),
		slog.Int("dropped", dropped),
	)

	if len(unique) == 0 {
		slog.Info("nothing to insert")
		return nil
	}

	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	inserted, err := pool.CopyFrom(ctx,
		pgx.Identifier{"dishes"},
		[]string{"restaurant_id", "name", "ingredients", "image", "price", "description", "category"},
		pgx.CopyFromSlice(len(unique), func(i int) ([]any, error) {
			r := unique[i]
			return []any{r.RestaurantID, r.Name, r.Ingredients, r.Image, r.Price, r.Description, r.Category}, nil
		}),
	)
	if err != nil {
		return errors.Wrap(err, "copy dishes")
	}

	slog.Info("inserted dishes", slog.Int64("count", inserted))
	return nil
}

// parseFile streams a gzipped JSONL file and decodes every line.
func parseFile(ctx context.Context, path string) ([]dishRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return nil, errors.Wrap(err, "gzip reader")
	}
	defer func() { _ = gz.Close() }()

	var records []dishRecord

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	for line := 1; scanner.Scan(); line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		rec, err := decodeRecord(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		if rec.RestaurantID <= 0 || rec.Name == "" {
			return nil, errors.Errorf("line %d: restaurant_id and name are required", line)
		}
		if rec.Price.IsNegative() {
			return nil, errors.Errorf("line %d: negative price for %q", line, rec.Name)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "scan")
	}

	return records, nil
}

func decodeRecord(raw []byte) (dishRecord, error) {
	var rec dishRecord
	d := jx.DecodeBytes(raw)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "restaurant_id":
			v, err := d.Int64()
			rec.RestaurantID = v
			return err
		case "name":
			v, err := d.Str()
			rec.Name = v
			return err
		case "ingredients":
			v, err := d.Str()
			rec.Ingredients = v
			return err
		case "image":
			v, err := d.Str()
			rec.Image = v
			return err
		case "price":
			n, err := d.Num()
			if err != nil {
				return err
			}
			price, err := decimal.NewFromString(n.String())
			rec.Price = price
			return err
		case "description":
			v, err := d.Str()
			rec.Description = v
			return err
		case "category":
			v, err := d.Str()
			rec.Category = v
			return err
		default:
			return d.Skip()
		}
	}); err != nil {
		return rec, errors.Wrap(err, "decode")
	}
	return rec, nil
}
