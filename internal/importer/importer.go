package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"storefront/internal/domain"
	applog "storefront/internal/logger"
	"storefront/internal/price"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// CSVImporter reads product rows (id,name,price,description,category,image) and
// inserts or updates them. Header order is free; unknown columns are ignored.
type CSVImporter struct {
	reader      *csv.Reader
	productRepo ProductWriter
	logger      *logrus.Logger
}

func NewCSVImporter(r io.Reader, repo ProductWriter, logger *logrus.Logger) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	return &CSVImporter{
		reader:      csvr,
		productRepo: repo,
		logger:      applog.OrDiscard(logger),
	}
}

// Result counts what Run did. Skipped rows are logged with their line number.
type Result struct {
	Imported int
	Skipped  int
}

// Run parses rows and upserts each valid product. Invalid rows are skipped; a
// storage failure stops the import.
func (i *CSVImporter) Run(ctx context.Context) (Result, error) {
	var res Result

	headers, err := i.reader.Read()
	if err != nil {
		return res, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, required := range []string{"name", "price"} {
		if _, ok := index[required]; !ok {
			return res, fmt.Errorf("missing %q column", required)
		}
	}

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("read row: %w", err)
		}
		line, _ := i.reader.FieldPos(0)

		p, err := parseRow(record, index)
		if err != nil {
			i.logger.Warnf("importer: skip line=%d: %v", line, err)
			res.Skipped++
			continue
		}
		if _, err := i.productRepo.Upsert(ctx, p); err != nil {
			return res, fmt.Errorf("upsert product %q (line %d): %w", p.Name, line, err)
		}
		res.Imported++
	}
	return res, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) (domain.Product, error) {
	p := domain.Product{
		ID:          pick(record, index, "id"),
		Name:        pick(record, index, "name"),
		Description: pick(record, index, "description"),
		Category:    pick(record, index, "category"),
		Image:       pick(record, index, "image"),
	}
	if p.Name == "" {
		return p, errors.New("name required")
	}
	if p.ID != "" {
		if _, err := uuid.Parse(p.ID); err != nil {
			return p, fmt.Errorf("invalid id %q", p.ID)
		}
	}
	normalized, err := price.Normalize(pick(record, index, "price"))
	if err != nil {
		return p, err
	}
	p.Price = normalized
	p.NormalizePrice()
	return p, nil
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
