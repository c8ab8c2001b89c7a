package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"lamahang-storefront/internal/domain"
)

type Kind string

const (
	KindProducts Kind = "products"
	KindVouchers Kind = "vouchers"
)

type ProductWriter interface {
	Save(ctx context.Context, p domain.Product) (*domain.Product, error)
}

type VoucherWriter interface {
	Save(ctx context.Context, v domain.Voucher) error
}

// CSVImporter reads catalog or voucher exports and upserts every row.
type CSVImporter struct {
	reader   *csv.Reader
	products ProductWriter
	vouchers VoucherWriter
}

func NewCSVImporter(r io.Reader, products ProductWriter, vouchers VoucherWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:   csvr,
		products: products,
		vouchers: vouchers,
	}
}

// DetectKind inspects the header row. A "code" column marks a voucher file.
func DetectKind(r io.Reader) (Kind, error) {
	headers, err := csv.NewReader(r).Read()
	if err != nil {
		return "", fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	switch {
	case has(index, "code"):
		return KindVouchers, nil
	case has(index, "name") && has(index, "price"):
		return KindProducts, nil
	}
	return "", fmt.Errorf("unrecognised csv headers: %s", strings.Join(headers, ","))
}

// Run parses every row and saves it. Rows are numbered from 2 in errors so
// they match a spreadsheet view of the file.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	kind := KindProducts
	if has(index, "code") {
		kind = KindVouchers
	}
	if kind == KindProducts && i.products == nil {
		return 0, errors.New("product csv given but no product writer configured")
	}
	if kind == KindVouchers && i.vouchers == nil {
		return 0, errors.New("voucher csv given but no voucher writer configured")
	}

	imported := 0
	for line := 2; ; line++ {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row %d: %w", line, err)
		}
		if blank(record) {
			continue
		}

		switch kind {
		case KindVouchers:
			err = i.saveVoucher(ctx, record, index)
		default:
			err = i.saveProduct(ctx, record, index)
		}
		if err != nil {
			return imported, fmt.Errorf("row %d: %w", line, err)
		}
		imported++
	}
	return imported, nil
}

func (i *CSVImporter) saveProduct(ctx context.Context, record []string, index map[string]int) error {
	name := pick(record, index, "name")
	price, err := parseInt(pick(record, index, "price"))
	if err != nil {
		return fmt.Errorf("price for %q: %w", name, err)
	}
	stock, err := parseInt(pick(record, index, "stock"))
	if err != nil {
		return fmt.Errorf("stock for %q: %w", name, err)
	}

	p := domain.Product{
		Name:        name,
		Description: pick(record, index, "description"),
		Price:       price,
		Category:    pick(record, index, "category"),
		Stock:       int(stock),
		IsActive:    parseBool(pick(record, index, "is_active"), true),
		SupportsCOD: parseBool(pick(record, index, "supports_cod"), true),
	}
	if v := pick(record, index, "rating"); v != "" {
		rating, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("rating for %q: %w", name, err)
		}
		p.Rating = &rating
	}
	if v := pick(record, index, "reviews"); v != "" {
		reviews, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("reviews for %q: %w", name, err)
		}
		p.Reviews = &reviews
	}

	if _, err := i.products.Save(ctx, p); err != nil {
		return fmt.Errorf("save product %q: %w", name, err)
	}
	return nil
}

func (i *CSVImporter) saveVoucher(ctx context.Context, record []string, index map[string]int) error {
	code := pick(record, index, "code")
	kind, err := domain.ParseVoucherKind(pick(record, index, "type"))
	if err != nil {
		return fmt.Errorf("voucher %q: %w", code, err)
	}
	v := domain.Voucher{
		Code:        code,
		Kind:        kind,
		Description: pick(record, index, "description"),
		IsActive:    parseBool(pick(record, index, "is_active"), true),
	}
	if s := pick(record, index, "discount"); s != "" {
		if v.DiscountValue, err = decimal.NewFromString(s); err != nil {
			return fmt.Errorf("discount for %q: %w", code, err)
		}
	}
	if v.MinPurchase, err = parseInt(pick(record, index, "min_purchase")); err != nil {
		return fmt.Errorf("min_purchase for %q: %w", code, err)
	}
	if v.ActiveFrom, err = parseDate(pick(record, index, "valid_from")); err != nil {
		return fmt.Errorf("valid_from for %q: %w", code, err)
	}
	if v.ActiveTo, err = parseDate(pick(record, index, "valid_to")); err != nil {
		return fmt.Errorf("valid_to for %q: %w", code, err)
	}
	if s := pick(record, index, "usage_limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("usage_limit for %q: %w", code, err)
		}
		v.UsageLimit = &limit
	}

	if err := i.vouchers.Save(ctx, v); err != nil {
		return fmt.Errorf("save voucher %q: %w", code, err)
	}
	return nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func has(index map[string]int, key string) bool {
	_, ok := index[key]
	return ok
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func parseInt(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}

func parseBool(s string, def bool) bool {
	if s == "" {
		return def
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return b
}

func parseDate(s string) (*domain.Date, error) {
	if s == "" {
		return nil, nil
	}
	d, err := domain.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
