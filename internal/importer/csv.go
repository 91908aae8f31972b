// Package importer is the CSV import collaborator. It parses bank export
// files into fully-formed transactions; the core only validates and
// persists what comes out of here. A row that fails to parse is skipped
// and reported, it never aborts the rest of the file.
package importer

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"golang.org/x/sync/errgroup"

	"budget/internal/core"
)

// row maps the expected CSV columns: Date,Amount,Description,Type. The
// Type column carries a category name when the export provides one.
type row struct {
	Date        string `csv:"Date"`
	Amount      string `csv:"Amount"`
	Description string `csv:"Description"`
	Type        string `csv:"Type"`
}

// dateLayouts are tried in order; the first parse wins.
var dateLayouts = []string{
	"1/2/2006",
	"1-2-2006",
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"02-01-2006",
}

// RowError reports one skipped row.
type RowError struct {
	File string
	Row  int // 1-based data row number (header excluded)
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("%s row %d: %v", e.File, e.Row, e.Err)
}

// ParseFile reads one CSV file into transactions. Unparseable rows are
// collected as RowErrors; only a file-level failure (missing file, bad
// header) returns a non-nil error.
func ParseFile(path string) ([]core.Transaction, []RowError, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open csv file: %w", err)
	}
	defer f.Close()

	var rows []row
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, nil, fmt.Errorf("read csv file %s: %w", path, err)
	}

	var (
		txs     []core.Transaction
		skipped []RowError
	)
	for i, r := range rows {
		t, err := parseRow(r)
		if err != nil {
			skipped = append(skipped, RowError{File: path, Row: i + 1, Err: err})
			continue
		}
		txs = append(txs, t)
	}
	return txs, skipped, nil
}

// ParseFiles parses several files concurrently. Output preserves the
// order of paths regardless of which file finishes first.
func ParseFiles(ctx context.Context, paths []string) ([]core.Transaction, []RowError, error) {
	perFile := make([][]core.Transaction, len(paths))
	perFileErrs := make([][]RowError, len(paths))

	g, _ := errgroup.WithContext(ctx)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			txs, skipped, err := ParseFile(path)
			if err != nil {
				return err
			}
			perFile[i] = txs
			perFileErrs[i] = skipped
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var (
		txs     []core.Transaction
		skipped []RowError
	)
	for i := range paths {
		txs = append(txs, perFile[i]...)
		skipped = append(skipped, perFileErrs[i]...)
	}
	return txs, skipped, nil
}

func parseRow(r row) (core.Transaction, error) {
	date, err := parseDate(r.Date)
	if err != nil {
		return core.Transaction{}, err
	}

	amount, err := core.MoneyFromString(r.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse amount %q: %w", r.Amount, err)
	}

	if strings.TrimSpace(r.Description) == "" {
		return core.Transaction{}, core.ErrEmptyDescription
	}

	// Negative amounts are expenses; the stored amount is always the
	// absolute value, the sign lives on the transaction type.
	typ := core.Income
	if amount.IsNegative() {
		typ = core.Expense
	}

	return core.Transaction{
		Date:        date,
		Amount:      amount.Abs(),
		Description: r.Description,
		Category:    strings.TrimSpace(r.Type),
		Type:        typ,
	}, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %q", s)
}
