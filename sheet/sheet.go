// Package sheet stores portfolio profiles in a workbook: a directory holding
// one CSV tab per profile.
//
// A profile named "Ana" lives in two tabs:
//
//	Ana.csv        holdings
//	Ana.sales.csv  sales ledger
//
// Headers are matched by alias, in Turkish or English, case and diacritics
// insensitive. Missing columns default to their zero value. Numbers accept the
// Turkish notation "1.234,56" as well as "1234.56".
package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/etnz/portfoy"
)

const (
	holdingsExt = ".csv"
	salesExt    = ".sales.csv"
)

// ErrNoProfile is returned when a profile has no tab in the workbook.
var ErrNoProfile = errors.New("no such profile")

// RowError reports a holdings row that could not be read. Holding carries the
// row's code and market so that the row can be reported with the others.
type RowError struct {
	Tab     string
	Line    int
	Holding portfoy.Holding
	Err     error
}

func (e *RowError) Error() string { return fmt.Sprintf("%s line %d: %v", e.Tab, e.Line, e.Err) }
func (e *RowError) Unwrap() error { return e.Err }

// RowErrors returns the row errors joined in err by ReadHoldings. It returns
// false if err holds any other kind of error.
func RowErrors(err error) ([]*RowError, bool) {
	errs := []error{err}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	}
	rows := make([]*RowError, 0, len(errs))
	for _, e := range errs {
		var re *RowError
		if !errors.As(e, &re) {
			return nil, false
		}
		rows = append(rows, re)
	}
	return rows, true
}

// Workbook is a directory of profile tabs.
type Workbook struct {
	dir string
}

// Open returns the workbook stored in dir, creating the directory if needed.
func Open(dir string) (*Workbook, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot open workbook %q: %w", dir, err)
	}
	return &Workbook{dir: dir}, nil
}

// Dir returns the workbook directory.
func (w *Workbook) Dir() string { return w.dir }

// Profiles returns the names of all stored profiles, sorted.
func (w *Workbook) Profiles() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(w.dir, "*"+holdingsExt))
	if err != nil {
		return nil, fmt.Errorf("cannot list profiles: %w", err)
	}
	var names []string
	for _, m := range matches {
		base := filepath.Base(m)
		if strings.HasSuffix(base, salesExt) {
			continue
		}
		name := strings.TrimSuffix(base, holdingsExt)
		if portfoy.IsTotal(name) {
			// a stray TOTAL tab is never a source.
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

func (w *Workbook) path(profile, ext string) string {
	return filepath.Join(w.dir, profile+ext)
}

// ReadHoldings reads the holdings tab of a profile.
//
// Blank rows are skipped. Rows are not validated here, an invalid row is
// reported when valued. Rows with unreadable cells are left out and reported
// as *RowError, joined; the other rows are still returned.
func (w *Workbook) ReadHoldings(profile string) ([]portfoy.Holding, error) {
	rows, err := w.read(profile, holdingsExt)
	if err != nil {
		return nil, err
	}
	var holdings []portfoy.Holding
	var errs error
	for i, r := range rows {
		h, err := r.holding()
		if err != nil {
			errs = errors.Join(errs, &RowError{
				Tab:     profile + holdingsExt,
				Line:    i + 2,
				Holding: portfoy.Holding{Code: r[colCode], Market: r[colMarket]},
				Err:     err,
			})
			continue
		}
		holdings = append(holdings, h)
	}
	return holdings, errs
}

// ReadSales reads the sales tab of a profile. A profile without a sales tab
// has no sales.
func (w *Workbook) ReadSales(profile string) ([]portfoy.Sale, error) {
	rows, err := w.read(profile, salesExt)
	if errors.Is(err, ErrNoProfile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var sales []portfoy.Sale
	var errs error
	for i, r := range rows {
		s, err := r.sale()
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("%s%s line %d: %w", profile, salesExt, i+2, err))
			continue
		}
		sales = append(sales, s)
	}
	return sales, errs
}

// ReadProfile reads holdings and sales of a profile.
func (w *Workbook) ReadProfile(profile string) (portfoy.Profile, error) {
	holdings, err := w.ReadHoldings(profile)
	if err != nil {
		return portfoy.Profile{}, err
	}
	sales, err := w.ReadSales(profile)
	if err != nil {
		return portfoy.Profile{}, err
	}
	return portfoy.Profile{Name: profile, Holdings: holdings, Sales: sales}, nil
}

// WriteHoldings replaces the holdings tab of a profile.
//
// The TOTAL profile is computed: writing it is a no-op that returns false and
// portfoy.ErrTotalReadOnly.
func (w *Workbook) WriteHoldings(profile string, holdings []portfoy.Holding) (bool, error) {
	if err := portfoy.CheckWritable(profile); err != nil {
		return false, err
	}
	if strings.TrimSpace(profile) == "" || strings.ContainsAny(profile, `/\`) {
		return false, fmt.Errorf("invalid profile name %q", profile)
	}
	for _, h := range holdings {
		if err := h.Validate(); err != nil {
			return false, err
		}
	}
	if err := w.write(w.path(profile, holdingsExt), func(cw *csv.Writer) error {
		if err := cw.Write(holdingsHeader); err != nil {
			return err
		}
		for _, h := range holdings {
			if err := cw.Write(holdingRecord(h)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return false, fmt.Errorf("cannot write holdings of %q: %w", profile, err)
	}
	return true, nil
}

// write replaces filename atomically.
func (w *Workbook) write(filename string, content func(*csv.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(filename), ".tmp-*.csv")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	cw := csv.NewWriter(tmp)
	if err := content(cw); err != nil {
		tmp.Close()
		return err
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filename)
}

// read returns the data rows of a tab, keyed by canonical column.
func (w *Workbook) read(profile, ext string) ([]row, error) {
	if portfoy.IsTotal(profile) {
		return nil, fmt.Errorf("%w: %q is computed", ErrNoProfile, profile)
	}
	f, err := os.Open(w.path(profile, ext))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %q", ErrNoProfile, profile)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read profile %q: %w", profile, err)
	}
	defer f.Close()

	rows, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s%s: %w", profile, ext, err)
	}
	return rows, nil
}

// parse reads a CSV tab whose first record is the header. Both ',' and ';'
// separated files are accepted.
func parse(r io.Reader) ([]row, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text := strings.TrimPrefix(string(content), "\ufeff")

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = separator(text)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	columns := make([]column, len(records[0]))
	for i, name := range records[0] {
		columns[i] = lookupColumn(name)
	}
	var rows []row
	for _, rec := range records[1:] {
		r := make(row)
		for i, v := range rec {
			if i >= len(columns) || columns[i] == "" {
				continue
			}
			r[columns[i]] = strings.TrimSpace(v)
		}
		if r.blank() {
			continue
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// separator guesses the field separator from the header line.
func separator(text string) rune {
	header, _, _ := strings.Cut(text, "\n")
	if strings.Count(header, ";") > strings.Count(header, ",") {
		return ';'
	}
	return ','
}
