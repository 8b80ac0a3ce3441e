// Package floorsheet loads the raw trade-by-trade ledger and partitions
// it into the symbol and symbol-day groups the analysis stages consume.
package floorsheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nepselab/floorwatch/internal/core"
	"go.uber.org/zap"
)

// Loader reads a floorsheet CSV into typed trade records. Numeric
// fields are parsed permissively: thousands separators are stripped and
// unparseable values become null rather than failing the run. Records
// missing a symbol, broker id or date are rejected and counted.
type Loader struct {
	log *zap.Logger
}

// NewLoader creates a Loader. A nil logger disables logging.
func NewLoader(log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{log: log}
}

// Table is the loaded ledger. Records keep the file's original order,
// which downstream stages treat as execution order.
type Table struct {
	Records  []core.TradeRecord
	Rejected int
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"01/02/2006",
}

// LoadFile reads the CSV at path.
func (l *Loader) LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.WrapError(core.ErrLoadFailed, err)
	}
	defer f.Close()
	return l.Load(f)
}

// Load reads floorsheet rows from r. The first row must be a header
// containing at least symbol, buyer, seller, quantity, rate, amount and
// date columns (sn/id and transaction_no are optional).
func (l *Loader) Load(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, core.WrapError(core.ErrLoadFailed, fmt.Errorf("reading header: %w", err))
	}

	cols, err := mapColumns(header)
	if err != nil {
		return nil, core.WrapError(core.ErrLoadFailed, err)
	}

	table := &Table{}
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			// Structurally broken row: count and move on.
			table.Rejected++
			l.log.Debug("rejecting malformed CSV row", zap.Int("line", line), zap.Error(err))
			continue
		}

		rec, ok := l.parseRecord(cols, row)
		if !ok {
			table.Rejected++
			l.log.Debug("rejecting trade record", zap.Int("line", line))
			continue
		}
		table.Records = append(table.Records, rec)
	}

	if len(table.Records) == 0 {
		return nil, core.WrapError(core.ErrNoData, fmt.Errorf("no parsable trade records (%d rejected)", table.Rejected))
	}

	l.log.Info("floorsheet loaded",
		zap.Int("records", len(table.Records)),
		zap.Int("rejected", table.Rejected),
	)
	return table, nil
}

// columns holds the resolved index of each field, -1 when absent.
type columns struct {
	sn, txn, symbol, buyer, seller, quantity, rate, amount, date int
}

func mapColumns(header []string) (columns, error) {
	cols := columns{sn: -1, txn: -1, symbol: -1, buyer: -1, seller: -1, quantity: -1, rate: -1, amount: -1, date: -1}
	for i, h := range header {
		switch normalizeHeader(h) {
		case "sn", "id":
			cols.sn = i
		case "transaction_no", "transaction":
			cols.txn = i
		case "symbol", "stock_symbol":
			cols.symbol = i
		case "buyer", "buyer_broker":
			cols.buyer = i
		case "seller", "seller_broker":
			cols.seller = i
		case "quantity", "qty":
			cols.quantity = i
		case "rate", "price":
			cols.rate = i
		case "amount":
			cols.amount = i
		case "date":
			cols.date = i
		}
	}

	missing := []string{}
	for name, idx := range map[string]int{
		"symbol": cols.symbol, "buyer": cols.buyer, "seller": cols.seller,
		"quantity": cols.quantity, "rate": cols.rate, "amount": cols.amount, "date": cols.date,
	} {
		if idx < 0 {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return cols, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, " ", "_")
	h = strings.ReplaceAll(h, ".", "")
	return h
}

func (l *Loader) parseRecord(cols columns, row []string) (core.TradeRecord, bool) {
	field := func(i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	symbol := field(cols.symbol)
	if symbol == "" {
		return core.TradeRecord{}, false
	}

	buyer, err := parseBroker(field(cols.buyer))
	if err != nil {
		return core.TradeRecord{}, false
	}
	seller, err := parseBroker(field(cols.seller))
	if err != nil {
		return core.TradeRecord{}, false
	}

	date, err := parseDate(field(cols.date))
	if err != nil {
		return core.TradeRecord{}, false
	}

	rec := core.TradeRecord{
		Symbol:   symbol,
		Buyer:    buyer,
		Seller:   seller,
		Quantity: parseNumber(field(cols.quantity)),
		Rate:     parseNumber(field(cols.rate)),
		Amount:   parseNumber(field(cols.amount)),
		Date:     date,
	}
	if cols.sn >= 0 {
		rec.SN, _ = strconv.ParseInt(stripSeparators(field(cols.sn)), 10, 64)
	}
	if cols.txn >= 0 {
		rec.TransactionNo, _ = strconv.ParseInt(stripSeparators(field(cols.txn)), 10, 64)
	}
	return rec, true
}

func stripSeparators(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), ",", "")
}

// parseNumber coerces a numeric field to float64, returning null for
// anything unparseable.
func parseNumber(s string) float64 {
	s = stripSeparators(s)
	if s == "" {
		return core.Null()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return core.Null()
	}
	return v
}

func parseBroker(s string) (int, error) {
	s = stripSeparators(s)
	if s == "" {
		return 0, fmt.Errorf("empty broker id")
	}
	// Broker ids occasionally arrive as floats ("34.0").
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int(f)) {
		return int(f), nil
	}
	return 0, fmt.Errorf("invalid broker id %q", s)
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return core.Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}
