// Package export renders household reports as Excel workbooks.
package export

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/mmynk/hearthledger/internal/engine"
)

const (
	SheetBalances    = "Balances"
	SheetSettlements = "Settlements"
	SheetExpenses    = "Expenses"
	SheetPayments    = "Payments"

	dateLayout = "2006-01-02"
)

// Workbook renders r into a workbook with one sheet per section. Members are
// shown by display name.
func Workbook(r *engine.Report) (*excelize.File, error) {
	f := excelize.NewFile()

	names := make(map[string]string, len(r.Members))
	for _, m := range r.Members {
		names[m.ID] = m.DisplayName
	}
	name := func(id string) string {
		if n, ok := names[id]; ok && n != "" {
			return n
		}
		return id
	}

	w := &writer{f: f}
	if err := w.init(); err != nil {
		return nil, err
	}

	// Balances
	rows := make([][]any, 0, len(r.Balances))
	for _, b := range r.Balances {
		rows = append(rows, []any{name(b.MemberID), money(b.Owed), money(b.OwedTo), money(b.Net)})
	}
	w.sheet(SheetBalances, []string{"Member", "Owes", "Is Owed", "Net"}, rows, 1, 2, 3)

	// Settlements
	rows = make([][]any, 0, len(r.Settlements))
	for _, s := range r.Settlements {
		rows = append(rows, []any{name(s.From), name(s.To), money(s.Amount)})
	}
	w.sheet(SheetSettlements, []string{"From", "To", "Amount"}, rows, 2)

	// One row per share.
	rows = rows[:0]
	for _, e := range r.Expenses {
		for _, s := range e.Shares {
			paid := "no"
			if s.Paid {
				paid = "yes"
			}
			rows = append(rows, []any{
				e.ExpenseDate.Format(dateLayout), e.Description, e.Category, name(e.CreatedBy),
				money(e.Amount), e.Currency, string(e.Method), name(s.MembershipID), money(s.Amount), paid,
			})
		}
	}
	w.sheet(SheetExpenses, []string{
		"Date", "Description", "Category", "Paid By", "Total", "Currency", "Split", "Member", "Share", "Settled",
	}, rows, 4, 8)

	// One row per allocation; unallocated payments get a single row.
	rows = rows[:0]
	for _, p := range r.Payments {
		base := []any{
			p.PaymentDate.Format(dateLayout), name(p.PayerID), name(p.PayeeID), money(p.Amount),
			p.Currency, string(p.Type), p.Method, money(p.UnallocatedAmount()),
		}
		allocated := false
		for _, a := range p.Allocations {
			if !a.State.Active() {
				continue
			}
			allocated = true
			rows = append(rows, append(append([]any{}, base...), a.ShareID, money(a.Amount)))
		}
		if !allocated {
			rows = append(rows, append(append([]any{}, base...), "", ""))
		}
	}
	w.sheet(SheetPayments, []string{
		"Date", "Payer", "Payee", "Amount", "Currency", "Type", "Method", "Unallocated", "Share", "Allocated",
	}, rows, 3, 7, 9)

	if w.err != nil {
		f.Close()
		return nil, w.err
	}
	return f, nil
}

// money renders an amount as a number so spreadsheets can sum it. Amounts
// carry two decimal places and stay far below 2^53 cents, so the float64 cell
// displays the exact value under the "0.00" number format.
func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// writer records the first failure so callers check once.
type writer struct {
	f           *excelize.File
	headerStyle int
	moneyStyle  int
	first       bool
	err         error
}

func (w *writer) init() error {
	var err error
	w.headerStyle, err = w.f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	w.moneyStyle, err = w.f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return fmt.Errorf("failed to create money style: %w", err)
	}
	w.first = true
	return nil
}

// sheet writes headers and rows to a new sheet. moneyCols are zero-based
// columns formatted as amounts.
func (w *writer) sheet(name string, headers []string, rows [][]any, moneyCols ...int) {
	if w.err != nil {
		return
	}
	if w.first {
		// The default sheet becomes the first section.
		w.err = w.f.SetSheetName("Sheet1", name)
		w.first = false
	} else {
		_, w.err = w.f.NewSheet(name)
	}
	if w.err != nil {
		return
	}

	for i, h := range headers {
		w.set(name, i, 1, h)
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if w.err == nil {
		w.err = w.f.SetCellStyle(name, "A1", last, w.headerStyle)
	}

	for r, row := range rows {
		for c, v := range row {
			w.set(name, c, r+2, v)
		}
	}

	if len(rows) > 0 {
		for _, c := range moneyCols {
			top, _ := excelize.CoordinatesToCellName(c+1, 2)
			bottom, _ := excelize.CoordinatesToCellName(c+1, len(rows)+1)
			if w.err == nil {
				w.err = w.f.SetCellStyle(name, top, bottom, w.moneyStyle)
			}
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	if w.err == nil {
		w.err = w.f.SetColWidth(name, "A", lastCol, 15)
	}
}

func (w *writer) set(sheet string, col, row int, v any) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(col+1, row)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetCellValue(sheet, cell, v)
}
