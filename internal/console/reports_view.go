package console

import (
	"context"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// reportsScreen prompts for a date range and renders the sales summary.
// Fetch failures are notifications; there is no automatic retry.
func (c *Console) reportsScreen(ctx context.Context) {
	now := time.Now()
	from, ok := c.promptDate("From", now.AddDate(0, -1, 0))
	if !ok {
		return
	}
	to, ok := c.promptDate("To", now)
	if !ok {
		return
	}

	report, err := c.backend.SalesReport(ctx, from, to)
	if err != nil {
		c.notify("Failed to generate report.")
		return
	}

	fmt.Fprintf(c.out, "Sales %s to %s\n", from.Format(dateLayout), to.Format(dateLayout))
	fmt.Fprintf(c.out, "  Total orders:  %d\n", report.TotalOrders)
	fmt.Fprintf(c.out, "  Total revenue: %s\n", report.TotalRevenue.StringFixed(2))
	top := report.TopProduct
	if top == "" {
		top = "(none)"
	}
	fmt.Fprintf(c.out, "  Top product:   %s\n", top)
}

// promptDate reads a YYYY-MM-DD date, falling back to def on empty input.
func (c *Console) promptDate(label string, def time.Time) (time.Time, bool) {
	line, ok := c.prompt(fmt.Sprintf("%s [%s]: ", label, def.Format(dateLayout)))
	if !ok {
		return time.Time{}, false
	}
	if line == "" {
		return def, true
	}
	t, err := time.Parse(dateLayout, line)
	if err != nil {
		c.notify("Dates are YYYY-MM-DD; using the default.")
		return def, true
	}
	return t, true
}
