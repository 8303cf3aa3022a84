package console

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/minimart/console/internal/catalog"
	"github.com/minimart/console/internal/order"
)

// orderScreen is the composition view: one draft, one summarizer, one
// submission controller, alive until the user leaves the screen.
func (c *Console) orderScreen(ctx context.Context) {
	snap, err := c.loader.Load(ctx)
	if err != nil {
		c.notify("Failed to load products and customers.")
		return
	}

	draft := order.NewDraft()
	var sums order.Summarizer
	ctrl := order.NewController(c.backend)

	fmt.Fprintln(c.out, "Create order. Commands: add, item <row> <productID>, qty <row> <n>, del <row>,")
	fmt.Fprintln(c.out, "  customer <id>, products, customers, submit, ack, invoice, cancel, back")

	for {
		if ctx.Err() != nil {
			return
		}
		c.renderDraft(draft, snap, sums.Summarize(draft, snap), ctrl)

		line, ok := c.prompt("order> ")
		if !ok {
			return
		}
		if done := c.orderCommand(ctx, line, draft, snap, &sums, ctrl); done {
			return
		}
	}
}

// orderCommand handles one composition command. It returns true when the
// user leaves the screen.
func (c *Console) orderCommand(ctx context.Context, line string, draft *order.Draft, snap *catalog.Snapshot, sums *order.Summarizer, ctrl *order.Controller) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch fields[0] {
	case "back", "done":
		return true
	case "add":
		draft.AddItem()
	case "item":
		row, ok := c.parseRow(fields, draft)
		if !ok {
			return false
		}
		id, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			c.notify("Product ID must be a number.")
			return false
		}
		if _, found := snap.Lookup(id); !found {
			c.notify("No such product in the catalog.")
			return false
		}
		draft.UpdateItem(row, order.Patch{ProductID: &id})
	case "qty":
		row, ok := c.parseRow(fields, draft)
		if !ok {
			return false
		}
		qty, err := strconv.Atoi(fields[2])
		if err != nil {
			c.notify("Quantity must be a number.")
			return false
		}
		draft.UpdateItem(row, order.Patch{Quantity: &qty})
	case "del":
		if len(fields) < 2 {
			c.notify("Usage: del <row>")
			return false
		}
		row, err := strconv.Atoi(fields[1])
		if err != nil || row < 1 || row > len(draft.Items) {
			c.notify("No such row.")
			return false
		}
		draft.RemoveItem(row - 1)
	case "customer":
		if len(fields) < 2 {
			c.notify("Usage: customer <id>")
			return false
		}
		id, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			c.notify("Customer ID must be a number.")
			return false
		}
		draft.SetCustomer(id)
	case "products":
		c.productsScreen(ctx)
	case "customers":
		c.customersScreen(ctx)
	case "submit":
		c.submitDraft(ctx, draft, snap, sums, ctrl)
	case "ack":
		ctrl.Acknowledge(draft)
	case "invoice":
		c.downloadInvoice(ctx, ctrl)
	case "cancel":
		ctrl.Cancel(draft)
	default:
		c.notify("Unknown order command. Type 'back' to leave.")
	}
	return false
}

func (c *Console) parseRow(fields []string, draft *order.Draft) (int, bool) {
	if len(fields) < 3 {
		c.notify("Usage: " + fields[0] + " <row> <value>")
		return 0, false
	}
	row, err := strconv.Atoi(fields[1])
	if err != nil || row < 1 || row > len(draft.Items) {
		c.notify("No such row.")
		return 0, false
	}
	return row - 1, true
}

func (c *Console) submitDraft(ctx context.Context, draft *order.Draft, snap *catalog.Snapshot, sums *order.Summarizer, ctrl *order.Controller) {
	sum := sums.Summarize(draft, snap)
	if !ctrl.CanSubmit(draft, sum) {
		switch {
		case ctrl.State() == order.StateSubmitting:
			c.notify("A submission is already in flight.")
		case ctrl.State() == order.StateSuccess:
			c.notify("Acknowledge the created order first ('ack').")
		case draft.CustomerID == 0:
			c.notify("Select a customer first.")
		default:
			c.notify("Add at least one product to the order.")
		}
		return
	}

	switch ctrl.Submit(ctx, draft, sum) {
	case order.StateSuccess:
		result, _ := ctrl.Result()
		fmt.Fprintf(c.out, "Order %d created, total %s. 'invoice' downloads the PDF, 'ack' starts a new order.\n",
			result.OrderID, result.TotalAmount.StringFixed(2))
	case order.StateError:
		c.notify(ctrl.Message())
	}
}

func (c *Console) downloadInvoice(ctx context.Context, ctrl *order.Controller) {
	result, ok := ctrl.Result()
	if !ok {
		c.notify("No created order to download an invoice for.")
		return
	}

	path := filepath.Join(c.cfg.DownloadDir, fmt.Sprintf("invoice-%d.pdf", result.OrderID))
	f, err := os.Create(path)
	if err != nil {
		c.notify("Failed to download invoice.")
		return
	}
	defer f.Close()

	if _, err := c.backend.DownloadInvoice(ctx, result.OrderID, f); err != nil {
		os.Remove(path)
		c.notify("Failed to download invoice.")
		return
	}
	fmt.Fprintf(c.out, "Invoice saved to %s\n", path)
}

func (c *Console) renderDraft(draft *order.Draft, snap *catalog.Snapshot, sum order.Summary, ctrl *order.Controller) {
	customer := "(none)"
	for _, cu := range snap.Customers() {
		if cu.ID == draft.CustomerID {
			customer = cu.Name
			break
		}
	}
	fmt.Fprintf(c.out, "\nCustomer: %s\n", customer)

	for i, item := range draft.Items {
		name, price := "(select product)", "-"
		if item.Complete() {
			if p, ok := snap.Lookup(item.ProductID); ok {
				name, price = p.Name, p.Price.StringFixed(2)
			} else {
				name = fmt.Sprintf("product %d", item.ProductID)
			}
		}
		fmt.Fprintf(c.out, "  %d. %-24s x%-4d %8s\n", i+1, name, item.Quantity, price)
	}

	fmt.Fprintf(c.out, "Subtotal (%d items): %s  Tax (8%%): %s  Total: %s  [%s]\n",
		sum.ValidItemCount,
		sum.Subtotal.StringFixed(2),
		sum.Tax.StringFixed(2),
		sum.Total.StringFixed(2),
		ctrl.State())
}
