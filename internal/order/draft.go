// Package order implements the order-composition core: the mutable draft, the
// derived pricing summary, and the submission state machine.
package order

// LineItem is one product/quantity row in a draft. A zero ProductID marks the
// row as incomplete; incomplete rows are excluded from pricing and from the
// submitted payload.
type LineItem struct {
	ProductID int64
	Quantity  int
}

// Complete reports whether a product has been selected for this row.
func (li LineItem) Complete() bool {
	return li.ProductID != 0
}

// Draft is an order being composed. A zero CustomerID means no customer has
// been selected yet. Item order is presentation-only.
type Draft struct {
	CustomerID int64
	Items      []LineItem
}

// NewDraft returns a fresh draft: no customer, one incomplete row.
func NewDraft() *Draft {
	return &Draft{Items: []LineItem{{Quantity: 1}}}
}

// Patch is a partial line-item update. Nil fields are left untouched.
type Patch struct {
	ProductID *int64
	Quantity  *int
}

// AddItem appends an incomplete row with quantity 1.
func (d *Draft) AddItem() {
	d.Items = append(d.Items, LineItem{Quantity: 1})
}

// UpdateItem merges patch into the row at index i. Quantity is clamped to at
// least 1 on every update. The index must be one the caller rendered; the
// draft does not range-check on the caller's behalf.
func (d *Draft) UpdateItem(i int, patch Patch) {
	item := &d.Items[i]
	if patch.ProductID != nil {
		item.ProductID = *patch.ProductID
	}
	if patch.Quantity != nil {
		item.Quantity = *patch.Quantity
	}
	if item.Quantity < 1 {
		item.Quantity = 1
	}
}

// RemoveItem deletes the row at index i. Remaining rows keep their content.
func (d *Draft) RemoveItem(i int) {
	d.Items = append(d.Items[:i], d.Items[i+1:]...)
}

// SetCustomer selects the customer the order is for.
func (d *Draft) SetCustomer(id int64) {
	d.CustomerID = id
}

// Reset returns the draft to its initial shape: no customer, one incomplete
// row.
func (d *Draft) Reset() {
	d.CustomerID = 0
	d.Items = []LineItem{{Quantity: 1}}
}
