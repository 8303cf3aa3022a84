package order

import (
	"hash/fnv"

	"github.com/shopspring/decimal"

	"github.com/minimart/console/internal/catalog"
)

// taxRate is the fixed 8% sales tax applied to every order.
var taxRate = decimal.New(8, -2)

// Summary is derived pricing state. It is never stored or mutated, only
// recomputed from a draft and a catalog snapshot. Values are exact decimals;
// two-place rounding happens at display time only.
type Summary struct {
	Subtotal       decimal.Decimal
	Tax            decimal.Decimal
	Total          decimal.Decimal
	ValidItemCount int
}

// Summarize prices a draft against a catalog snapshot. Rows count as valid
// when a product is selected and the quantity is positive; duplicate product
// selections are priced independently. A valid row whose product is missing
// from the snapshot contributes zero: the catalog may lag the draft while a
// reload is in flight, which is not an error.
func Summarize(d *Draft, snap *catalog.Snapshot) Summary {
	subtotal := decimal.Zero
	count := 0
	for _, item := range d.Items {
		if !item.Complete() || item.Quantity <= 0 {
			continue
		}
		count++
		p, ok := snap.Lookup(item.ProductID)
		if !ok {
			continue
		}
		subtotal = subtotal.Add(p.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	tax := subtotal.Mul(taxRate)
	return Summary{
		Subtotal:       subtotal,
		Tax:            tax,
		Total:          subtotal.Add(tax),
		ValidItemCount: count,
	}
}

// Summarizer memoizes Summarize on a structural key of its inputs, so a
// render loop can recompute freely and only pay for actual changes. Not safe
// for concurrent use; the composition screen owns one.
type Summarizer struct {
	key    uint64
	cached Summary
	valid  bool
}

// Summarize returns the cached summary when neither the draft nor the
// snapshot changed since the last call.
func (s *Summarizer) Summarize(d *Draft, snap *catalog.Snapshot) Summary {
	key := summaryKey(d, snap)
	if s.valid && key == s.key {
		return s.cached
	}
	s.cached = Summarize(d, snap)
	s.key = key
	s.valid = true
	return s.cached
}

func summaryKey(d *Draft, snap *catalog.Snapshot) uint64 {
	h := fnv.New64a()
	writeUint64 := func(v uint64) {
		var buf [8]byte
		for i := range buf {
			buf[i] = byte(v >> (8 * i))
		}
		h.Write(buf[:])
	}
	writeUint64(snap.Version())
	writeUint64(uint64(d.CustomerID))
	for _, item := range d.Items {
		writeUint64(uint64(item.ProductID))
		writeUint64(uint64(item.Quantity))
	}
	return h.Sum64()
}
