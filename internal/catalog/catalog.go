// Package catalog loads and indexes the read-only product and customer data
// the order screen works against. A Snapshot is immutable: reloading replaces
// it wholesale, it is never patched in place.
package catalog

import (
	"hash/fnv"

	"github.com/shopspring/decimal"
)

// Product is a catalog item as served by the backend.
type Product struct {
	ID       int64
	Name     string
	SKU      string
	Price    decimal.Decimal
	Stock    int
	Category string
}

// Customer is a customer reference for order composition.
type Customer struct {
	ID   int64
	Name string
}

// Snapshot is an immutable view of the catalog at one load.
type Snapshot struct {
	products  []Product
	customers []Customer
	index     map[int64]Product
	version   uint64
}

// NewSnapshot indexes the given products and customers.
func NewSnapshot(products []Product, customers []Customer) *Snapshot {
	index := make(map[int64]Product, len(products))
	h := fnv.New64a()
	for _, p := range products {
		index[p.ID] = p
		h.Write([]byte(p.Price.String()))
		var buf [8]byte
		for i := range buf {
			buf[i] = byte(p.ID >> (8 * i))
		}
		h.Write(buf[:])
	}
	return &Snapshot{
		products:  products,
		customers: customers,
		index:     index,
		version:   h.Sum64(),
	}
}

// Lookup returns the product with the given id. Safe on a nil Snapshot.
func (s *Snapshot) Lookup(id int64) (Product, bool) {
	if s == nil {
		return Product{}, false
	}
	p, ok := s.index[id]
	return p, ok
}

// Products returns the product list in backend order.
func (s *Snapshot) Products() []Product {
	if s == nil {
		return nil
	}
	return s.products
}

// Customers returns the customer list in backend order.
func (s *Snapshot) Customers() []Customer {
	if s == nil {
		return nil
	}
	return s.customers
}

// Version is a cheap structural fingerprint of the priced content, used as a
// memoization key by the order summary. A nil Snapshot has version zero.
func (s *Snapshot) Version() uint64 {
	if s == nil {
		return 0
	}
	return s.version
}
