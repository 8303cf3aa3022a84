//go:build integration

package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// fakeBackend is an in-process stand-in for the Minimart API, close enough
// for end-to-end console flows: JWT login, bearer-protected resources, order
// creation with server-side totals, invoice PDFs.
type fakeBackend struct {
	secret []byte

	mu        sync.Mutex
	nextOrder int64
	orders    map[int64]orderRecord
	bareCount int // requests that arrived without an X-Request-ID
}

type orderRecord struct {
	customerID int64
	items      int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		secret:    []byte("integration-secret"),
		nextOrder: 100,
		orders:    make(map[int64]orderRecord),
	}
}

func (b *fakeBackend) mintToken(t *testing.T, email string, roles []string, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":   email,
		"roles": roles,
		"exp":   exp.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.secret)
	require.NoError(t, err)
	return token
}

func (b *fakeBackend) start(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Request-ID") == "" {
			b.mu.Lock()
			b.bareCount++
			b.mu.Unlock()
		}

		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/auth/login":
			b.handleLogin(t, w, r)
		case r.Method == http.MethodGet && r.URL.Path == "/api/products":
			b.requireAuth(w, r, func() {
				writeJSON(w, http.StatusOK, []map[string]any{
					{"id": 1, "name": "Milk", "sku": "MLK-1", "price": 10.00, "stock": 25, "category": "Dairy"},
					{"id": 2, "name": "Bread", "sku": "BRD-1", "price": 20.00, "stock": 8, "category": "Bakery"},
				})
			})
		case r.Method == http.MethodGet && r.URL.Path == "/api/customers":
			b.requireAuth(w, r, func() {
				writeJSON(w, http.StatusOK, []map[string]any{
					{"id": 7, "name": "ACME Corp"},
				})
			})
		case r.Method == http.MethodPost && r.URL.Path == "/api/orders":
			b.requireAuth(w, r, func() { b.handleCreateOrder(w, r) })
		case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/invoice.pdf"):
			b.requireAuth(w, r, func() {
				w.Header().Set("Content-Type", "application/pdf")
				fmt.Fprintf(w, "%%PDF-1.4 invoice %s", r.URL.Path)
			})
		case r.Method == http.MethodGet && r.URL.Path == "/api/reports/sales":
			b.requireAuth(w, r, func() {
				writeJSON(w, http.StatusOK, map[string]any{
					"totalRevenue": 64.80,
					"totalOrders":  len(b.orders),
					"topProduct":   "Milk",
				})
			})
		default:
			writeJSON(w, http.StatusNotFound, map[string]any{"message": "not found"})
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

// accounts are the seeded staff logins.
var accounts = map[string]struct {
	password string
	id       int64
	fullName string
	roles    []string
}{
	"admin@minimart.local":   {password: "Admin@123", id: 1, fullName: "Alex Admin", roles: []string{"ADMIN", "MANAGER"}},
	"cashier@minimart.local": {password: "Cashier@123", id: 2, fullName: "Casey Till", roles: []string{"CASHIER"}},
}

func (b *fakeBackend) handleLogin(t *testing.T, w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "malformed body"})
		return
	}
	account, ok := accounts[body.Email]
	if !ok || body.Password != account.password {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Bad credentials"})
		return
	}
	token := b.mintToken(t, body.Email, account.roles, time.Now().Add(time.Hour))
	writeJSON(w, http.StatusOK, map[string]any{
		"token":    token,
		"id":       account.id,
		"email":    body.Email,
		"fullName": account.fullName,
		"roles":    account.roles,
	})
}

func (b *fakeBackend) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CustomerID int64 `json:"customerId"`
		Items      []struct {
			ProductID int64 `json:"productId"`
			Quantity  int   `json:"quantity"`
		} `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.CustomerID == 0 || len(body.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "customerId and items are required"})
		return
	}

	prices := map[int64]float64{1: 10.00, 2: 20.00}
	subtotal := 0.0
	for _, item := range body.Items {
		price, ok := prices[item.ProductID]
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"message": fmt.Sprintf("Product %d not found", item.ProductID),
			})
			return
		}
		subtotal += price * float64(item.Quantity)
	}

	b.mu.Lock()
	id := b.nextOrder
	b.nextOrder++
	b.orders[id] = orderRecord{customerID: body.CustomerID, items: len(body.Items)}
	b.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":          id,
		"totalAmount": subtotal * 1.08,
		"status":      "NEW",
	})
}

func (b *fakeBackend) requireAuth(w http.ResponseWriter, r *http.Request, next func()) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "missing token"})
		return
	}
	if _, err := jwt.Parse(token, func(*jwt.Token) (any, error) { return b.secret, nil }); err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "invalid token"})
		return
	}
	next()
}

func (b *fakeBackend) orderCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.orders)
}

func (b *fakeBackend) bareRequests() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bareCount
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
