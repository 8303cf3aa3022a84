//go:build integration

package integration

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/minimart/console/internal/api"
	"github.com/minimart/console/internal/authz"
	"github.com/minimart/console/internal/catalog"
	"github.com/minimart/console/internal/console"
	"github.com/minimart/console/internal/order"
	"github.com/minimart/console/internal/session"
	"github.com/minimart/console/pkg/httpclient"
)

// newSession wires a file-backed session store the way the app does.
func newSession(t *testing.T, dir string) (*session.Store, string) {
	t.Helper()
	path := filepath.Join(dir, "token")
	return session.NewStore(session.NewFileStore(path), zaptest.NewLogger(t)), path
}

func newClient(t *testing.T, baseURL string, sessions *session.Store) *api.Client {
	t.Helper()
	client, err := api.NewClient(api.Config{
		BaseURL: baseURL,
		Timeout: 5 * time.Second,
		Transport: httpclient.Wrap(nil,
			httpclient.RequestID(),
			httpclient.BearerAuth(sessions),
		),
	})
	require.NoError(t, err)
	return client
}

func login(t *testing.T, ctx context.Context, client *api.Client, sessions *session.Store) {
	t.Helper()
	resp, err := client.Login(ctx, "admin@minimart.local", "Admin@123")
	require.NoError(t, err)

	roles, err := authz.ParseRoles(resp.Roles)
	require.NoError(t, err)
	require.NoError(t, sessions.Login(resp.Token, session.Identity{
		Subject:  resp.Email,
		FullName: resp.FullName,
		Roles:    roles,
	}))
}

func TestOrderLifecycle(t *testing.T) {
	backend := newFakeBackend()
	srv := backend.start(t)
	ctx := context.Background()

	sessions, _ := newSession(t, t.TempDir())
	client := newClient(t, srv.URL, sessions)
	login(t, ctx, client, sessions)

	id, ok := sessions.Current()
	require.True(t, ok)
	require.Equal(t, "admin@minimart.local", id.Subject)
	require.Equal(t, authz.DecisionAllowed,
		authz.Decide(sessions.Roles(), []authz.Role{authz.RoleAdmin, authz.RoleManager}))

	snap, err := catalog.NewLoader(client).Load(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Products(), 2)
	require.Len(t, snap.Customers(), 1)

	draft := order.NewDraft()
	sums := &order.Summarizer{}
	ctrl := order.NewController(client)

	// A fresh draft has one incomplete item and no customer, so it is not
	// submittable yet.
	require.False(t, ctrl.CanSubmit(draft, sums.Summarize(draft, snap)))

	draft.SetCustomer(7)
	productID := int64(1)
	qty := 3
	draft.UpdateItem(0, order.Patch{ProductID: &productID, Quantity: &qty})
	draft.AddItem()
	second := int64(2)
	draft.UpdateItem(1, order.Patch{ProductID: &second})

	sum := sums.Summarize(draft, snap)
	require.Equal(t, "50.00", sum.Subtotal.StringFixed(2))
	require.Equal(t, "4.00", sum.Tax.StringFixed(2))
	require.Equal(t, "54.00", sum.Total.StringFixed(2))
	require.Equal(t, 2, sum.ValidItemCount)
	require.True(t, ctrl.CanSubmit(draft, sum))

	require.Equal(t, order.StateSuccess, ctrl.Submit(ctx, draft, sum))
	conf, ok := ctrl.Result()
	require.True(t, ok)
	require.Equal(t, int64(100), conf.OrderID)
	require.Equal(t, "54.00", conf.TotalAmount.StringFixed(2))
	require.Equal(t, 1, backend.orderCount())

	// An invoice for the confirmed order lands on disk.
	dir := t.TempDir()
	path := filepath.Join(dir, "invoice.pdf")
	f, err := os.Create(path)
	require.NoError(t, err)
	n, err := client.DownloadInvoice(ctx, conf.OrderID, f)
	require.NoError(t, f.Close())
	require.NoError(t, err)
	require.Positive(t, n)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "%PDF")

	// Acknowledging the confirmation resets to a fresh draft.
	ctrl.Acknowledge(draft)
	require.Equal(t, order.StateIdle, ctrl.State())
	require.Zero(t, draft.CustomerID)
	require.Len(t, draft.Items, 1)
	_, ok = ctrl.Result()
	require.False(t, ok)

	// Every request went through the full client middleware chain.
	require.Zero(t, backend.bareRequests())
}

func TestSubmitRejectedKeepsDraft(t *testing.T) {
	backend := newFakeBackend()
	srv := backend.start(t)
	ctx := context.Background()

	sessions, _ := newSession(t, t.TempDir())
	client := newClient(t, srv.URL, sessions)
	login(t, ctx, client, sessions)

	snap, err := catalog.NewLoader(client).Load(ctx)
	require.NoError(t, err)

	draft := order.NewDraft()
	draft.SetCustomer(7)
	unknown := int64(999)
	draft.UpdateItem(0, order.Patch{ProductID: &unknown})

	sums := &order.Summarizer{}
	ctrl := order.NewController(client)
	sum := sums.Summarize(draft, snap)
	require.True(t, ctrl.CanSubmit(draft, sum))

	require.Equal(t, order.StateError, ctrl.Submit(ctx, draft, sum))
	require.Equal(t, "Product 999 not found", ctrl.Message())
	require.Equal(t, int64(7), draft.CustomerID)
	require.Zero(t, backend.orderCount())

	// The rejection is recoverable: fix the draft and retry.
	known := int64(2)
	draft.UpdateItem(0, order.Patch{ProductID: &known})
	sum = sums.Summarize(draft, snap)
	require.Equal(t, order.StateSuccess, ctrl.Submit(ctx, draft, sum))
	require.Equal(t, 1, backend.orderCount())
}

func TestSessionRestoreAcrossRestart(t *testing.T) {
	backend := newFakeBackend()
	srv := backend.start(t)
	ctx := context.Background()

	dir := t.TempDir()
	sessions, path := newSession(t, dir)
	client := newClient(t, srv.URL, sessions)
	login(t, ctx, client, sessions)

	// Simulate a process restart: a new store over the same slot.
	restarted := session.NewStore(session.NewFileStore(path), zaptest.NewLogger(t))
	restarted.Restore()

	id, ok := restarted.Current()
	require.True(t, ok)
	require.Equal(t, "admin@minimart.local", id.Subject)
	require.Empty(t, id.FullName)
	require.True(t, restarted.HasRole(authz.RoleAdmin))

	// The restored token still authorizes API calls.
	restartedClient := newClient(t, srv.URL, restarted)
	products, err := restartedClient.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
}

func TestExpiredSlotClearedOnRestore(t *testing.T) {
	backend := newFakeBackend()
	dir := t.TempDir()
	path := filepath.Join(dir, "token")

	stale := backend.mintToken(t, "admin@minimart.local", []string{"ADMIN"}, time.Now().Add(-time.Hour))
	store := session.NewFileStore(path)
	require.NoError(t, store.Save(stale))

	sessions := session.NewStore(store, zaptest.NewLogger(t))
	sessions.Restore()

	_, ok := sessions.Current()
	require.False(t, ok)
	_, exists, err := store.Load()
	require.NoError(t, err)
	require.False(t, exists)
}

func TestBadCredentialsSurfaceServerMessage(t *testing.T) {
	backend := newFakeBackend()
	srv := backend.start(t)

	sessions, _ := newSession(t, t.TempDir())
	client := newClient(t, srv.URL, sessions)

	_, err := client.Login(context.Background(), "admin@minimart.local", "wrong")
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, 401, apiErr.StatusCode)
	require.Equal(t, "Bad credentials", apiErr.Message)

	_, ok := sessions.Current()
	require.False(t, ok)
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	backend := newFakeBackend()
	srv := backend.start(t)

	sessions, _ := newSession(t, t.TempDir())
	client := newClient(t, srv.URL, sessions)

	_, err := client.ListProducts(context.Background())
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, 401, apiErr.StatusCode)
}

func TestSalesReport(t *testing.T) {
	backend := newFakeBackend()
	srv := backend.start(t)
	ctx := context.Background()

	sessions, _ := newSession(t, t.TempDir())
	client := newClient(t, srv.URL, sessions)
	login(t, ctx, client, sessions)

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	report, err := client.SalesReport(ctx, from, to)
	require.NoError(t, err)
	require.Equal(t, "64.80", report.TotalRevenue.StringFixed(2))
	require.Equal(t, "Milk", report.TopProduct)
}

// TestScriptedConsoleSession drives the full REPL against the fake backend.
func TestScriptedConsoleSession(t *testing.T) {
	backend := newFakeBackend()
	srv := backend.start(t)

	sessions, _ := newSession(t, t.TempDir())
	client := newClient(t, srv.URL, sessions)

	script := []string{
		"order", // gated, not logged in: redirected to login
		"admin@minimart.local",
		"Admin@123",
		"whoami",
		"products",
		"order",
		"customer 7",
		"item 1 1",
		"qty 1 3",
		"submit",
		"invoice",
		"ack",
		"back",
		"logout",
		"quit",
	}
	in := bytes.NewBufferString(joinLines(script))
	var out bytes.Buffer

	downloads := t.TempDir()
	ui := console.New(console.Config{DownloadDir: downloads}, in, &out,
		sessions, client, catalog.NewLoader(client))
	require.NoError(t, ui.Run(context.Background()))

	text := out.String()
	require.Contains(t, text, "Signed in as Alex Admin.")
	require.Contains(t, text, "Milk")
	require.Contains(t, text, "Total: 32.40") // 3 x 10.00 plus 8% tax
	require.Contains(t, text, "Order 100 created")
	require.Contains(t, text, "Signed out.")
	require.Equal(t, 1, backend.orderCount())

	invoicePath := filepath.Join(downloads, "invoice-100.pdf")
	require.Contains(t, text, "Invoice saved to "+invoicePath)
	data, err := os.ReadFile(invoicePath)
	require.NoError(t, err)
	require.Contains(t, string(data), "%PDF")

	_, ok := sessions.Current()
	require.False(t, ok)
}

// TestScriptedConsoleSessionCashier checks that a role mismatch is a silent
// redirect home and that the menu never offers a screen the session cannot
// open.
func TestScriptedConsoleSessionCashier(t *testing.T) {
	backend := newFakeBackend()
	srv := backend.start(t)

	sessions, _ := newSession(t, t.TempDir())
	client := newClient(t, srv.URL, sessions)

	script := []string{
		"login",
		"cashier@minimart.local",
		"Cashier@123",
		"reports", // gated to ADMIN/MANAGER
		"quit",
	}
	var out bytes.Buffer
	ui := console.New(console.Config{DownloadDir: t.TempDir()},
		bytes.NewBufferString(joinLines(script)), &out,
		sessions, client, catalog.NewLoader(client))
	require.NoError(t, ui.Run(context.Background()))

	text := out.String()
	require.Contains(t, text, "Signed in as Casey Till.")
	require.Contains(t, text, "Create Order") // staff screens still offered
	require.NotContains(t, text, "Sales Reports")
	require.NotContains(t, text, "From [") // reports screen never opened
	require.NotContains(t, text, "! ")     // denial is not an error

	// Home renders three times: startup, after login, after the denial.
	require.Equal(t, 3, strings.Count(text, "Available screens:"))
}

func joinLines(lines []string) string {
	var b bytes.Buffer
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return b.String()
}
