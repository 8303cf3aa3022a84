// Package console is the terminal view layer: a line-oriented command loop
// over role-gated screens. It holds no business state of its own; every
// screen derives what it shows from the session store, the catalog snapshot,
// and the order engine.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-faster/errors"

	"github.com/minimart/console/internal/api"
	"github.com/minimart/console/internal/authz"
	"github.com/minimart/console/internal/catalog"
	"github.com/minimart/console/internal/order"
	"github.com/minimart/console/internal/session"
)

// Backend is the slice of the API client the console drives.
type Backend interface {
	Login(ctx context.Context, email, password string) (*api.LoginResponse, error)
	SalesReport(ctx context.Context, from, to time.Time) (*api.SalesSummary, error)
	DownloadInvoice(ctx context.Context, orderID int64, w io.Writer) (int64, error)
	order.Placer
}

// Config holds the console's presentation settings.
type Config struct {
	// DownloadDir is where invoice PDFs are saved.
	DownloadDir string
}

// staffRoles gates the day-to-day screens; reports and beyond are narrower.
var staffRoles = []authz.Role{authz.RoleAdmin, authz.RoleManager, authz.RoleCashier}

// view is one gated screen.
type view struct {
	name     string
	title    string
	required []authz.Role
}

var views = []view{
	{name: "products", title: "Products", required: staffRoles},
	{name: "customers", title: "Customers", required: staffRoles},
	{name: "order", title: "Create Order", required: staffRoles},
	{name: "reports", title: "Sales Reports", required: []authz.Role{authz.RoleAdmin, authz.RoleManager}},
}

// Console runs the command loop.
type Console struct {
	cfg      Config
	in       *bufio.Scanner
	out      io.Writer
	sessions *session.Store
	backend  Backend
	loader   *catalog.Loader
}

// New creates a Console reading commands from in and rendering to out.
func New(cfg Config, in io.Reader, out io.Writer, sessions *session.Store, backend Backend, loader *catalog.Loader) *Console {
	return &Console{
		cfg:      cfg,
		in:       bufio.NewScanner(in),
		out:      out,
		sessions: sessions,
		backend:  backend,
		loader:   loader,
	}
}

// Run drives the command loop until quit, EOF, or context cancellation. The
// session store must already be restored; the first prompt renders with the
// session state settled.
func (c *Console) Run(ctx context.Context) error {
	fmt.Fprintln(c.out, "Minimart admin console. Type 'help' for commands.")
	c.home()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "%s> ", c.promptName())
		if !c.in.Scan() {
			fmt.Fprintln(c.out)
			return errors.Wrap(c.in.Err(), "read input")
		}

		fields := strings.Fields(c.in.Text())
		if len(fields) == 0 {
			continue
		}
		switch cmd := fields[0]; cmd {
		case "quit", "exit":
			return nil
		case "help", "menu":
			c.home()
		case "login":
			c.loginScreen(ctx)
		case "logout":
			if err := c.sessions.Logout(); err != nil {
				c.notify("Failed to clear the stored credential.")
				continue
			}
			fmt.Fprintln(c.out, "Signed out.")
		case "whoami":
			c.whoami()
		default:
			c.open(ctx, cmd)
		}
	}
}

// open routes to a gated view. Denials are redirects, never error messages:
// unauthenticated lands on the login screen, unauthorized back home.
func (c *Console) open(ctx context.Context, name string) {
	v, ok := findView(name)
	if !ok {
		fmt.Fprintf(c.out, "Unknown command %q. Type 'help' for commands.\n", name)
		return
	}

	switch authz.Decide(c.sessions.Roles(), v.required) {
	case authz.DecisionUnauthenticated:
		c.loginScreen(ctx)
	case authz.DecisionUnauthorized:
		c.home()
	case authz.DecisionAllowed:
		c.openAllowed(ctx, v.name)
	}
}

func (c *Console) openAllowed(ctx context.Context, name string) {
	switch name {
	case "products":
		c.productsScreen(ctx)
	case "customers":
		c.customersScreen(ctx)
	case "order":
		c.orderScreen(ctx)
	case "reports":
		c.reportsScreen(ctx)
	}
}

func findView(name string) (view, bool) {
	for _, v := range views {
		if v.name == name {
			return v, true
		}
	}
	return view{}, false
}

// home renders the greeting and the menu. Only views the session can
// actually open are listed, using the same decision function that guards
// them.
func (c *Console) home() {
	if id, ok := c.sessions.Current(); ok {
		name := id.FullName
		if name == "" {
			name = id.Subject
		}
		fmt.Fprintf(c.out, "Signed in as %s.\n", name)
	} else {
		fmt.Fprintln(c.out, "Not signed in. Use 'login' to begin.")
	}

	fmt.Fprintln(c.out, "Available screens:")
	for _, v := range views {
		if authz.Decide(c.sessions.Roles(), v.required) == authz.DecisionAllowed {
			fmt.Fprintf(c.out, "  %-10s %s\n", v.name, v.title)
		}
	}
	fmt.Fprintln(c.out, "Other commands: login, logout, whoami, help, quit")
}

func (c *Console) whoami() {
	id, ok := c.sessions.Current()
	if !ok {
		fmt.Fprintln(c.out, "Not signed in.")
		return
	}
	roles := make([]string, len(id.Roles))
	for i, r := range id.Roles {
		roles[i] = string(r)
	}
	fmt.Fprintf(c.out, "%s (%s) roles: %s\n", id.FullName, id.Subject, strings.Join(roles, ", "))
}

// loginScreen prompts for credentials and exchanges them with the backend.
// Rejections stay inline and retryable; the user is returned to the prompt.
func (c *Console) loginScreen(ctx context.Context) {
	email, ok := c.prompt("Email: ")
	if !ok {
		return
	}
	password, ok := c.prompt("Password: ")
	if !ok {
		return
	}

	resp, err := c.backend.Login(ctx, email, password)
	if err != nil {
		c.notify(loginMessage(err))
		return
	}

	roles, err := authz.ParseRoles(resp.Roles)
	if err != nil {
		// The backend handed us a role outside the known set; nothing
		// in this console could be gated by it.
		c.notify("Login response contained an unknown role.")
		return
	}
	if err := c.sessions.Login(resp.Token, session.Identity{
		Subject:  resp.Email,
		FullName: resp.FullName,
		Roles:    roles,
	}); err != nil {
		c.notify("Signed in, but the credential could not be saved for next time.")
	}
	c.home()
}

func loginMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "Invalid email or password."
}

func (c *Console) productsScreen(ctx context.Context) {
	snap, err := c.loader.Load(ctx)
	if err != nil {
		c.notify("Failed to load products.")
		return
	}
	fmt.Fprintf(c.out, "%-5s %-24s %-10s %8s %6s\n", "ID", "NAME", "SKU", "PRICE", "STOCK")
	for _, p := range snap.Products() {
		fmt.Fprintf(c.out, "%-5d %-24s %-10s %8s %6d\n", p.ID, p.Name, p.SKU, p.Price.StringFixed(2), p.Stock)
	}
}

func (c *Console) customersScreen(ctx context.Context) {
	snap, err := c.loader.Load(ctx)
	if err != nil {
		c.notify("Failed to load customers.")
		return
	}
	fmt.Fprintf(c.out, "%-5s %s\n", "ID", "NAME")
	for _, cu := range snap.Customers() {
		fmt.Fprintf(c.out, "%-5d %s\n", cu.ID, cu.Name)
	}
}

// prompt reads one trimmed line. ok is false on EOF.
func (c *Console) prompt(label string) (string, bool) {
	fmt.Fprint(c.out, label)
	if !c.in.Scan() {
		fmt.Fprintln(c.out)
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}

// notify renders a user-facing notification. Nothing shown here is fatal.
func (c *Console) notify(msg string) {
	fmt.Fprintf(c.out, "! %s\n", msg)
}

func (c *Console) promptName() string {
	if id, ok := c.sessions.Current(); ok {
		return id.Subject
	}
	return "minimart"
}
