package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/sweetcart/internal/app"
	"github.com/vladislavdragonenkov/sweetcart/internal/checkout"
	"github.com/vladislavdragonenkov/sweetcart/internal/domain"
	"github.com/vladislavdragonenkov/sweetcart/internal/health"
)

type command struct {
	usage string
	run   func(ctx context.Context, deps *app.Dependencies, args []string, out io.Writer) error
}

var commands = map[string]command{
	"show":     {usage: "show the cart", run: runShow},
	"add":      {usage: "add -id N [-qty N] [-notes TEXT]", run: runAdd},
	"remove":   {usage: "remove -id N", run: runRemove},
	"qty":      {usage: "qty -id N -qty N (0 removes the item)", run: runQuantity},
	"notes":    {usage: "notes -id N -notes TEXT", run: runNotes},
	"clear":    {usage: "clear the cart", run: runClear},
	"sync":     {usage: "refresh items from the catalog", run: runSync},
	"validate": {usage: "check the cart against stock and availability", run: runValidate},
	"summary":  {usage: "print the cart summary", run: runSummary},
	"export":   {usage: "export [-file PATH]", run: runExport},
	"import":   {usage: "import -file PATH (- for stdin)", run: runImport},
	"checkout": {usage: "checkout -name -email -phone -address [-notes]", run: runCheckout},
	"orders":   {usage: "orders -email ADDRESS", run: runOrders},
	"login":    {usage: "login -token TOKEN", run: runLogin},
	"logout":   {usage: "drop the token and clear the cart", run: runLogout},
	"doctor":   {usage: "check storage, catalog and broker", run: runDoctor},
}

func printUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "usage: sweetcart <command> [flags]")
	_, _ = fmt.Fprintln(w)

	names := make([]string, 0, len(commands)+1)
	for name := range commands {
		names = append(names, name)
	}
	names = append(names, "version")
	sort.Strings(names)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, name := range names {
		usage := "print build information"
		if cmd, ok := commands[name]; ok {
			usage = cmd.usage
		}
		_, _ = fmt.Fprintf(tw, "  %s\t%s\n", name, usage)
	}
	_ = tw.Flush()
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %s: %v", errInvalid, fs.Name(), err)
	}
	return nil
}

func requireID(fs *flag.FlagSet, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: %s: -id must be a positive sweet id", errInvalid, fs.Name())
	}
	return nil
}

func runShow(_ context.Context, deps *app.Dependencies, _ []string, out io.Writer) error {
	printCart(out, deps.Session.Cart().Cart())
	return nil
}

func runAdd(ctx context.Context, deps *app.Dependencies, args []string, out io.Writer) error {
	fs := newFlagSet("add")
	id := fs.Int64("id", 0, "sweet id")
	qty := fs.Int("qty", 1, "quantity")
	notes := fs.String("notes", "", "notes for the item")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := requireID(fs, *id); err != nil {
		return err
	}
	if *qty <= 0 {
		return fmt.Errorf("%w: add: -qty must be positive", errInvalid)
	}

	sweet, err := deps.Catalog.GetSweet(ctx, *id)
	if err != nil {
		return err
	}

	printCart(out, deps.Session.Cart().AddItem(sweet, *qty, *notes))
	return nil
}

func runRemove(_ context.Context, deps *app.Dependencies, args []string, out io.Writer) error {
	fs := newFlagSet("remove")
	id := fs.Int64("id", 0, "sweet id")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := requireID(fs, *id); err != nil {
		return err
	}

	printCart(out, deps.Session.Cart().RemoveItem(*id))
	return nil
}

func runQuantity(_ context.Context, deps *app.Dependencies, args []string, out io.Writer) error {
	fs := newFlagSet("qty")
	id := fs.Int64("id", 0, "sweet id")
	qty := fs.Int("qty", 0, "new quantity")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := requireID(fs, *id); err != nil {
		return err
	}

	printCart(out, deps.Session.Cart().UpdateQuantity(*id, *qty))
	return nil
}

func runNotes(_ context.Context, deps *app.Dependencies, args []string, out io.Writer) error {
	fs := newFlagSet("notes")
	id := fs.Int64("id", 0, "sweet id")
	notes := fs.String("notes", "", "notes, empty clears them")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := requireID(fs, *id); err != nil {
		return err
	}

	printCart(out, deps.Session.Cart().UpdateNotes(*id, *notes))
	return nil
}

func runClear(_ context.Context, deps *app.Dependencies, _ []string, out io.Writer) error {
	printCart(out, deps.Session.Cart().Clear())
	return nil
}

func runSync(ctx context.Context, deps *app.Dependencies, _ []string, out io.Writer) error {
	sweets, err := deps.Catalog.ListSweets(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrCatalogUnavailable, err)
	}

	store := deps.Session.Cart()
	before := len(store.Cart().Items)
	after := store.SyncWithCatalog(sweets)
	if dropped := before - len(after.Items); dropped > 0 {
		_, _ = fmt.Fprintf(out, "removed %d item(s) no longer available\n", dropped)
	}
	printCart(out, after)
	return nil
}

func runValidate(_ context.Context, deps *app.Dependencies, _ []string, out io.Writer) error {
	res := deps.Session.Cart().Validate()
	if res.IsValid {
		_, _ = fmt.Fprintln(out, "cart is valid")
		return nil
	}
	return fmt.Errorf("%w: %s", errInvalid, strings.Join(res.Errors, "; "))
}

func runSummary(_ context.Context, deps *app.Dependencies, _ []string, out io.Writer) error {
	s := deps.Session.Cart().Summary()
	_, _ = fmt.Fprintf(out, "%d %s, total %s\n", s.ItemCount, s.ItemsText, s.TotalAmount.StringFixed(2))
	return nil
}

func runExport(_ context.Context, deps *app.Dependencies, args []string, out io.Writer) error {
	fs := newFlagSet("export")
	file := fs.String("file", "", "write to file instead of stdout")
	if err := parse(fs, args); err != nil {
		return err
	}

	data := deps.Session.Cart().Export()
	if *file == "" {
		_, _ = fmt.Fprintln(out, data)
		return nil
	}
	if err := os.WriteFile(*file, []byte(data+"\n"), 0o600); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}

func runImport(_ context.Context, deps *app.Dependencies, args []string, out io.Writer) error {
	fs := newFlagSet("import")
	file := fs.String("file", "", "cart JSON file, - for stdin")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *file == "" {
		return fmt.Errorf("%w: import: -file is required", errInvalid)
	}

	var (
		data []byte
		err  error
	)
	if *file == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(*file)
	}
	if err != nil {
		return fmt.Errorf("read import: %w", err)
	}

	imported, err := deps.Session.Cart().Import(data)
	if err != nil {
		return fmt.Errorf("%w: %w", errInvalid, err)
	}
	printCart(out, imported)
	return nil
}

func runCheckout(ctx context.Context, deps *app.Dependencies, args []string, out io.Writer) error {
	fs := newFlagSet("checkout")
	var customer domain.Customer
	fs.StringVar(&customer.Name, "name", "", "customer name")
	fs.StringVar(&customer.Email, "email", "", "customer email")
	fs.StringVar(&customer.Phone, "phone", "", "customer phone")
	fs.StringVar(&customer.DeliveryAddress, "address", "", "delivery address")
	notes := fs.String("notes", "", "order notes")
	if err := parse(fs, args); err != nil {
		return err
	}

	order, err := deps.Checkout.Place(ctx, customer, *notes)
	if err != nil {
		var verr *checkout.ValidationError
		if errors.As(err, &verr) || domain.IsCustomerDetailsError(err) {
			return fmt.Errorf("%w: %w", errInvalid, err)
		}
		return err
	}

	_, _ = fmt.Fprintf(out, "order %d placed, status %s\n", order.ID, order.Status)
	return nil
}

func runOrders(ctx context.Context, deps *app.Dependencies, args []string, out io.Writer) error {
	fs := newFlagSet("orders")
	email := fs.String("email", "", "customer email")
	if err := parse(fs, args); err != nil {
		return err
	}
	if strings.TrimSpace(*email) == "" {
		return fmt.Errorf("%w: orders: -email is required", errInvalid)
	}

	orders, err := deps.Orders.ListByCustomer(ctx, strings.TrimSpace(*email))
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tSTATUS\tTOTAL\tCREATED")
	for _, o := range orders {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", o.ID, o.Status, o.TotalAmount.StringFixed(2), o.CreatedAt)
	}
	return tw.Flush()
}

func runLogin(_ context.Context, deps *app.Dependencies, args []string, out io.Writer) error {
	fs := newFlagSet("login")
	token := fs.String("token", "", "bearer token")
	if err := parse(fs, args); err != nil {
		return err
	}
	if strings.TrimSpace(*token) == "" {
		return fmt.Errorf("%w: login: -token is required", errInvalid)
	}

	if err := deps.Session.SetToken(*token); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out, "token saved")
	return nil
}

func runLogout(_ context.Context, deps *app.Dependencies, _ []string, out io.Writer) error {
	if err := deps.Session.Logout(); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out, "logged out")
	return nil
}

func runDoctor(ctx context.Context, deps *app.Dependencies, args []string, out io.Writer) error {
	fs := newFlagSet("doctor")
	asJSON := fs.Bool("json", false, "print the report as JSON")
	if err := parse(fs, args); err != nil {
		return err
	}

	report := deps.Health.Report(ctx)
	if *asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, name := range report.Names() {
			check := report.Checks[name]
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%dms\t%s\n", name, check.Status, check.DurationMs, check.Message)
		}
		_, _ = fmt.Fprintf(tw, "overall\t%s\n", report.Status)
		_ = tw.Flush()
	}

	if report.Status == health.StatusUnhealthy {
		return errors.New("one or more required components are unhealthy")
	}
	return nil
}

func printCart(w io.Writer, c domain.Cart) {
	if c.IsEmpty() {
		_, _ = fmt.Fprintln(w, "cart is empty")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tQTY\tPRICE\tSUBTOTAL\tNOTES")
	for _, item := range c.Items {
		subtotal := item.Sweet.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\t%s\n",
			item.Sweet.ID, item.Sweet.Name, item.Quantity,
			item.Sweet.Price.StringFixed(2), subtotal.StringFixed(2), item.Notes)
	}
	_, _ = fmt.Fprintf(tw, "\t\t%d\t\t%s\t\n", c.TotalItems, c.TotalAmount.StringFixed(2))
	_ = tw.Flush()
}
