package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/pizzahouse/storefront/internal/api"
	"github.com/pizzahouse/storefront/internal/cart"
	"github.com/pizzahouse/storefront/internal/config"
	"github.com/pizzahouse/storefront/internal/fulfillment"
	"github.com/pizzahouse/storefront/internal/localstore"
	"github.com/pizzahouse/storefront/internal/logging"
	"github.com/pizzahouse/storefront/internal/models"
	"github.com/pizzahouse/storefront/internal/orders"
	"github.com/pizzahouse/storefront/internal/pricing"
	"github.com/pizzahouse/storefront/internal/session"
)

const usage = `usage: storefront <command> [args]

  menu [category]                browse the menu
  search <query>                 search products
  add <product-id> [qty]         add a product to the cart
  cart                           show the cart
  qty <line-id> <n>              change a line's quantity (0 removes)
  remove <line-id>               remove a line
  clear                          empty the cart
  register <name> <email> <phone> <password>
  login <email> <password>
  logout
  whoami
  zones                          list delivery zones
  slots <zone-id>                list a zone's time slots
  delivery <lat> <lng> <addr>    choose delivery for an address
  pickup <location>              choose pickup
  checkout [payment-method]      place the order
  orders                         list my orders
  order <id>                     show one order
  track <id>                     track an order
  admin orders                   list all orders
  admin status <id> <status>     advance an order
  admin print-test               print a printer test page
`

type app struct {
	cfg       config.Config
	log       *slog.Logger
	store     *localstore.Store
	client    *api.Client
	session   *session.Manager
	cart      *cart.Manager
	selection *fulfillment.Selection
}

// selectionKey persists the delivery/pickup choice between invocations, the
// same way the cart and token survive.
const selectionKey = "fulfillment"

type selectionDoc struct {
	Mode     string                      `json:"mode"`
	Delivery *fulfillment.DeliveryChoice `json:"delivery,omitempty"`
	Pickup   *fulfillment.PickupChoice   `json:"pickup,omitempty"`
}

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	store, err := localstore.Open(cfg.StatePath)
	if err != nil {
		log.Error("open local store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	a := &app{cfg: cfg, log: log, selection: fulfillment.NewSelection()}
	a.wire(store)

	ctx := logging.IntoContext(context.Background(), log)
	a.resumeSession(ctx)
	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func (a *app) wire(store *localstore.Store) {
	// The session is the client's token source, so wire it first with a nil
	// API and complete the cycle afterwards.
	sess := session.NewManager(nil, store, a.log)
	client := api.NewClient(a.cfg.APIBaseURL, sess, a.cfg.RequestTimeout, a.log)
	sess.SetAPI(client)
	client.SetAuthExpiredHook(sess.HandleAuthExpired)

	cartMgr := cart.NewManager(client, store, a.log)
	sess.SetSignInHook(func(ctx context.Context) error {
		result, err := cartMgr.MergeOnSignIn(ctx)
		if result != nil {
			for _, name := range result.Dropped {
				fmt.Printf("note: %q is no longer available and was removed from your cart\n", name)
			}
		}
		return err
	})
	sess.SetSignOutHook(cartMgr.SignedOut)

	a.store = store
	a.client = client
	a.session = sess
	a.cart = cartMgr
	a.loadSelection()
}

// resumeSession puts the cart back in remote mode when a stored token is
// still present, so a new invocation sees the server cart instead of an
// empty local one. An anonymous cart left over from an unconfirmed sync
// goes through the usual merge, which degenerates to a plain fetch when no
// persisted copy exists. A token the server rejects tears the session down
// through the auth-expired hook and the cart drops back to local mode.
func (a *app) resumeSession(ctx context.Context) {
	if !a.session.IsAuthenticated() {
		return
	}
	result, err := a.cart.MergeOnSignIn(ctx)
	if err != nil {
		logging.FromContext(ctx).Warn("could not resume server cart", "error", err)
	}
	if result != nil {
		for _, name := range result.Dropped {
			fmt.Printf("note: %q is no longer available and was removed from your cart\n", name)
		}
	}
}

func (a *app) loadSelection() {
	var doc selectionDoc
	if err := a.store.Get(selectionKey, &doc); err != nil {
		return
	}
	switch doc.Mode {
	case fulfillment.ModeDelivery.String():
		if doc.Delivery != nil {
			a.selection.SetDeliveryAddress(*doc.Delivery)
			a.cart.SetDeliveryFee(a.selection.DeliveryFee())
		}
	case fulfillment.ModePickup.String():
		if doc.Pickup != nil {
			a.selection.SetPickupLocation(*doc.Pickup)
		}
	}
}

func (a *app) saveSelection() {
	doc := selectionDoc{
		Mode:     a.selection.Mode().String(),
		Delivery: a.selection.Delivery(),
		Pickup:   a.selection.Pickup(),
	}
	if err := a.store.Put(selectionKey, doc); err != nil {
		a.log.Warn("could not persist fulfillment choice", "error", err)
	}
}

func (a *app) clearSelection() {
	a.selection.Close()
	if err := a.store.Delete(selectionKey); err != nil {
		a.log.Warn("could not clear fulfillment choice", "error", err)
	}
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "menu":
		return a.menu(ctx, args)
	case "search":
		return a.search(ctx, args)
	case "add":
		return a.add(ctx, args)
	case "cart":
		return a.showCart()
	case "qty":
		return a.qty(ctx, args)
	case "remove":
		return a.remove(ctx, args)
	case "clear":
		return a.cart.Clear(ctx)
	case "register":
		return a.register(ctx, args)
	case "login":
		return a.login(ctx, args)
	case "logout":
		a.session.Logout()
		fmt.Println("signed out")
		return nil
	case "whoami":
		return a.whoami(ctx)
	case "zones":
		return a.zones(ctx)
	case "slots":
		return a.slots(ctx, args)
	case "delivery":
		return a.delivery(ctx, args)
	case "pickup":
		return a.pickup(args)
	case "checkout":
		return a.checkout(ctx, args)
	case "orders":
		return a.listOrders(ctx)
	case "order", "track":
		return a.showOrder(ctx, args)
	case "admin":
		return a.admin(ctx, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) menu(ctx context.Context, args []string) error {
	var filter api.ProductFilter
	if len(args) > 0 {
		filter.Category = args[0]
	}
	products, err := a.client.Products(ctx, filter)
	if err != nil {
		return err
	}
	for _, p := range products {
		fmt.Printf("%-36s  %-24s  €%s\n", p.ID, p.Name, p.BasePrice.StringFixed(2))
	}
	return nil
}

func (a *app) search(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("search needs a query")
	}
	products, err := a.client.SearchProducts(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	for _, p := range products {
		fmt.Printf("%-36s  %-24s  €%s\n", p.ID, p.Name, p.BasePrice.StringFixed(2))
	}
	return nil
}

func (a *app) add(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("add needs a product id")
	}
	quantity := uint(1)
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 {
			return fmt.Errorf("quantity must be a positive number")
		}
		quantity = uint(n)
	}

	product, err := a.client.Product(ctx, args[0])
	if err != nil {
		return err
	}
	item, err := pricing.ResolveItem(*product, nil, quantity)
	if err != nil {
		return err
	}
	if err := a.cart.AddItem(ctx, item); err != nil {
		return err
	}
	fmt.Printf("added %d × %s\n", quantity, product.Name)
	return nil
}

func (a *app) showCart() error {
	items := a.cart.Items()
	if len(items) == 0 {
		fmt.Println("cart is empty")
		return nil
	}
	for _, it := range items {
		fmt.Printf("%-44s  %2d × €%s = €%s\n", it.ID, it.Quantity, it.UnitPrice.StringFixed(2), it.LineTotal().StringFixed(2))
	}
	fmt.Printf("subtotal €%s  total €%s  (%s cart)\n",
		a.cart.Subtotal().StringFixed(2), a.cart.Total().StringFixed(2), a.cart.Origin())
	return nil
}

func (a *app) qty(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("qty needs a line id and a quantity")
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("quantity must be a number")
	}
	return a.cart.UpdateQuantity(ctx, args[0], n)
}

func (a *app) remove(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("remove needs a line id")
	}
	return a.cart.RemoveItem(ctx, args[0])
}

func (a *app) register(ctx context.Context, args []string) error {
	if len(args) < 4 {
		return fmt.Errorf("register needs name, email, phone and password")
	}
	user, err := a.session.Register(ctx, api.RegisterRequest{
		Name: args[0], Email: args[1], Phone: args[2], Password: args[3],
	})
	if user != nil {
		fmt.Printf("welcome, %s\n", user.Name)
	}
	return err
}

func (a *app) login(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("login needs email and password")
	}
	user, err := a.session.Login(ctx, args[0], args[1])
	if user != nil {
		fmt.Printf("welcome back, %s\n", user.Name)
	}
	return err
}

func (a *app) whoami(ctx context.Context) error {
	user, err := a.session.Restore(ctx)
	if err != nil {
		return err
	}
	if user == nil {
		fmt.Println("not signed in")
		return nil
	}
	fmt.Printf("%s <%s> (%s)\n", user.Name, user.Email, user.Role)
	return nil
}

func (a *app) zones(ctx context.Context) error {
	zones, err := a.client.DeliveryZones(ctx)
	if err != nil {
		return err
	}
	for _, z := range zones {
		fmt.Printf("%-36s  %-20s  fee €%s  min €%s\n", z.ID, z.Name, z.DeliveryFee.StringFixed(2), z.MinOrderAmount.StringFixed(2))
	}
	return nil
}

func (a *app) slots(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("slots needs a zone id")
	}
	slots, err := a.client.ZoneTimeSlots(ctx, args[0], "")
	if err != nil {
		return err
	}
	for _, s := range slots {
		state := "closed"
		if s.Available {
			state = "open"
		}
		fmt.Printf("%-36s  %s–%s  %s\n", s.ID, s.Start, s.End, state)
	}
	return nil
}

func (a *app) delivery(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("delivery needs lat, lng and an address")
	}
	lat, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("bad latitude: %w", err)
	}
	lng, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("bad longitude: %w", err)
	}
	coords := models.Coordinates{Lat: lat, Lng: lng}

	check, err := a.client.CheckDeliveryAvailability(ctx, coords, a.cart.Subtotal())
	if err != nil {
		return err
	}
	if !check.Available {
		return fmt.Errorf("delivery not available: %s", check.Reason)
	}

	a.selection.SetDeliveryAddress(fulfillment.DeliveryChoice{
		Coordinates: coords,
		Address:     strings.Join(args[2:], " "),
		Zone:        *check.Zone,
	})
	a.cart.SetDeliveryFee(check.Zone.DeliveryFee)
	a.saveSelection()
	fmt.Printf("delivering to zone %s, fee €%s\n", check.Zone.Name, check.Zone.DeliveryFee.StringFixed(2))
	return nil
}

func (a *app) pickup(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("pickup needs a location")
	}
	a.selection.SetPickupLocation(fulfillment.PickupChoice{Location: strings.Join(args, " ")})
	a.cart.SetDeliveryFee(a.selection.DeliveryFee())
	a.saveSelection()
	fmt.Println("pickup selected")
	return nil
}

func (a *app) checkout(ctx context.Context, args []string) error {
	if !a.session.IsAuthenticated() {
		return fmt.Errorf("sign in before checking out")
	}
	items := a.cart.Items()
	if len(items) == 0 {
		return fmt.Errorf("cart is empty")
	}

	payment := "cash"
	if len(args) > 0 {
		payment = args[0]
	}

	req := api.CreateOrderRequest{Items: items, PaymentMethod: payment}
	switch a.selection.Mode() {
	case fulfillment.ModeDelivery:
		choice := a.selection.Delivery()
		req.OrderType = models.OrderTypeDelivery
		req.DeliveryInfo = &models.DeliveryInfo{
			Address:  choice.Address,
			Zone:     choice.Zone.ID,
			TimeSlot: choice.TimeSlot.ID,
		}
	case fulfillment.ModePickup:
		choice := a.selection.Pickup()
		req.OrderType = models.OrderTypePickup
		req.PickupInfo = &models.PickupInfo{Location: choice.Location, TimeSlot: choice.TimeSlot.ID}
	default:
		return fmt.Errorf("choose delivery or pickup first")
	}

	order, err := a.client.CreateOrder(ctx, req)
	if err != nil {
		return err
	}
	if err := a.cart.Clear(ctx); err != nil {
		a.log.Warn("order placed but cart not cleared", "error", err)
	}
	a.clearSelection()
	fmt.Printf("order %s placed, total €%s\n", order.Number, order.Totals.Total.StringFixed(2))
	return nil
}

func (a *app) listOrders(ctx context.Context) error {
	list, err := a.client.MyOrders(ctx)
	if err != nil {
		return err
	}
	for _, o := range list {
		fmt.Printf("%-36s  %-10s  €%s  %s\n", o.ID, o.Status, o.Totals.Total.StringFixed(2), o.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func (a *app) showOrder(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("order id required")
	}
	order, err := a.client.Order(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("order %s (%s)\n", order.Number, order.Status)
	for _, it := range order.Items {
		fmt.Printf("  %2d × %-24s €%s\n", it.Quantity, it.Name, it.LineTotal().StringFixed(2))
	}
	fmt.Printf("  subtotal €%s  fee €%s  tax €%s  total €%s\n",
		order.Totals.Subtotal.StringFixed(2), order.Totals.DeliveryFee.StringFixed(2),
		order.Totals.Tax.StringFixed(2), order.Totals.Total.StringFixed(2))
	return nil
}

func (a *app) admin(ctx context.Context, args []string) error {
	if a.session.Role() != models.RoleAdmin {
		return fmt.Errorf("admin access required")
	}
	if len(args) < 1 {
		return fmt.Errorf("admin needs a subcommand")
	}
	switch args[0] {
	case "orders":
		list, err := a.client.AllOrders(ctx)
		if err != nil {
			return err
		}
		for _, o := range list {
			fmt.Printf("%-36s  %-10s  €%s\n", o.ID, o.Status, o.Totals.Total.StringFixed(2))
		}
		return nil
	case "status":
		if len(args) < 3 {
			return fmt.Errorf("admin status needs an order id and a status")
		}
		current, err := a.client.Order(ctx, args[1])
		if err != nil {
			return err
		}
		next := models.OrderStatus(args[2])
		if err := orders.Validate(current.Status, next); err != nil {
			return err
		}
		updated, err := a.client.UpdateOrderStatus(ctx, args[1], next)
		if err != nil {
			return err
		}
		fmt.Printf("order %s is now %s\n", updated.Number, updated.Status)
		return nil
	case "print-test":
		if err := a.client.TestPrinter(ctx); err != nil {
			return err
		}
		fmt.Println("test page sent")
		return nil
	default:
		return fmt.Errorf("unknown admin subcommand %q", args[0])
	}
}
