package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"farmtoclick/pkg/marketplace"
	"farmtoclick/pkg/orderstatus"
	"farmtoclick/pkg/session"
)

type action func(ctx context.Context, c *cli, args []string) error

// command declares its flags on fs and returns the action to run once they
// are parsed.
type command struct {
	summary string
	setup   func(fs *pflag.FlagSet) action
}

var commands = map[string]command{
	"login":    {"sign in with email and password", loginCommand},
	"register": {"create an account and sign in", registerCommand},
	"logout":   {"end the session on this device", logoutCommand},
	"whoami":   {"show the signed-in account", whoamiCommand},
	"refresh":  {"re-fetch the account from the backend", refreshCommand},
	"products": {"list the catalog", productsCommand},
	"orders":   {"list orders for your role with their status", ordersCommand},
	"act":      {"apply an action to an order: act <order-id> <action>", actCommand},
	"assign":   {"hand a ready order to a rider: assign <order-id> <rider-id>", assignCommand},
	"cancel":   {"cancel one of your orders: cancel <order-id>", cancelCommand},
	"verify":   {"list accounts awaiting review, or approve one: verify [user-id]", verifyCommand},
	"cart":     {"show or change your cart: cart [add|set|remove|clear|checkout]", cartCommand},
	"riders":   {"list verified riders you can assign orders to", ridersCommand},
	"inbox":    {"list your notifications, or mark one read: inbox [notification-id]", inboxCommand},
}

var errRejected = errors.New("request rejected by the backend")

func loginCommand(fs *pflag.FlagSet) action {
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password (prompted when omitted)")
	return func(ctx context.Context, c *cli, _ []string) error {
		if *email == "" {
			v, err := c.prompt("Email: ")
			if err != nil {
				return err
			}
			*email = v
		}
		if *password == "" {
			v, err := c.prompt("Password: ")
			if err != nil {
				return err
			}
			*password = v
		}
		ok, err := c.store.Login(ctx, *email, *password)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: invalid email or password", errRejected)
		}
		return printIdentity(c, "Signed in as")
	}
}

func registerCommand(fs *pflag.FlagSet) action {
	var f session.RegisterFields
	fs.StringVar(&f.Email, "email", "", "account email")
	fs.StringVar(&f.Password, "password", "", "password, at least 6 characters")
	fs.StringVar(&f.FirstName, "first-name", "", "first name")
	fs.StringVar(&f.LastName, "last-name", "", "last name")
	fs.StringVar(&f.Phone, "phone", "", "phone number")
	fs.StringVar(&f.Role, "role", "user", "user, farmer or rider")
	return func(ctx context.Context, c *cli, _ []string) error {
		ok, err := c.store.Register(ctx, f)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: the email may already be registered or a field is invalid", errRejected)
		}
		return printIdentity(c, "Registered")
	}
}

func logoutCommand(_ *pflag.FlagSet) action {
	return func(ctx context.Context, c *cli, _ []string) error {
		c.store.Logout(ctx)
		fmt.Fprintln(c.out, "Signed out")
		return nil
	}
}

func whoamiCommand(_ *pflag.FlagSet) action {
	return func(_ context.Context, c *cli, _ []string) error {
		return printIdentity(c, "Signed in as")
	}
}

func refreshCommand(_ *pflag.FlagSet) action {
	return func(ctx context.Context, c *cli, _ []string) error {
		if err := c.store.RefreshIdentity(ctx); err != nil {
			return err
		}
		return printIdentity(c, "Signed in as")
	}
}

func printIdentity(c *cli, prefix string) error {
	id, err := c.identity()
	if err != nil {
		return err
	}
	verified := "verified"
	if !id.IsVerified {
		verified = "awaiting verification"
	}
	fmt.Fprintf(c.out, "%s %s <%s>\n", prefix, id.FullName(), id.Email)
	fmt.Fprintf(c.out, "Role: %s (%s)\n", id.Role, verified)
	if id.FarmName != "" {
		fmt.Fprintf(c.out, "Farm: %s\n", id.FarmName)
	}
	return nil
}

func productsCommand(fs *pflag.FlagSet) action {
	mine := fs.Bool("mine", false, "only your own listings (farmers)")
	return func(ctx context.Context, c *cli, _ []string) error {
		list := c.market.Products
		if *mine {
			list = c.market.FarmerProducts
		}
		products, err := list(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tPRICE\tSTOCK")
		for _, p := range products {
			fmt.Fprintf(tw, "%s\t%s\t%.2f/%s\t%d\n", p.ID, p.Name, p.Price, unitOrEach(p.Unit), p.Stock)
		}
		return tw.Flush()
	}
}

func unitOrEach(unit string) string {
	if unit == "" {
		return "pc"
	}
	return unit
}

func ordersCommand(fs *pflag.FlagSet) action {
	statuses := fs.StringSlice("status", nil, "only show these statuses, e.g. --status pending,confirmed")
	return func(ctx context.Context, c *cli, _ []string) error {
		id, err := c.identity()
		if err != nil {
			return err
		}
		role := id.ActorRole()
		orders, err := c.ordersFor(ctx, role)
		if err != nil {
			return err
		}

		var filter []orderstatus.Status
		for _, s := range *statuses {
			filter = append(filter, orderstatus.Normalize(s))
		}
		shown := orderstatus.Filter(orders, filter...)

		tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ORDER\tSTATUS\tTOTAL\tITEMS\tNEXT")
		for _, o := range shown {
			fmt.Fprintf(tw, "%s\t%s\t%.2f\t%d\t%s\n", o.ID, o.Classification().Label, o.TotalAmount, len(o.Items), joinActions(o.Actions(role)))
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		sum := orderstatus.Aggregate(orders)
		fmt.Fprintf(c.out, "\n%d orders, %d awaiting the seller, revenue %.2f\n", len(orders), sum.PendingCount, sum.Revenue)
		return nil
	}
}

func (c *cli) ordersFor(ctx context.Context, role orderstatus.Role) ([]marketplace.Order, error) {
	switch role {
	case orderstatus.Seller:
		return c.market.SellerOrders(ctx)
	case orderstatus.Rider:
		return c.market.RiderOrders(ctx)
	}
	return c.market.Orders(ctx)
}

func joinActions(actions []orderstatus.Action) string {
	if len(actions) == 0 {
		return "-"
	}
	names := make([]string, len(actions))
	for i, a := range actions {
		names[i] = string(a)
	}
	return strings.Join(names, ", ")
}

func actCommand(fs *pflag.FlagSet) action {
	reason := fs.String("reason", "", "reason, required when rejecting (prompted when omitted)")
	proof := fs.String("proof", "", "proof-of-delivery image, required when marking delivered")
	return func(ctx context.Context, c *cli, args []string) error {
		if len(args) != 2 {
			return fmt.Errorf("%w: act <order-id> <action>", errUsage)
		}
		orderID := args[0]
		act, ok := orderstatus.ParseAction(args[1])
		if !ok {
			return fmt.Errorf("unknown action %q", args[1])
		}

		id, err := c.identity()
		if err != nil {
			return err
		}
		role := id.ActorRole()
		orders, err := c.ordersFor(ctx, role)
		if err != nil {
			return err
		}
		idx := slices.IndexFunc(orders, func(o marketplace.Order) bool { return o.ID == orderID })
		if idx < 0 {
			return fmt.Errorf("order %s is not in your list", orderID)
		}
		order := orders[idx]
		permitted := order.Actions(role)
		if !slices.Contains(permitted, act) {
			return fmt.Errorf("cannot %s an order that is %s; allowed: %s",
				act, order.Classification().Label, joinActions(permitted))
		}

		var status orderstatus.Status
		switch role {
		case orderstatus.Seller:
			if act.RequiresReason() && strings.TrimSpace(*reason) == "" {
				if *reason, err = c.prompt("Reason for rejecting: "); err != nil {
					return err
				}
			}
			status, err = c.market.ApplySellerAction(ctx, orderID, act, *reason)
		case orderstatus.Rider:
			var p *marketplace.Proof
			if act.RequiresProof() {
				if p, err = readProof(*proof); err != nil {
					return err
				}
			}
			status, err = c.market.ApplyRiderAction(ctx, orderID, act, p)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Order %s is now %s\n", orderID, orderstatus.Classify(string(status)).Label)
		return nil
	}
}

func readProof(path string) (*marketplace.Proof, error) {
	if path == "" {
		return nil, marketplace.ErrProofRequired
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read proof image: %w", err)
	}
	return &marketplace.Proof{Filename: filepath.Base(path), Data: data}, nil
}

func assignCommand(_ *pflag.FlagSet) action {
	return func(ctx context.Context, c *cli, args []string) error {
		if len(args) != 2 {
			return fmt.Errorf("%w: assign <order-id> <rider-id>", errUsage)
		}
		if err := c.market.AssignRider(ctx, args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Order %s handed to rider %s\n", args[0], args[1])
		return nil
	}
}

func cancelCommand(_ *pflag.FlagSet) action {
	return func(ctx context.Context, c *cli, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("%w: cancel <order-id>", errUsage)
		}
		status, err := c.market.CancelOrder(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Order %s is now %s\n", args[0], orderstatus.Classify(string(status)).Label)
		return nil
	}
}

func verifyCommand(_ *pflag.FlagSet) action {
	return func(ctx context.Context, c *cli, args []string) error {
		if len(args) == 1 {
			if err := c.market.Verify(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "User %s verified\n", args[0])
			return nil
		}
		accounts, err := c.market.PendingVerifications(ctx)
		if err != nil {
			return err
		}
		if len(accounts) == 0 {
			fmt.Fprintln(c.out, "No accounts awaiting verification")
			return nil
		}
		tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tEMAIL\tROLE\tNAME")
		for _, a := range accounts {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s %s\n", a.ID, a.Email, a.Role, a.FirstName, a.LastName)
		}
		return tw.Flush()
	}
}

func cartCommand(fs *pflag.FlagSet) action {
	var shipping marketplace.CreateOrderRequest
	fs.StringVar(&shipping.ShippingName, "name", "", "recipient name, for checkout")
	fs.StringVar(&shipping.ShippingPhone, "phone", "", "recipient phone, for checkout")
	fs.StringVar(&shipping.ShippingAddress, "address", "", "delivery address, for checkout")
	fs.StringVar(&shipping.DeliveryNotes, "notes", "", "delivery notes, for checkout")
	return func(ctx context.Context, c *cli, args []string) error {
		if len(args) == 0 {
			return printCart(ctx, c)
		}
		switch sub, rest := args[0], args[1:]; {
		case sub == "add" && (len(rest) == 1 || len(rest) == 2):
			qty := 1
			if len(rest) == 2 {
				n, err := parseQuantity(rest[1])
				if err != nil {
					return err
				}
				qty = n
			}
			if err := c.market.AddToCart(ctx, rest[0], qty); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Added %d of %s to your cart\n", qty, rest[0])
		case sub == "set" && len(rest) == 2:
			qty, err := strconv.Atoi(rest[1])
			if err != nil {
				return fmt.Errorf("invalid quantity %q", rest[1])
			}
			if err := c.market.UpdateCartItem(ctx, rest[0], qty); err != nil {
				return err
			}
			fmt.Fprintln(c.out, "Cart updated")
		case sub == "remove" && len(rest) == 1:
			if err := c.market.RemoveFromCart(ctx, rest[0]); err != nil {
				return err
			}
			fmt.Fprintln(c.out, "Item removed from cart")
		case sub == "clear" && len(rest) == 0:
			if err := c.market.ClearCart(ctx); err != nil {
				return err
			}
			fmt.Fprintln(c.out, "Cart cleared")
		case sub == "checkout" && len(rest) == 0:
			order, err := c.market.CheckoutCart(ctx, shipping)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Order %s placed, total %.2f\n", order.ID, order.TotalAmount)
		default:
			return fmt.Errorf("%w: cart [add <product-id> [qty] | set <product-id> <qty> | remove <product-id> | clear | checkout]", errUsage)
		}
		return nil
	}
}

func parseQuantity(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid quantity %q", s)
	}
	return n, nil
}

func printCart(ctx context.Context, c *cli) error {
	cart, err := c.market.Cart(ctx)
	if err != nil {
		return err
	}
	if len(cart.Items) == 0 {
		fmt.Fprintln(c.out, "Your cart is empty")
		return nil
	}
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tQTY\tSUBTOTAL")
	for _, line := range cart.Items {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%.2f\n", line.Product.ID, line.Product.Name, line.Quantity, line.Subtotal)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "\nTotal %.2f\n", cart.Total)
	return nil
}

func ridersCommand(_ *pflag.FlagSet) action {
	return func(ctx context.Context, c *cli, _ []string) error {
		riders, err := c.market.Riders(ctx)
		if err != nil {
			return err
		}
		if len(riders) == 0 {
			fmt.Fprintln(c.out, "No verified riders yet")
			return nil
		}
		tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tPHONE\tLOCATION")
		for _, r := range riders {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ID, r.Name, r.Phone, r.Location)
		}
		return tw.Flush()
	}
}

func inboxCommand(_ *pflag.FlagSet) action {
	return func(ctx context.Context, c *cli, args []string) error {
		if len(args) == 1 {
			if err := c.market.MarkNotificationRead(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Notification %s marked read\n", args[0])
			return nil
		}
		list, err := c.market.Notifications(ctx)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Fprintln(c.out, "No notifications")
			return nil
		}
		tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\t\tWHEN\tSUBJECT")
		for _, n := range list {
			mark := "*"
			if n.Read {
				mark = ""
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", n.ID, mark, n.CreatedAt.Local().Format("Jan 2 15:04"), n.Subject)
		}
		return tw.Flush()
	}
}
