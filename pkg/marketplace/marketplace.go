// Package marketplace wraps the backend's catalog and order endpoints for
// front-end screens. Calls go through the shared apiclient.Client, so they
// carry the session's bearer token and take part in 401 invalidation.
package marketplace

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"farmtoclick/pkg/apiclient"
	"farmtoclick/pkg/orderstatus"
)

var (
	// ErrReasonRequired is returned when rejecting without a reason.
	ErrReasonRequired = errors.New("marketplace: a reason is required for this action")
	// ErrProofRequired is returned when marking delivered without a proof image.
	ErrProofRequired = errors.New("marketplace: a proof-of-delivery image is required for this action")
	// ErrActionNotAllowed is returned when the action does not belong to the role.
	ErrActionNotAllowed = errors.New("marketplace: action not available to this role")
	// ErrEmptyCart is returned when checking out a cart with nothing in it.
	ErrEmptyCart = errors.New("marketplace: the cart is empty")
)

// Client calls the marketplace endpoints.
type Client struct {
	api *apiclient.Client
}

// New creates a Client on top of the shared API client.
func New(api *apiclient.Client) *Client {
	return &Client{api: api}
}

type statusResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type ordersEnvelope struct {
	Orders []Order `json:"orders"`
}

// Products lists the catalog.
func (c *Client) Products(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := c.api.Get(ctx, "/products", &products); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// Product fetches one product.
func (c *Client) Product(ctx context.Context, id string) (*Product, error) {
	var p Product
	if err := c.api.Get(ctx, "/products/"+url.PathEscape(id), &p); err != nil {
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	return &p, nil
}

// FarmerProducts lists the signed-in farmer's own products.
func (c *Client) FarmerProducts(ctx context.Context) ([]Product, error) {
	var resp struct {
		Products []Product `json:"products"`
	}
	if err := c.api.Get(ctx, "/farmer/products", &resp); err != nil {
		return nil, fmt.Errorf("list farmer products: %w", err)
	}
	return resp.Products, nil
}

// CreateProduct lists a product for the signed-in farmer.
func (c *Client) CreateProduct(ctx context.Context, p Product) (*Product, error) {
	var created Product
	if err := c.api.Post(ctx, "/farmer/products", p, &created); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return &created, nil
}

// Orders lists the signed-in buyer's orders, newest first.
func (c *Client) Orders(ctx context.Context) ([]Order, error) {
	var orders []Order
	if err := c.api.Get(ctx, "/orders", &orders); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// CreateOrder places an order.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	var resp struct {
		Message string `json:"message"`
		Order   Order  `json:"order"`
	}
	if err := c.api.Post(ctx, "/orders", req, &resp); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return &resp.Order, nil
}

// CancelOrder asks the backend to cancel one of the buyer's orders.
func (c *Client) CancelOrder(ctx context.Context, id string) (orderstatus.Status, error) {
	var resp statusResponse
	if err := c.api.Post(ctx, "/orders/"+url.PathEscape(id)+"/cancel", nil, &resp); err != nil {
		return "", fmt.Errorf("cancel order %s: %w", id, err)
	}
	return orderstatus.Normalize(resp.Status), nil
}

// SellerOrders lists orders that contain the signed-in farmer's products.
func (c *Client) SellerOrders(ctx context.Context) ([]Order, error) {
	var env ordersEnvelope
	if err := c.api.Get(ctx, "/farmer/orders", &env); err != nil {
		return nil, fmt.Errorf("list seller orders: %w", err)
	}
	return env.Orders, nil
}

// ApplySellerAction requests a seller status change. Rejecting needs a reason.
func (c *Client) ApplySellerAction(ctx context.Context, orderID string, action orderstatus.Action, reason string) (orderstatus.Status, error) {
	if !sellerAction(action) {
		return "", ErrActionNotAllowed
	}
	reason = strings.TrimSpace(reason)
	if action.RequiresReason() && reason == "" {
		return "", ErrReasonRequired
	}

	body := map[string]string{"status": string(action.Target())}
	if reason != "" {
		body["reason"] = reason
	}
	var resp statusResponse
	if err := c.api.Post(ctx, "/order/"+url.PathEscape(orderID)+"/status", body, &resp); err != nil {
		return "", fmt.Errorf("update order %s: %w", orderID, err)
	}
	return orderstatus.Normalize(resp.Status), nil
}

// AssignRider hands a ready order to a rider; the order becomes ready_for_ship.
func (c *Client) AssignRider(ctx context.Context, orderID, riderID string) error {
	body := map[string]string{"rider_id": riderID}
	if err := c.api.Post(ctx, "/orders/"+url.PathEscape(orderID)+"/assign-rider", body, nil); err != nil {
		return fmt.Errorf("assign rider to order %s: %w", orderID, err)
	}
	return nil
}

// RiderOrders lists orders assigned to the signed-in rider.
func (c *Client) RiderOrders(ctx context.Context) ([]Order, error) {
	var env ordersEnvelope
	if err := c.api.Get(ctx, "/rider/orders", &env); err != nil {
		return nil, fmt.Errorf("list rider orders: %w", err)
	}
	return env.Orders, nil
}

// ApplyRiderAction requests a rider status change. Marking delivered needs a
// proof image, which is sent as multipart form data.
func (c *Client) ApplyRiderAction(ctx context.Context, orderID string, action orderstatus.Action, proof *Proof) (orderstatus.Status, error) {
	if !riderAction(action) {
		return "", ErrActionNotAllowed
	}
	if action.RequiresProof() && (proof == nil || len(proof.Data) == 0) {
		return "", ErrProofRequired
	}

	var body any = map[string]string{"status": string(action.Target())}
	if proof != nil && len(proof.Data) > 0 {
		body = apiclient.NewForm().
			Field("status", string(action.Target())).
			File("proof", proof.Filename, bytes.NewReader(proof.Data))
	}

	var resp statusResponse
	if err := c.api.Post(ctx, "/rider/orders/"+url.PathEscape(orderID)+"/status", body, &resp); err != nil {
		return "", fmt.Errorf("update rider order %s: %w", orderID, err)
	}
	return orderstatus.Normalize(resp.Status), nil
}

// PendingVerifications lists farmer and rider accounts awaiting review.
func (c *Client) PendingVerifications(ctx context.Context) ([]Account, error) {
	var resp struct {
		Users []Account `json:"users"`
	}
	if err := c.api.Get(ctx, "/admin/verifications", &resp); err != nil {
		return nil, fmt.Errorf("list verifications: %w", err)
	}
	return resp.Users, nil
}

// Verify approves an account.
func (c *Client) Verify(ctx context.Context, userID string) error {
	if err := c.api.Post(ctx, "/admin/users/"+url.PathEscape(userID)+"/verify", nil, nil); err != nil {
		return fmt.Errorf("verify user %s: %w", userID, err)
	}
	return nil
}

// Cart fetches the signed-in user's cart.
func (c *Client) Cart(ctx context.Context) (*Cart, error) {
	var cart Cart
	if err := c.api.Get(ctx, "/cart", &cart); err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return &cart, nil
}

// AddToCart adds qty of a product on top of what the cart already holds.
func (c *Client) AddToCart(ctx context.Context, productID string, qty int) error {
	body := map[string]any{"product_id": productID, "quantity": qty}
	if err := c.api.Post(ctx, "/cart", body, nil); err != nil {
		return fmt.Errorf("add %s to cart: %w", productID, err)
	}
	return nil
}

// UpdateCartItem sets an item's quantity. Zero removes it.
func (c *Client) UpdateCartItem(ctx context.Context, productID string, qty int) error {
	body := map[string]int{"quantity": qty}
	if err := c.api.Put(ctx, "/cart/"+url.PathEscape(productID), body, nil); err != nil {
		return fmt.Errorf("update cart item %s: %w", productID, err)
	}
	return nil
}

// RemoveFromCart drops a product from the cart.
func (c *Client) RemoveFromCart(ctx context.Context, productID string) error {
	if err := c.api.Delete(ctx, "/cart/"+url.PathEscape(productID), nil); err != nil {
		return fmt.Errorf("remove cart item %s: %w", productID, err)
	}
	return nil
}

// ClearCart empties the cart.
func (c *Client) ClearCart(ctx context.Context) error {
	if err := c.api.Delete(ctx, "/cart", nil); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// CheckoutCart places an order for everything in the cart and empties it.
// The items of shipping are ignored.
func (c *Client) CheckoutCart(ctx context.Context, shipping CreateOrderRequest) (*Order, error) {
	cart, err := c.Cart(ctx)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}
	shipping.Items = make([]OrderItem, 0, len(cart.Items))
	for _, line := range cart.Items {
		shipping.Items = append(shipping.Items, OrderItem{ProductID: line.Product.ID, Quantity: line.Quantity})
	}
	order, err := c.CreateOrder(ctx, shipping)
	if err != nil {
		return nil, err
	}
	if err := c.ClearCart(ctx); err != nil {
		return order, err
	}
	return order, nil
}

// Riders lists verified riders. Farmers and admins only.
func (c *Client) Riders(ctx context.Context) ([]Rider, error) {
	var resp struct {
		Riders []Rider `json:"riders"`
	}
	if err := c.api.Get(ctx, "/riders", &resp); err != nil {
		return nil, fmt.Errorf("list riders: %w", err)
	}
	return resp.Riders, nil
}

// Notifications lists the signed-in user's inbox, newest first.
func (c *Client) Notifications(ctx context.Context) ([]Notification, error) {
	var resp struct {
		Notifications []Notification `json:"notifications"`
	}
	if err := c.api.Get(ctx, "/user/notifications", &resp); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return resp.Notifications, nil
}

// MarkNotificationRead flags one notification as read.
func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	if err := c.api.Post(ctx, "/user/notifications/"+url.PathEscape(id)+"/read", nil, nil); err != nil {
		return fmt.Errorf("mark notification %s read: %w", id, err)
	}
	return nil
}

func sellerAction(a orderstatus.Action) bool {
	switch a {
	case orderstatus.ActionConfirm, orderstatus.ActionReject, orderstatus.ActionPreparing, orderstatus.ActionReady:
		return true
	}
	return false
}

func riderAction(a orderstatus.Action) bool {
	switch a {
	case orderstatus.ActionPickedUp, orderstatus.ActionOnTheWay, orderstatus.ActionDelivered:
		return true
	}
	return false
}
