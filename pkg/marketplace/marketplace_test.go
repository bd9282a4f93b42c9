package marketplace_test

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"farmtoclick/pkg/apiclient"
	"farmtoclick/pkg/marketplace"
	"farmtoclick/pkg/orderstatus"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method, path, contentType string
	json                      map[string]string
	form                      map[string]string
	file                      string
}

func newTestClient(t *testing.T, handler func(w http.ResponseWriter, r *http.Request, rec *recorded)) (*marketplace.Client, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method, rec.path, rec.contentType = r.Method, r.URL.Path, r.Header.Get("Content-Type")
		rec.json, rec.form, rec.file = nil, nil, ""
		if rec.contentType == "application/json" {
			json.NewDecoder(r.Body).Decode(&rec.json)
		} else if err := r.ParseMultipartForm(1 << 20); err == nil {
			rec.form = map[string]string{}
			for k, v := range r.MultipartForm.Value {
				rec.form[k] = v[0]
			}
			if f, _, err := r.FormFile("proof"); err == nil {
				b, _ := io.ReadAll(f)
				rec.file = string(b)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		handler(w, r, rec)
	}))
	t.Cleanup(srv.Close)

	api, err := apiclient.New(apiclient.Config{BaseURL: srv.URL + "/api"}, apiclient.WithLogger(log.New(io.Discard, "", 0)))
	require.NoError(t, err)
	return marketplace.New(api), rec
}

func TestSellerOrders_ClassifyAndAggregate(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request, _ *recorded) {
		w.Write([]byte(`{"orders":[
			{"id":"o1","status":"pending","total_amount":100},
			{"id":"o2","status":"delivered","total_amount":250},
			{"id":"o3","status":"cancelled","total_amount":50},
			{"id":"o4","status":"something_new","total_amount":10}
		]}`))
	})

	orders, err := c.SellerOrders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/api/farmer/orders", rec.path)
	require.Len(t, orders, 4)

	assert.Equal(t, orderstatus.Summary{PendingCount: 1, Revenue: 250}, orderstatus.Aggregate(orders))
	assert.Equal(t, "Pending", orders[3].Classification().Label)
	assert.Equal(t,
		[]orderstatus.Action{orderstatus.ActionConfirm, orderstatus.ActionReject},
		orders[0].Actions(orderstatus.Seller))
	assert.Empty(t, orders[1].Actions(orderstatus.Seller))
}

func TestApplySellerAction(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request, rec *recorded) {
		w.Write([]byte(`{"success":true,"status":"` + rec.json["status"] + `"}`))
	})
	ctx := context.Background()

	_, err := c.ApplySellerAction(ctx, "o1", orderstatus.ActionReject, "  ")
	assert.ErrorIs(t, err, marketplace.ErrReasonRequired)
	assert.Empty(t, rec.path)

	_, err = c.ApplySellerAction(ctx, "o1", orderstatus.ActionDelivered, "")
	assert.ErrorIs(t, err, marketplace.ErrActionNotAllowed)

	status, err := c.ApplySellerAction(ctx, "o1", orderstatus.ActionReject, "Out of stock")
	require.NoError(t, err)
	assert.Equal(t, orderstatus.Rejected, status)
	assert.Equal(t, "/api/order/o1/status", rec.path)
	assert.Equal(t, map[string]string{"status": "rejected", "reason": "Out of stock"}, rec.json)

	status, err = c.ApplySellerAction(ctx, "o1", orderstatus.ActionConfirm, "")
	require.NoError(t, err)
	assert.Equal(t, orderstatus.Confirmed, status)
	assert.Equal(t, map[string]string{"status": "confirmed"}, rec.json)
}

func TestApplyRiderAction(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request, rec *recorded) {
		status := rec.json["status"]
		if rec.form != nil {
			status = rec.form["status"]
		}
		w.Write([]byte(`{"success":true,"status":"` + status + `"}`))
	})
	ctx := context.Background()

	_, err := c.ApplyRiderAction(ctx, "o9", orderstatus.ActionDelivered, nil)
	assert.ErrorIs(t, err, marketplace.ErrProofRequired)

	_, err = c.ApplyRiderAction(ctx, "o9", orderstatus.ActionConfirm, nil)
	assert.ErrorIs(t, err, marketplace.ErrActionNotAllowed)

	status, err := c.ApplyRiderAction(ctx, "o9", orderstatus.ActionPickedUp, nil)
	require.NoError(t, err)
	assert.Equal(t, orderstatus.PickedUp, status)
	assert.Equal(t, "application/json", rec.contentType)

	status, err = c.ApplyRiderAction(ctx, "o9", orderstatus.ActionDelivered, &marketplace.Proof{Filename: "door.jpg", Data: []byte("photo")})
	require.NoError(t, err)
	assert.Equal(t, orderstatus.Delivered, status)
	assert.Equal(t, "/api/rider/orders/o9/status", rec.path)
	assert.Equal(t, "delivered", rec.form["status"])
	assert.Equal(t, "photo", rec.file)
}

func TestCreateAndCancelOrder(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request, _ *recorded) {
		switch r.URL.Path {
		case "/api/orders":
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"message":"Order placed successfully","order":{"id":"o5","status":"pending","total_amount":90,"items":[{"product_id":"p1","quantity":3,"price":30}]}}`))
		case "/api/orders/o5/cancel":
			w.Write([]byte(`{"success":true,"status":"cancelled"}`))
		}
	})
	ctx := context.Background()

	order, err := c.CreateOrder(ctx, marketplace.CreateOrderRequest{
		Items:           []marketplace.OrderItem{{ProductID: "p1", Quantity: 3}},
		ShippingName:    "Ana",
		ShippingPhone:   "0917",
		ShippingAddress: "Km 5",
	})
	require.NoError(t, err)
	assert.Equal(t, "o5", order.ID)
	assert.Equal(t, 90.0, order.TotalAmount)
	assert.Equal(t, http.MethodPost, rec.method)

	status, err := c.CancelOrder(ctx, "o5")
	require.NoError(t, err)
	assert.Equal(t, orderstatus.Cancelled, status)
}

func TestErrorsAreWrapped(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request, _ *recorded) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":"Not authorized"}`))
	})

	_, err := c.RiderOrders(context.Background())
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, apiclient.StatusCode(err))
	assert.Contains(t, err.Error(), "list rider orders")
}

func TestFarmerProducts(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request, _ *recorded) {
		w.Write([]byte(`{"products":[{"id":"p1","name":"Kamote","price":30,"stock":12,"unit":"kg","farmer_id":"f1"}]}`))
	})

	products, err := c.FarmerProducts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/api/farmer/products", rec.path)
	require.Len(t, products, 1)
	assert.Equal(t, "kg", products[0].Unit)
}
