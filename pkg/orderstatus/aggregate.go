package orderstatus

// Entry is the part of an order the aggregates need.
type Entry interface {
	OrderStatus() string
	OrderTotal() float64
}

// Summary holds the dashboard figures for a collection of orders.
type Summary struct {
	PendingCount int     `json:"pending_count"`
	Revenue      float64 `json:"revenue"`
}

// Aggregate counts orders awaiting the seller (pending or confirmed) and sums
// totals of orders the platform considers done (completed or delivered).
// Revenue is never recognized earlier than that.
func Aggregate[E Entry](orders []E) Summary {
	var sum Summary
	for _, o := range orders {
		switch Normalize(o.OrderStatus()) {
		case Pending, Confirmed:
			sum.PendingCount++
		case Completed, Delivered:
			sum.Revenue += o.OrderTotal()
		}
	}
	return sum
}

// Group buckets orders by normalized status, keeping input order in each bucket.
func Group[E Entry](orders []E) map[Status][]E {
	groups := make(map[Status][]E)
	for _, o := range orders {
		s := Normalize(o.OrderStatus())
		groups[s] = append(groups[s], o)
	}
	return groups
}

// Filter keeps the orders whose status normalizes to one of statuses. With no
// statuses it returns every order.
func Filter[E Entry](orders []E, statuses ...Status) []E {
	if len(statuses) == 0 {
		return append([]E(nil), orders...)
	}
	want := make(map[Status]bool, len(statuses))
	for _, s := range statuses {
		want[s] = true
	}
	var out []E
	for _, o := range orders {
		if want[Normalize(o.OrderStatus())] {
			out = append(out, o)
		}
	}
	return out
}
