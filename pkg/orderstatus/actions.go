package orderstatus

import "strings"

// Role is the actor requesting a status change.
type Role string

const (
	Seller Role = "seller"
	Rider  Role = "rider"
	Buyer  Role = "buyer"
	Admin  Role = "admin"
)

// ParseRole maps backend role names onto a Role. "farmer" is a seller and
// plain "user" accounts are buyers.
func ParseRole(raw string) Role {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "seller", "farmer":
		return Seller
	case "rider":
		return Rider
	case "admin":
		return Admin
	default:
		return Buyer
	}
}

// Action is a status change an actor can request.
type Action string

const (
	ActionConfirm   Action = "confirm"
	ActionReject    Action = "reject"
	ActionPreparing Action = "preparing"
	ActionReady     Action = "ready"
	ActionPickedUp  Action = "picked_up"
	ActionOnTheWay  Action = "on_the_way"
	ActionDelivered Action = "delivered"
)

var targets = map[Action]Status{
	ActionConfirm:   Confirmed,
	ActionReject:    Rejected,
	ActionPreparing: Preparing,
	ActionReady:     Ready,
	ActionPickedUp:  PickedUp,
	ActionOnTheWay:  OnTheWay,
	ActionDelivered: Delivered,
}

// Target is the status the order moves to once the backend accepts the action.
func (a Action) Target() Status {
	if s, ok := targets[a]; ok {
		return s
	}
	return Unclassified
}

// RequiresProof reports whether the action must carry a proof-of-delivery image.
func (a Action) RequiresProof() bool {
	return a == ActionDelivered
}

// RequiresReason reports whether the action must carry a free-text reason.
func (a Action) RequiresReason() bool {
	return a == ActionReject
}

// ParseAction accepts either an action name or its target status.
func ParseAction(raw string) (Action, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if _, ok := targets[Action(key)]; ok {
		return Action(key), true
	}
	s := Normalize(raw)
	for a, t := range targets {
		if t == s {
			return a, true
		}
	}
	return "", false
}

var transitions = map[Role]map[Status][]Action{
	Seller: {
		Pending:   {ActionConfirm, ActionReject},
		Confirmed: {ActionPreparing},
		Preparing: {ActionReady},
	},
	Rider: {
		ReadyForShip: {ActionPickedUp},
		PickedUp:     {ActionOnTheWay},
		OnTheWay:     {ActionDelivered},
	},
}

// PermittedActions returns, in display order, the actions role may request for
// an order currently in raw. Buyers and admins never get write actions.
func PermittedActions(role Role, raw string) []Action {
	actions := transitions[role][Normalize(raw)]
	out := make([]Action, len(actions))
	copy(out, actions)
	return out
}

// CanTransition reports whether role may move an order from one status to
// another through a single permitted action.
func CanTransition(role Role, from, to string) bool {
	target := Normalize(to)
	for _, a := range PermittedActions(role, from) {
		if a.Target() == target {
			return true
		}
	}
	return false
}
