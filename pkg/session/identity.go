package session

import (
	"encoding/json"

	"farmtoclick/pkg/orderstatus"
)

// Identity is the signed-in user as the backend describes it.
type Identity struct {
	ID              string  `json:"id"`
	Email           string  `json:"email"`
	FirstName       string  `json:"first_name"`
	LastName        string  `json:"last_name"`
	Phone           string  `json:"phone"`
	Role            string  `json:"role"`
	IsAdmin         bool    `json:"is_admin"`
	IsFarmer        bool    `json:"is_farmer"`
	IsRider         bool    `json:"is_rider"`
	IsVerified      bool    `json:"is_verified"`
	ProfilePicture  *string `json:"profile_picture"`
	OverallLocation string  `json:"overall_location"`
	ShippingAddress string  `json:"shipping_address"`
	FarmName        string  `json:"farm_name,omitempty"`
	FarmPhone       string  `json:"farm_phone,omitempty"`
	FarmLocation    string  `json:"farm_location,omitempty"`
	FarmDescription string  `json:"farm_description,omitempty"`
}

// FullName joins first and last name.
func (i Identity) FullName() string {
	switch {
	case i.FirstName == "":
		return i.LastName
	case i.LastName == "":
		return i.FirstName
	}
	return i.FirstName + " " + i.LastName
}

// ActorRole maps the identity onto the role used for order actions.
func (i Identity) ActorRole() orderstatus.Role {
	return orderstatus.ParseRole(i.Role)
}

// syncRoleFlags derives the role flags from Role. Some endpoints omit one of
// the flags; the role is always authoritative.
func (i *Identity) syncRoleFlags() {
	if i.Role == "" {
		return
	}
	i.IsAdmin = i.Role == "admin"
	i.IsFarmer = i.Role == "farmer"
	i.IsRider = i.Role == "rider"
}

// mergeIdentity overlays the fields present in raw onto base. Fields the
// backend did not send keep their current value.
func mergeIdentity(base Identity, raw json.RawMessage) (Identity, error) {
	merged := base
	if base.ProfilePicture != nil {
		pic := *base.ProfilePicture
		merged.ProfilePicture = &pic
	}
	if err := json.Unmarshal(raw, &merged); err != nil {
		return base, err
	}
	merged.syncRoleFlags()
	return merged, nil
}

func decodeIdentity(raw []byte) (Identity, error) {
	var id Identity
	if err := json.Unmarshal(raw, &id); err != nil {
		return Identity{}, err
	}
	id.syncRoleFlags()
	return id, nil
}
