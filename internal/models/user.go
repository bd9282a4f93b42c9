package models

import "time"

// Roles a user can hold.
const (
	RoleUser   = "user"
	RoleFarmer = "farmer"
	RoleRider  = "rider"
	RoleAdmin  = "admin"
)

// User represents an account on the marketplace.
type User struct {
	ID              string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email           string    `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password        string    `json:"-" gorm:"type:varchar(255)"`
	FirstName       string    `json:"first_name" gorm:"type:varchar(100)"`
	LastName        string    `json:"last_name" gorm:"type:varchar(100)"`
	Phone           string    `json:"phone" gorm:"type:varchar(30)"`
	Role            string    `json:"role" gorm:"type:varchar(20);index"`
	IsVerified      bool      `json:"is_verified"`
	ProfilePicture  *string   `json:"profile_picture"`
	OverallLocation string    `json:"overall_location"`
	ShippingAddress string    `json:"shipping_address"`
	FarmName        string    `json:"farm_name,omitempty"`
	FarmPhone       string    `json:"farm_phone,omitempty"`
	FarmLocation    string    `json:"farm_location,omitempty"`
	FarmDescription string    `json:"farm_description,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Profile is the identity shape returned to clients.
type Profile struct {
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

// Profile derives the client view, with role flags computed from Role.
func (u *User) Profile() Profile {
	return Profile{
		ID:              u.ID,
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Phone:           u.Phone,
		Role:            u.Role,
		IsAdmin:         u.Role == RoleAdmin,
		IsFarmer:        u.Role == RoleFarmer,
		IsRider:         u.Role == RoleRider,
		IsVerified:      u.IsVerified,
		ProfilePicture:  u.ProfilePicture,
		OverallLocation: u.OverallLocation,
		ShippingAddress: u.ShippingAddress,
		FarmName:        u.FarmName,
		FarmPhone:       u.FarmPhone,
		FarmLocation:    u.FarmLocation,
		FarmDescription: u.FarmDescription,
	}
}
