package models

import "time"

// Notification is a message shown in a user's inbox.
type Notification struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"-" gorm:"type:varchar(36);index"`
	OrderID   string    `json:"order_id,omitempty" gorm:"type:varchar(36)"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
