package entities

import (
	"encoding/json"
	"time"
)

type DesignerDetails struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

type Order struct {
	ID           int64            `json:"id"`
	OrderName    string           `json:"order_name"`
	CustomerName string           `json:"customer_name"`
	Designer     *DesignerDetails `json:"designer_details"`
	Description  string           `json:"description"`
	CategoryID   int64            `json:"category"`
	SecretKey    int64            `json:"secret_key"`
	Attributes   json.RawMessage  `json:"attributes,omitempty"`
	Status       string           `json:"status"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// DesignerName - имя дизайнера или пустая строка, если он не назначен.
func (o Order) DesignerName() string {
	if o.Designer == nil {
		return ""
	}
	if o.Designer.FullName != "" {
		return o.Designer.FullName
	}
	return o.Designer.Email
}
