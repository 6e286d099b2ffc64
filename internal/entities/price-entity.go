package entities

import "github.com/aarondl/null/v8"

// PricedOrder - краткие данные заказа, вложенные в запись цены.
type PricedOrder struct {
	ID        int64  `json:"id"`
	SecretKey int64  `json:"secret_key"`
	OrderName string `json:"order_name"`
	Status    string `json:"status"`
}

// PriceRecord - данные приёма заказа: цена, предоплата и остаток.
// ReminderPrice приходит с сервера и локально не пересчитывается.
type PriceRecord struct {
	ID            int64        `json:"id"`
	OrderID       int64        `json:"order_id"`
	Order         *PricedOrder `json:"order,omitempty"`
	Price         Amount       `json:"price"`
	ReceivePrice  Amount       `json:"receive_price"`
	ReminderPrice Amount       `json:"reminder_price"`
	DeliveryDate  null.String  `json:"delivery_date"` // дата джалали "YYYY-MM-DD"
	IsChecked     bool         `json:"is_checked"`
	CreatedAt     null.Time    `json:"created_at"`
}
