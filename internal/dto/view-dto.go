package dto

import (
	"order-desk/internal/entities"
	"order-desk/pkg/api"
)

// OrderViewDTO - строка таблицы: заказ плюс его цена (или заглушка N/A).
type OrderViewDTO struct {
	ID            int64  `json:"id"`
	SecretKey     int64  `json:"secret_key"`
	CustomerName  string `json:"customer_name"`
	OrderName     string `json:"order_name"`
	CategoryID    int64  `json:"category_id"`
	Designer      string `json:"designer"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"` // джалали
	Price         string `json:"price"`
	ReceivePrice  string `json:"receive_price"`
	ReminderPrice string `json:"reminder_price"`
	DeliveryDate  string `json:"delivery_date"`
}

type TotalsDTO struct {
	Price         string `json:"price"`
	ReceivePrice  string `json:"receive_price"`
	ReminderPrice string `json:"reminder_price"`
}

// ListViewDTO - ответ шлюза для экрана списка.
type ListViewDTO struct {
	Screen       string              `json:"screen"`
	State        string              `json:"state"`
	Rows         []OrderViewDTO      `json:"rows"`
	Total        int                 `json:"total"`
	Pagination   *api.PaginationMeta `json:"pagination,omitempty"`
	Totals       *TotalsDTO          `json:"totals,omitempty"`
	Enriched     bool                `json:"enriched"`
	EmptyMessage string              `json:"empty_message,omitempty"`
	FieldErrors  map[string]string   `json:"field_errors,omitempty"`
	Warnings     []string            `json:"warnings,omitempty"`
	Error        string              `json:"error,omitempty"`
}

type BillRowDTO struct {
	SecretKey     int64  `json:"secret_key"`
	OrderName     string `json:"order_name"`
	Category      string `json:"category"`
	Designer      string `json:"designer"`
	Price         string `json:"price"`
	ReceivePrice  string `json:"receive_price"`
	ReminderPrice string `json:"reminder_price"`
}

// BillDTO собирается только из полностью обогащённого набора заказов.
type BillDTO struct {
	CustomerName string           `json:"customer_name"`
	Rows         []BillRowDTO     `json:"rows"`
	Totals       TotalsDTO        `json:"totals"`
	ReceivedAt   string           `json:"received_at"`
	DueAt        string           `json:"due_at"`
	Orders       []entities.Order `json:"-"`
}
