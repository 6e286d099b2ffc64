package dto

import "order-desk/internal/entities"

// OrderListResponseDTO - страница заказов в формате сервера (пагинация DRF).
type OrderListResponseDTO struct {
	Results  []entities.Order `json:"results"`
	Count    int              `json:"count"`
	Next     *string          `json:"next"`
	Previous *string          `json:"previous"`
}

// OrderPage - текущая страница контроллера списка.
type OrderPage struct {
	Orders []entities.Order
	Total  int
}

type StatusUpdateDTO struct {
	OrderID int64  `json:"order_id"`
	Status  string `json:"status"`
}

type RemainderCompletedDTO struct {
	OrderID       int64           `json:"order_id"`
	ReminderPrice entities.Amount `json:"reminder_price"`
	ReceivePrice  entities.Amount `json:"receive_price"`
	Message       string          `json:"message"`
}

// CriteriaRequestDTO - ввод поиска и дат, применяемый после паузы.
type CriteriaRequestDTO struct {
	Search    string `json:"search"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}
