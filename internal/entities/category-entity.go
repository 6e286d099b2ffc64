package entities

import "github.com/aarondl/null/v8"

// Category задаёт фиксированную последовательность этапов для своих заказов.
type Category struct {
	ID           int64       `json:"id"`
	Name         string      `json:"name"`
	Stages       []string    `json:"stages"`
	CategoryList null.String `json:"category_list"`
}

// NextStage возвращает этап, следующий за status. ok=false, если status последний или не найден.
func (c Category) NextStage(status string) (next string, ok bool) {
	for i, s := range c.Stages {
		if s != status {
			continue
		}
		if i == len(c.Stages)-1 {
			return "", false
		}
		return c.Stages[i+1], true
	}
	return "", false
}
