package utils

import (
	"net/url"
	"strconv"
	"strings"

	apperrors "order-desk/pkg/errors"
)

// ListParams - ввод экрана списка из строки запроса.
type ListParams struct {
	Search    string
	StartDate string
	EndDate   string
	Page      int
}

func ParseListParams(query url.Values) ListParams {
	return ListParams{
		Search:    strings.TrimSpace(query.Get("search")),
		StartDate: strings.TrimSpace(query.Get("start_date")),
		EndDate:   strings.TrimSpace(query.Get("end_date")),
		Page:      ParsePage(query),
	}
}

// ParseIDList разбирает "12,15,20" в список ID без повторов, сохраняя порядок.
func ParseIDList(raw string) ([]int64, error) {
	var ids []int64
	seen := make(map[int64]struct{})
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return nil, apperrors.NewValidationError("ids", "неверный ID заказа: "+part)
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, apperrors.NewValidationError("ids", "не выбран ни один заказ")
	}
	return ids, nil
}
