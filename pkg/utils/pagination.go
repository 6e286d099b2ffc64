package utils

import (
	"net/url"
	"strconv"
)

const DefaultPage = 1

// ParsePage читает номер страницы. Без параметра - первая страница;
// нечисловое значение даёт 0, и валидатор запроса отклонит его.
func ParsePage(values url.Values) int {
	pageStr := values.Get("page")
	if pageStr == "" {
		return DefaultPage
	}
	p, err := strconv.Atoi(pageStr)
	if err != nil {
		return 0
	}
	return p
}
