package dto

import (
	"maps"
	"net/url"
	"strconv"

	"github.com/aarondl/null/v8"
)

// RawQueryDTO - ввод с экрана до проверки. Даты в календаре джалали.
type RawQueryDTO struct {
	Search    string `json:"search" validate:"max=255"`
	StartDate string `json:"start_date" validate:"omitempty,jalali_date"`
	EndDate   string `json:"end_date" validate:"omitempty,jalali_date"`
	Page      int    `json:"page" validate:"gte=1"`
	PageSize  int    `json:"page_size" validate:"gte=1,lte=100"`
	Resource  string `json:"resource" validate:"required"`
	RoleName  string `json:"role_name"`

	// CF или WC, фильтр списков экранов цветной и одноцветной печати
	CategoryList null.String       `json:"category_list" validate:"omitempty,category_list"`
	Extra        map[string]string `json:"-"`
}

// QueryDescriptor - канонические параметры одного запроса списка.
// Не изменяется после создания: методы With* возвращают копию.
type QueryDescriptor struct {
	Page      int
	PageSize  int
	Search    string
	StartDate string // григорианская "YYYY-MM-DD"
	EndDate   string
	Resource  string
	RoleName  string
	Extra     map[string]string
}

// FilterActive - задан ли поиск или диапазон дат.
func (d QueryDescriptor) FilterActive() bool {
	return d.Search != "" || d.StartDate != "" || d.EndDate != ""
}

func (d QueryDescriptor) WithPage(page int) QueryDescriptor {
	c := d.clone()
	c.Page = page
	return c
}

// WithCriteria меняет поиск и даты и сбрасывает страницу на первую.
func (d QueryDescriptor) WithCriteria(search, startDate, endDate string) QueryDescriptor {
	c := d.clone()
	c.Search = search
	c.StartDate = startDate
	c.EndDate = endDate
	c.Page = 1
	return c
}

func (d QueryDescriptor) clone() QueryDescriptor {
	c := d
	if d.Extra != nil {
		c.Extra = maps.Clone(d.Extra)
	}
	return c
}

// Values - параметры строки запроса. Кодирование происходит только здесь.
func (d QueryDescriptor) Values() url.Values {
	v := url.Values{}
	v.Set("pagenum", strconv.Itoa(d.Page))
	v.Set("page_size", strconv.Itoa(d.PageSize))
	if d.Search != "" {
		v.Set("search", d.Search)
	}
	if d.StartDate != "" {
		v.Set("start_date", d.StartDate)
	}
	if d.EndDate != "" {
		v.Set("end_date", d.EndDate)
	}
	for k, val := range d.Extra {
		v.Set(k, val)
	}
	return v
}

// BuildResult - дескриптор плюс нефатальные замечания по полям.
type BuildResult struct {
	Descriptor  QueryDescriptor
	FieldErrors map[string]string
	Warnings    []string
}
