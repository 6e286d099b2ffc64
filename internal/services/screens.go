package services

import (
	"fmt"
	"sort"

	"order-desk/pkg/constants"
	apperrors "order-desk/pkg/errors"
)

// Screen - настройки одного экрана списка заказов. Логики у экрана нет, только конфигурация.
type Screen struct {
	Name string
	// Фиксированный ресурс; пустой, если ресурс берётся из роли пользователя
	Resource     string
	RoleDriven   bool
	CategoryList string
	WithPrices   bool
	CanAdvance   bool
	CanComplete  bool
	PageSize     int
}

const (
	ScreenReception = "reception"
	ScreenPrinter   = "printer"
	ScreenDelivery  = "delivery"
	ScreenColorful  = "colorful"
	ScreenOneColor  = "onecolor"
)

// DefaultScreens - экраны с размером страницы pageSize.
func DefaultScreens(pageSize int) map[string]Screen {
	return map[string]Screen{
		ScreenReception: {
			Name:        ScreenReception,
			Resource:    "orders/reception_list/",
			WithPrices:  true,
			CanComplete: true,
			PageSize:    pageSize,
		},
		ScreenPrinter: {
			Name:       ScreenPrinter,
			RoleDriven: true,
			WithPrices: true,
			CanAdvance: true,
			PageSize:   pageSize,
		},
		ScreenDelivery: {
			Name:       ScreenDelivery,
			Resource:   "orders/status_list/Completed/",
			WithPrices: true,
			CanAdvance: true,
			PageSize:   pageSize,
		},
		ScreenColorful: {
			Name:         ScreenColorful,
			Resource:     "orders/reception_list/today/",
			CategoryList: constants.CategoryListColorFull,
			PageSize:     pageSize,
		},
		ScreenOneColor: {
			Name:         ScreenOneColor,
			Resource:     "orders/reception_list/today/",
			CategoryList: constants.CategoryListWithoutColor,
			PageSize:     pageSize,
		},
	}
}

// ResolveResource возвращает ресурс экрана; для экранов по роли он зависит от роли.
func (s Screen) ResolveResource(role constants.Role) (resource, roleName string, err error) {
	if !s.RoleDriven {
		return s.Resource, "", nil
	}
	roleName, err = role.StatusListName()
	if err != nil {
		return "", "", err
	}
	resource, err = role.StatusListResource()
	return resource, roleName, err
}

// ScreenNames - имена экранов в алфавитном порядке.
func ScreenNames(screens map[string]Screen) []string {
	names := make([]string, 0, len(screens))
	for n := range screens {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func LookupScreen(screens map[string]Screen, name string) (Screen, error) {
	s, ok := screens[name]
	if !ok {
		return Screen{}, fmt.Errorf("%w: экран %q", apperrors.ErrNotFound, name)
	}
	return s, nil
}
