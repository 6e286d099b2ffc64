package constants

import (
	"fmt"

	apperrors "order-desk/pkg/errors"
)

// Role - числовой код роли пользователя, как его хранит сервер.
type Role int

// --- РОЛИ (совпадают с кодами на сервере) ---
const (
	RoleAdmin           Role = 0
	RoleDesigner        Role = 1
	RoleReception       Role = 2
	RoleHeadOfDesigners Role = 3
	RolePrinter         Role = 4
	RoleDelivery        Role = 5
	RoleDigital         Role = 6
	RoleBill            Role = 7
	RoleChaspak         Role = 8
	RoleShop            Role = 9
	RoleLaser           Role = 10
)

// StatusListName - имя роли в пути orders/status_list/<name>/.
// Администратор и неизвестные коды не сопоставлены: экран должен упасть, а не выбрать список по умолчанию.
func (r Role) StatusListName() (string, error) {
	switch r {
	case RoleDesigner:
		return "Designer", nil
	case RoleReception:
		return "Reception", nil
	case RoleHeadOfDesigners:
		return "Head_of_designers", nil
	case RolePrinter:
		return "Printer", nil
	case RoleDelivery:
		return "Delivery", nil
	case RoleDigital:
		return "Digital", nil
	case RoleBill:
		return "Bill", nil
	case RoleChaspak:
		return "Chaspak", nil
	case RoleShop:
		return "Shop_role", nil
	case RoleLaser:
		return "Laser", nil
	default:
		return "", fmt.Errorf("%w: код %d", apperrors.ErrUnknownRole, int(r))
	}
}

// StatusListResource - дискриминатор ресурса списка заказов для роли.
func (r Role) StatusListResource() (string, error) {
	name, err := r.StatusListName()
	if err != nil {
		return "", err
	}
	return "orders/status_list/" + name + "/", nil
}

// Коды списков категорий
const (
	CategoryListColorFull    = "CF"
	CategoryListWithoutColor = "WC"
)

// Ключи хранилища учётных данных
const (
	KeyAuthToken    = "auth_token"
	KeyRefreshToken = "refresh_token"
	KeyRole         = "role"
)

// Заглушки для отсутствующих данных
const (
	SentinelNA      = "N/A"
	SentinelUnknown = "unknown"
)
