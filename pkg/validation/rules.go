package validation

import (
	"github.com/go-playground/validator/v10"

	"order-desk/pkg/constants"
	"order-desk/pkg/jalali"
)

// registerRules регистрирует теги, которые мы используем в struct tags
func registerRules(v *validator.Validate) error {
	if err := v.RegisterValidation("jalali_date", isJalaliDate); err != nil {
		return err
	}
	if err := v.RegisterValidation("category_list", isCategoryList); err != nil {
		return err
	}
	return nil
}

// isJalaliDate - "ГГГГ/ММ/ДД" или "ГГГГ-ММ-ДД" с существующим днём месяца
func isJalaliDate(fl validator.FieldLevel) bool {
	_, err := jalali.Parse(fl.Field().String())
	return err == nil
}

// isCategoryList - CF или WC
func isCategoryList(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case constants.CategoryListColorFull, constants.CategoryListWithoutColor:
		return true
	}
	return false
}
