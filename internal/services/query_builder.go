package services

import (
	"errors"
	"maps"

	"go.uber.org/zap"

	"order-desk/internal/dto"
	apperrors "order-desk/pkg/errors"
	"order-desk/pkg/jalali"
	"order-desk/pkg/validation"
)

const categoryListParam = "category__category_list"

// Ошибки в датах не фатальны: отбрасывается только неверная граница.
var softFields = map[string]struct{}{
	"start_date": {},
	"end_date":   {},
}

type QueryBuilderInterface interface {
	Build(raw dto.RawQueryDTO) (*dto.BuildResult, error)
}

type QueryBuilder struct {
	validator *validation.CustomValidator
	logger    *zap.Logger
}

func NewQueryBuilder(v *validation.CustomValidator, logger *zap.Logger) QueryBuilderInterface {
	return &QueryBuilder{validator: v, logger: logger.Named("query_builder")}
}

// Build превращает ввод экрана в дескриптор запроса.
// Фатальные ошибки (страница, размер страницы, ресурс) возвращаются как *apperrors.ValidationError
// и до сети не доходят. Ошибки дат попадают в FieldErrors результата.
func (b *QueryBuilder) Build(raw dto.RawQueryDTO) (*dto.BuildResult, error) {
	res := &dto.BuildResult{FieldErrors: map[string]string{}}

	if err := b.validator.Validate(raw); err != nil {
		var verr *apperrors.ValidationError
		if !errors.As(err, &verr) {
			return nil, err
		}
		fatal := &apperrors.ValidationError{}
		for field, msg := range verr.Fields {
			if _, soft := softFields[field]; soft {
				res.FieldErrors[field] = msg
				continue
			}
			fatal.Add(field, msg)
		}
		if !fatal.Empty() {
			return nil, fatal
		}
	}

	d := dto.QueryDescriptor{
		Page:     raw.Page,
		PageSize: raw.PageSize,
		Search:   raw.Search,
		Resource: raw.Resource,
		RoleName: raw.RoleName,
	}

	if _, bad := res.FieldErrors["start_date"]; !bad {
		d.StartDate = b.convertDate("start_date", raw.StartDate, res)
	}
	if _, bad := res.FieldErrors["end_date"]; !bad {
		d.EndDate = b.convertDate("end_date", raw.EndDate, res)
	}
	// даты в формате YYYY-MM-DD сравниваются как строки
	if d.StartDate != "" && d.EndDate != "" && d.StartDate > d.EndDate {
		res.Warnings = append(res.Warnings, "дата начала позже даты окончания")
	}

	if len(raw.Extra) > 0 || raw.CategoryList.Valid {
		d.Extra = make(map[string]string, len(raw.Extra)+1)
		maps.Copy(d.Extra, raw.Extra)
		if raw.CategoryList.Valid {
			d.Extra[categoryListParam] = raw.CategoryList.String
		}
	}

	res.Descriptor = d
	if len(res.FieldErrors) > 0 {
		b.logger.Debug("Часть фильтра отброшена", zap.Any("field_errors", res.FieldErrors))
	}
	return res, nil
}

func (b *QueryBuilder) convertDate(field, value string, res *dto.BuildResult) string {
	if value == "" {
		return ""
	}
	g, err := jalali.ToGregorian(value)
	if err != nil {
		res.FieldErrors[field] = "недопустимая дата"
		return ""
	}
	return g
}
