package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// Сессия и токены
	ErrNoCredential   = fmt.Errorf("учётные данные не найдены")
	ErrSessionExpired = fmt.Errorf("сессия истекла, требуется повторный вход")
	ErrInvalidToken   = fmt.Errorf("недопустимый токен")
	ErrUnauthorized   = fmt.Errorf("неавторизован")

	// Бизнес-правила
	ErrNoNextStage = fmt.Errorf("следующего этапа для заказа нет")
	ErrUnknownRole = fmt.Errorf("роль не сопоставлена ни с одним списком")

	// Запросы
	ErrSuperseded     = fmt.Errorf("ответ устарел: запрос вытеснен более новым")
	ErrBillIncomplete = fmt.Errorf("не все цены заказов загружены")

	// Общие
	ErrNotFound   = fmt.Errorf("запись не найдена")
	ErrBadRequest = fmt.Errorf("неверный запрос")
)

// ValidationError - локальная ошибка ввода с привязкой к полям.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "ошибка валидации"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "ошибка валидации: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = message
}

func (e *ValidationError) Empty() bool { return len(e.Fields) == 0 }

func NewValidationError(field, message string) *ValidationError {
	v := &ValidationError{}
	v.Add(field, message)
	return v
}

// FetchError - сбой сети или сервера. Повторяемый для транспортных ошибок и 5xx.
type FetchError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: сервер вернул статус %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Retryable() bool {
	return e.StatusCode == 0 || e.StatusCode >= 500
}

func NewFetchError(op string, statusCode int, err error) error {
	return &FetchError{Op: op, StatusCode: statusCode, Err: err}
}

// IsRetryable сообщает, стоит ли повторить запрос.
func IsRetryable(err error) bool {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Retryable() && !errors.Is(fe.Err, ErrNotFound)
	}
	return false
}

// HttpError используется шлюзом для ответа клиенту.
type HttpError struct {
	Code    int
	Message string
	Err     error
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HttpError) Unwrap() error { return e.Err }

func NewHttpError(code int, message string, err error) *HttpError {
	return &HttpError{Code: code, Message: message, Err: err}
}
