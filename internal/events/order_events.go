package events

const (
	SessionExpired     = "session.expired"
	CredentialChanged  = "credential.changed"
	OrderActionSucceed = "order.action.succeeded"
	OrderActionFailed  = "order.action.failed"
)

// SessionExpiredEvent - обновить токен не удалось, нужен повторный вход.
type SessionExpiredEvent struct {
	Reason error
}

func (e SessionExpiredEvent) Name() string { return SessionExpired }

// CredentialChangedEvent - ключ в хранилище учётных данных изменился (в том числе из другого процесса).
// Removed: ключа в хранилище больше нет.
type CredentialChangedEvent struct {
	Key     string
	Removed bool
}

func (e CredentialChangedEvent) Name() string { return CredentialChanged }

type OrderAction string

const (
	ActionAdvance           OrderAction = "advance"
	ActionCompleteRemainder OrderAction = "complete_remainder"
)

// OrderActionEvent - итог изменяющего действия над заказом. Err == nil означает успех.
type OrderActionEvent struct {
	Screen    string
	Action    OrderAction
	OrderID   int64
	NewStatus string
	Err       error
}

func (e OrderActionEvent) Name() string {
	if e.Err != nil {
		return OrderActionFailed
	}
	return OrderActionSucceed
}
