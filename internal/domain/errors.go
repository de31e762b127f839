package domain

import "errors"

var (
	// ErrNoOrder возвращается, когда в хранилище нет кэшированного заказа,
	// а операция требует его наличия.
	ErrNoOrder = errors.New("no order found")
	// ErrRetryExhausted — расписание ретраев израсходовано, а предикат так
	// и не подтвердился (или чтение продолжало падать).
	ErrRetryExhausted = errors.New("retry attempts exceeded")
	// ErrCommandFailed — бэкенд отклонил команду (после собственных ретраев отправителя).
	ErrCommandFailed = errors.New("command failed")
	// ErrPaymentCreateFailed — команда создания платежа не вернула идентификатор платежа.
	ErrPaymentCreateFailed = errors.New("create payment failed")
	// ErrKeyNotFound — в сессионном хранилище нет значения по ключу.
	ErrKeyNotFound = errors.New("session key not found")
	// ErrNoCustomer — в контексте сессии не задан идентификатор клиента.
	ErrNoCustomer = errors.New("no customer id found")
	// ErrNoSalesChannel — в контексте сессии не задан канал продаж.
	ErrNoSalesChannel = errors.New("no sales channel id found")
	// ErrNoRegister — в контексте сессии не задана касса (register).
	ErrNoRegister = errors.New("no register id found")
	// ErrNoPreferredLanguage — в контексте сессии не задан язык покупателя.
	ErrNoPreferredLanguage = errors.New("no preferred language code found")
	// ErrAuthNotConfigured — операция требует аутентификатора, а он не подключён.
	ErrAuthNotConfigured = errors.New("authenticator is not configured")
)

// IsRetryExhausted проверяет, является ли ошибка исчерпанием ретраев.
// Для вызывающего кода это «состояние ещё не подтверждено», а не отказ записи.
func IsRetryExhausted(err error) bool {
	return errors.Is(err, ErrRetryExhausted)
}

// IsCommandFailed проверяет, была ли команда отклонена бэкендом.
func IsCommandFailed(err error) bool {
	return errors.Is(err, ErrCommandFailed)
}
