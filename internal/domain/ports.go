package domain

import "context"

// SnapshotStore — однослотовый кэш последнего прочитанного снимка заказа.
// Новый заказ замещает предыдущий, слияния не происходит. Хранилище
// принадлежит одной логической сессии; параллельные писатели не поддерживаются.
type SnapshotStore interface {
	// Get возвращает кэшированный снимок или ErrNoOrder.
	Get(ctx context.Context) (Order, error)
	// Put замещает кэшированный снимок.
	Put(ctx context.Context, order Order) error
	// Clear очищает слот.
	Clear(ctx context.Context) error
	// Has сообщает, есть ли снимок в слоте.
	Has(ctx context.Context) (bool, error)
}

// SessionStore — key-value хранилище контекста сессии (канал продаж, касса,
// клиент, язык). Носитель абстрактен: память, Redis или локальная БД кассы.
type SessionStore interface {
	// Get возвращает значение по ключу или ErrKeyNotFound.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Has(ctx context.Context, key string) (bool, error)
}

// OrderReader читает снимок заказа с query-эндпоинта. Ретраев внутри нет:
// повторное чтение — ответственность цикла reconcile.
type OrderReader interface {
	GetOrder(ctx context.Context, orderID string) (Order, error)
}

// OrderCommandService отправляет команды жизненного цикла заказа на
// command-эндпоинт. Каждый метод сам расходует переданное расписание на
// временных сбоях и возвращает ErrRetryExhausted либо ErrCommandFailed.
type OrderCommandService interface {
	// CreateOrder создаёт заказ и возвращает его идентификатор.
	CreateOrder(ctx context.Context, cmd CreateOrderCommand, schedule *RetrySchedule) (string, error)
	CancelOrder(ctx context.Context, cmd CancelOrderCommand, schedule *RetrySchedule) error
	CancelReservation(ctx context.Context, cmd CancelReservationCommand, schedule *RetrySchedule) error
	// ApplyCartOperations применяет батч операций корзины и возвращает
	// идентификаторы затронутых добавлением позиций.
	ApplyCartOperations(ctx context.Context, cmd CartBatchCommand, schedule *RetrySchedule) ([]string, error)
	AddOrderToken(ctx context.Context, cmd AddTokenCommand, schedule *RetrySchedule) error
	ReserveOrder(ctx context.Context, cmd ReserveCommand, schedule *RetrySchedule) error
	CheckoutOrder(ctx context.Context, cmd CheckoutCommand, schedule *RetrySchedule) error
	AssignCustomer(ctx context.Context, cmd AssignCustomerCommand, schedule *RetrySchedule) error
	UnassignCustomer(ctx context.Context, cmd UnassignCustomerCommand, schedule *RetrySchedule) error
}

// PaymentIntent — результат создания платежа. PaymentURL заполняется
// только для онлайн-платежей (редирект на страницу оплаты).
type PaymentIntent struct {
	PaymentID  string
	PaymentURL string
}

// PaymentCommandService создаёт платежи по заказу.
type PaymentCommandService interface {
	CreateCashPayment(ctx context.Context, cmd CreatePaymentCommand, schedule *RetrySchedule) (PaymentIntent, error)
	CreatePinPayment(ctx context.Context, cmd CreatePaymentCommand, schedule *RetrySchedule) (PaymentIntent, error)
	CreateOnlinePayment(ctx context.Context, cmd CreatePaymentCommand, schedule *RetrySchedule) (PaymentIntent, error)
}

// PriceQueryOptions — необязательные параметры ценовых запросов. Пустые
// поля заполняются значениями из контекста сессии.
type PriceQueryOptions struct {
	OrderID               string
	CustomerID            string
	SalesChannelID        string
	PreferredLanguageCode string
}

// OrderMessageQuery — параметры запроса сообщений заказа.
type OrderMessageQuery struct {
	Stage                 string
	OrderID               string
	EventID               string
	ProductDefinitionID   string
	CustomerID            string
	SalesChannelID        string
	PreferredLanguageCode string
}

// CatalogService читает справочные данные: события, цены, товары, клиентов.
type CatalogService interface {
	GetEvent(ctx context.Context, eventID string) (Event, error)
	GetEventPrices(ctx context.Context, eventID string, opts PriceQueryOptions) ([]EventPrice, error)
	GetProductDefinition(ctx context.Context, productDefinitionID string) (ProductDefinition, error)
	GetProductPrices(ctx context.Context, productDefinitionID string, opts PriceQueryOptions) ([]ProductPrice, error)
	GetCustomer(ctx context.Context, customerID string) (Customer, error)
	GetOrderMessages(ctx context.Context, query OrderMessageQuery) ([]OrderMessage, error)
}

// AuthProvider обменивает учётные данные на bearer-токен и сообщает,
// не истёк ли текущий токен.
type AuthProvider interface {
	Login(ctx context.Context, username, password string) error
	IsExpired() bool
}
