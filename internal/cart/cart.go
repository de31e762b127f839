package cart

import (
	"context"
	"errors"
	"fmt"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/cartsync/internal/domain"
	"github.com/vladislavdragonenkov/cartsync/internal/reconcile"
)

// Ключи контекста сессии в SessionStore.
const (
	keySalesChannelID        = "sales-channel-id"
	keyRegisterID            = "register-id"
	keyCustomerID            = "customer-id"
	keyPreferredLanguageCode = "preferred-language-code"
)

// Методы платежа, обрабатываемые кассовыми командами. Любой другой метод
// создаёт онлайн-платёж с редиректом.
const (
	paymentMethodCash = "cash"
	paymentMethodPin  = "pin"
)

// Options — зависимости и стартовый контекст сессии корзины.
type Options struct {
	Commands   domain.OrderCommandService
	Payments   domain.PaymentCommandService
	Catalog    domain.CatalogService
	Store      domain.SnapshotStore
	Session    domain.SessionStore
	Reconciler reconcile.Reconciler
	// Auth необязателен: без него Login возвращает ErrAuthNotConfigured.
	Auth   domain.AuthProvider
	Logger *log.Entry

	// Стартовые значения сессии. Пустые поля не записываются.
	SalesChannelID        string
	RegisterID            string
	CustomerID            string
	PreferredLanguageCode string
}

// Cart ведёт один заказ покупателя: применяет команды и дожидается, пока
// query-сторона подтвердит их эффект. Кэшированный снимок — последнее
// прочитанное состояние, не обязательно актуальное.
type Cart struct {
	commands   domain.OrderCommandService
	payments   domain.PaymentCommandService
	catalog    domain.CatalogService
	store      domain.SnapshotStore
	session    domain.SessionStore
	reconciler reconcile.Reconciler
	auth       domain.AuthProvider
	logger     *log.Entry
}

// New создаёт корзину и записывает стартовый контекст сессии.
func New(ctx context.Context, opts Options) (*Cart, error) {
	if opts.Logger == nil {
		opts.Logger = log.New().WithField("component", "cart")
	}

	c := &Cart{
		commands:   opts.Commands,
		payments:   opts.Payments,
		catalog:    opts.Catalog,
		store:      opts.Store,
		session:    opts.Session,
		reconciler: opts.Reconciler,
		auth:       opts.Auth,
		logger:     opts.Logger,
	}

	seed := map[string]string{
		keySalesChannelID:        opts.SalesChannelID,
		keyRegisterID:            opts.RegisterID,
		keyCustomerID:            opts.CustomerID,
		keyPreferredLanguageCode: opts.PreferredLanguageCode,
	}
	for key, value := range seed {
		if value == "" {
			continue
		}
		if err := c.session.Set(ctx, key, value); err != nil {
			return nil, fmt.Errorf("seed session key %s: %w", key, err)
		}
	}
	return c, nil
}

// Login обменивает учётные данные пользователя на токен.
func (c *Cart) Login(ctx context.Context, username, password string) error {
	if c.auth == nil {
		return domain.ErrAuthNotConfigured
	}
	return c.auth.Login(ctx, username, password)
}

// IsTokenExpired сообщает, истёк ли текущий токен. Без аутентификатора
// токена нет, что также считается истечением.
func (c *Cart) IsTokenExpired() bool {
	if c.auth == nil {
		return true
	}
	return c.auth.IsExpired()
}

func (c *Cart) sessionValue(ctx context.Context, key string, missing error) (string, error) {
	value, err := c.session.Get(ctx, key)
	if errors.Is(err, domain.ErrKeyNotFound) {
		return "", missing
	}
	return value, err
}

// SalesChannelID возвращает канал продаж или ErrNoSalesChannel.
func (c *Cart) SalesChannelID(ctx context.Context) (string, error) {
	return c.sessionValue(ctx, keySalesChannelID, domain.ErrNoSalesChannel)
}

// SetSalesChannelID записывает канал продаж.
func (c *Cart) SetSalesChannelID(ctx context.Context, id string) error {
	return c.session.Set(ctx, keySalesChannelID, id)
}

// HasSalesChannelID сообщает, задан ли канал продаж.
func (c *Cart) HasSalesChannelID(ctx context.Context) (bool, error) {
	return c.session.Has(ctx, keySalesChannelID)
}

// ClearSalesChannelID очищает канал продаж вместе с кассой: касса не имеет
// смысла вне своего канала.
func (c *Cart) ClearSalesChannelID(ctx context.Context) error {
	if err := c.session.Delete(ctx, keySalesChannelID); err != nil {
		return err
	}
	return c.ClearRegisterID(ctx)
}

// RegisterID возвращает кассу или ErrNoRegister.
func (c *Cart) RegisterID(ctx context.Context) (string, error) {
	return c.sessionValue(ctx, keyRegisterID, domain.ErrNoRegister)
}

// SetRegisterID записывает кассу.
func (c *Cart) SetRegisterID(ctx context.Context, id string) error {
	return c.session.Set(ctx, keyRegisterID, id)
}

// HasRegisterID сообщает, задана ли касса.
func (c *Cart) HasRegisterID(ctx context.Context) (bool, error) {
	return c.session.Has(ctx, keyRegisterID)
}

// ClearRegisterID очищает кассу.
func (c *Cart) ClearRegisterID(ctx context.Context) error {
	return c.session.Delete(ctx, keyRegisterID)
}

// CustomerID возвращает клиента сессии или ErrNoCustomer.
func (c *Cart) CustomerID(ctx context.Context) (string, error) {
	return c.sessionValue(ctx, keyCustomerID, domain.ErrNoCustomer)
}

// HasCustomerID сообщает, задан ли клиент сессии.
func (c *Cart) HasCustomerID(ctx context.Context) (bool, error) {
	return c.session.Has(ctx, keyCustomerID)
}

// PreferredLanguageCode возвращает язык покупателя или ErrNoPreferredLanguage.
func (c *Cart) PreferredLanguageCode(ctx context.Context) (string, error) {
	return c.sessionValue(ctx, keyPreferredLanguageCode, domain.ErrNoPreferredLanguage)
}

// SetPreferredLanguageCode записывает язык покупателя.
func (c *Cart) SetPreferredLanguageCode(ctx context.Context, code string) error {
	return c.session.Set(ctx, keyPreferredLanguageCode, code)
}

// HasPreferredLanguageCode сообщает, задан ли язык покупателя.
func (c *Cart) HasPreferredLanguageCode(ctx context.Context) (bool, error) {
	return c.session.Has(ctx, keyPreferredLanguageCode)
}

// ClearPreferredLanguageCode очищает язык покупателя.
func (c *Cart) ClearPreferredLanguageCode(ctx context.Context) error {
	return c.session.Delete(ctx, keyPreferredLanguageCode)
}

// Order возвращает кэшированный снимок заказа или ErrNoOrder.
func (c *Cart) Order(ctx context.Context) (domain.Order, error) {
	return c.store.Get(ctx)
}

// OrderID возвращает идентификатор текущего заказа или ErrNoOrder.
func (c *Cart) OrderID(ctx context.Context) (string, error) {
	order, err := c.store.Get(ctx)
	if err != nil {
		return "", err
	}
	return order.ID, nil
}

// HasOrder сообщает, привязан ли к корзине заказ.
func (c *Cart) HasOrder(ctx context.Context) (bool, error) {
	return c.store.Has(ctx)
}

// ClearOrder отвязывает заказ от корзины. Сам заказ на сервере не меняется.
func (c *Cart) ClearOrder(ctx context.Context) error {
	return c.store.Clear(ctx)
}

// ReloadOrder принудительно перечитывает заказ с query-эндпоинта и
// обновляет кэш.
func (c *Cart) ReloadOrder(ctx context.Context) (domain.Order, error) {
	orderID, err := c.OrderID(ctx)
	if err != nil {
		return domain.Order{}, err
	}
	schedule := domain.NoRetry()
	return c.reconciler.Reconcile(ctx, orderID, nil, &schedule)
}

// CreateOrder создаёт новый заказ в рамках канала продаж и дожидается,
// пока query-сторона его увидит. Предыдущий кэшированный заказ отвязывается
// до отправки команды.
func (c *Cart) CreateOrder(ctx context.Context) error {
	salesChannelID, err := c.SalesChannelID(ctx)
	if err != nil {
		return err
	}
	registerID, err := c.RegisterID(ctx)
	if err != nil {
		return err
	}

	cmd := domain.CreateOrderCommand{
		SalesChannelID: salesChannelID,
		RegisterID:     registerID,
	}
	if customerID, err := c.CustomerID(ctx); err == nil {
		cmd.CustomerID = customerID
	} else if !errors.Is(err, domain.ErrNoCustomer) {
		return err
	}
	if lang, err := c.PreferredLanguageCode(ctx); err == nil {
		cmd.PreferredLanguageCode = lang
	} else if !errors.Is(err, domain.ErrNoPreferredLanguage) {
		return err
	}

	if err := c.store.Clear(ctx); err != nil {
		return err
	}

	commandSchedule := domain.CommandRetrySchedule()
	orderID, err := c.commands.CreateOrder(ctx, cmd, &commandSchedule)
	if err != nil {
		return err
	}

	c.logger.WithField("order_id", orderID).Info("order created")

	readSchedule := domain.DefaultRetrySchedule()
	_, err = c.reconciler.Reconcile(ctx, orderID, domain.IsPending(), &readSchedule)
	return err
}

// ensureOrder гарантирует открытый заказ: без заказа или с заказом в
// финальном статусе создаётся новый.
func (c *Cart) ensureOrder(ctx context.Context) error {
	order, err := c.store.Get(ctx)
	if errors.Is(err, domain.ErrNoOrder) {
		return c.CreateOrder(ctx)
	}
	if err != nil {
		return err
	}
	if domain.IsInFinalState().Validate(&order) {
		return c.CreateOrder(ctx)
	}
	return nil
}

func (c *Cart) applyBatch(ctx context.Context, addItems []domain.AddItem, removeItems []domain.RemoveItem) ([]string, error) {
	orderID, err := c.OrderID(ctx)
	if err != nil {
		return nil, err
	}

	schedule := domain.DefaultRetrySchedule()
	return c.commands.ApplyCartOperations(ctx, domain.CartBatchCommand{
		OrderID:    orderID,
		Operations: domain.MapCartOperations(addItems, removeItems),
	}, &schedule)
}

func (c *Cart) confirm(ctx context.Context, validator domain.Validator) error {
	orderID, err := c.OrderID(ctx)
	if err != nil {
		return err
	}
	schedule := domain.DefaultRetrySchedule()
	_, err = c.reconciler.Reconcile(ctx, orderID, validator, &schedule)
	return err
}

// AddItems добавляет билеты и товары в корзину. При необходимости сначала
// создаётся новый заказ. Возврат происходит после того, как все добавленные
// позиции зарезервированы на query-стороне.
func (c *Cart) AddItems(ctx context.Context, items []domain.AddItem) error {
	if err := c.ensureOrder(ctx); err != nil {
		return err
	}

	lineItemIDs, err := c.applyBatch(ctx, items, nil)
	if err != nil {
		return err
	}
	return c.confirm(ctx, domain.ItemsHaveStatus(lineItemIDs, domain.LineItemStatusReserved))
}

// RemoveItems удаляет позиции из корзины и дожидается подтверждения.
func (c *Cart) RemoveItems(ctx context.Context, items []domain.RemoveItem) error {
	if _, err := c.applyBatch(ctx, nil, items); err != nil {
		return err
	}

	removedIDs := make([]string, 0, len(items))
	for _, item := range items {
		removedIDs = append(removedIDs, item.OrderLineItemID)
	}
	return c.confirm(ctx, domain.ItemsHaveStatus(removedIDs, domain.LineItemStatusRemoved))
}

// ChangeItems применяет добавления и удаления одним батчем и дожидается
// подтверждения обеих групп одним reconcile-проходом.
func (c *Cart) ChangeItems(ctx context.Context, addItems []domain.AddItem, removeItems []domain.RemoveItem) error {
	lineItemIDs, err := c.applyBatch(ctx, addItems, removeItems)
	if err != nil {
		return err
	}

	removedIDs := make([]string, 0, len(removeItems))
	for _, item := range removeItems {
		removedIDs = append(removedIDs, item.OrderLineItemID)
	}
	return c.confirm(ctx, domain.BatchItemsStatus(lineItemIDs, removedIDs, nil))
}

// ItemCount возвращает количество активных позиций кэшированного заказа.
// Без заказа корзина пуста.
func (c *Cart) ItemCount(ctx context.Context) (int, error) {
	order, err := c.store.Get(ctx)
	if errors.Is(err, domain.ErrNoOrder) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return order.ActiveItemCount(), nil
}

// AddToken привязывает токен (ваучер, скидочный код) к заказу. При
// необходимости сначала создаётся новый заказ.
func (c *Cart) AddToken(ctx context.Context, token string) error {
	if err := c.ensureOrder(ctx); err != nil {
		return err
	}
	orderID, err := c.OrderID(ctx)
	if err != nil {
		return err
	}

	schedule := domain.TokenRetrySchedule()
	if err := c.commands.AddOrderToken(ctx, domain.AddTokenCommand{OrderID: orderID, Token: token}, &schedule); err != nil {
		return err
	}
	return c.confirm(ctx, domain.HasToken(token))
}

// Reserve резервирует позиции заказа. Если кэшированное состояние
// резервирование не допускает, вызов молча завершается: заказ либо уже
// зарезервирован, либо ещё не готов.
func (c *Cart) Reserve(ctx context.Context, email, timeoutOn string) error {
	order, err := c.store.Get(ctx)
	if err != nil {
		return err
	}
	if !domain.CanReserve().Validate(&order) {
		c.logger.WithField("order_id", order.ID).Debug("order is not reservable, skipping")
		return nil
	}

	schedule := domain.DefaultRetrySchedule()
	err = c.commands.ReserveOrder(ctx, domain.ReserveCommand{
		OrderID:       order.ID,
		CustomerEmail: email,
		TimeoutOn:     timeoutOn,
	}, &schedule)
	if err != nil {
		return err
	}
	return c.confirm(ctx, domain.IsReserved())
}

// CheckoutOptions — параметры оформления заказа.
type CheckoutOptions struct {
	CustomerEmail  string
	CustomerRemark string
	OptInOn        []string
	// Payments создаются после оформления в порядке убывания длины кода
	// валюты: кастомные валюты списываются раньше ISO-валют.
	Payments []domain.PaymentRequest
}

// Checkout оформляет заказ и создаёт запрошенные платежи. Команда
// оформления отправляется только если кэшированное состояние это допускает;
// платежи создаются в любом случае.
func (c *Cart) Checkout(ctx context.Context, opts CheckoutOptions) ([]domain.PaymentIntent, error) {
	order, err := c.store.Get(ctx)
	if err != nil {
		return nil, err
	}

	if domain.CanCheckout().Validate(&order) {
		schedule := domain.DefaultRetrySchedule()
		err = c.commands.CheckoutOrder(ctx, domain.CheckoutCommand{
			OrderID:        order.ID,
			CustomerEmail:  opts.CustomerEmail,
			CustomerRemark: opts.CustomerRemark,
			OptInOn:        opts.OptInOn,
		}, &schedule)
		if err != nil {
			return nil, err
		}
		if err := c.confirm(ctx, domain.HasStatus(domain.OrderStatusCheckOut, domain.OrderStatusCompleted)); err != nil {
			return nil, err
		}
	}

	if len(opts.Payments) == 0 {
		return nil, nil
	}

	payments := make([]domain.PaymentRequest, len(opts.Payments))
	copy(payments, opts.Payments)
	sort.SliceStable(payments, func(i, j int) bool {
		return len(payments[i].CurrencyCode) > len(payments[j].CurrencyCode)
	})

	intents := make([]domain.PaymentIntent, 0, len(payments))
	for _, payment := range payments {
		intent, err := c.createPayment(ctx, payment)
		if err != nil {
			return intents, err
		}
		intents = append(intents, intent)
	}
	return intents, nil
}

func (c *Cart) createPayment(ctx context.Context, payment domain.PaymentRequest) (domain.PaymentIntent, error) {
	orderID, err := c.OrderID(ctx)
	if err != nil {
		return domain.PaymentIntent{}, err
	}

	cmd := domain.CreatePaymentCommand{
		OrderID:      orderID,
		CurrencyCode: payment.CurrencyCode,
		Amount:       payment.Amount,
	}
	if customerID, err := c.CustomerID(ctx); err == nil {
		cmd.CustomerID = customerID
	} else if !errors.Is(err, domain.ErrNoCustomer) {
		return domain.PaymentIntent{}, err
	}

	var intent domain.PaymentIntent
	switch payment.Method {
	case paymentMethodCash:
		schedule := domain.PaymentRetrySchedule()
		intent, err = c.payments.CreateCashPayment(ctx, cmd, &schedule)
	case paymentMethodPin:
		schedule := domain.PaymentRetrySchedule()
		intent, err = c.payments.CreatePinPayment(ctx, cmd, &schedule)
	default:
		cmd.Method = payment.Method
		cmd.Token = payment.Token
		cmd.LoyaltyCardType = payment.LoyaltyCardType
		cmd.LoyaltyCardID = payment.LoyaltyCardID
		cmd.LoyaltyCardPIN = payment.LoyaltyCardPIN
		schedule := domain.NoRetry()
		intent, err = c.payments.CreateOnlinePayment(ctx, cmd, &schedule)
	}
	if err != nil {
		return domain.PaymentIntent{}, err
	}
	if intent.PaymentID == "" {
		return domain.PaymentIntent{}, domain.ErrPaymentCreateFailed
	}
	return intent, nil
}

// CancelOrder отменяет заказ. Пустой orderID означает текущий заказ.
// Если отменён текущий заказ, он отвязывается от корзины.
func (c *Cart) CancelOrder(ctx context.Context, orderID, reason string) error {
	return c.cancel(ctx, orderID, reason, func(ctx context.Context, cmdOrderID string, schedule *domain.RetrySchedule) error {
		return c.commands.CancelOrder(ctx, domain.CancelOrderCommand{OrderID: cmdOrderID, Reason: reason}, schedule)
	})
}

// CancelReservation снимает резервирование, не отменяя заказ. Пустой
// orderID означает текущий заказ.
func (c *Cart) CancelReservation(ctx context.Context, orderID, reason string) error {
	return c.cancel(ctx, orderID, reason, func(ctx context.Context, cmdOrderID string, schedule *domain.RetrySchedule) error {
		return c.commands.CancelReservation(ctx, domain.CancelReservationCommand{OrderID: cmdOrderID, Reason: reason}, schedule)
	})
}

func (c *Cart) cancel(ctx context.Context, orderID, reason string, send func(context.Context, string, *domain.RetrySchedule) error) error {
	if orderID == "" {
		id, err := c.OrderID(ctx)
		if err != nil {
			return err
		}
		orderID = id
	}

	schedule := domain.DefaultRetrySchedule()
	if err := send(ctx, orderID, &schedule); err != nil {
		return err
	}

	cachedID, err := c.OrderID(ctx)
	if errors.Is(err, domain.ErrNoOrder) {
		return nil
	}
	if err != nil {
		return err
	}
	if cachedID == orderID {
		return c.store.Clear(ctx)
	}
	return nil
}

// SetCustomer привязывает клиента к сессии. Если заказ уже существует, а
// клиент сессии ещё не задан, заказ также привязывается к клиенту.
func (c *Cart) SetCustomer(ctx context.Context, customerID string) error {
	hasOrder, err := c.HasOrder(ctx)
	if err != nil {
		return err
	}
	hasCustomer, err := c.HasCustomerID(ctx)
	if err != nil {
		return err
	}

	if hasOrder && !hasCustomer {
		orderID, err := c.OrderID(ctx)
		if err != nil {
			return err
		}
		schedule := domain.DefaultRetrySchedule()
		err = c.commands.AssignCustomer(ctx, domain.AssignCustomerCommand{
			OrderID:    orderID,
			CustomerID: customerID,
		}, &schedule)
		if err != nil {
			return err
		}
	}
	return c.session.Set(ctx, keyCustomerID, customerID)
}

// RemoveCustomer отвязывает клиента от сессии и, если заказ существует и не
// привязан к клиенту сессии, от заказа.
func (c *Cart) RemoveCustomer(ctx context.Context) error {
	hasOrder, err := c.HasOrder(ctx)
	if err != nil {
		return err
	}
	hasCustomer, err := c.HasCustomerID(ctx)
	if err != nil {
		return err
	}

	if hasOrder && !hasCustomer {
		orderID, err := c.OrderID(ctx)
		if err != nil {
			return err
		}
		schedule := domain.DefaultRetrySchedule()
		if err := c.commands.UnassignCustomer(ctx, domain.UnassignCustomerCommand{OrderID: orderID}, &schedule); err != nil {
			return err
		}
	}
	return c.session.Delete(ctx, keyCustomerID)
}

// priceOptions дополняет явные параметры значениями из контекста сессии.
// Текущий заказ добавляется, только если он ещё не в финальном статусе.
func (c *Cart) priceOptions(ctx context.Context, opts domain.PriceQueryOptions) (domain.PriceQueryOptions, error) {
	if opts.CustomerID == "" {
		if customerID, err := c.CustomerID(ctx); err == nil {
			opts.CustomerID = customerID
		} else if !errors.Is(err, domain.ErrNoCustomer) {
			return opts, err
		}
	}
	if opts.OrderID == "" {
		order, err := c.store.Get(ctx)
		switch {
		case errors.Is(err, domain.ErrNoOrder):
		case err != nil:
			return opts, err
		case !domain.IsInFinalState().Validate(&order):
			opts.OrderID = order.ID
		}
	}
	return opts, nil
}

// GetEvent возвращает событие каталога.
func (c *Cart) GetEvent(ctx context.Context, eventID string) (domain.Event, error) {
	return c.catalog.GetEvent(ctx, eventID)
}

// GetEventPrices возвращает цены билетов с учётом контекста сессии.
func (c *Cart) GetEventPrices(ctx context.Context, eventID string, opts domain.PriceQueryOptions) ([]domain.EventPrice, error) {
	opts, err := c.priceOptions(ctx, opts)
	if err != nil {
		return nil, err
	}
	return c.catalog.GetEventPrices(ctx, eventID, opts)
}

// GetProductDefinition возвращает описание товара.
func (c *Cart) GetProductDefinition(ctx context.Context, productDefinitionID string) (domain.ProductDefinition, error) {
	return c.catalog.GetProductDefinition(ctx, productDefinitionID)
}

// GetProductPrices возвращает цены товара с учётом контекста сессии.
func (c *Cart) GetProductPrices(ctx context.Context, productDefinitionID string, opts domain.PriceQueryOptions) ([]domain.ProductPrice, error) {
	opts, err := c.priceOptions(ctx, opts)
	if err != nil {
		return nil, err
	}
	return c.catalog.GetProductPrices(ctx, productDefinitionID, opts)
}

// GetCustomer возвращает данные клиента.
func (c *Cart) GetCustomer(ctx context.Context, customerID string) (domain.Customer, error) {
	return c.catalog.GetCustomer(ctx, customerID)
}

// GetOrderMessages возвращает сообщения для покупателя, дополняя запрос
// контекстом сессии.
func (c *Cart) GetOrderMessages(ctx context.Context, query domain.OrderMessageQuery) ([]domain.OrderMessage, error) {
	if query.CustomerID == "" {
		if customerID, err := c.CustomerID(ctx); err == nil {
			query.CustomerID = customerID
		} else if !errors.Is(err, domain.ErrNoCustomer) {
			return nil, err
		}
	}
	return c.catalog.GetOrderMessages(ctx, query)
}
