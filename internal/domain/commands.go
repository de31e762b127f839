package domain

// Имена полей в json-тегах совпадают с контрактом command-эндпоинта:
// команды заказа адресуются по aggregateId, платёжные — по orderId.

// CreateOrderCommand — создание нового заказа в рамках канала продаж.
type CreateOrderCommand struct {
	SalesChannelID        string `json:"salesChannelId"`
	RegisterID            string `json:"registerId"`
	CustomerID            string `json:"customerId,omitempty"`
	PreferredLanguageCode string `json:"preferredLanguageCode,omitempty"`
}

// CancelOrderCommand — отмена заказа.
type CancelOrderCommand struct {
	OrderID string `json:"aggregateId"`
	Reason  string `json:"reason,omitempty"`
}

// CancelReservationCommand — снятие резервирования без отмены заказа.
type CancelReservationCommand struct {
	OrderID string `json:"aggregateId"`
	Reason  string `json:"reason,omitempty"`
}

// CartOperationType — тип операции в батче корзины.
type CartOperationType string

const (
	CartOperationAddAccessItem  CartOperationType = "AddAccessItem"
	CartOperationAddProductItem CartOperationType = "AddProductItem"
	CartOperationRemoveItem     CartOperationType = "RemoveItem"
)

// CartOperation — одна операция внутри батча.
type CartOperation struct {
	Operation CartOperationType `json:"operation"`
	Data      any               `json:"data"`
}

// CartBatchCommand применяет набор операций корзины одной командой,
// чтобы добавления и удаления подтверждались одним reconcile-проходом.
type CartBatchCommand struct {
	OrderID    string          `json:"aggregateId"`
	Operations []CartOperation `json:"operations"`
}

// AddItem — позиция для добавления в корзину: билет или товар.
type AddItem interface {
	isAddItem()
}

// AddAccessItem — запрос на добавление билета.
type AddAccessItem struct {
	EventManagerID         string   `json:"eventManagerId"`
	EventID                string   `json:"eventId"`
	AccessDefinitionID     string   `json:"accessDefinitionId"`
	RequestedConditionPath []string `json:"requestedConditionPath"`
	CapacityLocationPath   string   `json:"capacityLocationPath,omitempty"`
}

func (AddAccessItem) isAddItem() {}

// AddProductItem — запрос на добавление товара.
type AddProductItem struct {
	ProductDefinitionID    string   `json:"productDefinitionId"`
	RequestedConditionPath []string `json:"requestedConditionPath"`
}

func (AddProductItem) isAddItem() {}

// RemoveItem — запрос на удаление позиции из корзины.
type RemoveItem struct {
	OrderLineItemID string `json:"orderLineItemId"`
}

// MapCartOperations собирает батч: сначала удаления, затем добавления.
func MapCartOperations(addItems []AddItem, removeItems []RemoveItem) []CartOperation {
	operations := make([]CartOperation, 0, len(addItems)+len(removeItems))
	for _, item := range removeItems {
		operations = append(operations, CartOperation{Operation: CartOperationRemoveItem, Data: item})
	}
	for _, item := range addItems {
		switch v := item.(type) {
		case AddAccessItem:
			operations = append(operations, CartOperation{Operation: CartOperationAddAccessItem, Data: v})
		case AddProductItem:
			operations = append(operations, CartOperation{Operation: CartOperationAddProductItem, Data: v})
		}
	}
	return operations
}

// AddTokenCommand — привязка токена (ваучер, скидочный код) к заказу.
type AddTokenCommand struct {
	OrderID string `json:"aggregateId"`
	Token   string `json:"token"`
}

// ReserveCommand — резервирование позиций заказа.
type ReserveCommand struct {
	OrderID       string `json:"aggregateId"`
	CustomerEmail string `json:"customerEmail,omitempty"`
	TimeoutOn     string `json:"timeoutOn,omitempty"`
}

// CheckoutCommand — оформление заказа.
type CheckoutCommand struct {
	OrderID        string   `json:"aggregateId"`
	CustomerEmail  string   `json:"customerEmail,omitempty"`
	CustomerRemark string   `json:"customerRemark,omitempty"`
	OptInOn        []string `json:"optInOn,omitempty"`
}

// AssignCustomerCommand — привязка заказа к клиенту.
type AssignCustomerCommand struct {
	OrderID    string `json:"aggregateId"`
	CustomerID string `json:"customerId"`
}

// UnassignCustomerCommand — отвязка заказа от клиента.
type UnassignCustomerCommand struct {
	OrderID string `json:"aggregateId"`
}

// CreatePaymentCommand — создание платежа по заказу.
type CreatePaymentCommand struct {
	OrderID         string  `json:"orderId"`
	CurrencyCode    string  `json:"currency"`
	Amount          float64 `json:"amount"`
	CustomerID      string  `json:"customerId,omitempty"`
	Token           string  `json:"token,omitempty"`
	Method          string  `json:"paymentMethod,omitempty"`
	LoyaltyCardType string  `json:"loyaltyCardType,omitempty"`
	LoyaltyCardID   string  `json:"loyaltyCardId,omitempty"`
	LoyaltyCardPIN  string  `json:"loyaltyCardPin,omitempty"`
}

// PaymentRequest — платёж, запрошенный вызывающим кодом при checkout.
// Method "cash" и "pin" обрабатываются кассовыми командами, остальное —
// онлайн-платёж с редиректом.
type PaymentRequest struct {
	CurrencyCode    string
	Amount          float64
	Method          string
	Token           string
	LoyaltyCardType string
	LoyaltyCardID   string
	LoyaltyCardPIN  string
}
