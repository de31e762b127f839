package domain

// OrderStatus описывает жизненный цикл заказа на стороне бэкенда.
type OrderStatus string

const (
	// OrderStatusPending — заказ создан, позиции можно менять.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusReserved — позиции заказа зарезервированы на время сессии.
	OrderStatusReserved OrderStatus = "reserved"
	// OrderStatusCheckOut — заказ передан на оформление/оплату.
	OrderStatusCheckOut OrderStatus = "checkOut"
	// OrderStatusCompleted — заказ успешно завершён (терминальный).
	OrderStatusCompleted OrderStatus = "completed"
	// OrderStatusCanceled — заказ отменён (терминальный).
	OrderStatusCanceled OrderStatus = "canceled"
	// OrderStatusTimeout — истёк срок резервирования (терминальный).
	OrderStatusTimeout OrderStatus = "timeout"
	// OrderStatusFailed — обработка заказа завершилась ошибкой (терминальный).
	OrderStatusFailed OrderStatus = "failed"
)

// PaymentStatus описывает платёжное состояние заказа, независимое от OrderStatus.
type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusNone    PaymentStatus = "none"
)

// LineItemStatus — статус отдельной позиции. Ортогонален статусу заказа:
// заказ может быть pending, пока отдельные позиции уже reserved.
type LineItemStatus string

const (
	LineItemStatusPending       LineItemStatus = "pending"
	LineItemStatusAwaitingClaim LineItemStatus = "awaitingClaim"
	LineItemStatusReserved      LineItemStatus = "reserved"
	LineItemStatusCompleted     LineItemStatus = "completed"
	LineItemStatusRemoved       LineItemStatus = "removed"
	LineItemStatusReturned      LineItemStatus = "returned"
)

// LineItemType различает билеты (access) и товары (product).
type LineItemType string

const (
	LineItemTypeAccess  LineItemType = "access"
	LineItemTypeProduct LineItemType = "product"
)

// Currency — валюта цены; помимо ISO-кодов бэкенд использует кастомные коды
// длиннее трёх символов (подарочные карты, баллы лояльности).
type Currency struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Exponent int    `json:"exponent"`
	Symbol   string `json:"symbol"`
}

// RequiredPayment — сумма, которую осталось оплатить в конкретной валюте.
type RequiredPayment struct {
	Currency Currency `json:"currency"`
	Amount   float64  `json:"amount"`
}

// RequiredLoyaltyCardPayment — обязательная оплата картой лояльности.
type RequiredLoyaltyCardPayment struct {
	Currency Currency `json:"currency"`
	CardType string   `json:"cardType"`
	Amount   float64  `json:"amount"`
}

// OrderPayment — платёж, зафиксированный на заказе.
type OrderPayment struct {
	ID       string   `json:"id"`
	Currency Currency `json:"currency"`
	Amount   float64  `json:"amount"`
	Status   string   `json:"status"`
	PSP      string   `json:"psp"`
	Method   string   `json:"method"`
}

// OrderRefund — возврат по заказу.
type OrderRefund struct {
	ID           string   `json:"id"`
	Currency     Currency `json:"currency"`
	Amount       float64  `json:"amount"`
	Status       string   `json:"status"`
	RefundMethod string   `json:"refundMethod"`
}

// OrderToken — токен, привязанный к заказу (скидочный код, ваучер и т.п.).
type OrderToken struct {
	ID     string `json:"id"`
	TypeID string `json:"typeId"`
	Token  string `json:"token"`
}

// LineItem — одна позиция заказа. Часть полей заполняется только для
// access-позиций (событие), часть — только для product-позиций.
type LineItem struct {
	ID                     string         `json:"id"`
	PackageOrderLineItemID string         `json:"packageOrderLineItemId,omitempty"`
	Type                   LineItemType   `json:"type"`
	Status                 LineItemStatus `json:"status"`
	Name                   string         `json:"name"`
	Price                  float64        `json:"price"`
	Tax                    float64        `json:"tax"`
	Currency               *Currency      `json:"currency,omitempty"`
	RequestedConditionPath []string       `json:"requestedConditionPath,omitempty"`

	// Поля access-позиции.
	AccessID             string `json:"accessId,omitempty"`
	CapacityLocationPath string `json:"capacityLocationPath,omitempty"`
	Event                *Event `json:"event,omitempty"`

	// Поля product-позиции.
	ProductID         string             `json:"productId,omitempty"`
	ProductDefinition *ProductDefinition `json:"productDefinition,omitempty"`
}

// Order — снимок состояния заказа, прочитанный с query-эндпоинта в момент
// времени. Значение неизменяемое: каждое чтение даёт новый снимок.
type Order struct {
	ID                          string                       `json:"id"`
	Number                      string                       `json:"number,omitempty"`
	Status                      OrderStatus                  `json:"status"`
	Email                       string                       `json:"email,omitempty"`
	Customer                    *Customer                    `json:"customer,omitempty"`
	PaymentStatus               PaymentStatus                `json:"paymentStatus,omitempty"`
	PaymentURL                  string                       `json:"paymentUrl,omitempty"`
	Payments                    []OrderPayment               `json:"payments,omitempty"`
	Refunds                     []OrderRefund                `json:"refunds,omitempty"`
	TotalPrice                  float64                      `json:"totalPrice"`
	TotalTax                    float64                      `json:"totalTax"`
	CreateDate                  string                       `json:"createDate,omitempty"`
	ExpiresOn                   string                       `json:"expiresOn,omitempty"`
	Tokens                      []OrderToken                 `json:"tokens,omitempty"`
	RequiredPayments            []RequiredPayment            `json:"requiredPayments,omitempty"`
	RequiredLoyaltyCardPayments []RequiredLoyaltyCardPayment `json:"requiredLoyaltyCardPayments,omitempty"`
	LineItems                   []LineItem                   `json:"lineItems"`
}

// ActiveItemCount возвращает количество позиций, которые всё ещё находятся
// в корзине: удалённые и возвращённые не считаются.
func (o *Order) ActiveItemCount() int {
	if o == nil {
		return 0
	}
	count := 0
	for _, item := range o.LineItems {
		if item.Status == LineItemStatusRemoved || item.Status == LineItemStatusReturned {
			continue
		}
		count++
	}
	return count
}

// Event — краткое описание события, на которое продаются билеты.
type Event struct {
	ID                      string                    `json:"id"`
	EventManagerID          string                    `json:"eventManagerId"`
	Name                    string                    `json:"name"`
	Description             string                    `json:"description,omitempty"`
	Location                string                    `json:"location,omitempty"`
	Start                   string                    `json:"start"`
	End                     string                    `json:"end"`
	TotalCapacity           int                       `json:"totalCapacity,omitempty"`
	AvailableCapacity       int                       `json:"availableCapacity,omitempty"`
	CapacityLocationSummery []CapacityLocationSummary `json:"capacityLocationSummery,omitempty"`
	HasTimeslots            bool                      `json:"hasTimeslots,omitempty"`
}

// CapacityLocationSummary — сводка занятости по зоне зала.
type CapacityLocationSummary struct {
	CapacityLocationPath string `json:"capacityLocationPath"`
	Name                 string `json:"name"`
	Capacity             int    `json:"capacity"`
	Issued               int    `json:"issued"`
	Reserved             int    `json:"reserved"`
	Granted              int    `json:"granted"`
	Available            int    `json:"available"`
	Used                 int    `json:"used"`
	Start                string `json:"start,omitempty"`
	End                  string `json:"end,omitempty"`
}

// AccessDefinition — тип билета (вид доступа) в рамках события.
type AccessDefinition struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Description       string   `json:"description,omitempty"`
	CapacityLocations []string `json:"capacityLocations,omitempty"`
}

// EventPrice — цена билета для конкретного условия продажи.
type EventPrice struct {
	ConditionID      string            `json:"conditionId"`
	Price            float64           `json:"price"`
	Currency         Currency          `json:"currency"`
	Limit            *int              `json:"limit,omitempty"`
	Tax              float64           `json:"tax"`
	Description      string            `json:"description,omitempty"`
	ConditionPath    []string          `json:"conditionPath,omitempty"`
	AccessDefinition *AccessDefinition `json:"accessDefinition,omitempty"`
}

// ProductDefinition — описание товара в каталоге.
type ProductDefinition struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	APIConfig   map[string]any `json:"apiConfig,omitempty"`
}

// ProductPrice — цена товара для конкретного условия продажи.
type ProductPrice struct {
	ConditionID       string             `json:"conditionId"`
	Price             float64            `json:"price"`
	Currency          Currency           `json:"currency"`
	Limit             *int               `json:"limit,omitempty"`
	Tax               float64            `json:"tax"`
	Description       string             `json:"description,omitempty"`
	ConditionPath     []string           `json:"conditionPath,omitempty"`
	ProductDefinition *ProductDefinition `json:"productDefinition,omitempty"`
}

// CustomerTag — метка клиента в CRM.
type CustomerTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Customer — данные клиента с query-эндпоинта.
type Customer struct {
	ID        string        `json:"id"`
	FirstName string        `json:"firstName,omitempty"`
	LastName  string        `json:"lastName,omitempty"`
	FullName  string        `json:"fullName,omitempty"`
	SortName  string        `json:"sortName,omitempty"`
	BirthDate string        `json:"birthDate,omitempty"`
	Gender    string        `json:"gender,omitempty"`
	Email     string        `json:"email,omitempty"`
	Tags      []CustomerTag `json:"tags,omitempty"`
}

// OrderMessage — сообщение для покупателя, привязанное к этапу заказа.
type OrderMessage struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}
