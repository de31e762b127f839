package graphql

import (
	"context"
	"fmt"
	"strings"

	"github.com/vladislavdragonenkov/cartsync/internal/domain"
)

// Поля снимка заказа. Inline-фрагменты разводят access- и product-позиции,
// server-side размеченные полем type.
const orderFields = `id,status,number,email,customer{id,fullName,email},paymentStatus,paymentUrl,` +
	`payments{id,currency{code,name,exponent,symbol},amount,status,psp,method},` +
	`refunds{id,currency{code,name,exponent,symbol},amount,status,refundMethod},` +
	`totalPrice,totalTax,createDate,expiresOn,tokens{id,typeId,token},` +
	`requiredPayments{currency{code,name,exponent,symbol},amount},` +
	`requiredLoyaltyCardPayments{currency{code,name,exponent,symbol},cardType,amount},` +
	`lineItems{` +
	`... on AccessLineItem {id,packageOrderLineItemId,type,status,price,tax,currency{code,name,exponent,symbol},name,requestedConditionPath,accessId,capacityLocationPath,event{id,eventManagerId,name,location,start,end,availableCapacity}} ` +
	`... on ProductLineItem {id,packageOrderLineItemId,type,status,name,price,tax,currency{code,name,exponent,symbol},requestedConditionPath,productId,productDefinition{id,name}}` +
	`}`

// orderReader — реализация OrderReader поверх Client. Ретраев нет:
// повторные чтения выполняет цикл reconcile.
type orderReader struct {
	client *Client
}

// NewOrderReader возвращает читателя снимков заказа.
func NewOrderReader(client *Client) domain.OrderReader {
	return &orderReader{client: client}
}

func (r *orderReader) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	document := fmt.Sprintf(`query { me{order(id: %q){%s}} }`, orderID, orderFields)

	var result struct {
		Me struct {
			Order *domain.Order `json:"order"`
		} `json:"me"`
	}
	if err := r.client.query(ctx, document, &result); err != nil {
		return domain.Order{}, err
	}
	if result.Me.Order == nil {
		return domain.Order{}, domain.ErrNoOrder
	}
	return *result.Me.Order, nil
}

var _ domain.OrderReader = (*orderReader)(nil)

// catalogService — реализация CatalogService поверх Client.
type catalogService struct {
	client *Client
}

// NewCatalogService возвращает сервис чтения справочных данных.
func NewCatalogService(client *Client) domain.CatalogService {
	return &catalogService{client: client}
}

func (s *catalogService) GetEvent(ctx context.Context, eventID string) (domain.Event, error) {
	document := fmt.Sprintf(`query { event(id: %q){id,eventManagerId,name,description,location,start,end,totalCapacity,availableCapacity,capacityLocationSummery{capacityLocationPath,name,capacity,issued,reserved,granted,available,used,start,end},hasTimeslots} }`, eventID)

	var result struct {
		Event domain.Event `json:"event"`
	}
	if err := s.client.query(ctx, document, &result); err != nil {
		return domain.Event{}, err
	}
	return result.Event, nil
}

// priceParams собирает необязательные аргументы ценового запроса.
// Пустые поля опускаются, сервер применяет значения по умолчанию.
func priceParams(opts domain.PriceQueryOptions) string {
	var sb strings.Builder
	if opts.OrderID != "" {
		fmt.Fprintf(&sb, `, orderId: %q`, opts.OrderID)
	}
	if opts.CustomerID != "" {
		fmt.Fprintf(&sb, `, customerId: %q`, opts.CustomerID)
	}
	if opts.SalesChannelID != "" {
		fmt.Fprintf(&sb, `, salesChannelId: %q`, opts.SalesChannelID)
	}
	if opts.PreferredLanguageCode != "" {
		fmt.Fprintf(&sb, `, preferredLanguage: %q`, opts.PreferredLanguageCode)
	}
	return sb.String()
}

func (s *catalogService) GetEventPrices(ctx context.Context, eventID string, opts domain.PriceQueryOptions) ([]domain.EventPrice, error) {
	document := fmt.Sprintf(`query { eventPrices(eventId: %q%s){conditionId,price,currency{code,name,exponent,symbol},limit,tax,description,conditionPath,accessDefinition{id,name,description,capacityLocations}} }`, eventID, priceParams(opts))

	var result struct {
		EventPrices []domain.EventPrice `json:"eventPrices"`
	}
	if err := s.client.query(ctx, document, &result); err != nil {
		return nil, err
	}
	return result.EventPrices, nil
}

func (s *catalogService) GetProductDefinition(ctx context.Context, productDefinitionID string) (domain.ProductDefinition, error) {
	document := fmt.Sprintf(`query { productDefinition(id: %q){id,name,description,apiConfig{... on CreditAccountApiConfig{source,currencyCode,amount}}} }`, productDefinitionID)

	var result struct {
		ProductDefinition domain.ProductDefinition `json:"productDefinition"`
	}
	if err := s.client.query(ctx, document, &result); err != nil {
		return domain.ProductDefinition{}, err
	}
	return result.ProductDefinition, nil
}

func (s *catalogService) GetProductPrices(ctx context.Context, productDefinitionID string, opts domain.PriceQueryOptions) ([]domain.ProductPrice, error) {
	document := fmt.Sprintf(`query { productPrices(productDefinitionId: %q%s){conditionId,price,currency{code,name,exponent,symbol},limit,tax,description,conditionPath,productDefinition{id,name,description}} }`, productDefinitionID, priceParams(opts))

	var result struct {
		ProductPrices []domain.ProductPrice `json:"productPrices"`
	}
	if err := s.client.query(ctx, document, &result); err != nil {
		return nil, err
	}
	return result.ProductPrices, nil
}

func (s *catalogService) GetCustomer(ctx context.Context, customerID string) (domain.Customer, error) {
	document := fmt.Sprintf(`query { customer(id: %q){id,firstName,lastName,fullName,sortName,birthDate,gender,email,tags{id,name}} }`, customerID)

	var result struct {
		Customer domain.Customer `json:"customer"`
	}
	if err := s.client.query(ctx, document, &result); err != nil {
		return domain.Customer{}, err
	}
	return result.Customer, nil
}

func (s *catalogService) GetOrderMessages(ctx context.Context, query domain.OrderMessageQuery) ([]domain.OrderMessage, error) {
	var sb strings.Builder
	if query.OrderID != "" {
		fmt.Fprintf(&sb, `, orderId: %q`, query.OrderID)
	}
	if query.EventID != "" {
		fmt.Fprintf(&sb, `, eventId: %q`, query.EventID)
	}
	if query.ProductDefinitionID != "" {
		fmt.Fprintf(&sb, `, productDefinitionId: %q`, query.ProductDefinitionID)
	}
	if query.CustomerID != "" {
		fmt.Fprintf(&sb, `, customerId: %q`, query.CustomerID)
	}
	if query.SalesChannelID != "" {
		fmt.Fprintf(&sb, `, salesChannelId: %q`, query.SalesChannelID)
	}
	if query.PreferredLanguageCode != "" {
		fmt.Fprintf(&sb, `, preferredLanguage: %q`, query.PreferredLanguageCode)
	}
	document := fmt.Sprintf(`query { orderMessage(stage: %q%s){id,message} }`, query.Stage, sb.String())

	var result struct {
		OrderMessage []domain.OrderMessage `json:"orderMessage"`
	}
	if err := s.client.query(ctx, document, &result); err != nil {
		return nil, err
	}
	return result.OrderMessage, nil
}

var _ domain.CatalogService = (*catalogService)(nil)
