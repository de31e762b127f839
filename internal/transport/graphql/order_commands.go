package graphql

import (
	"context"
	"fmt"

	"github.com/vladislavdragonenkov/cartsync/internal/domain"
)

// Имена команд жизненного цикла заказа на command-эндпоинте.
const (
	commandCreateOrder            = "CreateOrder"
	commandCancelOrder            = "CancelOrder"
	commandCancelOrderReservation = "CancelOrderReservation"
	commandCartBatchOperation     = "CartBatchOperation"
	commandAddOrderToken          = "AddOrderToken"
	commandReserveOrder           = "ReserveOrder"
	commandCheckoutOrder          = "CheckoutOrder"
	commandAssignToCustomer       = "AssignToCustomer"
	commandUnassignFromCustomer   = "UnassignFromCustomer"
)

// orderCommandService — реализация OrderCommandService поверх Client.
type orderCommandService struct {
	client *Client
}

// NewOrderCommandService возвращает командный сервис заказа.
func NewOrderCommandService(client *Client) domain.OrderCommandService {
	return &orderCommandService{client: client}
}

type createOrderResult struct {
	OrderID string `json:"orderId"`
}

func (s *orderCommandService) CreateOrder(ctx context.Context, cmd domain.CreateOrderCommand, schedule *domain.RetrySchedule) (string, error) {
	var result createOrderResult
	if err := s.client.sendCommand(ctx, commandCreateOrder, cmd, schedule, &result); err != nil {
		return "", err
	}
	if result.OrderID == "" {
		return "", fmt.Errorf("command %s: response without orderId: %w", commandCreateOrder, domain.ErrCommandFailed)
	}
	return result.OrderID, nil
}

func (s *orderCommandService) CancelOrder(ctx context.Context, cmd domain.CancelOrderCommand, schedule *domain.RetrySchedule) error {
	return s.client.sendCommand(ctx, commandCancelOrder, cmd, schedule, nil)
}

func (s *orderCommandService) CancelReservation(ctx context.Context, cmd domain.CancelReservationCommand, schedule *domain.RetrySchedule) error {
	return s.client.sendCommand(ctx, commandCancelOrderReservation, cmd, schedule, nil)
}

type cartBatchResult struct {
	OrderLineItemIDs []string `json:"orderLineItemIds"`
}

func (s *orderCommandService) ApplyCartOperations(ctx context.Context, cmd domain.CartBatchCommand, schedule *domain.RetrySchedule) ([]string, error) {
	var result cartBatchResult
	if err := s.client.sendCommand(ctx, commandCartBatchOperation, cmd, schedule, &result); err != nil {
		return nil, err
	}
	return result.OrderLineItemIDs, nil
}

func (s *orderCommandService) AddOrderToken(ctx context.Context, cmd domain.AddTokenCommand, schedule *domain.RetrySchedule) error {
	return s.client.sendCommand(ctx, commandAddOrderToken, cmd, schedule, nil)
}

func (s *orderCommandService) ReserveOrder(ctx context.Context, cmd domain.ReserveCommand, schedule *domain.RetrySchedule) error {
	return s.client.sendCommand(ctx, commandReserveOrder, cmd, schedule, nil)
}

func (s *orderCommandService) CheckoutOrder(ctx context.Context, cmd domain.CheckoutCommand, schedule *domain.RetrySchedule) error {
	return s.client.sendCommand(ctx, commandCheckoutOrder, cmd, schedule, nil)
}

func (s *orderCommandService) AssignCustomer(ctx context.Context, cmd domain.AssignCustomerCommand, schedule *domain.RetrySchedule) error {
	return s.client.sendCommand(ctx, commandAssignToCustomer, cmd, schedule, nil)
}

func (s *orderCommandService) UnassignCustomer(ctx context.Context, cmd domain.UnassignCustomerCommand, schedule *domain.RetrySchedule) error {
	return s.client.sendCommand(ctx, commandUnassignFromCustomer, cmd, schedule, nil)
}

var _ domain.OrderCommandService = (*orderCommandService)(nil)
