package graphql

import (
	"context"

	"github.com/vladislavdragonenkov/cartsync/internal/domain"
)

// Имена платёжных команд. Кассовые платежи подтверждаются на месте,
// CreatePayment возвращает URL для редиректа на страницу оплаты.
const (
	commandCreateCashPayment = "CreateCashPayment"
	commandCreatePinPayment  = "CreatePinPayment"
	commandCreatePayment     = "CreatePayment"
)

// paymentCommandService — реализация PaymentCommandService поверх Client.
type paymentCommandService struct {
	client *Client
}

// NewPaymentCommandService возвращает платёжный командный сервис.
func NewPaymentCommandService(client *Client) domain.PaymentCommandService {
	return &paymentCommandService{client: client}
}

type createPaymentResult struct {
	PaymentID  string `json:"paymentId"`
	PaymentURL string `json:"paymentUrl"`
}

func (s *paymentCommandService) create(ctx context.Context, name string, cmd domain.CreatePaymentCommand, schedule *domain.RetrySchedule) (domain.PaymentIntent, error) {
	var result createPaymentResult
	if err := s.client.sendCommand(ctx, name, cmd, schedule, &result); err != nil {
		return domain.PaymentIntent{}, err
	}
	return domain.PaymentIntent{
		PaymentID:  result.PaymentID,
		PaymentURL: result.PaymentURL,
	}, nil
}

func (s *paymentCommandService) CreateCashPayment(ctx context.Context, cmd domain.CreatePaymentCommand, schedule *domain.RetrySchedule) (domain.PaymentIntent, error) {
	return s.create(ctx, commandCreateCashPayment, cmd, schedule)
}

func (s *paymentCommandService) CreatePinPayment(ctx context.Context, cmd domain.CreatePaymentCommand, schedule *domain.RetrySchedule) (domain.PaymentIntent, error) {
	return s.create(ctx, commandCreatePinPayment, cmd, schedule)
}

func (s *paymentCommandService) CreateOnlinePayment(ctx context.Context, cmd domain.CreatePaymentCommand, schedule *domain.RetrySchedule) (domain.PaymentIntent, error) {
	return s.create(ctx, commandCreatePayment, cmd, schedule)
}

var _ domain.PaymentCommandService = (*paymentCommandService)(nil)
