package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/cartsync/internal/app"
	"github.com/vladislavdragonenkov/cartsync/internal/cart"
	"github.com/vladislavdragonenkov/cartsync/internal/domain"
	"github.com/vladislavdragonenkov/cartsync/internal/version"
)

// setupLogger настраивает формат и уровень логирования.
func setupLogger(verbose bool) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.InfoLevel)
	if verbose {
		log.SetLevel(log.DebugLevel)
	}
}

func main() {
	var (
		showVersion = flag.Bool("version", false, "print version and exit")
		verbose     = flag.Bool("verbose", false, "enable debug logging")

		eventID            = flag.String("event", "", "event id to buy a ticket for")
		accessDefinitionID = flag.String("access-definition", "", "access definition id of the ticket")
		conditionPath      = flag.String("condition-path", "", "comma-separated requested condition path")
		email              = flag.String("email", "", "customer email for reserve/checkout")
		payMethod          = flag.String("pay", "", "payment method (cash, pin or an online method); empty skips payment")
		amount             = flag.Float64("amount", 0, "payment amount")
		currency           = flag.String("currency", "EUR", "payment currency code")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	setupLogger(*verbose)
	cfg := app.FromEnv(app.DefaultConfig())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, demoParams{
		eventID:            *eventID,
		accessDefinitionID: *accessDefinitionID,
		conditionPath:      *conditionPath,
		email:              *email,
		payMethod:          *payMethod,
		amount:             *amount,
		currency:           *currency,
	}); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("демо завершилось с ошибкой")
	}
}

type demoParams struct {
	eventID            string
	accessDefinitionID string
	conditionPath      string
	email              string
	payMethod          string
	amount             float64
	currency           string
}

// run проходит полный цикл покупки: событие, цены, корзина, резервирование,
// оформление и платёж.
func run(ctx context.Context, cfg app.Config, params demoParams) error {
	if params.eventID == "" || params.accessDefinitionID == "" {
		return errors.New("flags -event and -access-definition are required")
	}

	deps, err := app.Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := deps.Close(); err != nil {
			log.WithError(err).Warn("closing storage failed")
		}
	}()

	c := deps.Cart

	event, err := c.GetEvent(ctx, params.eventID)
	if err != nil {
		return fmt.Errorf("load event: %w", err)
	}
	log.WithFields(log.Fields{
		"event":    event.Name,
		"start":    event.Start,
		"capacity": event.AvailableCapacity,
	}).Info("событие найдено")

	prices, err := c.GetEventPrices(ctx, params.eventID, domain.PriceQueryOptions{})
	if err != nil {
		return fmt.Errorf("load event prices: %w", err)
	}
	for _, price := range prices {
		log.WithFields(log.Fields{
			"condition": price.ConditionID,
			"price":     price.Price,
			"currency":  price.Currency.Code,
		}).Info("доступная цена")
	}

	var path []string
	if params.conditionPath != "" {
		path = strings.Split(params.conditionPath, ",")
	}

	err = c.AddItems(ctx, []domain.AddItem{
		domain.AddAccessItem{
			EventManagerID:         event.EventManagerID,
			EventID:                params.eventID,
			AccessDefinitionID:     params.accessDefinitionID,
			RequestedConditionPath: path,
		},
	})
	if err != nil {
		return fmt.Errorf("add ticket: %w", err)
	}

	count, err := c.ItemCount(ctx)
	if err != nil {
		return err
	}
	log.WithField("items", count).Info("билет в корзине")

	if err := c.Reserve(ctx, params.email, ""); err != nil {
		return fmt.Errorf("reserve: %w", err)
	}

	opts := cart.CheckoutOptions{CustomerEmail: params.email}
	if params.payMethod != "" {
		opts.Payments = []domain.PaymentRequest{{
			CurrencyCode: params.currency,
			Amount:       params.amount,
			Method:       params.payMethod,
		}}
	}

	intents, err := c.Checkout(ctx, opts)
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	for _, intent := range intents {
		fields := log.Fields{"payment_id": intent.PaymentID}
		if intent.PaymentURL != "" {
			fields["payment_url"] = intent.PaymentURL
		}
		log.WithFields(fields).Info("платёж создан")
	}

	order, err := c.Order(ctx)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"order_id": order.ID,
		"status":   order.Status,
		"total":    order.TotalPrice,
	}).Info("заказ оформлен")
	return nil
}
