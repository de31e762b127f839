package graphql

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/cartsync/internal/domain"
	"github.com/vladislavdragonenkov/cartsync/internal/metrics"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(Options{
		AdminAPIURL: server.URL,
		GraphAPIURL: server.URL,
		HTTPClient:  server.Client(),
	})
}

func TestCreateOrderSendsEnvelopeAndReturnsID(t *testing.T) {
	var captured commandEnvelope
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/commands", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"orderId":"order-1"}}`))
	})

	orders := NewOrderCommandService(client)
	schedule := domain.NoRetry()
	orderID, err := orders.CreateOrder(context.Background(), domain.CreateOrderCommand{
		SalesChannelID: "sc-1",
		RegisterID:     "reg-1",
	}, &schedule)

	require.NoError(t, err)
	require.Equal(t, "order-1", orderID)
	require.Equal(t, "CreateOrder", captured.CommandName)
	require.NotEmpty(t, captured.CommandID)

	payload, err := json.Marshal(captured.Payload)
	require.NoError(t, err)
	require.JSONEq(t, `{"salesChannelId":"sc-1","registerId":"reg-1"}`, string(payload))
}

func TestSendCommandRetriesTransientFailures(t *testing.T) {
	attempts := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"data":{"orderLineItemIds":["li-1","li-2"]}}`))
	})

	orders := NewOrderCommandService(client)
	schedule := domain.RetrySchedule{0, 0, 0}
	ids, err := orders.ApplyCartOperations(context.Background(), domain.CartBatchCommand{OrderID: "order-1"}, &schedule)

	require.NoError(t, err)
	require.Equal(t, []string{"li-1", "li-2"}, ids)
	require.Equal(t, 3, attempts)
	require.Equal(t, 1, schedule.Remaining())
}

func TestSendCommandFailsFastOnClientError(t *testing.T) {
	attempts := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
	})

	orders := NewOrderCommandService(client)
	schedule := domain.RetrySchedule{0, 0, 0}
	err := orders.ReserveOrder(context.Background(), domain.ReserveCommand{OrderID: "order-1"}, &schedule)

	require.ErrorIs(t, err, domain.ErrCommandFailed)
	require.Equal(t, 1, attempts)
	require.Equal(t, 3, schedule.Remaining())
}

func TestSendCommandExhaustsSchedule(t *testing.T) {
	attempts := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	orders := NewOrderCommandService(client)
	schedule := domain.RetrySchedule{0}
	err := orders.CheckoutOrder(context.Background(), domain.CheckoutCommand{OrderID: "order-1"}, &schedule)

	require.ErrorIs(t, err, domain.ErrRetryExhausted)
	require.Equal(t, 2, attempts)
	require.Equal(t, 0, schedule.Remaining())
}

func TestSendCommandSurfacesHandlerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"order is not in pending state"}`))
	})

	orders := NewOrderCommandService(client)
	schedule := domain.NoRetry()
	err := orders.AddOrderToken(context.Background(), domain.AddTokenCommand{OrderID: "order-1", Token: "tok"}, &schedule)

	require.ErrorIs(t, err, domain.ErrCommandFailed)
	require.Contains(t, err.Error(), "order is not in pending state")
}

func TestSendCommandStopsOnCancelledContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	orders := NewOrderCommandService(client)
	schedule := domain.CommandRetrySchedule()
	err := orders.CancelOrder(ctx, domain.CancelOrderCommand{OrderID: "order-1"}, &schedule)

	require.Error(t, err)
	require.True(t, errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded))
}

func TestCreatePaymentParsesIntent(t *testing.T) {
	var captured commandEnvelope
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"data":{"paymentId":"pay-1","paymentUrl":"https://pay.example/redirect"}}`))
	})

	payments := NewPaymentCommandService(client)
	schedule := domain.NoRetry()
	intent, err := payments.CreateOnlinePayment(context.Background(), domain.CreatePaymentCommand{
		OrderID:      "order-1",
		CurrencyCode: "EUR",
		Amount:       12.5,
		Method:       "ideal",
	}, &schedule)

	require.NoError(t, err)
	require.Equal(t, "pay-1", intent.PaymentID)
	require.Equal(t, "https://pay.example/redirect", intent.PaymentURL)
	require.Equal(t, "CreatePayment", captured.CommandName)

	payload, err := json.Marshal(captured.Payload)
	require.NoError(t, err)
	require.JSONEq(t, `{"orderId":"order-1","currency":"EUR","amount":12.5,"paymentMethod":"ideal"}`, string(payload))
}

func TestGetOrderParsesSnapshot(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/graphql", r.URL.Path)

		var req graphqlRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Contains(t, req.Query, `order(id: "order-1")`)

		_, _ = w.Write([]byte(`{"data":{"me":{"order":{
			"id":"order-1","status":"reserved","totalPrice":25.0,"totalTax":2.1,
			"requiredPayments":[{"currency":{"code":"EUR"},"amount":25.0}],
			"lineItems":[
				{"id":"li-1","type":"access","status":"reserved","price":12.5,"accessId":"acc-1"},
				{"id":"li-2","type":"product","status":"removed","price":12.5,"productId":"prod-1"}
			]}}}}`))
	})

	reader := NewOrderReader(client)
	order, err := reader.GetOrder(context.Background(), "order-1")

	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusReserved, order.Status)
	require.Len(t, order.LineItems, 2)
	require.Equal(t, 1, order.ActiveItemCount())
	require.Equal(t, "EUR", order.RequiredPayments[0].Currency.Code)
}

func TestGetOrderMissingOrder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"me":{"order":null}}}`))
	})

	reader := NewOrderReader(client)
	_, err := reader.GetOrder(context.Background(), "order-1")

	require.ErrorIs(t, err, domain.ErrNoOrder)
}

func TestQuerySurfacesGraphQLErrors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"errors":[{"message":"access denied"}]}`))
	})

	catalog := NewCatalogService(client)
	_, err := catalog.GetEvent(context.Background(), "event-1")

	require.Error(t, err)
	require.Contains(t, err.Error(), "access denied")
}

func TestGetEventPricesBuildsOptionalParams(t *testing.T) {
	var document string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req graphqlRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		document = req.Query
		_, _ = w.Write([]byte(`{"data":{"eventPrices":[{"conditionId":"cond-1","price":10.0,"currency":{"code":"EUR"}}]}}`))
	})

	catalog := NewCatalogService(client)
	prices, err := catalog.GetEventPrices(context.Background(), "event-1", domain.PriceQueryOptions{
		OrderID:        "order-1",
		SalesChannelID: "sc-1",
	})

	require.NoError(t, err)
	require.Len(t, prices, 1)
	require.Contains(t, document, `eventId: "event-1"`)
	require.Contains(t, document, `orderId: "order-1"`)
	require.Contains(t, document, `salesChannelId: "sc-1"`)
	require.NotContains(t, document, "customerId")
	require.NotContains(t, document, "preferredLanguage")
}

func commandCounterValue(t *testing.T, reg *prometheus.Registry, name, command string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "command" && label.GetValue() == command {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestSendCommandRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	cartMetrics := metrics.NewCartMetricsWithRegisterer(reg)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var envelope commandEnvelope
		require.NoError(t, json.NewDecoder(r.Body).Decode(&envelope))
		if envelope.CommandName == "ReserveOrder" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"data":{"orderId":"order-1"}}`))
	}))
	t.Cleanup(server.Close)

	client := NewClient(Options{
		AdminAPIURL: server.URL,
		GraphAPIURL: server.URL,
		HTTPClient:  server.Client(),
		Metrics:     cartMetrics,
	})
	orders := NewOrderCommandService(client)

	createSchedule := domain.NoRetry()
	_, err := orders.CreateOrder(context.Background(), domain.CreateOrderCommand{
		SalesChannelID: "sc-1",
		RegisterID:     "reg-1",
	}, &createSchedule)
	require.NoError(t, err)

	require.Equal(t, 1.0, commandCounterValue(t, reg, "cartsync_commands_sent_total", "CreateOrder"))
	require.Equal(t, 0.0, commandCounterValue(t, reg, "cartsync_commands_failed_total", "CreateOrder"))

	reserveSchedule := domain.NoRetry()
	err = orders.ReserveOrder(context.Background(), domain.ReserveCommand{OrderID: "order-1"}, &reserveSchedule)
	require.ErrorIs(t, err, domain.ErrRetryExhausted)

	require.Equal(t, 1.0, commandCounterValue(t, reg, "cartsync_commands_sent_total", "ReserveOrder"))
	require.Equal(t, 1.0, commandCounterValue(t, reg, "cartsync_commands_failed_total", "ReserveOrder"))
}
