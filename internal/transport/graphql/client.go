package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/cartsync/internal/domain"
	"github.com/vladislavdragonenkov/cartsync/internal/metrics"
)

const (
	// DefaultAuthURL — auth-эндпоинт платформы по умолчанию.
	DefaultAuthURL = "https://auth.ticketengine.io"
	// DefaultAdminAPIURL — command-эндпоинт по умолчанию.
	DefaultAdminAPIURL = "https://admin-api.ticketengine.io"
	// DefaultGraphAPIURL — query-эндпоинт по умолчанию.
	DefaultGraphAPIURL = "https://graph-api.ticketengine.io"

	defaultRequestTimeout = 30 * time.Second
)

// Options — настройки клиента. Пустые поля заменяются значениями по умолчанию.
type Options struct {
	AdminAPIURL string
	GraphAPIURL string
	// HTTPClient позволяет подставить клиент с oauth2-транспортом или
	// тестовый клиент. nil — http.DefaultClient с таймаутом.
	HTTPClient *http.Client
	Logger     *log.Entry
	Metrics    *metrics.CartMetrics
}

// Client отправляет команды на command-эндпоинт и запросы на query-эндпоинт.
// Ретраи команд управляются расписанием вызывающего кода: временные сбои
// (сетевые ошибки и 5xx) расходуют расписание, ошибки контракта (4xx и
// отказ обработчика) завершают команду сразу.
type Client struct {
	httpClient *http.Client
	adminURL   string
	graphURL   string
	logger     *log.Entry
	metrics    *metrics.CartMetrics
}

// NewClient создаёт клиент платформы.
func NewClient(opts Options) *Client {
	if opts.AdminAPIURL == "" {
		opts.AdminAPIURL = DefaultAdminAPIURL
	}
	if opts.GraphAPIURL == "" {
		opts.GraphAPIURL = DefaultGraphAPIURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: defaultRequestTimeout}
	}
	if opts.Logger == nil {
		opts.Logger = log.New().WithField("component", "graphql-client")
	}

	return &Client{
		httpClient: opts.HTTPClient,
		adminURL:   opts.AdminAPIURL,
		graphURL:   opts.GraphAPIURL,
		logger:     opts.Logger,
		metrics:    opts.Metrics,
	}
}

// commandEnvelope — тело POST /commands.
type commandEnvelope struct {
	CommandID   string `json:"commandId"`
	CommandName string `json:"commandName"`
	Payload     any    `json:"payload"`
}

// commandResponse — ответ command-эндпоинта. Data присутствует при успехе,
// Error — при отказе обработчика.
type commandResponse struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error,omitempty"`
}

// sendCommand отправляет команду и декодирует data-часть ответа в out
// (out может быть nil, если команда ничего не возвращает).
func (c *Client) sendCommand(ctx context.Context, name string, payload any, schedule *domain.RetrySchedule, out any) error {
	start := time.Now()
	if c.metrics != nil {
		c.metrics.RecordCommandSent(name)
		defer func() {
			c.metrics.RecordCommandDuration(name, time.Since(start))
		}()
	}

	body, err := json.Marshal(commandEnvelope{
		CommandID:   uuid.NewString(),
		CommandName: name,
		Payload:     payload,
	})
	if err != nil {
		return fmt.Errorf("encode command %s: %w", name, err)
	}

	var lastErr error
	for {
		lastErr = c.postCommand(ctx, name, body, out)
		if lastErr == nil {
			return nil
		}
		if !isTransient(lastErr) {
			if c.metrics != nil {
				c.metrics.RecordCommandFailed(name)
			}
			return lastErr
		}

		wait, ok := schedule.Next()
		if !ok {
			if c.metrics != nil {
				c.metrics.RecordCommandFailed(name)
			}
			return fmt.Errorf("command %s: %w: %v", name, domain.ErrRetryExhausted, lastErr)
		}

		c.logger.WithFields(log.Fields{
			"command": name,
			"wait":    wait.String(),
		}).WithError(lastErr).Warn("command failed, retrying")

		if err := sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// transientError помечает сбой, который имеет смысл повторить.
type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

func isTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}

func (c *Client) postCommand(ctx context.Context, name string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.adminURL+"/commands", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build command request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &transientError{err: fmt.Errorf("send command %s: %w", name, err)}
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusInternalServerError {
		return &transientError{err: fmt.Errorf("command %s: endpoint returned %d", name, resp.StatusCode)}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("command %s: endpoint returned %d: %w", name, resp.StatusCode, domain.ErrCommandFailed)
	}

	var envelope commandResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode command %s response: %w", name, err)
	}
	if envelope.Error != "" {
		return fmt.Errorf("command %s: %s: %w", name, envelope.Error, domain.ErrCommandFailed)
	}
	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("decode command %s data: %w", name, err)
		}
	}
	return nil
}

// graphqlRequest — тело POST /graphql.
type graphqlRequest struct {
	Query string `json:"query"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors,omitempty"`
}

// query выполняет GraphQL-запрос без ретраев и декодирует data-часть в out.
// Повторные чтения — ответственность цикла reconcile.
func (c *Client) query(ctx context.Context, document string, out any) error {
	body, err := json.Marshal(graphqlRequest{Query: document})
	if err != nil {
		return fmt.Errorf("encode graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphURL+"/graphql", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build graphql request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send graphql request: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("graphql endpoint returned %d", resp.StatusCode)
	}

	var envelope graphqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode graphql response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return fmt.Errorf("graphql query failed: %s", envelope.Errors[0].Message)
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("decode graphql data: %w", err)
		}
	}
	return nil
}

// sleep ждёт wait либо отмену контекста.
func sleep(ctx context.Context, wait time.Duration) error {
	if wait <= 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
