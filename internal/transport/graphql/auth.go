package graphql

import (
	"context"
	"net/http"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/vladislavdragonenkov/cartsync/internal/domain"
)

const (
	// DefaultClientID — oauth-клиент корзины по умолчанию.
	DefaultClientID = "shopping_cart"
	// DefaultScope — права, необходимые полному циклу заказа.
	DefaultScope = "order:write payment:write event:read order:reserve"
)

// AuthOptions — настройки аутентификации.
type AuthOptions struct {
	AuthURL      string
	ClientID     string
	ClientSecret string
	Scope        string
}

// Authenticator управляет bearer-токеном платформы. По умолчанию работает
// по client_credentials; после Login переключается на password grant от
// имени пользователя. Реализует domain.AuthProvider.
type Authenticator struct {
	conf *oauth2.Config

	mu     sync.Mutex
	source oauth2.TokenSource
	last   *oauth2.Token
}

// NewAuthenticator создаёт аутентификатор с client_credentials-источником.
func NewAuthenticator(opts AuthOptions) *Authenticator {
	if opts.AuthURL == "" {
		opts.AuthURL = DefaultAuthURL
	}
	if opts.ClientID == "" {
		opts.ClientID = DefaultClientID
	}
	if opts.Scope == "" {
		opts.Scope = DefaultScope
	}

	tokenURL := opts.AuthURL + "/oauth/token"

	conf := &oauth2.Config{
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		Scopes:       []string{opts.Scope},
		Endpoint: oauth2.Endpoint{
			TokenURL: tokenURL,
		},
	}

	cc := &clientcredentials.Config{
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		Scopes:       []string{opts.Scope},
		TokenURL:     tokenURL,
	}

	return &Authenticator{
		conf:   conf,
		source: cc.TokenSource(context.Background()),
	}
}

// Login обменивает учётные данные пользователя на токен и делает его
// источником для последующих запросов.
func (a *Authenticator) Login(ctx context.Context, username, password string) error {
	token, err := a.conf.PasswordCredentialsToken(ctx, username, password)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.last = token
	a.source = oauth2.ReuseTokenSource(token, a.conf.TokenSource(context.Background(), token))
	return nil
}

// IsExpired сообщает, истёк ли последний полученный токен. До первого
// запроса токена нет, что также считается истечением.
func (a *Authenticator) IsExpired() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last == nil || !a.last.Valid()
}

// Token реализует oauth2.TokenSource. Свежий токен запоминается для
// IsExpired.
func (a *Authenticator) Token() (*oauth2.Token, error) {
	a.mu.Lock()
	source := a.source
	a.mu.Unlock()

	token, err := source.Token()
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.last = token
	a.mu.Unlock()
	return token, nil
}

// HTTPClient возвращает клиент, подписывающий запросы bearer-токеном.
func (a *Authenticator) HTTPClient() *http.Client {
	return &http.Client{
		Timeout: defaultRequestTimeout,
		Transport: &oauth2.Transport{
			Source: a,
			Base:   http.DefaultTransport,
		},
	}
}

var (
	_ domain.AuthProvider = (*Authenticator)(nil)
	_ oauth2.TokenSource  = (*Authenticator)(nil)
)
