package app

import "os"

// StorageDriver выбирает носитель снимка и сессии.
type StorageDriver string

const (
	StorageDriverMemory   StorageDriver = "memory"
	StorageDriverRedis    StorageDriver = "redis"
	StorageDriverPostgres StorageDriver = "postgres"
)

// Config описывает настройки корзины: эндпоинты платформы, учётные данные
// oauth-клиента, стартовый контекст сессии и выбор хранилища.
type Config struct {
	AuthURL     string
	AdminAPIURL string
	GraphAPIURL string

	ClientID     string
	ClientSecret string
	Scope        string

	SalesChannelID        string
	RegisterID            string
	CustomerID            string
	PreferredLanguageCode string

	StorageDriver StorageDriver
	// SessionNamespace разделяет сессии на общем Redis или PostgreSQL.
	SessionNamespace string
	RedisAddr        string
	RedisPassword    string
	PostgresDSN      string
}

// DefaultConfig возвращает конфигурацию с продакшен-эндпоинтами платформы
// и in-memory хранилищем.
func DefaultConfig() Config {
	return Config{
		StorageDriver:    StorageDriverMemory,
		SessionNamespace: "default",
	}
}

// FromEnv накладывает переменные окружения CARTSYNC_* на конфигурацию.
func FromEnv(cfg Config) Config {
	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	set(&cfg.AuthURL, "CARTSYNC_AUTH_URL")
	set(&cfg.AdminAPIURL, "CARTSYNC_ADMIN_API_URL")
	set(&cfg.GraphAPIURL, "CARTSYNC_GRAPH_API_URL")
	set(&cfg.ClientID, "CARTSYNC_CLIENT_ID")
	set(&cfg.ClientSecret, "CARTSYNC_CLIENT_SECRET")
	set(&cfg.Scope, "CARTSYNC_SCOPE")
	set(&cfg.SalesChannelID, "CARTSYNC_SALES_CHANNEL_ID")
	set(&cfg.RegisterID, "CARTSYNC_REGISTER_ID")
	set(&cfg.CustomerID, "CARTSYNC_CUSTOMER_ID")
	set(&cfg.PreferredLanguageCode, "CARTSYNC_PREFERRED_LANGUAGE")
	set(&cfg.SessionNamespace, "CARTSYNC_SESSION_NAMESPACE")
	set(&cfg.RedisAddr, "CARTSYNC_REDIS_ADDR")
	set(&cfg.RedisPassword, "CARTSYNC_REDIS_PASSWORD")
	set(&cfg.PostgresDSN, "CARTSYNC_POSTGRES_DSN")

	if v := os.Getenv("CARTSYNC_STORAGE_DRIVER"); v != "" {
		cfg.StorageDriver = StorageDriver(v)
	}
	return cfg
}
