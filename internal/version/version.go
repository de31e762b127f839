package version

import "fmt"

// Заполняется через -ldflags при сборке.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// String возвращает строку версии для логов и вывода --version.
func String() string {
	return fmt.Sprintf("cartsync %s (commit=%s, built=%s)", version, commit, date)
}

// Short возвращает только номер версии.
func Short() string { return version }
