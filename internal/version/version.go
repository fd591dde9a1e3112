package version

import "fmt"

// Заполняются при сборке: -ldflags "-X .../internal/version.version=v1.2.0".
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Info возвращает версию, коммит и дату сборки.
func Info() (v, c, d string) { return version, commit, date }

func GetVersion() string { return version }

func GetCommit() string { return commit }

func GetDate() string { return date }

// String форматирует сведения о сборке для лога при старте.
func String() string {
	return fmt.Sprintf("bakery-service version=%s commit=%s date=%s", version, commit, date)
}
