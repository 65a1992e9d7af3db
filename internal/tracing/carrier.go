package tracing

import (
	"os"
	"strings"
)

// EnvCarrier carrier поверх переменных окружения процесса.
//
// Ключ "traceparent" хранится в переменной TRACEPARENT, поэтому контекст
// наследуется дочерними процессами, запущенными из CLI-команды.
type EnvCarrier struct{}

// Get возвращает значение ключа из окружения.
func (EnvCarrier) Get(key string) string {
	return os.Getenv(envKey(key))
}

// Set записывает значение ключа в окружение.
func (EnvCarrier) Set(key, value string) {
	_ = os.Setenv(envKey(key), value)
}

// Keys возвращает ключи трассировки, присутствующие в окружении.
func (EnvCarrier) Keys() []string {
	var keys []string
	for _, k := range []string{"traceparent", "tracestate", "baggage"} {
		if _, ok := os.LookupEnv(envKey(k)); ok {
			keys = append(keys, k)
		}
	}
	return keys
}

func envKey(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}
