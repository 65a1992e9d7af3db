package rabbitmq

import "github.com/streadway/amqp"

// TableCarrier хранит контекст трассировки в заголовках сообщения.
type TableCarrier amqp.Table

// Get возвращает строковое значение заголовка.
func (c TableCarrier) Get(key string) string {
	v, ok := c[key]
	if !ok {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return ""
	}
}

// Set записывает заголовок.
func (c TableCarrier) Set(key, value string) {
	c[key] = value
}

// Keys возвращает имена заголовков.
func (c TableCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}
