package auth

import "errors"

// ErrUnauthenticated общий признак ошибки аутентификации.
// Любая *Error удовлетворяет errors.Is(err, ErrUnauthenticated).
var ErrUnauthenticated = errors.New("unauthenticated")

// Kind вид ошибки аутентификации.
type Kind int

const (
	// KindNotFound пользователь с таким email не найден.
	KindNotFound Kind = iota + 1
	// KindMismatch учётные данные не совпали или сервис недоступен.
	KindMismatch
	// KindTokenInvalid переданный токен недействителен.
	KindTokenInvalid
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindMismatch:
		return "mismatch"
	case KindTokenInvalid:
		return "token_invalid"
	default:
		return "unknown"
	}
}

// Error ошибка аутентификации.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return "authentication failed: " + e.Message
}

// Is сопоставляет ошибку с ErrUnauthenticated.
func (e *Error) Is(target error) bool {
	return target == ErrUnauthenticated
}

var (
	errEmailNotFound      = &Error{Kind: KindNotFound, Message: "email not found"}
	errEmailMismatch      = &Error{Kind: KindMismatch, Message: "email and password mismatch"}
	errCredentialMismatch = &Error{Kind: KindMismatch, Message: "credentials mismatch"}
	errTokenInvalid       = &Error{Kind: KindTokenInvalid, Message: "token invalid"}
)

// KindOf возвращает вид ошибки или 0, если err не ошибка аутентификации.
func KindOf(err error) Kind {
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr.Kind
	}
	return 0
}
