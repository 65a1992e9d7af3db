package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/magabrotheeeer/storefront/internal/models"
)

// MaxTokenBodyBytes предел тела запроса, в котором ищется токен.
const MaxTokenBodyBytes = 1 << 20

// Guard разрешает пользователя текущего запроса.
type Guard interface {
	User(ctx context.Context) *models.User
	Check(ctx context.Context) bool
	Validate(ctx context.Context, credentials map[string]string) *models.User
	Login(ctx context.Context, credentials map[string]string) (string, error)
	Logout()
	SetUser(user *models.User)
	TokenForRequest() string
}

// JWTGuard Guard для одного HTTP-запроса. Не безопасен для конкурентного использования.
type JWTGuard struct {
	provider   UserProvider
	request    *http.Request
	inputKey   string
	storageKey string

	user      *models.User
	resolved  bool
	loggedOut bool

	token      string
	tokenFound bool
}

// NewJWTGuard создаёт guard для запроса. Пустые ключи заменяются на DefaultTokenKey.
func NewJWTGuard(provider UserProvider, r *http.Request, inputKey, storageKey string) *JWTGuard {
	if inputKey == "" {
		inputKey = DefaultTokenKey
	}
	if storageKey == "" {
		storageKey = DefaultTokenKey
	}
	return &JWTGuard{
		provider:   provider,
		request:    r,
		inputKey:   inputKey,
		storageKey: storageKey,
	}
}

// User возвращает пользователя запроса или nil.
// Результат, в том числе отсутствие пользователя, вычисляется один раз.
func (g *JWTGuard) User(ctx context.Context) *models.User {
	if g.resolved {
		return g.user
	}
	g.resolved = true
	if token := g.TokenForRequest(); token != "" {
		g.user = g.provider.RetrieveByToken(ctx, token)
	}
	return g.user
}

// Check сообщает, аутентифицирован ли запрос.
func (g *JWTGuard) Check(ctx context.Context) bool {
	return g.User(ctx) != nil
}

// Validate разрешает пользователя только по токену из запроса, учётные данные не используются.
func (g *JWTGuard) Validate(ctx context.Context, _ map[string]string) *models.User {
	return g.User(ctx)
}

// Login ищет пользователя по учётным данным и возвращает выданный сервисом токен.
// Если пользователь не найден и ошибки нет, возвращается пустой токен.
func (g *JWTGuard) Login(ctx context.Context, credentials map[string]string) (string, error) {
	user, err := g.provider.RetrieveByCredentials(ctx, credentials)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", nil
	}

	token, err := g.provider.ValidateCredentials(ctx, user, credentials)
	if err != nil {
		return "", err
	}
	g.SetUser(user)
	return token, nil
}

// Logout сбрасывает пользователя запроса. Удалённый сервис не вызывается.
func (g *JWTGuard) Logout() {
	g.user = nil
	g.resolved = true
	g.loggedOut = true
}

// LoggedOut сообщает, вызывался ли Logout.
func (g *JWTGuard) LoggedOut() bool {
	return g.loggedOut
}

// SetUser устанавливает пользователя запроса.
func (g *JWTGuard) SetUser(user *models.User) {
	g.user = user
	g.resolved = true
	g.loggedOut = false
}

// StorageKey имя cookie, в которой хранится токен.
func (g *JWTGuard) StorageKey() string {
	return g.storageKey
}

// TokenForRequest ищет токен в порядке: query, тело запроса, Authorization: Bearer, cookie.
func (g *JWTGuard) TokenForRequest() string {
	if g.tokenFound {
		return g.token
	}
	g.tokenFound = true

	r := g.request
	if r == nil {
		return ""
	}
	if token := r.URL.Query().Get(g.inputKey); token != "" {
		g.token = token
		return token
	}
	if token := g.bodyToken(); token != "" {
		g.token = token
		return token
	}
	if token := bearerToken(r); token != "" {
		g.token = token
		return token
	}
	if cookie, err := r.Cookie(g.storageKey); err == nil && cookie.Value != "" {
		g.token = cookie.Value
	}
	return g.token
}

// bodyToken читает поле токена из JSON или form тела и возвращает тело запросу.
func (g *JWTGuard) bodyToken() string {
	r := g.request
	if r.Body == nil || r.Body == http.NoBody {
		return ""
	}
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" && mediaType != "application/x-www-form-urlencoded" {
		return ""
	}

	body := r.Body
	raw, err := io.ReadAll(io.LimitReader(body, MaxTokenBodyBytes+1))
	if err != nil || len(raw) > MaxTokenBodyBytes {
		// тело больше лимита не разбирается, обработчик получает его целиком
		r.Body = readCloser{Reader: io.MultiReader(bytes.NewReader(raw), body), Closer: body}
		return ""
	}
	_ = body.Close()
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if len(raw) == 0 {
		return ""
	}

	if mediaType == "application/json" {
		var fields map[string]any
		if err := json.Unmarshal(raw, &fields); err != nil {
			return ""
		}
		token, _ := fields[g.inputKey].(string)
		return token
	}

	values, err := url.ParseQuery(string(raw))
	if err != nil {
		return ""
	}
	return values.Get(g.inputKey)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) < 7 || !strings.EqualFold(header[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

type readCloser struct {
	io.Reader
	io.Closer
}
