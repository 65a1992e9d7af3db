package jwt

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrExpired возвращается для токена с истёкшим или отсутствующим exp.
var ErrExpired = errors.New("token expired")

// Decoder проверяет подпись токена и срок его действия.
type Decoder struct {
	hmacKey    []byte
	rsaKey     *rsa.PublicKey
	algorithms []string
	now        func() time.Time
}

// ErrMixedAlgorithms возвращается, если в списке алгоритмов смешаны HMAC и RSA.
var ErrMixedAlgorithms = errors.New("hmac and rsa algorithms cannot share one key")

// NewDecoder создаёт Decoder. algorithms перечисляются через запятую (HS256,HS512).
// Все алгоритмы должны быть одного семейства: для HS* key это секрет,
// для RS* публичный ключ в PEM.
func NewDecoder(key, algorithms string) (*Decoder, error) {
	const op = "jwt.NewDecoder"

	d := &Decoder{now: time.Now}
	var hmacAlg, rsaAlg bool
	for _, alg := range strings.Split(algorithms, ",") {
		alg = strings.TrimSpace(alg)
		if alg == "" {
			continue
		}
		switch jwt.GetSigningMethod(alg).(type) {
		case *jwt.SigningMethodHMAC:
			hmacAlg = true
		case *jwt.SigningMethodRSA:
			rsaAlg = true
		default:
			return nil, fmt.Errorf("%s: unsupported algorithm %q", op, alg)
		}
		d.algorithms = append(d.algorithms, alg)
	}
	if len(d.algorithms) == 0 {
		return nil, fmt.Errorf("%s: no algorithms configured", op)
	}
	if hmacAlg && rsaAlg {
		return nil, fmt.Errorf("%s: %w", op, ErrMixedAlgorithms)
	}

	if rsaAlg {
		pub, err := jwt.ParseRSAPublicKeyFromPEM([]byte(key))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		d.rsaKey = pub
		return d, nil
	}
	d.hmacKey = []byte(key)
	return d, nil
}

// WithClock подменяет источник текущего времени.
func (d *Decoder) WithClock(now func() time.Time) *Decoder {
	d.now = now
	return d
}

// Decode проверяет подпись и возвращает claims.
// Токен с exp <= now считается недействительным.
func (d *Decoder) Decode(tokenStr string) (*Claims, error) {
	const op = "jwt.Decode"

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, d.keyFunc,
		jwt.WithValidMethods(d.algorithms),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if claims.ExpiresAt == nil || !claims.ExpiresAt.Time.After(d.now()) {
		return nil, fmt.Errorf("%s: %w", op, ErrExpired)
	}
	return claims, nil
}

func (d *Decoder) keyFunc(token *jwt.Token) (any, error) {
	switch token.Method.(type) {
	case *jwt.SigningMethodHMAC:
		if d.hmacKey == nil {
			return nil, fmt.Errorf("unexpected signing method %s", token.Method.Alg())
		}
		return d.hmacKey, nil
	case *jwt.SigningMethodRSA:
		if d.rsaKey == nil {
			return nil, fmt.Errorf("unexpected signing method %s", token.Method.Alg())
		}
		return d.rsaKey, nil
	default:
		return nil, fmt.Errorf("unexpected signing method %s", token.Method.Alg())
	}
}
