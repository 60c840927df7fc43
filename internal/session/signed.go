package session

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
)

// CookieManager carries the whole payload in the cookie itself, signed
// with HMAC-SHA256. No external store round trip on either path.
type CookieManager struct {
	secret []byte
	opts   CookieOptions
}

func NewCookieManager(secret string, opts CookieOptions) *CookieManager {
	return &CookieManager{
		secret: []byte(secret),
		opts:   opts,
	}
}

func (m *CookieManager) sign(data string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(data))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (m *CookieManager) GetSession(_ context.Context, cookieHeader string) *Session {
	value := cookieValue(cookieHeader)
	if value == "" {
		return New()
	}

	data, sig, ok := strings.Cut(value, ".")
	if !ok {
		return New()
	}
	if !hmac.Equal([]byte(m.sign(data)), []byte(sig)) {
		// forged or re-keyed: anonymous
		return New()
	}

	raw, err := base64.RawURLEncoding.DecodeString(data)
	if err != nil {
		return New()
	}

	s, ok := decode("", raw)
	if !ok {
		return New()
	}
	return s
}

func (m *CookieManager) Commit(_ context.Context, s *Session) (string, error) {
	raw, err := s.encode()
	if err != nil {
		return "", fmt.Errorf("session: encode: %w", err)
	}

	data := base64.RawURLEncoding.EncodeToString(raw)
	return buildCookie(data+"."+m.sign(data), m.opts), nil
}

func (m *CookieManager) Destroy(_ context.Context, _ *Session) (string, error) {
	return clearCookie(m.opts), nil
}
