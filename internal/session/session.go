// Package session identifies the browser a request comes from. Each browser
// gets a random id in a long-lived cookie; the cart is keyed by it.
package session

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const (
	CookieName   = "potter_session-id"
	cookieMaxAge = 60 * 60 * 24 * 30
)

type ctxKeySessionID struct{}

func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		c, err := r.Cookie(CookieName)
		if err == nil && uuid.Validate(c.Value) == nil {
			id = c.Value
		} else {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     CookieName,
				Value:    id,
				Path:     "/",
				MaxAge:   cookieMaxAge,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, r.WithContext(WithID(r.Context(), id)))
	})
}

func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeySessionID{}, id)
}

func ID(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeySessionID{}).(string); ok {
		return v
	}
	return ""
}
