package application

import (
	"errors"
	"net/url"
	"strings"
)

var ErrInvalidDeepLink = errors.New("invalid deep link configuration")

// DeepLink builds <base>/<recipient>?text=<message>. Spaces are encoded as
// %20 so the text survives apps that do not decode '+'.
func DeepLink(base, recipient, message string) (string, error) {
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", ErrInvalidDeepLink
	}
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return "", ErrInvalidDeepLink
	}
	text := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return strings.TrimRight(base, "/") + "/" + url.PathEscape(recipient) + "?text=" + text, nil
}
