// Package account turns the configured credential list into validated credentials.
package account

import (
	"errors"
	"strings"

	"github.com/xkilldash9x/netlogin/api/schemas"
)

var (
	// ErrNoAccounts is returned when the credential list is empty.
	ErrNoAccounts = errors.New("no accounts configured")
	// ErrNoValidAccounts is returned when no pair survives validation.
	ErrNoValidAccounts = errors.New("no valid accounts configured")
)

// Parse splits raw into user:pass pairs separated by ',' or ';'. Each pair is
// split on its first ':' and both halves are trimmed. Pairs with an empty user
// or password are dropped. Input order is preserved.
func Parse(raw string) ([]schemas.Credential, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrNoAccounts
	}

	pairs := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ';' })
	creds := make([]schemas.Credential, 0, len(pairs))
	for _, pair := range pairs {
		user, pass, ok := strings.Cut(pair, ":")
		if !ok {
			continue
		}
		user, pass = strings.TrimSpace(user), strings.TrimSpace(pass)
		if user == "" || pass == "" {
			continue
		}
		creds = append(creds, schemas.Credential{User: user, Pass: pass})
	}

	if len(creds) == 0 {
		return nil, ErrNoValidAccounts
	}
	return creds, nil
}

// Users returns the user names of creds, in order.
func Users(creds []schemas.Credential) []string {
	users := make([]string, len(creds))
	for i, c := range creds {
		users[i] = c.User
	}
	return users
}
