package validation

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 32
	// minPasswordLen нижняя граница длины master password
	minPasswordLen = 12
)

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// ValidateUsername checks the account name: 3-32 characters of latin letters, digits and underscore.
// The error is FieldErrors keyed by "username".
func ValidateUsername(username string) error {
	fe := FieldErrors{}
	switch n := len(username); {
	case n == 0:
		fe.add("username", "username is required")
	case n < minUsernameLen || n > maxUsernameLen:
		fe.add("username", fmt.Sprintf("username must be %d-%d characters", minUsernameLen, maxUsernameLen))
	case !usernameRe.MatchString(username):
		fe.add("username", "only latin letters, digits and underscore are allowed")
	}
	return fe.Err()
}

// ValidatePassword проверяет master password до вывода ключей
func ValidatePassword(password string) error {
	fe := FieldErrors{}
	if password == "" {
		fe.add("master_password", "master password is required")
	} else if utf8.RuneCountInString(password) < minPasswordLen {
		fe.add("master_password", fmt.Sprintf("master password must be at least %d characters", minPasswordLen))
	}
	return fe.Err()
}
