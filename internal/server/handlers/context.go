package handlers

import "context"

// contextKey тип ключей контекста запроса
type contextKey string

// Ключи данных аутентифицированного пользователя
const (
	UserIDKey   contextKey = "user_id"
	UsernameKey contextKey = "username"
)

// WithUser кладет пользователя в контекст запроса
func WithUser(ctx context.Context, userID, username string) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, userID)
	return context.WithValue(ctx, UsernameKey, username)
}

// GetUserID возвращает ID пользователя, установленный auth middleware
func GetUserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(UserIDKey).(string)
	return id, ok && id != ""
}

// GetUsername возвращает имя пользователя, установленное auth middleware
func GetUsername(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(UsernameKey).(string)
	return name, ok && name != ""
}
