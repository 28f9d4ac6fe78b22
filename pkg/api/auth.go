package api

// RegisterRequest body of POST /api/v1/auth/register.
// Master password never leaves the device: the client sends only a hash of the derived auth key.
type RegisterRequest struct {
	Username    string `json:"username"`
	AuthKeyHash string `json:"auth_key_hash"` // hex SHA256 от auth key
	PublicSalt  string `json:"public_salt"`   // base64, 32 байта
}

type RegisterResponse struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

// SaltResponse body of GET /api/v1/auth/salt/{username}
type SaltResponse struct {
	PublicSalt string `json:"public_salt"`
}

type LoginRequest struct {
	Username    string `json:"username"`
	AuthKeyHash string `json:"auth_key_hash"`
}

// TokenResponse returned by login and refresh. The refresh token is single use.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"` // секунды
}

// ErrorResponse общий формат ошибки API. Fields заполняется только для 422.
type ErrorResponse struct {
	Fields  map[string]string `json:"fields,omitempty"`
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
}
