package models

// SessionCreateRequest holds credentials for opening a session.
type SessionCreateRequest struct {
	Username      string `json:"username" validate:"required"`
	Password      string `json:"password" validate:"required"`
	TwoFactorCode string `json:"two_factor_code"`
}

// RefreshRequest carries the refresh token for the exchange and revoke calls.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenPair returns the issued bearer tokens.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RegisterRequest is the self-service registration payload.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required"`
	IsAdmin  bool   `json:"is_admin"`
}

// ChangePasswordRequest updates the account password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
}

// PasswordRequest carries a bare password for confirmation-gated actions.
type PasswordRequest struct {
	Password string `json:"password" validate:"required"`
}

// TwoFactorEnableRequest confirms 2FA enrollment with a password and a code
// generated from the previously issued authenticator key.
type TwoFactorEnableRequest struct {
	Password string `json:"password" validate:"required"`
	Code     string `json:"code" validate:"required,numeric,len=6"`
}

// TwoFactorKeyResponse returns the authenticator enrollment key.
type TwoFactorKeyResponse struct {
	AuthenticatorKey string `json:"authenticator_key"`
}

// RecoveryCodesResponse returns the single-use recovery codes generated at
// enrollment. They are shown exactly once.
type RecoveryCodesResponse struct {
	RecoveryCodes []string `json:"recovery_codes"`
}
