package dto

// ObtainTokenRequest carries login credentials for token issuance
type ObtainTokenRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required"`
}

// TokenPairDTO is the issued access/refresh token pair
type TokenPairDTO struct {
	Access    string `json:"access"`
	Refresh   string `json:"refresh"`
	TokenType string `json:"token_type"`
	ExpiresIn int    `json:"expires_in"`
}

// VerifyTokenRequest carries a token for validity checking
type VerifyTokenRequest struct {
	Token string `json:"token" validate:"required"`
}
