package models

import "time"

// Next steps returned to clients when a precondition is missing.
const (
	NextStepSignIn           = "sign_in"
	NextStepRegisterBusiness = "register_business"
	NextStepCreateInvoice    = "create_invoice"
)

// Session is the resolved identity of the caller for one request. It is
// built once by the auth middleware and passed explicitly to services.
type Session struct {
	UserID             string    `json:"user_id"`
	Email              string    `json:"email"`
	Name               string    `json:"name,omitempty"`
	HasBusinessProfile bool      `json:"has_business_profile"`
	ExpiresAt          time.Time `json:"expires_at"`

	// TokenID identifies the bearer token this session was resolved from.
	TokenID string `json:"-"`
}

// NextStep is where a client should send the user after sign-in.
func (s *Session) NextStep() string {
	if s == nil {
		return NextStepSignIn
	}
	if !s.HasBusinessProfile {
		return NextStepRegisterBusiness
	}
	return NextStepCreateInvoice
}

// SignInRequest carries the identity provider's ID token.
type SignInRequest struct {
	IDToken string `json:"id_token" binding:"required"`
}

// SignInResponse is returned after a successful sign-in.
type SignInResponse struct {
	Token    string   `json:"token"`
	Session  *Session `json:"session"`
	NextStep string   `json:"next_step"`
}
