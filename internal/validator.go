package internal

import (
	"fmt"
	"strings"

	pkgerrs "github.com/jamesprial/go-roblox-api-wrapper/pkg/errors"
)

const (
	// User agent constraints
	maxUserAgentLength = 256

	// Search keyword constraints
	maxKeywordLength = 50
)

// AllowedLimits are the page sizes Roblox accepts on wall post and search
// listings.
var AllowedLimits = []int{10, 25, 50, 100}

// LimitMessage is the description attached to a rejected limit.
const LimitMessage = "allowed values for the limit: 10, 25, 50, 100"

// Validator provides validation operations for Roblox API parameters.
type Validator struct{}

// NewValidator creates a new Validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateLimit checks a page size against AllowedLimits.
func (v *Validator) ValidateLimit(limit int) error {
	for _, allowed := range AllowedLimits {
		if limit == allowed {
			return nil
		}
	}
	return &pkgerrs.ValidationError{Field: "limit", Value: limit, Message: LimitMessage}
}

// ValidateID checks that a numeric identifier is positive.
func (v *Validator) ValidateID(field string, id int64) error {
	if id <= 0 {
		return &pkgerrs.ValidationError{Field: field, Value: id, Message: "must be a positive integer"}
	}
	return nil
}

// ValidateKeyword checks a user search keyword.
func (v *Validator) ValidateKeyword(keyword string) error {
	trimmed := strings.TrimSpace(keyword)
	if trimmed == "" {
		return &pkgerrs.ValidationError{Field: "keyword", Value: keyword, Message: "keyword cannot be empty"}
	}
	if len(trimmed) > maxKeywordLength {
		return &pkgerrs.ValidationError{Field: "keyword", Value: keyword, Message: fmt.Sprintf("keyword cannot exceed %d characters", maxKeywordLength)}
	}
	return nil
}

// ValidateCredentials checks the login credentials held by the client.
func (v *Validator) ValidateCredentials(email, username, password string) error {
	if email == "" {
		return &pkgerrs.ConfigError{Field: "Email", Message: "email is required to log in"}
	}
	if username == "" {
		return &pkgerrs.ConfigError{Field: "Username", Message: "username is required to log in"}
	}
	if password == "" {
		return &pkgerrs.ConfigError{Field: "Password", Message: "password is required to log in"}
	}
	return nil
}

// ValidateSecurityCookie checks the session cookie supplied to Login.
func (v *Validator) ValidateSecurityCookie(cookie string) error {
	if strings.TrimSpace(cookie) == "" {
		return &pkgerrs.ConfigError{Field: "securityCookie", Message: "security cookie cannot be empty"}
	}
	if strings.ContainsAny(cookie, "\";\\\r\n") {
		return &pkgerrs.ConfigError{Field: "securityCookie", Message: "security cookie contains invalid characters"}
	}
	return nil
}

// ValidateUserAgent checks if a user agent string is valid.
func (v *Validator) ValidateUserAgent(ua string) error {
	if ua == "" {
		return fmt.Errorf("user agent cannot be empty")
	}

	// User-Agent should have a reasonable maximum length
	if len(ua) > maxUserAgentLength {
		return fmt.Errorf("user agent too long (max %d characters)", maxUserAgentLength)
	}

	return nil
}
