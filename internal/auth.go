package internal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	logoutPath = "v2/logout"

	// Placeholder anti-automation values; CAPTCHA solving is not supported.
	CaptchaToken    = "None"
	CaptchaProvider = "PROVIDER_ARKOSE_LABS"
)

// Authenticator performs the cookie login: it fetches a CSRF token from the
// logout endpoint, then submits the stored credentials with that token.
type Authenticator struct {
	client    *http.Client
	userAgent string
	logoutURL *url.URL
	loginURL  *url.URL
	formData  url.Values
}

// NewAuthenticator creates a new authenticator. authBaseURL points at the auth
// host and wwwBaseURL at the site root that accepts the login form.
func NewAuthenticator(httpClient *http.Client, email, username, password, userAgent, authBaseURL, wwwBaseURL string) (*Authenticator, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	authURL, err := ParseBaseURL(authBaseURL)
	if err != nil {
		return nil, &AuthError{Err: fmt.Errorf("failed to parse auth URL: %w", err)}
	}
	logoutURL, err := authURL.Parse(logoutPath)
	if err != nil {
		return nil, &AuthError{Err: fmt.Errorf("failed to parse logout endpoint path: %w", err)}
	}

	loginURL, err := ParseBaseURL(wwwBaseURL)
	if err != nil {
		return nil, &AuthError{Err: fmt.Errorf("failed to parse login URL: %w", err)}
	}

	// Prepare form data upfront
	form := url.Values{}
	form.Set("ctype", email)
	form.Set("cvalue", username)
	form.Set("password", password)
	form.Set("captchaToken", CaptchaToken)
	form.Set("captchaProvider", CaptchaProvider)

	return &Authenticator{
		client:    httpClient,
		userAgent: userAgent,
		logoutURL: logoutURL,
		loginURL:  loginURL,
		formData:  form,
	}, nil
}

// Login authenticates the security cookie and returns the CSRF token that
// must accompany later mutating requests.
func (a *Authenticator) Login(ctx context.Context, securityCookie string) (string, error) {
	token, err := a.fetchCSRFToken(ctx, securityCookie)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.loginURL.String(), strings.NewReader(a.formData.Encode()))
	if err != nil {
		return "", &AuthError{Err: fmt.Errorf("failed to create login request: %w", err)}
	}
	a.decorate(req, securityCookie)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set(CSRFHeader, token)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", &AuthError{Err: fmt.Errorf("failed to execute login request: %w", err)}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &AuthError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("failed to read response body: %w", err),
		}
	}

	if resp.StatusCode != http.StatusOK {
		_, msg, _ := APIErrorMessage(bodyBytes)
		return "", &AuthError{
			StatusCode: resp.StatusCode,
			Message:    msg,
			Body:       string(bodyBytes),
		}
	}

	// The site may rotate the token on success.
	if rotated := resp.Header.Get(CSRFHeader); rotated != "" {
		token = rotated
	}
	return token, nil
}

// fetchCSRFToken posts to the logout endpoint, which answers with the token in
// a response header regardless of its status code.
func (a *Authenticator) fetchCSRFToken(ctx context.Context, securityCookie string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.logoutURL.String(), nil)
	if err != nil {
		return "", &AuthError{Err: fmt.Errorf("failed to create token request: %w", err)}
	}
	a.decorate(req, securityCookie)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", &AuthError{Err: fmt.Errorf("failed to execute token request: %w", err)}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	token := resp.Header.Get(CSRFHeader)
	if token == "" {
		return "", &AuthError{
			StatusCode: resp.StatusCode,
			Message:    "no CSRF token in logout response",
		}
	}
	return token, nil
}

func (a *Authenticator) decorate(req *http.Request, securityCookie string) {
	req.Header.Set("User-Agent", a.userAgent)
	req.AddCookie(&http.Cookie{Name: SecurityCookieName, Value: securityCookie})
}

// AuthError represents an error that occurred during authentication.
type AuthError struct {
	StatusCode int
	// Message is the first error message reported by the server, if any.
	Message string
	// Body contains the raw response body from the server, which may hold more details.
	Body string
	// Err is the underlying error that occurred, e.g., a network error.
	Err error
}

// Error implements the error interface, providing a detailed error message.
func (e *AuthError) Error() string {
	var sb strings.Builder
	sb.WriteString("auth error")

	if e.StatusCode != 0 {
		fmt.Fprintf(&sb, ": status code %d", e.StatusCode)
	}

	if e.Message != "" {
		fmt.Fprintf(&sb, ", message: %s", e.Message)
	} else if e.Body != "" {
		fmt.Fprintf(&sb, ", body: %q", e.Body)
	}

	if e.Err != nil {
		fmt.Fprintf(&sb, ", err: %v", e.Err)
	}

	return sb.String()
}

// Unwrap allows for error chaining with errors.Is and errors.As.
func (e *AuthError) Unwrap() error { return e.Err }
