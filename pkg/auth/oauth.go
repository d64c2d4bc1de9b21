package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailScopes are the scopes needed to read the inbox and send mail
var GmailScopes = []string{gmail.GmailReadonlyScope, gmail.GmailSendScope}

const (
	defaultRedirectAddr = "localhost:8080"
	defaultAuthTimeout  = 5 * time.Minute
)

// OAuth2Config holds OAuth2 configuration
type OAuth2Config struct {
	CredentialsPath string
	TokenPath       string
	Scopes          []string

	// RedirectAddr is where the local callback server listens
	RedirectAddr string
	// AuthTimeout bounds the wait for the browser callback
	AuthTimeout time.Duration
	// Out receives the user-facing authorization instructions
	Out io.Writer
	// OpenURL, when set, is handed the authorization URL (e.g. to launch a browser)
	OpenURL func(url string)
}

// NewOAuth2Config creates a new OAuth2 configuration
func NewOAuth2Config(credentialsPath string, tokenPath string, scopes ...string) *OAuth2Config {
	return &OAuth2Config{
		CredentialsPath: credentialsPath,
		TokenPath:       tokenPath,
		Scopes:          scopes,
		RedirectAddr:    defaultRedirectAddr,
		AuthTimeout:     defaultAuthTimeout,
		Out:             os.Stdout,
	}
}

// LoadCredentials loads OAuth2 credentials from file
func (c *OAuth2Config) LoadCredentials() (*oauth2.Config, error) {
	data, err := os.ReadFile(c.CredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("could not read credentials file: %w", err)
	}

	config, err := google.ConfigFromJSON(data, c.Scopes...)
	if err != nil {
		return nil, fmt.Errorf("could not parse credentials file: %w", err)
	}

	return config, nil
}

// LoadToken loads cached token from file
func (c *OAuth2Config) LoadToken() (*oauth2.Token, error) {
	f, err := os.Open(c.TokenPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	token := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(token)
	return token, err
}

// SaveToken saves token to file
func (c *OAuth2Config) SaveToken(token *oauth2.Token) error {
	dir := filepath.Dir(c.TokenPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	f, err := os.OpenFile(c.TokenPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("could not save OAuth token: %w", err)
	}
	defer f.Close()

	return json.NewEncoder(f).Encode(token)
}

func (c *OAuth2Config) out() io.Writer {
	if c.Out == nil {
		return io.Discard
	}
	return c.Out
}

// GetToken retrieves a token, refreshing or re-authorizing if necessary
func (c *OAuth2Config) GetToken(ctx context.Context) (*oauth2.Token, error) {
	config, err := c.LoadCredentials()
	if err != nil {
		return nil, err
	}
	return c.getToken(ctx, config)
}

func (c *OAuth2Config) getToken(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	token, err := c.LoadToken()
	if err != nil {
		// Token not found, need to authenticate
		token, err = c.Authenticate(ctx, config)
		if err != nil {
			return nil, err
		}
	}

	if !token.Valid() {
		token, err = c.refreshToken(ctx, config, token)
		if err != nil {
			if !isRevoked(err) {
				return nil, fmt.Errorf("token refresh failed: %w", err)
			}
			fmt.Fprintln(c.out(), "\nYour Gmail access token has expired or been revoked.")
			fmt.Fprintln(c.out(), "Re-authorization is required to continue using TimeSaver.")
			token, err = c.Authenticate(ctx, config)
			if err != nil {
				return nil, fmt.Errorf("re-authentication failed: %w", err)
			}
		}
	}

	if err := c.SaveToken(token); err != nil {
		return nil, err
	}
	return token, nil
}

func isRevoked(err error) bool {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.ErrorCode == "invalid_grant" {
		return true
	}
	return strings.Contains(err.Error(), "invalid_grant") ||
		strings.Contains(err.Error(), "Token has been expired or revoked")
}

// Authenticate runs the authorization code flow with a local callback server
func (c *OAuth2Config) Authenticate(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	addr := c.RedirectAddr
	if addr == "" {
		addr = defaultRedirectAddr
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("local server error: %w", err)
	}

	state, err := newState()
	if err != nil {
		_ = ln.Close()
		return nil, err
	}

	codeChan := make(chan string, 1)
	errorChan := make(chan error, 1)

	server := &http.Server{
		ReadHeaderTimeout: 10 * time.Second,
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			code := q.Get("code")
			switch {
			case q.Get("state") != state:
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(callbackPage("Authorization error", "State mismatch.")))
				sendErr(errorChan, fmt.Errorf("state mismatch in authorization callback"))
			case code == "":
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(callbackPage("Authorization error", "Authorization code not received.")))
				sendErr(errorChan, fmt.Errorf("authorization code not received"))
			default:
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte(callbackPage("Authorization successful", "You can close this window and return to the application.")))
				select {
				case codeChan <- code:
				default:
				}
			}
		}),
	}

	go func() {
		if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
			sendErr(errorChan, err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	localConfig := &oauth2.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		RedirectURL:  "http://" + ln.Addr().String(),
		Scopes:       config.Scopes,
		Endpoint:     config.Endpoint,
	}

	authURL := localConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)
	fmt.Fprintf(c.out(), "\nAuthorization required\n")
	fmt.Fprintf(c.out(), "1. Open this link: %s\n", authURL)
	fmt.Fprintf(c.out(), "2. Grant access to the application\n")
	fmt.Fprintf(c.out(), "3. You will be redirected automatically\n")
	fmt.Fprintf(c.out(), "\nWaiting for authorization...\n")
	if c.OpenURL != nil {
		c.OpenURL(authURL)
	}

	timeout := c.AuthTimeout
	if timeout <= 0 {
		timeout = defaultAuthTimeout
	}

	var authCode string
	select {
	case authCode = <-codeChan:
	case err := <-errorChan:
		return nil, fmt.Errorf("local server error: %w", err)
	case <-time.After(timeout):
		return nil, fmt.Errorf("authorization timeout exceeded")
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	token, err := localConfig.Exchange(ctx, authCode)
	if err != nil {
		return nil, fmt.Errorf("could not exchange authorization code for token: %w", err)
	}

	fmt.Fprintf(c.out(), "Authorization successful!\n")
	return token, nil
}

func sendErr(ch chan error, err error) {
	select {
	case ch <- err:
	default:
	}
}

func callbackPage(title, body string) string {
	return "<html><body><h2>" + title + "</h2><p>" + body + "</p></body></html>"
}

func newState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("could not generate state: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// refreshToken refreshes an expired token
func (c *OAuth2Config) refreshToken(ctx context.Context, config *oauth2.Config, token *oauth2.Token) (*oauth2.Token, error) {
	tokenSource := config.TokenSource(ctx, token)
	newToken, err := tokenSource.Token()
	if err != nil {
		return nil, fmt.Errorf("could not refresh token: %w", err)
	}
	return newToken, nil
}

// NewGmailService creates a new Gmail service using OAuth2
func NewGmailService(ctx context.Context, oauthConfig *OAuth2Config) (*gmail.Service, error) {
	config, err := oauthConfig.LoadCredentials()
	if err != nil {
		return nil, err
	}

	token, err := oauthConfig.getToken(ctx, config)
	if err != nil {
		return nil, err
	}

	service, err := gmail.NewService(ctx, option.WithHTTPClient(config.Client(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("could not create Gmail service: %w", err)
	}
	return service, nil
}
