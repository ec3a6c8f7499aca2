package accesso

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/vncsmyrnk/accesso/internal/core/domain"
	"github.com/vncsmyrnk/accesso/internal/core/ports"
)

type Config struct {
	URL             string
	ClientID        string
	ClientSecret    string
	RedirectBackURL string
	SSLValidate     bool
	Timeout         time.Duration
}

// Client logs operators in against an upstream accesso instance using the
// regular authorization code flow.
type Client struct {
	oauth      oauth2.Config
	viewerURL  string
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	base := strings.TrimRight(cfg.URL, "/")

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !cfg.SSLValidate {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	return &Client{
		oauth: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectBackURL,
			Endpoint: oauth2.Endpoint{
				AuthURL:   base + "/oauth/authorize",
				TokenURL:  base + "/oauth/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		viewerURL:  base + "/viewer.get",
		httpClient: &http.Client{Transport: transport, Timeout: cfg.Timeout},
	}
}

var _ ports.AccessoClient = (*Client)(nil)

// AuthCodeURL is where the admin UI sends an operator to start a login.
func (c *Client) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

func (c *Client) ExchangeCode(ctx context.Context, code string) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	token, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return "", exchangeError(err)
	}
	return token.AccessToken, nil
}

func exchangeError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if !errors.As(err, &retrieveErr) {
		return &domain.UpstreamError{Kind: domain.UpstreamTryLater, Err: err}
	}

	switch retrieveErr.ErrorCode {
	case "invalid_grant":
		return &domain.UpstreamError{Kind: domain.UpstreamTryLater, Err: err}
	case "unauthorized_client", "invalid_client":
		return &domain.UpstreamError{Kind: domain.UpstreamUnauthorized, Err: err}
	default:
		if retrieveErr.Response != nil && retrieveErr.Response.StatusCode >= http.StatusInternalServerError {
			return &domain.UpstreamError{Kind: domain.UpstreamTryLater, Err: err}
		}
		return &domain.UpstreamError{Kind: domain.UpstreamFailed, Err: err}
	}
}

type viewerResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (c *Client) Viewer(ctx context.Context, accessToken string) (*domain.UpstreamProfile, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	client := c.oauth.Client(ctx, &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.viewerURL, nil)
	if err != nil {
		return nil, &domain.UpstreamError{Kind: domain.UpstreamFailed, Err: fmt.Errorf("build viewer request: %w", err)}
	}
	req.Header.Set("X-Access-Token", accessToken)

	resp, err := client.Do(req)
	if err != nil {
		return nil, &domain.UpstreamError{Kind: domain.UpstreamTryLater, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, &domain.UpstreamError{Kind: domain.UpstreamTryLater, Err: fmt.Errorf("viewer returned %s", resp.Status)}
	case resp.StatusCode != http.StatusOK:
		return nil, &domain.UpstreamError{Kind: domain.UpstreamFailed, Err: fmt.Errorf("viewer returned %s", resp.Status)}
	}

	var body viewerResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &domain.UpstreamError{Kind: domain.UpstreamFailed, Err: fmt.Errorf("decode viewer response: %w", err)}
	}
	id, err := uuid.Parse(body.ID)
	if err != nil {
		return nil, &domain.UpstreamError{Kind: domain.UpstreamFailed, Err: fmt.Errorf("viewer id: %w", err)}
	}

	return &domain.UpstreamProfile{
		AccessoID: id,
		FirstName: body.FirstName,
		LastName:  body.LastName,
	}, nil
}
