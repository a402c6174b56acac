package salesforce

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"crmsync/lib/config"
	"crmsync/lib/secrets"
)

// Token lifetimes vary per org policy, so expiry is discovered reactively:
// a rejected request forces a re-mint. The soft window only short-circuits
// the common case of a token known to be fresh.
const tokenSoftLifetime = 2 * time.Hour

// Session owns the bearer token for the CRM host and knows how to mint a new
// one via the OAuth password grant. It is created once per process and
// mutated only from the single thread of control a Lambda invocation runs on.
type Session struct {
	cfg    *config.Config
	store  secrets.Store
	creds  *secrets.Credentials
	logger *logrus.Logger
	httpc  *http.Client

	token  string
	host   string
	expiry time.Time
}

// NewSession loads the credential set from the store and seeds the session
// with the persisted bearer token when one is present, so warm processes and
// fresh processes alike start from the last known-good token.
func NewSession(ctx context.Context, cfg *config.Config, store secrets.Store, logger *logrus.Logger) (*Session, error) {
	creds, err := store.Get(ctx, cfg.SecretID)
	if err != nil {
		return nil, fmt.Errorf("loading credentials: %w", err)
	}

	s := &Session{
		cfg:    cfg,
		store:  store,
		creds:  creds,
		logger: logger,
		httpc:  &http.Client{},
		host:   cfg.Host,
	}

	if creds.AuthToken != "" {
		s.token = creds.AuthToken
		if creds.InstanceURL != "" {
			s.host = creds.InstanceURL
		}
		if creds.TokenExpiry != "" {
			if expiry, perr := time.Parse(time.RFC3339, creds.TokenExpiry); perr == nil {
				s.expiry = expiry
			}
		}
	}

	return s, nil
}

// EnsureValid signs in only when no usable token is cached. A cached token
// past its soft window is re-minted proactively; within the window it is
// assumed valid until the API rejects it.
func (s *Session) EnsureValid(ctx context.Context) error {
	if s.token != "" && (s.expiry.IsZero() || time.Now().Before(s.expiry)) {
		return nil
	}
	return s.signIn(ctx)
}

// HandleRejection discards the cached token and mints a new one
// unconditionally. Called by the client after a token rejection.
func (s *Session) HandleRejection(ctx context.Context) error {
	return s.signIn(ctx)
}

// Headers returns the auth headers for the currently cached token without
// validating it.
func (s *Session) Headers() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + s.token,
		"Content-Type":  "application/json",
	}
}

// Host is the instance host requests go to. It can change after a sign-in,
// since the token response names the org's instance URL.
func (s *Session) Host() string {
	return s.host
}

// APIVersion is the REST API version segment, e.g. "v56.0".
func (s *Session) APIVersion() string {
	return s.cfg.APIVersion
}

func (s *Session) signIn(ctx context.Context) error {
	s.logger.WithField("login_host", s.cfg.LoginHost()).Info("Signing in to CRM")

	form := url.Values{
		"grant_type":    {"password"},
		"client_id":     {s.creds.ConsumerKey},
		"client_secret": {s.creds.ConsumerSecret},
		"username":      {s.cfg.Username},
		// The security token is appended to the password, per the org's
		// password-grant contract.
		"password": {s.creds.Password + s.creds.AccessToken},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.LoginHost()+"/services/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("building token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	// The request and response carry credentials, so neither body is logged.
	resp, err := s.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("calling token endpoint: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading token response: %w", err)
	}
	if err := checkResponse(resp.StatusCode, body); err != nil {
		return fmt.Errorf("sign in failed: %w", err)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		InstanceURL string `json:"instance_url"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return fmt.Errorf("decoding token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return fmt.Errorf("token response carried no access token")
	}

	s.token = tokenResp.AccessToken
	if tokenResp.InstanceURL != "" {
		s.host = tokenResp.InstanceURL
	}
	s.expiry = time.Now().Add(tokenSoftLifetime)
	s.logger.Info("Signed in, token refreshed")

	return s.persist(ctx)
}

// persist writes the refreshed token back to the shared store so sibling
// processes can reuse it. Concurrent refreshes race benignly: any valid token
// is acceptable and the last writer wins. The store's version-limit condition
// self-corrects, so it is logged and swallowed; every other failure is fatal.
func (s *Session) persist(ctx context.Context) error {
	s.creds.AuthToken = s.token
	s.creds.InstanceURL = s.host
	s.creds.TokenExpiry = s.expiry.UTC().Format(time.RFC3339)

	err := s.store.Put(ctx, s.cfg.SecretID, s.creds)
	if err == nil {
		return nil
	}
	if errors.Is(err, secrets.ErrVersionLimit) {
		s.logger.WithError(err).Warn("Credential store version limit reached, continuing with in-memory token")
		return nil
	}
	return fmt.Errorf("persisting refreshed token: %w", err)
}
