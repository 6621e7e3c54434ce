package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
	"golang.org/x/oauth2/google"

	"github.com/spec-kit/helper-marketplace/internal/config"
)

const (
	googleUserInfoURL   = "https://www.googleapis.com/oauth2/v2/userinfo"
	facebookUserInfoURL = "https://graph.facebook.com/v19.0/me?fields=id,name,email,picture.type(large)"
)

// FederatedIdentity is what the identity provider tells us about a user.
type FederatedIdentity struct {
	Email    string
	Name     string
	PhotoURL string
}

// IdentityProvider runs the authorization code flow against an external
// provider.
type IdentityProvider interface {
	AuthCodeURL(state string) string
	Identify(ctx context.Context, code string) (*FederatedIdentity, error)
}

// GoogleProvider signs users in with their Google account.
type GoogleProvider struct {
	cfg *oauth2.Config
}

// NewGoogleProvider returns nil when Google sign-in is not configured.
func NewGoogleProvider(cfg config.OAuthConfig) *GoogleProvider {
	if !cfg.GoogleEnabled() {
		return nil
	}
	return &GoogleProvider{cfg: &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		Endpoint:     google.Endpoint,
		Scopes:       []string{"openid", "email", "profile"},
	}}
}

func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.cfg.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

type googleUserInfo struct {
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// Identify exchanges code for a token and fetches the user's profile.
func (p *GoogleProvider) Identify(ctx context.Context, code string) (*FederatedIdentity, error) {
	tok, err := p.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	var info googleUserInfo
	if err := fetchJSON(p.cfg.Client(ctx, tok), googleUserInfoURL, &info); err != nil {
		return nil, err
	}
	if !info.VerifiedEmail {
		return nil, fmt.Errorf("google account email is not verified")
	}
	return &FederatedIdentity{
		Email:    strings.ToLower(strings.TrimSpace(info.Email)),
		Name:     strings.TrimSpace(info.Name),
		PhotoURL: info.Picture,
	}, nil
}

// FacebookProvider signs users in with their Facebook account.
type FacebookProvider struct {
	cfg *oauth2.Config
}

// NewFacebookProvider returns nil when Facebook sign-in is not configured.
func NewFacebookProvider(cfg config.OAuthConfig) *FacebookProvider {
	if !cfg.FacebookEnabled() {
		return nil
	}
	return &FacebookProvider{cfg: &oauth2.Config{
		ClientID:     cfg.FacebookClientID,
		ClientSecret: cfg.FacebookClientSecret,
		RedirectURL:  cfg.FacebookRedirectURL,
		Endpoint:     facebook.Endpoint,
		Scopes:       []string{"email", "public_profile"},
	}}
}

func (p *FacebookProvider) AuthCodeURL(state string) string {
	return p.cfg.AuthCodeURL(state)
}

type facebookUserInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	} `json:"picture"`
}

// Identify exchanges code for a token and fetches the Graph API profile.
// Accounts registered by phone number have no email and are refused later.
func (p *FacebookProvider) Identify(ctx context.Context, code string) (*FederatedIdentity, error) {
	tok, err := p.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	var info facebookUserInfo
	if err := fetchJSON(p.cfg.Client(ctx, tok), facebookUserInfoURL, &info); err != nil {
		return nil, err
	}
	return &FederatedIdentity{
		Email:    strings.ToLower(strings.TrimSpace(info.Email)),
		Name:     strings.TrimSpace(info.Name),
		PhotoURL: info.Picture.Data.URL,
	}, nil
}

func fetchJSON(client *http.Client, url string, out any) error {
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch userinfo: status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode userinfo: %w", err)
	}
	return nil
}

// NewState returns a random value for the oauth state cookie.
func NewState() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
