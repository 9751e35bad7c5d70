package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/inkcart/inkcart/internal/auth/domain"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

// ErrUnverifiedEmail rejects identities whose provider has not verified the
// email. Linking by email is only safe when the provider vouches for it.
var ErrUnverifiedEmail = errors.New("oauth: provider email not verified")

// Google implements Provider for Google sign-in.
type Google struct {
	cfg *oauth2.Config
}

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

func NewGoogle(cfg GoogleConfig) *Google {
	return &Google{
		cfg: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     google.Endpoint,
		},
	}
}

func (g *Google) Name() domain.Provider { return domain.ProviderGoogle }

func (g *Google) AuthCodeURL(state string) string {
	return g.cfg.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange redeems the authorization code and fetches the userinfo document.
func (g *Google) Exchange(ctx context.Context, code string) (Identity, error) {
	token, err := g.cfg.Exchange(ctx, code)
	if err != nil {
		return Identity{}, fmt.Errorf("oauth: google code exchange: %w", err)
	}

	info, err := g.fetchUserInfo(ctx, token)
	if err != nil {
		return Identity{}, err
	}

	if !info.EmailVerified {
		return Identity{}, ErrUnverifiedEmail
	}

	id := Identity{
		Provider:     domain.ProviderGoogle,
		Subject:      info.Sub,
		Email:        strings.ToLower(info.Email),
		Name:         info.Name,
		Picture:      info.Picture,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Scope:        strings.Join(g.cfg.Scopes, " "),
	}
	if !token.Expiry.IsZero() {
		expiry := token.Expiry
		id.ExpiresAt = &expiry
	}
	return id, nil
}

type googleUserInfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func (g *Google) fetchUserInfo(ctx context.Context, token *oauth2.Token) (googleUserInfo, error) {
	client := g.cfg.Client(ctx, token)

	resp, err := client.Get(googleUserInfoURL)
	if err != nil {
		return googleUserInfo{}, fmt.Errorf("oauth: fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return googleUserInfo{}, fmt.Errorf("oauth: userinfo status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return googleUserInfo{}, fmt.Errorf("oauth: decode userinfo: %w", err)
	}
	if info.Sub == "" || info.Email == "" {
		return googleUserInfo{}, errors.New("oauth: userinfo missing subject or email")
	}
	return info, nil
}
