package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/moimlab/clubhub/internal/config"
	"github.com/moimlab/clubhub/internal/models"
)

// OAuthProfile is the normalized identity a provider hands back after a
// successful code exchange. The API treats providers as opaque beyond these
// three fields.
type OAuthProfile struct {
	Provider models.AuthProvider
	ID       string // the account id at the provider
	Email    string
	Name     string
}

// OAuthClient wraps one provider's oauth2 config plus its userinfo decoding.
type OAuthClient struct {
	provider models.AuthProvider
	conf     *oauth2.Config
	userInfo string
	decode   func(body []byte) (OAuthProfile, error)
}

var (
	kakaoEndpoint = oauth2.Endpoint{
		AuthURL:  "https://kauth.kakao.com/oauth/authorize",
		TokenURL: "https://kauth.kakao.com/oauth/token",
	}
	naverEndpoint = oauth2.Endpoint{
		AuthURL:  "https://nid.naver.com/oauth2.0/authorize",
		TokenURL: "https://nid.naver.com/oauth2.0/token",
	}
)

var ErrUnknownProvider = errors.New("unknown oauth provider")

// NewOAuthClients builds the clients for the three supported providers,
// keyed by the provider name used in the callback path.
func NewOAuthClients(cfg *config.Config) map[string]*OAuthClient {
	return map[string]*OAuthClient{
		"google": {
			provider: models.ProviderGoogle,
			conf: &oauth2.Config{
				ClientID:     cfg.Google.ClientID,
				ClientSecret: cfg.Google.ClientSecret,
				RedirectURL:  cfg.Google.RedirectURL,
				Scopes:       []string{"openid", "email", "profile"},
				Endpoint:     google.Endpoint,
			},
			userInfo: "https://www.googleapis.com/oauth2/v2/userinfo",
			decode:   decodeGoogleProfile,
		},
		"kakao": {
			provider: models.ProviderKakao,
			conf: &oauth2.Config{
				ClientID:     cfg.Kakao.ClientID,
				ClientSecret: cfg.Kakao.ClientSecret,
				RedirectURL:  cfg.Kakao.RedirectURL,
				Endpoint:     kakaoEndpoint,
			},
			userInfo: "https://kapi.kakao.com/v2/user/me",
			decode:   decodeKakaoProfile,
		},
		"naver": {
			provider: models.ProviderNaver,
			conf: &oauth2.Config{
				ClientID:     cfg.Naver.ClientID,
				ClientSecret: cfg.Naver.ClientSecret,
				RedirectURL:  cfg.Naver.RedirectURL,
				Endpoint:     naverEndpoint,
			},
			userInfo: "https://openapi.naver.com/v1/nid/me",
			decode:   decodeNaverProfile,
		},
	}
}

// Exchange trades an authorization code for the provider's profile.
func (c *OAuthClient) Exchange(ctx context.Context, code string) (OAuthProfile, error) {
	token, err := c.conf.Exchange(ctx, code)
	if err != nil {
		return OAuthProfile{}, fmt.Errorf("code exchange failed: %w", err)
	}

	client := c.conf.Client(ctx, token)
	resp, err := client.Get(c.userInfo)
	if err != nil {
		return OAuthProfile{}, fmt.Errorf("userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return OAuthProfile{}, fmt.Errorf("userinfo request returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return OAuthProfile{}, err
	}

	profile, err := c.decode(body)
	if err != nil {
		return OAuthProfile{}, err
	}
	profile.Provider = c.provider
	if profile.Email == "" {
		return OAuthProfile{}, errors.New("provider did not supply an email address")
	}
	return profile, nil
}

func decodeGoogleProfile(body []byte) (OAuthProfile, error) {
	var v struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.Unmarshal(body, &v); err != nil {
		return OAuthProfile{}, err
	}
	return OAuthProfile{ID: v.ID, Email: v.Email, Name: v.Name}, nil
}

func decodeKakaoProfile(body []byte) (OAuthProfile, error) {
	var v struct {
		ID      int64 `json:"id"`
		Account struct {
			Email   string `json:"email"`
			Profile struct {
				Nickname string `json:"nickname"`
			} `json:"profile"`
		} `json:"kakao_account"`
	}
	if err := json.Unmarshal(body, &v); err != nil {
		return OAuthProfile{}, err
	}
	return OAuthProfile{
		ID:    strconv.FormatInt(v.ID, 10),
		Email: v.Account.Email,
		Name:  v.Account.Profile.Nickname,
	}, nil
}

func decodeNaverProfile(body []byte) (OAuthProfile, error) {
	var v struct {
		Response struct {
			ID    string `json:"id"`
			Email string `json:"email"`
			Name  string `json:"name"`
		} `json:"response"`
	}
	if err := json.Unmarshal(body, &v); err != nil {
		return OAuthProfile{}, err
	}
	return OAuthProfile{ID: v.Response.ID, Email: v.Response.Email, Name: v.Response.Name}, nil
}
