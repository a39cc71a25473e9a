package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"workdrive/config"
	"workdrive/logger"
	"workdrive/models"
	"workdrive/repositories"
	"workdrive/utils"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	githuboauth "golang.org/x/oauth2/github"
	googleoauth "golang.org/x/oauth2/google"
	"gorm.io/gorm"
)

const (
	ProviderGoogle = "google"
	ProviderGitHub = "github"

	googleIssuer  = "https://accounts.google.com"
	githubUserAPI = "https://api.github.com/user"
)

// externalIdentity is the provider-agnostic profile extracted from a
// completed OAuth flow.
type externalIdentity struct {
	Provider  string
	ID        string
	Username  string
	Email     string
	Name      string
	AvatarURL string
}

type OAuthService interface {
	AuthURL(ctx context.Context, provider string) (string, error)
	HandleCallback(ctx context.Context, provider string, state string, code string) (LoginOutput, error)
}

type oauthService struct {
	users  repositories.UserRepository
	states repositories.OAuthStateRepository

	mu             sync.Mutex
	googleVerifier *oidc.IDTokenVerifier
}

func NewOAuthService(users repositories.UserRepository, states repositories.OAuthStateRepository) OAuthService {
	return &oauthService{users: users, states: states}
}

func (s *oauthService) oauthConfig(provider string) (*oauth2.Config, error) {
	var providerCfg config.OAuthProviderConfig
	var endpoint oauth2.Endpoint
	var scopes []string

	switch provider {
	case ProviderGoogle:
		providerCfg = config.AppConfig.OAuth.Google
		endpoint = googleoauth.Endpoint
		scopes = []string{oidc.ScopeOpenID, "profile", "email"}
	case ProviderGitHub:
		providerCfg = config.AppConfig.OAuth.GitHub
		endpoint = githuboauth.Endpoint
		scopes = []string{"read:user", "user:email"}
	default:
		return nil, newAppError(http.StatusNotFound, "unknown login provider", nil)
	}

	if providerCfg.ClientID == "" || providerCfg.ClientSecret == "" {
		return nil, newAppError(http.StatusNotFound, "login provider is not configured", nil)
	}

	return &oauth2.Config{
		ClientID:     providerCfg.ClientID,
		ClientSecret: providerCfg.ClientSecret,
		RedirectURL:  providerCfg.RedirectURL,
		Endpoint:     endpoint,
		Scopes:       scopes,
	}, nil
}

func (s *oauthService) AuthURL(ctx context.Context, provider string) (string, error) {
	cfg, err := s.oauthConfig(provider)
	if err != nil {
		return "", err
	}

	state := uuid.NewString()
	ttl := time.Duration(config.AppConfig.Redis.OAuthStateExpire) * time.Second
	if err := s.states.Save(ctx, state, provider, ttl); err != nil {
		return "", newAppError(http.StatusInternalServerError, "failed to start login", err)
	}

	return cfg.AuthCodeURL(state), nil
}

func (s *oauthService) HandleCallback(ctx context.Context, provider string, state string, code string) (LoginOutput, error) {
	issuedFor, err := s.states.Consume(ctx, state)
	if err != nil || issuedFor != provider {
		return LoginOutput{}, newAppError(http.StatusBadRequest, "invalid or expired login state", nil)
	}

	cfg, err := s.oauthConfig(provider)
	if err != nil {
		return LoginOutput{}, err
	}

	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		logger.Debugf("oauth code exchange with %s failed: %v", provider, err)
		return LoginOutput{}, newAppError(http.StatusBadGateway, "login provider rejected the request", err)
	}

	var identity externalIdentity
	switch provider {
	case ProviderGoogle:
		identity, err = s.googleIdentity(ctx, cfg, token)
	case ProviderGitHub:
		identity, err = s.githubIdentity(ctx, cfg, token)
	}
	if err != nil {
		return LoginOutput{}, err
	}

	user, err := s.findOrCreateUser(ctx, identity)
	if err != nil {
		return LoginOutput{}, err
	}

	jwt, err := utils.GenerateToken(user.ID)
	if err != nil {
		return LoginOutput{}, newAppError(http.StatusInternalServerError, "failed to generate token", err)
	}

	return LoginOutput{
		Token: jwt,
		User:  AuthUser{ID: user.ID, Username: user.Username, Nickname: user.Nickname},
	}, nil
}

func (s *oauthService) googleIdentity(ctx context.Context, cfg *oauth2.Config, token *oauth2.Token) (externalIdentity, error) {
	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return externalIdentity{}, newAppError(http.StatusBadGateway, "login provider returned no identity", nil)
	}

	verifier, err := s.googleTokenVerifier(ctx, cfg.ClientID)
	if err != nil {
		logger.Debugf("google oidc discovery failed: %v", err)
		return externalIdentity{}, newAppError(http.StatusBadGateway, "failed to reach login provider", err)
	}

	idToken, err := verifier.Verify(ctx, rawIDToken)
	if err != nil {
		logger.Debugf("google id_token verification failed: %v", err)
		return externalIdentity{}, newAppError(http.StatusBadGateway, "login provider identity could not be verified", err)
	}

	var claims struct {
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return externalIdentity{}, newAppError(http.StatusBadGateway, "login provider identity could not be read", err)
	}

	return externalIdentity{
		Provider:  ProviderGoogle,
		ID:        idToken.Subject,
		Username:  usernameFromEmail(claims.Email),
		Email:     claims.Email,
		Name:      claims.Name,
		AvatarURL: claims.Picture,
	}, nil
}

// googleTokenVerifier builds the OIDC verifier on first use. The service
// instance is shared across request goroutines, so the cached verifier sits
// behind a mutex; a failed discovery is not cached and the next callback
// retries it.
func (s *oauthService) googleTokenVerifier(ctx context.Context, clientID string) (*oidc.IDTokenVerifier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.googleVerifier == nil {
		oidcProvider, err := oidc.NewProvider(ctx, googleIssuer)
		if err != nil {
			return nil, err
		}
		s.googleVerifier = oidcProvider.Verifier(&oidc.Config{ClientID: clientID})
	}
	return s.googleVerifier, nil
}

func (s *oauthService) githubIdentity(ctx context.Context, cfg *oauth2.Config, token *oauth2.Token) (externalIdentity, error) {
	resp, err := cfg.Client(ctx, token).Get(githubUserAPI)
	if err != nil {
		logger.Debugf("github user fetch failed: %v", err)
		return externalIdentity{}, newAppError(http.StatusBadGateway, "failed to reach login provider", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return externalIdentity{}, newAppError(http.StatusBadGateway, "login provider rejected the request", nil)
	}

	var payload struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return externalIdentity{}, newAppError(http.StatusBadGateway, "login provider identity could not be read", err)
	}

	return externalIdentity{
		Provider:  ProviderGitHub,
		ID:        fmt.Sprintf("%d", payload.ID),
		Username:  payload.Login,
		Email:     payload.Email,
		Name:      payload.Name,
		AvatarURL: payload.AvatarURL,
	}, nil
}

// findOrCreateUser links the external identity to a local account, creating
// one with a collision-free username on first login.
func (s *oauthService) findOrCreateUser(ctx context.Context, identity externalIdentity) (models.User, error) {
	user, err := s.users.GetByProviderIdentity(ctx, nil, identity.Provider, identity.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, newAppError(http.StatusInternalServerError, "failed to query user", err)
	}

	username := identity.Username
	if username == "" {
		username = identity.Provider + "-user"
	}
	candidate := username
	for counter := 1; ; counter++ {
		count, err := s.users.CountByUsername(ctx, candidate)
		if err != nil {
			return models.User{}, newAppError(http.StatusInternalServerError, "failed to check username", err)
		}
		if count == 0 {
			break
		}
		candidate = fmt.Sprintf("%s%d", username, counter)
	}

	user = models.User{
		Username:   candidate,
		Email:      identity.Email,
		Nickname:   identity.Name,
		AvatarURL:  identity.AvatarURL,
		Provider:   identity.Provider,
		ProviderID: identity.ID,
	}
	if err := s.users.Create(ctx, nil, &user); err != nil {
		return models.User{}, newAppError(http.StatusInternalServerError, "failed to create user", err)
	}

	return user, nil
}

func usernameFromEmail(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
