// Package oidc authenticates users against an OpenID Connect identity provider.
package oidc

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	domainauth "github.com/target/gatekeeper/internal/domain/auth"
	"github.com/target/gatekeeper/internal/ports"
)

const defaultSessionTTL = time.Hour

// ProviderConfig holds configuration for the OIDC provider.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scope        string
	// DiscoveryURL is the issuer URL, with or without the /.well-known/openid-configuration suffix.
	DiscoveryURL string
	LogoutURL    string
	HTTPClient   *http.Client
}

// DiscoveryDocument is the subset of the discovery document go-oidc requires.
type DiscoveryDocument struct {
	Issuer                string `json:"issuer"`
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	UserinfoEndpoint      string `json:"userinfo_endpoint"`
	JwksURI               string `json:"jwks_uri"`
}

// Provider implements ports.AuthProvider with the authorization code flow.
type Provider struct {
	oauth     *oauth2.Config
	op        *gooidc.Provider
	verifier  *gooidc.IDTokenVerifier
	client    *http.Client
	logoutURL string
}

// NewProvider fetches the discovery document and builds the provider.
func NewProvider(cfg ProviderConfig) (*Provider, error) {
	switch {
	case cfg.ClientID == "":
		return nil, errors.New("client ID is required")
	case cfg.ClientSecret == "":
		return nil, errors.New("client secret is required")
	case cfg.RedirectURL == "":
		return nil, errors.New("redirect URL is required")
	case cfg.DiscoveryURL == "":
		return nil, errors.New("discovery URL is required")
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	ctx := gooidc.ClientContext(context.Background(), client)
	op, err := gooidc.NewProvider(ctx, issuerFromDiscoveryURL(cfg.DiscoveryURL))
	if err != nil {
		return nil, fmt.Errorf("oidc discovery: %w", err)
	}

	return &Provider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       strings.Fields(cfg.Scope),
			Endpoint:     op.Endpoint(),
		},
		op:        op,
		verifier:  op.Verifier(&gooidc.Config{ClientID: cfg.ClientID}),
		client:    client,
		logoutURL: cfg.LogoutURL,
	}, nil
}

func issuerFromDiscoveryURL(u string) string {
	u = strings.TrimSuffix(u, "/")
	u = strings.TrimSuffix(u, "/.well-known/openid-configuration")
	return strings.TrimSuffix(u, "/")
}

// LogoutURL is the identity provider's end-session URL, if configured.
func (p *Provider) LogoutURL() string { return p.logoutURL }

func (p *Provider) Begin(_ context.Context, in ports.BeginInput) (string, string, string, error) {
	if in.RedirectURL == "" {
		return "", "", "", errors.New("redirect URL is required")
	}
	state, nonce := rand.Text(), rand.Text()
	authURL := p.oauth.AuthCodeURL(state,
		gooidc.Nonce(nonce),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
	return authURL, state, nonce, nil
}

func (p *Provider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	switch {
	case in.Code == "":
		return domainauth.Identity{}, errors.New("authorization code is required")
	case in.State == "":
		return domainauth.Identity{}, errors.New("state is required")
	case in.Nonce == "":
		return domainauth.Identity{}, errors.New("nonce is required")
	}

	ctx = gooidc.ClientContext(ctx, p.client)
	tok, err := p.oauth.Exchange(ctx, in.Code)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("exchange code for token: %w", err)
	}

	var c claims
	if p.hasOpenIDScope() {
		if c, err = p.idTokenClaims(ctx, tok, in.Nonce); err != nil {
			return domainauth.Identity{}, fmt.Errorf("id_token: %w", err)
		}
	}
	if !c.complete() {
		ui, uiErr := p.userInfoClaims(ctx, tok)
		if uiErr != nil {
			return domainauth.Identity{}, fmt.Errorf("get user info: %w", uiErr)
		}
		c = c.merge(ui)
	}

	expiresAt := time.Now().Add(defaultSessionTTL)
	if !tok.Expiry.IsZero() {
		expiresAt = tok.Expiry
	}
	return c.identity(expiresAt), nil
}

func (p *Provider) idTokenClaims(ctx context.Context, tok *oauth2.Token, nonce string) (claims, error) {
	raw, err := getIDTokenFromToken(tok)
	if err != nil {
		return claims{}, err
	}
	idTok, err := p.verifier.Verify(ctx, raw)
	if err != nil {
		return claims{}, fmt.Errorf("verify: %w", err)
	}
	if idTok.Nonce != nonce {
		return claims{}, errors.New("invalid nonce")
	}
	var c claims
	if err := idTok.Claims(&c); err != nil {
		return claims{}, fmt.Errorf("parse claims: %w", err)
	}
	return c, nil
}

func (p *Provider) userInfoClaims(ctx context.Context, tok *oauth2.Token) (claims, error) {
	ui, err := p.op.UserInfo(ctx, oauth2.StaticTokenSource(tok))
	if err != nil {
		return claims{}, err
	}
	var c claims
	if err := ui.Claims(&c); err != nil {
		return claims{}, fmt.Errorf("decode: %w", err)
	}
	return c, nil
}

func (p *Provider) hasOpenIDScope() bool {
	return slices.Contains(p.oauth.Scopes, gooidc.ScopeOpenID)
}

func getIDTokenFromToken(tok *oauth2.Token) (string, error) {
	if tok == nil {
		return "", errors.New("nil token")
	}
	s, ok := tok.Extra("id_token").(string)
	if !ok || s == "" {
		return "", errors.New("missing id_token in token response")
	}
	return s, nil
}
