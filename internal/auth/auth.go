// Package auth provides credential handling for the OData transport.
package auth

import (
	"context"
	"encoding/base64"
)

// Provider supplies the Authorization header value for outgoing requests.
type Provider interface {
	AuthorizationHeader(ctx context.Context) (string, error)
}

// StaticTokenProvider sends a fixed bearer token.
type StaticTokenProvider struct {
	token string
}

// NewStaticTokenProvider creates a provider for a pre-obtained token.
func NewStaticTokenProvider(token string) *StaticTokenProvider {
	return &StaticTokenProvider{token: token}
}

func (p *StaticTokenProvider) AuthorizationHeader(ctx context.Context) (string, error) {
	return "Bearer " + p.token, nil
}

// BasicProvider sends HTTP basic credentials.
type BasicProvider struct {
	username string
	password string
}

// NewBasicProvider creates a provider for username/password authentication.
func NewBasicProvider(username, password string) *BasicProvider {
	return &BasicProvider{username: username, password: password}
}

func (p *BasicProvider) AuthorizationHeader(ctx context.Context) (string, error) {
	credentials := base64.StdEncoding.EncodeToString([]byte(p.username + ":" + p.password))

	return "Basic " + credentials, nil
}
