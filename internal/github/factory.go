// Copyright 2025 The Prscribe Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package github

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bradleyfalzon/ghinstallation/v2"
	lru "github.com/hashicorp/golang-lru/v2"
)

// ErrMissingCredentials is returned when neither GitHub App credentials nor a
// token are configured.
var ErrMissingCredentials = errors.New("GitHub App credentials are not set")

// installationCacheSize bounds the number of installation clients kept alive.
// Each one caches its own installation access token.
const installationCacheSize = 128

// NewClientFactory picks a factory for creds. Missing credentials are not an
// error here: the returned factory fails on every call instead, so the
// service can still start and acknowledge webhooks.
func NewClientFactory(creds Credentials) ClientFactory {
	switch {
	case creds.AppID != 0 && len(creds.PrivateKey) > 0:
		return NewAppClientFactory(creds.AppID, creds.PrivateKey, creds.BaseURL)
	case creds.Token != "":
		return &TokenClientFactory{Token: creds.Token, BaseURL: creds.BaseURL}
	default:
		return missingCredentials{}
	}
}

// AppClientFactory authenticates as a GitHub App installation
type AppClientFactory struct {
	appID      int64
	privateKey []byte
	baseURL    string
	transport  http.RoundTripper
	clients    *lru.Cache[int64, Client]
}

// NewAppClientFactory creates a factory for the GitHub App appID. privateKey is
// the PEM encoded App key; literal "\n" sequences, as found in single-line
// environment variables, are turned into newlines.
func NewAppClientFactory(appID int64, privateKey []byte, baseURL string) *AppClientFactory {
	clients, _ := lru.New[int64, Client](installationCacheSize)
	return &AppClientFactory{
		appID:      appID,
		privateKey: []byte(strings.ReplaceAll(string(privateKey), `\n`, "\n")),
		baseURL:    baseURL,
		transport:  http.DefaultTransport,
		clients:    clients,
	}
}

// ForInstallation returns a client acting as installationID
func (f *AppClientFactory) ForInstallation(installationID int64) (Client, error) {
	if f.appID == 0 || len(f.privateKey) == 0 {
		return nil, ErrMissingCredentials
	}

	if client, ok := f.clients.Get(installationID); ok {
		return client, nil
	}

	itr, err := ghinstallation.New(f.transport, f.appID, installationID, f.privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create installation transport: %w", err)
	}
	if f.baseURL != "" {
		itr.BaseURL = strings.TrimSuffix(f.baseURL, "/")
	}

	client, err := newClient(&http.Client{Transport: itr}, "", f.baseURL)
	if err != nil {
		return nil, err
	}

	f.clients.Add(installationID, client)
	return client, nil
}

// TokenClientFactory authenticates every installation with the same token
type TokenClientFactory struct {
	Token   string
	BaseURL string
}

// ForInstallation returns a token-authenticated client; installationID is ignored
func (f *TokenClientFactory) ForInstallation(int64) (Client, error) {
	if f.Token == "" {
		return nil, ErrMissingCredentials
	}
	return newClient(nil, f.Token, f.BaseURL)
}

type missingCredentials struct{}

func (missingCredentials) ForInstallation(int64) (Client, error) {
	return nil, ErrMissingCredentials
}
