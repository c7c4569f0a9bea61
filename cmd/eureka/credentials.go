package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"eureka/pkg/realtime/api"
	"eureka/pkg/realtime/wire"
)

var errSignedOut = errors.New("not signed in; run `eureka login` first")

// credentials is what login leaves on disk for later commands.
type credentials struct {
	Server string    `json:"server"`
	Token  string    `json:"token"`
	User   wire.User `json:"user"`
}

func loadCredentials(path string) (credentials, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return credentials{}, errSignedOut
	}
	if err != nil {
		return credentials{}, fmt.Errorf("read credentials: %w", err)
	}
	var c credentials
	if err := json.Unmarshal(raw, &c); err != nil {
		return credentials{}, fmt.Errorf("parse credentials %s: %w", path, err)
	}
	if c.Token == "" {
		return credentials{}, errSignedOut
	}
	return c, nil
}

// saveCredentials writes the token readable by the owner only.
func saveCredentials(path string, c credentials) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create credential dir: %w", err)
	}
	raw, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}

func removeCredentials(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove credentials: %w", err)
	}
	return nil
}

// signedIn returns an API client carrying the stored token. The stored
// server wins over --server so a token is never sent to another host.
func signedIn(flags *globalFlags) (*api.Client, credentials, error) {
	c, err := loadCredentials(flags.credentials)
	if err != nil {
		return nil, credentials{}, err
	}
	server := c.Server
	if server == "" {
		server = flags.server
	}
	return api.New(server, api.WithToken(c.Token)), c, nil
}
