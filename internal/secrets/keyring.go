// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

package secrets

import (
	"encoding/json"
	"errors"
	"log/slog"
	"slices"

	"github.com/zalando/go-keyring"

	glimpseerr "github.com/glimpse-dev/glimpse/pkg/errors"
)

// indexName is the keyring entry holding the JSON list of stored names;
// go-keyring cannot enumerate entries itself.
const indexName = "::names"

// KeyringStore implements Store over the OS keyring (Keychain on macOS,
// secret-service on Linux, Credential Manager on Windows).
type KeyringStore struct {
	service string
}

var _ Store = (*KeyringStore)(nil)

// NewKeyringStore returns a store for service.
func NewKeyringStore(service string) *KeyringStore {
	if service == "" {
		service = DefaultService
	}
	return &KeyringStore{service: service}
}

// OpenKeyring is the Opener for the OS keyring.
func OpenKeyring(service string) Store {
	return NewKeyringStore(service)
}

func (s *KeyringStore) Service() string { return s.service }

func (s *KeyringStore) Set(name, value string) error {
	if err := validName(name); err != nil {
		return err
	}
	if err := keyring.Set(s.service, name, value); err != nil {
		return glimpseerr.Wrapf(err, glimpseerr.CodeSecretStoreFailure, "storing secret %s/%s", s.service, name)
	}

	names, err := s.List()
	if err != nil {
		return err
	}
	if !slices.Contains(names, name) {
		names = append(names, name)
		slices.Sort(names)
		return s.saveNames(names)
	}
	return nil
}

func (s *KeyringStore) Get(name string) (string, error) {
	if err := validName(name); err != nil {
		return "", err
	}
	val, err := keyring.Get(s.service, name)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", glimpseerr.Errorf(glimpseerr.CodeSecretNotFound, "secret %s/%s not found", s.service, name)
		}
		return "", glimpseerr.Wrapf(err, glimpseerr.CodeSecretStoreFailure, "retrieving secret %s/%s", s.service, name)
	}
	return val, nil
}

func (s *KeyringStore) Delete(name string) error {
	if err := validName(name); err != nil {
		return err
	}
	if err := keyring.Delete(s.service, name); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return glimpseerr.Errorf(glimpseerr.CodeSecretNotFound, "secret %s/%s not found", s.service, name)
		}
		return glimpseerr.Wrapf(err, glimpseerr.CodeSecretDeleteFailure, "deleting secret %s/%s", s.service, name)
	}

	names, err := s.List()
	if err != nil {
		return err
	}
	return s.saveNames(slices.DeleteFunc(names, func(n string) bool { return n == name }))
}

func (s *KeyringStore) List() ([]string, error) {
	raw, err := keyring.Get(s.service, indexName)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, nil
		}
		return nil, glimpseerr.Wrapf(err, glimpseerr.CodeSecretListFailure, "loading secret names for %s", s.service)
	}

	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		return nil, glimpseerr.Wrapf(err, glimpseerr.CodeSecretListFailure, "decoding secret names for %s", s.service)
	}
	return names, nil
}

func (s *KeyringStore) saveNames(names []string) error {
	if len(names) == 0 {
		if err := keyring.Delete(s.service, indexName); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			slog.Debug("failed to remove empty secret name index", "service", s.service, "error", err)
		}
		return nil
	}

	data, err := json.Marshal(names)
	if err != nil {
		return glimpseerr.Wrapf(err, glimpseerr.CodeSecretListFailure, "encoding secret names for %s", s.service)
	}
	if err := keyring.Set(s.service, indexName, string(data)); err != nil {
		return glimpseerr.Wrapf(err, glimpseerr.CodeSecretListFailure, "saving secret names for %s", s.service)
	}
	return nil
}

func validName(name string) error {
	if name == "" {
		return glimpseerr.New(glimpseerr.CodeSecretInvalidInput, "secret name must not be empty")
	}
	if name == indexName {
		return glimpseerr.Errorf(glimpseerr.CodeSecretInvalidInput, "secret name %q is reserved", name)
	}
	return nil
}
