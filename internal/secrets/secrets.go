// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

// Package secrets keeps model API keys out of the config file. Keys live in
// the OS keyring and the config refers to them as keyring://service/name.
package secrets

// DefaultService is the keyring service `glimpse secret` writes to.
const DefaultService = "glimpse"

// Store holds named secrets for one keyring service.
type Store interface {
	Service() string

	// Set saves value under name, replacing any previous value.
	Set(name, value string) error

	// Get returns the value for name. A missing name yields an error with
	// CodeSecretNotFound.
	Get(name string) (string, error)

	// Delete removes name. A missing name yields CodeSecretNotFound.
	Delete(name string) error

	// List returns the stored names in sorted order.
	List() ([]string, error)
}

// Opener returns the Store for a keyring service.
type Opener func(service string) Store
