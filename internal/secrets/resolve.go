// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

package secrets

import (
	"log/slog"
	"slices"
	"strings"

	glimpseerr "github.com/glimpse-dev/glimpse/pkg/errors"
)

const keyringScheme = "keyring://"

// IsKeyringURI reports whether value uses the keyring:// URI scheme.
func IsKeyringURI(value string) bool {
	return strings.HasPrefix(value, keyringScheme)
}

// ParseKeyringURI extracts service and name from keyring://service/name.
func ParseKeyringURI(uri string) (service, name string, err error) {
	if !IsKeyringURI(uri) {
		return "", "", glimpseerr.Errorf(glimpseerr.CodeSecretInvalidInput, "not a keyring URI: %q", uri)
	}

	service, name, ok := strings.Cut(strings.TrimPrefix(uri, keyringScheme), "/")
	if !ok || service == "" || name == "" {
		return "", "", glimpseerr.Errorf(glimpseerr.CodeSecretInvalidInput,
			"invalid keyring URI %q: expected keyring://service/name", uri)
	}
	return service, name, nil
}

// URI builds the keyring reference for name in service.
func URI(service, name string) string {
	return keyringScheme + service + "/" + name
}

// Resolve returns the secret a keyring URI points to. Other values are
// returned unchanged.
func Resolve(value string, open Opener) (string, error) {
	if !IsKeyringURI(value) {
		return value, nil
	}

	service, name, err := ParseKeyringURI(value)
	if err != nil {
		return "", err
	}

	secret, err := open(service).Get(name)
	if err != nil {
		return "", glimpseerr.Wrapf(err, glimpseerr.CodeSecretResolveFailure, "resolving keyring URI %q", value)
	}
	return secret, nil
}

// ResolveFields resolves keyring URIs in place. fields maps a config key to
// the value it points at. A field that fails to resolve is logged, left
// unchanged and reported in the returned list.
func ResolveFields(fields map[string]*string, open Opener) []string {
	var failed []string
	for key, ptr := range fields {
		if ptr == nil || !IsKeyringURI(*ptr) {
			continue
		}
		resolved, err := Resolve(*ptr, open)
		if err != nil {
			slog.Warn("failed to resolve keyring URI, keeping original value", "config_key", key, "error", err)
			failed = append(failed, key)
			continue
		}
		*ptr = resolved
	}
	slices.Sort(failed)
	return failed
}
