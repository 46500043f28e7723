// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

package errors

import (
	"fmt"
	"strings"

	"github.com/samber/oops"
)

// Code is the machine-readable identifier for an error.
type Code string

const (
	CodeConfigLoadReadFailure      Code = "config.load.read.failure"
	CodeConfigParseInvalidFormat   Code = "config.parse.invalid_format"
	CodeConfigValidateInvalidValue Code = "config.validate.invalid_value"
	CodeConfigAlreadyExists        Code = "config.write.conflict"

	CodeSecretInvalidInput   Code = "secret.input.invalid"
	CodeSecretNotFound       Code = "secret.get.not_found"
	CodeSecretStoreFailure   Code = "secret.store.failure"
	CodeSecretDeleteFailure  Code = "secret.delete.failure"
	CodeSecretListFailure    Code = "secret.list.failure"
	CodeSecretResolveFailure Code = "secret.resolve.failure"

	CodeCaptionRequestInvalid   Code = "caption.request.invalid"
	CodeCaptionResponseInvalid  Code = "caption.response.invalid"
	CodeCaptionUpstreamFailure  Code = "caption.upstream.failure"
	CodeCaptionImageReadFailure Code = "caption.image.read.failure"
	CodeCaptionRunEmpty         Code = "caption.run.empty"
	CodeCaptionStoreFailure     Code = "caption.store.failure"
	CodeCaptionStoreNotFound    Code = "caption.store.not_found"

	CodeEmbedInputInvalid     Code = "embed.input.invalid"
	CodeEmbedResponseInvalid  Code = "embed.response.invalid"
	CodeEmbedUpstreamFailure  Code = "embed.upstream.failure"
	CodeEmbedProviderNotFound Code = "embed.provider.not_found"

	CodeIndexBuildEmpty         Code = "index.build.invalid_input"
	CodeIndexDimensionMismatch  Code = "index.dimension.invalid"
	CodeIndexQueryInvalid       Code = "index.query.invalid"
	CodeIndexFormatInvalid      Code = "index.format.invalid_format"
	CodeIndexMisaligned         Code = "index.paths.conflict"
	CodeIndexReadFailure        Code = "index.read.failure"
	CodeIndexWriteFailure       Code = "index.write.failure"
	CodeIndexNotFound           Code = "index.file.not_found"
	CodeIndexBackendUnsupported Code = "index.backend.unsupported"
	CodeIndexDatabaseFailure    Code = "index.database.failure"

	CodeServerConfigInvalid   Code = "server.config.invalid"
	CodeServerStartFailure    Code = "server.start.failure"
	CodeServerShutdownFailure Code = "server.shutdown.failure"

	CodeCLIServerNotRunning Code = "cli.server.not_running"
	CodeCLIRequestFailure   Code = "cli.request.failure"
	CodeCLIRequestTimeout   Code = "cli.request.timeout"
	CodeCLIResponseInvalid  Code = "cli.response.invalid"
	CodeCLISetupFailure     Code = "cli.setup.failure"
	CodeCLIInputInvalid     Code = "cli.input.invalid"
)

// Attr is a structured key/value context attached to an error.
type Attr struct {
	Key   string
	Value any
}

func field(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

func FieldPath(value string) Attr {
	return field("path", value)
}

func FieldProvider(value string) Attr {
	return field("provider", value)
}

func FieldModel(value string) Attr {
	return field("model", value)
}

func FieldBackend(value string) Attr {
	return field("backend", value)
}

func New(code Code, msg string, fields ...Attr) error {
	return oops.Code(code).With(flatten(fields)...).New(msg)
}

func Errorf(code Code, format string, args ...any) error {
	return oops.Code(code).Errorf(format, args...)
}

func Wrap(err error, code Code, msg string, fields ...Attr) error {
	if err == nil {
		return nil
	}

	return oops.Code(code).With(flatten(fields)...).Wrapf(err, "%s", msg)
}

func Wrapf(err error, code Code, format string, args ...any) error {
	if err == nil {
		return nil
	}

	return oops.Code(code).Wrapf(err, format, args...)
}

func CodeOf(err error) Code {
	if err == nil {
		return ""
	}

	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}

	if code, ok := oopsErr.Code().(Code); ok {
		return code
	}

	if code, ok := oopsErr.Code().(string); ok {
		return Code(code)
	}

	return Code(fmt.Sprintf("%v", oopsErr.Code()))
}

// FieldsOf returns the structured fields attached anywhere in err's chain.
func FieldsOf(err error) map[string]any {
	if err == nil {
		return nil
	}

	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return nil
	}

	return oopsErr.Context()
}

func HasCode(err error, code Code) bool {
	if err == nil {
		return false
	}
	return CodeOf(err) == code
}

func IsNotFound(err error) bool {
	return reason(CodeOf(err)) == "not_found"
}

func IsConflict(err error) bool {
	return reason(CodeOf(err)) == "conflict"
}

func IsInvalidInput(err error) bool {
	r := reason(CodeOf(err))
	return r == "invalid" || r == "invalid_input" || r == "invalid_value" || r == "invalid_format"
}

func IsUpstreamFailure(err error) bool {
	code := CodeOf(err)
	return strings.Contains(string(code), "upstream") && reason(code) == "failure"
}

func flatten(fields []Attr) []any {
	pairs := make([]any, 0, len(fields)*2)
	for _, field := range fields {
		if field.Key == "" {
			continue
		}
		pairs = append(pairs, field.Key, field.Value)
	}
	return pairs
}

func reason(code Code) string {
	if code == "" {
		return ""
	}

	raw := string(code)
	idx := strings.LastIndex(raw, ".")
	if idx == -1 || idx == len(raw)-1 {
		return raw
	}
	return raw[idx+1:]
}
