package utils

import (
	"log/slog"
	"os"
	"regexp"
)

var (
	// key=VALUE, api_key=VALUE, apiKey=VALUE, api-key=VALUE, apikey=VALUE, secret_key=VALUE
	queryKeyPattern = regexp.MustCompile(`([?&])(api[_\-]?[kK]ey|secret[_\-]?[kK]ey|key)=([^&\s"]+)`)
	bearerPattern   = regexp.MustCompile(`Bearer\s+([A-Za-z0-9_\-\.]+)`)
	// CLOVA OCR authenticates with the X-OCR-SECRET header
	ocrSecretPattern = regexp.MustCompile(`(?i)(x-ocr-secret)(:\s*|=)([^\s"&\]]+)`)
)

// MaskSensitiveData masks API keys and other sensitive information in strings
// This is used to prevent accidental logging of sensitive data in error messages and URLs
func MaskSensitiveData(s string) string {
	if s == "" {
		return s
	}

	s = queryKeyPattern.ReplaceAllString(s, `${1}${2}=***MASKED***`)
	s = bearerPattern.ReplaceAllString(s, `Bearer ***MASKED***`)
	s = ocrSecretPattern.ReplaceAllString(s, `${1}${2}***MASKED***`)

	return s
}

// MaskSecret removes every literal occurrence of secret from s.
// Used when the secret itself is known, e.g. echoed back in a response body.
func MaskSecret(s, secret string) string {
	if secret == "" || s == "" {
		return s
	}
	return regexp.MustCompile(regexp.QuoteMeta(secret)).ReplaceAllString(s, "***MASKED***")
}

// MaskSensitiveError wraps an error and masks sensitive data when the error is converted to string
func MaskSensitiveError(err error) error {
	if err == nil {
		return nil
	}
	return &maskedError{err: err}
}

type maskedError struct {
	err error
}

func (e *maskedError) Error() string {
	return MaskSensitiveData(e.err.Error())
}

func (e *maskedError) Unwrap() error {
	return e.err
}

func ExitOnError(msg string, err error) {
	slog.Error(msg, "err", MaskSensitiveError(err))
	os.Exit(1)
}
