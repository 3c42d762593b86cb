// Package log provides secure logging for pagegate, built on the standard
// slog package.
//
// Crawled URLs routinely carry session identifiers and access tokens in
// their query strings, and they are logged at debug level for every
// admission decision. The SecureHandler masks:
//   - values of sensitive attribute keys (cookie, authorization, token, ...)
//   - values that look like secrets (JWTs, bearer tokens, long keys)
//   - session parameters, query secrets and passwords inside URL values
//
// String values longer than MaxValueLength are truncated.
//
// Even in verbose mode, sensitive values are masked so logs can be shared.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Debug("page accepted", "url", "https://www.ics.uci.edu/a?sid=42")
//	// url=https://www.ics.uci.edu/a?sid=***REDACTED***
package log
