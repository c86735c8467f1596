// Package httpclient builds the *http.Client that webconn connections send
// through.
//
// The client has secure, predictable defaults:
//   - A total request timeout and a response-header timeout
//   - TLS 1.2 minimum (TLS 1.3 preferred)
//   - Connection pooling
//   - A logging transport that injects a default User-Agent, propagates the
//     X-Correlation-ID of the request context, and logs every exchange with
//     secrets redacted from the URL
//
// # Usage
//
//	cfg := httpclient.DefaultConfig()
//	cfg.UserAgent = "ImageBot/2.0 (+https://example.com/bot)"
//	client, err := httpclient.New(cfg)
//	if err != nil {
//	    return err
//	}
//
// The client performs exactly one attempt per request. Retry policy belongs
// to the caller.
//
// # Authentication
//
// Config.Auth adds a transport below the logging transport:
//   - bearer: a static token in the Authorization header
//   - oauth2: client credentials, token fetched once and refreshed on expiry
//   - aws_sigv4: requests signed for Service and Region using the AWS
//     default credential chain unless Credentials is set
//
// # Observability
//
// Requests are logged via log/slog:
//   - Debug level: responses below 400 and transport errors, which are
//     returned to the caller to report
//   - Warn level: 4xx/5xx responses
//   - Fields: method, url (sanitized), status, duration_ms, error
package httpclient
