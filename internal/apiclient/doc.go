// Package apiclient builds the HTTP clients used to talk to the auth and
// studio services.
//
// # Overview
//
// Both remote services share one configuration: a base URL, a request
// timeout, JSON bodies, and a bearer token taken from a credential store.
// A Client is built once per service with New and every request flows
// through a small middleware chain of Doer values:
//
//	request id -> user agent -> refresh on 401 -> bearer token -> transport
//
// # Authentication
//
// An Authenticator is shared by both clients. It injects the stored access
// token and, when a response comes back 401 Unauthorized, runs the refresh
// protocol:
//
//   - requests marked with WithoutRefresh (login, signup) are returned as-is
//   - a request that is already a replay is never refreshed again
//   - a request sent without any token is returned as-is
//   - a token sent with no refresh token stored counts as a failed refresh
//   - concurrent 401s share one refresh call
//   - a successful refresh stores the new access token and replays the
//     original request once with the new token
//   - a failed refresh clears the credential store, fires the hook set with
//     OnSessionExpired and returns a *SessionExpiredError
//
// The refresh call itself goes through a TokenRefresher, which owns a client
// without an Authenticator and so can never recurse into the 401 path.
//
// # Errors
//
// Client.Do returns typed errors so callers can branch without parsing text:
//
//   - *HTTPStatusError for any 4xx/5xx response
//   - *NetworkError when no response was received
//   - *SessionExpiredError when the refresh failed (errors.Is ErrSessionExpired)
//
// ValidationFromStatus lifts field-keyed 400/422 bodies into a
// *ValidationError, and Message renders any of these as the short text shown
// to the user.
package apiclient
