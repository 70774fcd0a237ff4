// Package twin is an in-memory stand-in for the auth and studio services.
//
// It serves the same routes the real services expose, mints HS256 access
// tokens and opaque refresh tokens, and keeps everything in a MemoryStore.
// Tests use it through httptest; cmd/booth-twin runs it for local
// development.
//
// Beyond the public API it offers a few controls for tests:
// ExpireAccessTokens makes every issued access token answer 401,
// MemoryStore.RevokeRefreshTokens makes refresh fail, and RefreshCount
// reports how many refresh calls arrived.
package twin
