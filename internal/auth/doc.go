// Package auth provides JWT token verification for the HTTP API.
//
// Tokens are HS256-signed with the configured shared secret and carry the
// subject in the "sub" claim. HTTPMiddleware extracts the bearer token,
// verifies it, and puts the subject on the request context; GenerateToken
// mints tokens for the CLI. An empty secret disables auth entirely.
package auth
