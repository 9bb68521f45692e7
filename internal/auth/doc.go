// Package auth issues and validates bearer tokens for the gateway API.
//
// Tokens are HS256 JWTs carrying a subject and a role. There are no user
// accounts: an operator mints tokens with `thsgateway token` and hands them
// to the client programs that call the API.
//
// Roles map to a fixed permission set:
//   - viewer: read queries and the audit trail
//   - trader: everything viewer can do plus orders and cancels
package auth
