// Package client contains the CLI's link to the SCAMS backend.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface) covering
//     the auth endpoints and the room endpoints.
//  2. A concrete implementation over the HTTP JSON API (see HTTPClient). It
//     sends the session token in the x-auth-token header and maps HTTP
//     statuses back to the sentinel errors of package common.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) that opens
//     the SQLite file and applies the embedded goose migrations.
//
// # Error Handling
//
// Failures can be matched with errors.Is: ErrUnavailable when the server
// cannot be reached, ErrUnauthorized on 401, and the common sentinels
// (common.ErrInvalidCredentials, common.ErrEmailInUse, ...) recovered from
// the server's message. Field validation failures come back as
// *common.ValidationError.
package client
