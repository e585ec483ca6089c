// Package types defines the contact entity, the property codec, the
// Connection contract, and the standard errors shared by the hubcontacts
// client.
//
// The package has no knowledge of HTTP. Everything that talks to the
// remote API goes through a Connection, which callers (or
// internal/httpconn) supply.
package types
