// Package api defines the request and response messages of the hearthledger
// RPC services. Messages travel as JSON; money is a decimal string such as
// "33.34" and timestamps are RFC 3339.
//
// Struct tags carry the validation rules applied by the server before a
// request reaches the engine.
package api
