// Package acl is the anti-corruption layer between the remote quote source
// and the domain.
//
// The remote speaks in "posts" ({userId, id, title, body}) and has no notion
// of categories. Nothing outside this package sees that shape: [RemoteQuotes]
// decodes posts into unexported DTOs and translates each one into a
// [domain.Quote] with a pure function.
//
// # Error Handling
//
// Every failure leaving this package is a domain error:
//   - transport failures, [clients.ErrCircuitOpen], [clients.ErrMaxRetriesExceeded]
//     and non-2xx responses → [domain.ErrNetwork] (status code kept when known)
//   - a body that is not the expected JSON → [domain.ErrDecode]
//
// Individual records that decode but fail validation are not errors here.
// They are passed through and reported by the reconciler as malformed.
package acl
