// Package sessions provides stateless session management for net/http
// applications using signed JSON Web Tokens.
//
// A Middleware issues a signed token for an authenticated subject, carries
// it in a cookie or an Authorization bearer header, and re-derives the
// subject on every request from nothing but the presented token. There is
// no server-side session table: any instance holding the same signing key
// can validate tokens issued by any other instance.
package sessions
