// Package services defines the [Account] interface for one side of a list sync and implements it over HTTP.
//
// # Account Interface
//
// The sync core only ever talks to an account through [Account]: list retrieval, paged member
// retrieval, bulk member add, list creation and direct messages. Fakes in tests implement the same interface.
//
// # HTTP Implementation
//
// [Client] targets the v1.1 list endpoints:
//   - GET  /lists/ownerships.json : lists owned by the authenticated user (cursor paged)
//   - GET  /lists/members.json : list members, up to 5000 per page
//   - POST /lists/members/create_all.json : add up to 100 members
//   - POST /lists/create.json : create a list (private by default)
//   - POST /direct_messages/events/new.json : send a direct message
//
// # Authentication
//
// Requests are signed with OAuth 1.0a ([oauth1]) from the consumer key/secret and access token
// key/secret. When a bearer token is configured, an [oauth2] static token source is used instead.
//
// # Rate Limiting
//
// Each [Client] owns a [rate.Limiter]; calls wait for a token before hitting the network.
//
// # Error Handling
//
// Failures are wrapped with typed errors from the shared package:
//   - [shared.ErrAPIRequest] : transport failure or non-2xx status
//   - [shared.ErrMissingCredentials] : no usable credentials
//   - [shared.ErrInvalidInput] : caller passed an invalid batch or name
package services
