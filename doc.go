// Package session implements the client-side session lifecycle for the
// OpenStage gig-marketplace platform: credential storage, token issuance,
// silent renewal, logout/cleanup, and a consistent observable view of the
// current user across an application issuing many concurrent requests.
//
// Lifecycle:
//   - A SessionManager starts in StatusInitializing, reads the persisted
//     access token, and resolves to StatusAuthenticated (profile fetch
//     succeeded) or StatusAnonymous (no token, or any startup failure).
//     Once resolved, a process never re-enters StatusInitializing.
//   - Login and Register replace the whole session; RenewAccessToken
//     replaces only the access token; Logout clears everything and never
//     fails. Renewal failure is terminal and demotes to StatusAnonymous.
//
// Credential coherence:
//   - The manager is the sole writer of the CredentialStore and the sole
//     CredentialSource for the transport, so the token attached to
//     outgoing requests can never diverge from the persisted one.
//
// Activity sinks:
//   - ActivitySink is a best-effort audit emitter describing login,
//     registration, renewal, expiry, and logout events. Consumers that
//     need a "session expired" notice subscribe here or to Snapshot
//     updates via Subscribe.
package session
