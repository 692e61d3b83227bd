// Package auth is the authentication core of the glp-1 health tracking
// application: single-use magic link and password reset tokens, the signed
// session credential issued after a successful verification, and the
// request-level workflows composing both.
//
// Token lifecycle:
//   - AuthTokens are opaque, high-entropy values persisted with a kind, an
//     expiry, and a monotonic used flag. TokenIssuer supersedes every
//     outstanding token of the same kind before inserting a new one, so a
//     user holds at most one live link per flow. TokenVerifier consumes a
//     presented value through a single conditional update; of N concurrent
//     verifications at most one succeeds.
//   - Records are never deleted; consumed and expired rows stay behind for
//     audit and replay detection.
//
// Sessions:
//   - TokenService signs a self-contained JWT carrying the user id and email
//     with a fixed seven day lifetime. The server keeps no session table;
//     validity is re-derived from the signature and expiry on each request.
//
// Collaborators:
//   - Mailer and ActivitySink wrap the transactional email and analytics
//     providers. Both are constructor injected and best effort: their
//     failures are logged and absorbed so auth availability never depends on
//     notification or telemetry availability.
package auth
