// Package auth owns the TickTick OAuth 2.0 authorization-code-grant
// lifecycle: building authorization URLs, exchanging codes, refreshing
// tokens and persisting the single credential record to disk.
//
// The Manager is the only entry point API callers need: ValidAccessToken
// loads the stored token, refreshes it through the regional token endpoint
// when the buffered expiry check trips, persists the replacement and hands
// back a usable access token or a typed failure. A failed refresh never
// clears the stored (stale) token; only an explicit logout does.
//
// At most one token record exists at a time. It lives in a single JSON
// file with owner-only permissions, written atomically (temp file + rename)
// so a concurrent reader never observes a partial write. A missing, empty
// or unparsable file means "not authenticated", never a crash.
//
// Refresh is not coordinated across callers: two concurrent ValidAccessToken
// calls on an expired token may both refresh, and the last stored record
// wins. Both resulting tokens are usable, so the race is benign.
package auth
