// Package ticktick provides a typed client for the TickTick open REST API
// (and its Chinese Dida365 deployment).
//
// The client performs authenticated calls against one of the two regional
// base URLs and normalizes every failure into a single Error type
// discriminated by Kind: HTTP statuses map through a central table
// (400 bad_request, 401 auth, 403 forbidden, 404 not_found, 429 rate_limit,
// anything else api), a fired per-request deadline yields timeout carrying
// the configured duration, and transport failures before any response yield
// network wrapping the cause. The client never retries; a 429's advisory
// Retry-After seconds are surfaced for the caller to act on.
//
// The client does not refresh credentials. It is constructed per
// authenticated call with an access token that is already valid; token
// lifecycle lives in the auth package.
//
//	token, err := manager.ValidAccessToken(ctx)
//	if err != nil {
//	    return err
//	}
//	client := ticktick.NewClient(token, cfg.Region)
//	projects, err := client.Projects(ctx)
package ticktick
