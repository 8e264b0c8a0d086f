package common

import (
	"errors"
	"fmt"

	"github.com/teemow/ticktick-mcp/internal/auth"
)

// AuthErrorMessage turns session errors into actionable tool output.
// Not-authenticated errors get step-by-step authorization instructions;
// everything else is reported as-is.
func AuthErrorMessage(err error) string {
	var notAuth *auth.NotAuthenticatedError
	if errors.As(err, &notAuth) {
		return `Not authenticated with TickTick. To authorize access:

1. Call the ticktick_auth_url tool and open the returned URL in a browser
2. Sign in and grant access
3. Copy the authorization code from the redirect
4. Call the ticktick_exchange_code tool with the code

You only need to authorize once; tokens are refreshed automatically.`
	}
	return fmt.Sprintf("Failed to obtain a valid access token: %v", err)
}
