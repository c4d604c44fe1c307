/*
Package authsdk is the Go client for the back-office authentication service,
plus the wire types and error type the server itself writes.

Create an SDKClient for unauthenticated calls and to start a Session:

	client := authsdk.NewSDKClient("https://auth.example.com")

	session, err := client.LoginSession(ctx, authsdk.LoginRequest{
		Username: "alice",
		Password: "correct-pw",
	})
	if errors.Is(err, authsdk.ErrTwoFARequired) {
		// Resend with the code from the authenticator app.
		session, err = client.LoginSession(ctx, authsdk.LoginRequest{
			Username:  "alice",
			Password:  "correct-pw",
			TwoFACode: code,
		})
	}

A Session refreshes its access token shortly before expiry using the refresh
token, so callers never refresh by hand:

	profile, err := session.Me(ctx)
	roles, err := session.ListRoles(ctx) // ADMIN only

Every failure from the server is an *APIError. Compare against the predefined
values with errors.Is, which matches on the error code:

	if errors.Is(err, authsdk.ErrTokenExpired) { ... }

Logout is advisory. The service keeps no revocation list, so issued tokens
stay valid until they expire.
*/
package authsdk
