// Package auth verifies and presents GitHub personal access tokens.
//
// # Token verification
//
// GitHubVerifier calls the authenticated-user endpoint with a token and
// reports who it belongs to:
//
//	v, err := auth.NewGitHubVerifier(token, auth.WithHost("github.com"))
//	if err != nil {
//	    return err
//	}
//	user, err := v.Verify(ctx)
//	if errors.Is(err, auth.ErrTokenRejected) {
//	    // token revoked or mistyped
//	}
//	fmt.Println(user.Login)
//
// GitHub Enterprise hosts are addressed through their /api/v3/ endpoint.
//
// # Token display
//
// Tokens are never printed in full:
//
//	auth.MaskToken("ghp_abcdefghijklmnop") // "ghp_************mnop"
//	auth.HashToken(token)                  // stable hex digest for comparison
package auth
