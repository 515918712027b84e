// Package disco is the backend for a small music forum: accounts, posts,
// threaded replies, and reactions.
//
// Account lifecycle:
//   - Signup creates an unverified user and issues a single-use verification
//     token. VerifyAccount consumes the token and flips is_verified exactly
//     once; the token is cleared in the same statement.
//   - Login exchanges credentials for an HS256 bearer token minted by the
//     TokenService. Failures are reported uniformly, there is no way to tell
//     an unknown email from a wrong password.
//   - ForgotPassword/ResetPassword run the single-use reset token flow.
//     Reset tokens expire after an hour and only the latest issued token
//     validates; a consumption attempt on an expired token still clears it.
//
// Persistence goes through Bun repositories behind RepositoryManager, every
// lifecycle transition runs inside RunInTx so callers never observe partial
// writes. The HTTP surface lives in http*.go on Fiber, protected routes
// use middleware/jwtware.
package disco
