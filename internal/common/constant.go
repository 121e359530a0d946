package common

// AccessTokenHeaderName is the HTTP header used to carry the session token
// on requests to protected endpoints.
const AccessTokenHeaderName = "x-auth-token"

// Keys under which the CLI persists its session between runs.
const (
	SessionTokenKey    = "scamsToken"
	SessionIdentityKey = "scamsUser"
)
