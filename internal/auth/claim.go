package auth

// LeaderClaim is what a request asserts about its caller. The service checks
// it against group membership.
type LeaderClaim struct {
	// UserID comes from a verified bearer token.
	UserID string
	// DemoLeader is set by the X-Demo-Leader header when demo mode allows it.
	DemoLeader bool
}

// Anonymous reports whether the request carries no claim at all.
func (c LeaderClaim) Anonymous() bool {
	return c.UserID == "" && !c.DemoLeader
}
