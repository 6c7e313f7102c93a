package auth

// RouteClass partitions the API surface. Every route declares its class at
// registration time; the gate never inspects route names or paths.
type RouteClass int

const (
	// RouteUnclassified is the zero value: a route that was never classified.
	// That is a wiring mistake and is denied for every identity.
	RouteUnclassified RouteClass = iota
	// RouteAdminScoped routes are reachable only by administrative accounts.
	RouteAdminScoped
	// RouteUserScoped routes are reachable only by ordinary accounts.
	RouteUserScoped
)

func (c RouteClass) String() string {
	switch c {
	case RouteAdminScoped:
		return "admin"
	case RouteUserScoped:
		return "user"
	default:
		return "unclassified"
	}
}

// RouteInfo describes the route being requested to the authenticator.
type RouteInfo struct {
	Class RouteClass
	// Exempt marks login and account-creation routes: the token must still
	// verify and resolve to a subject, but the authorized-flag and session
	// registry checks are skipped.
	Exempt bool
}

// Allow applies the access decision table: administrative identities on
// admin-scoped routes, ordinary identities on user-scoped routes, nothing
// else. Unclassified routes deny by default.
func (c RouteClass) Allow(identity Identity) error {
	if identity == nil {
		return ErrNotAuthorized
	}

	switch c {
	case RouteAdminScoped:
		if identity.GetIsAdmin() {
			return nil
		}
		return ErrNotAuthorized
	case RouteUserScoped:
		if !identity.GetIsAdmin() {
			return nil
		}
		return ErrNotAuthorized
	default:
		return ErrRouteUnclassified
	}
}
