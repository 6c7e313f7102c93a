// Package auth implements the authentication and authorization core of the
// storecraft API: RSA-signed JWT issuance and verification, a persisted
// session registry for explicit revocation, and role-gated route access.
//
// Trust model:
//   - Tokens are verified statelessly against the service keypair (signature,
//     issuer, audience, expiry). A verified token is necessary but not
//     sufficient for access.
//   - Every authenticated request additionally requires a live row in the
//     session registry keyed by the token's jti. Logout deletes the row, so a
//     structurally valid token stops working the moment its session is
//     revoked. Both layers are deliberate; do not collapse them into one.
//
// Route access is decided by an explicit RouteClass attached to each route at
// registration time. Administrative identities may only reach admin-scoped
// routes and ordinary identities only user-scoped routes; routes without a
// class are denied.
package auth
