package auth

// RolePrefix is prepended to every role name taken from token claims.
const RolePrefix = "ROLE_"

// Authorities maps a token's nested claim structure to a flat list of role
// authorities. Three claim shapes contribute, each merged independently:
//
//	realm_access.roles            realm-level roles
//	roles                         top-level roles
//	resource_access.<client>.roles  per-client roles
//
// Missing or malformed claims contribute nothing; this mapping never fails.
func Authorities(claims map[string]any) []string {
	authorities := make([]string, 0)

	if realmAccess, ok := claims["realm_access"].(map[string]any); ok {
		authorities = appendRoles(authorities, realmAccess["roles"])
	}

	authorities = appendRoles(authorities, claims["roles"])

	if resourceAccess, ok := claims["resource_access"].(map[string]any); ok {
		for _, clientAccess := range resourceAccess {
			if client, ok := clientAccess.(map[string]any); ok {
				authorities = appendRoles(authorities, client["roles"])
			}
		}
	}

	return authorities
}

func appendRoles(authorities []string, roles any) []string {
	list, ok := roles.([]any)
	if !ok {
		return authorities
	}

	for _, role := range list {
		if name, ok := role.(string); ok {
			authorities = append(authorities, RolePrefix+name)
		}
	}
	return authorities
}
