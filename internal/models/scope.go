package models

// Scope is the ownership scope of a request: either guest (no identity) or
// owned by a specific user. Repositories consume it uniformly instead of
// branching on a nullable user id at every call site.
type Scope struct {
	userID string
	owned  bool
}

// GuestScope returns the unauthenticated scope.
func GuestScope() Scope {
	return Scope{}
}

// OwnedScope returns the scope of the given user.
func OwnedScope(userID string) Scope {
	return Scope{userID: userID, owned: true}
}

// Owned reports whether the scope carries an authenticated identity.
func (s Scope) Owned() bool {
	return s.owned
}

// UserID returns the owner id and whether one is present.
func (s Scope) UserID() (string, bool) {
	return s.userID, s.owned
}

// OwnerArg returns the value bound to user_id in scoped queries: the owner
// id, or nil for guest scope. Queries compare with IS NOT DISTINCT FROM so
// a single statement serves both variants.
func (s Scope) OwnerArg() any {
	if !s.owned {
		return nil
	}
	return s.userID
}

// OwnerRef returns the owner id as a nullable reference for persisted rows.
func (s Scope) OwnerRef() *string {
	if !s.owned {
		return nil
	}
	id := s.userID
	return &id
}

// CacheKey returns the cache key segment for this scope.
func (s Scope) CacheKey() string {
	if !s.owned {
		return "guest"
	}
	return "user:" + s.userID
}

// ScopeFromOwner rebuilds a Scope from a stored nullable owner id.
func ScopeFromOwner(ownerID *string) Scope {
	if ownerID == nil {
		return GuestScope()
	}
	return OwnedScope(*ownerID)
}
