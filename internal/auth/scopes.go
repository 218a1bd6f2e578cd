package auth

// Known OAuth scopes used by the backend.
const (
	ScopeHealthRead  = "health:read"
	ScopeHealthWrite = "health:write"
)
