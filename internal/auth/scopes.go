package auth

// Scopes checked by the API.
const (
	ScopeWorkoutsRead    = "workouts:read"
	ScopeBookmarksRead   = "bookmarks:read"
	ScopeBookmarksWrite  = "bookmarks:write"
	ScopeActivitiesRead  = "activities:read"
	ScopeActivitiesWrite = "activities:write"
)
