package handlers

// WeeksResponse lists the weeks with fixtures
type WeeksResponse struct {
	Weeks       []int `json:"weeks"`
	CurrentWeek int   `json:"current_week"`
}

// ImportFixturesResponse is the response for a fixture import
type ImportFixturesResponse struct {
	Imported int `json:"imported"`
}

// LiveWeekResponse reports the override (0 when unset) and the week in effect
type LiveWeekResponse struct {
	Override    int `json:"override"`
	CurrentWeek int `json:"current_week"`
}

// ResetResponse is the response for a database reset
type ResetResponse struct {
	Message string   `json:"message"`
	Tables  []string `json:"tables"`
}

// LoginResponse is the response for a successful admin login
type LoginResponse struct {
	Token string `json:"token"`
}

// HealthResponse is the response of the health check
type HealthResponse struct {
	Status           string `json:"status"`
	ActiveSessions   int    `json:"active_sessions"`
	ConnectedClients int    `json:"connected_clients"`
}
