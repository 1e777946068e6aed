package services

// ExpireSessions runs one janitor sweep.
func ExpireSessions(s SessionService) int {
	return s.(*sessionService).expire()
}
