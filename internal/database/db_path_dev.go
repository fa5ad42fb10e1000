//go:build !prod

package database

// GetDefaultDBPath returns the database path for development mode.
// In dev mode, the database is stored in the working directory for easy access.
func GetDefaultDBPath() string {
	return "stillpoint.db"
}

func IsDevelopment() bool {
	return true
}
