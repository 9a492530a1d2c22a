package instance

import "os"

// GetID returns the process instance identifier used to tag logs.
// FORK_INSTANCE_ID wins over the platform-provided DYNO name.
func GetID() string {
	if id := os.Getenv("FORK_INSTANCE_ID"); id != "" {
		return id
	}
	if id := os.Getenv("DYNO"); id != "" {
		return id
	}
	return "local"
}
