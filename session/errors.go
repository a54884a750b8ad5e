package session

import "fmt"

func errAlreadyRunning(name string) error {
	return fmt.Errorf("session: %q is already running", name)
}
