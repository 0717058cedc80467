package dbclient

import "fmt"

// rcError wraps a non-zero reply RC into an error carrying both the failed
// operation's name and the code, for opcodes that don't have their own
// status enum.
func rcError(op string, rc int32) error {
	return fmt.Errorf("dbclient: %s failed, rc=%d", op, rc)
}
