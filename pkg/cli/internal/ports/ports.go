// Package ports provides listen address availability checking.
package ports

import (
	"fmt"
	"net"
)

// IsAvailable checks if addr can be bound.
func IsAvailable(addr string) bool {
	return Check(addr) == nil
}

// Check binds addr once and releases it. The error names the address so
// that a command can fail before starting any server.
func Check(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("address %s is not available: %w", addr, err)
	}
	_ = ln.Close()
	return nil
}
