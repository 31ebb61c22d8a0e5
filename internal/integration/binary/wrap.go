// Package binary locates the external tools used to decode compressed audio.
package binary

import (
	"fmt"
	"os/exec"

	"github.com/farcloser/primordium/fault"
)

// Require resolves binName in the system PATH.
// A missing binary is reported as fault.ErrMissingRequirements, which callers treat as an unsupported format.
func Require(binName string) (string, error) {
	path, err := exec.LookPath(binName)
	if err != nil {
		return "", fmt.Errorf("%w: %s not found in PATH", fault.ErrMissingRequirements, binName)
	}

	return path, nil
}
