// Package testutils provides test infrastructure for tonematch integration tests.
package testutils

import (
	"path/filepath"
	"runtime"

	"github.com/containerd/nerdctl/mod/tigron/test"

	"github.com/farcloser/agar/pkg/agar"
)

// Setup creates a test case configured to run the tonematch binary.
func Setup() *test.Case {
	return agar.Setup(binary("tonematch"))
}

// SetupReport creates a test case configured to run the tonematch-report binary.
func SetupReport() *test.Case {
	return agar.Setup(binary("tonematch-report"))
}

func binary(name string) string {
	_, thisFile, _, _ := runtime.Caller(0) //nolint:dogsled // runtime.Caller returns 4 values, only file is needed
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(thisFile)))

	return filepath.Join(projectRoot, "bin", name)
}
