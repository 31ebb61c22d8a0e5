package tests_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/containerd/nerdctl/mod/tigron/test"
	"github.com/containerd/nerdctl/mod/tigron/tig"
)

// expectContains returns a comparator verifying the output contains a substring.
func expectContains(substr string) test.Comparator {
	return func(stdout string, testing tig.T) {
		testing.Helper()

		if !strings.Contains(stdout, substr) {
			testing.Log(fmt.Sprintf("expected substring %q not found in output:\n%s", substr, stdout))
			testing.Fail()
		}
	}
}

// expectNotContains returns a comparator verifying the output does not contain a substring.
func expectNotContains(substr string) test.Comparator {
	return func(stdout string, testing tig.T) {
		testing.Helper()

		if strings.Contains(stdout, substr) {
			testing.Log(fmt.Sprintf("unexpected substring %q found in output:\n%s", substr, stdout))
			testing.Fail()
		}
	}
}

// expectSeverity returns a comparator verifying the severity tag of a match summary.
func expectSeverity(severity string) test.Comparator {
	return expectContains(fmt.Sprintf("[%s]", severity))
}

// expectFileContains returns a comparator verifying that the file at path contains a substring.
// Used for commands that write their result to disk rather than stdout.
func expectFileContains(path, substr string) test.Comparator {
	return func(_ string, testing tig.T) {
		testing.Helper()

		content, err := os.ReadFile(path) //nolint:gosec // test-controlled path
		if err != nil {
			testing.Log(fmt.Sprintf("reading %s: %v", path, err))
			testing.Fail()

			return
		}

		if !strings.Contains(string(content), substr) {
			testing.Log(fmt.Sprintf("expected substring %q not found in %s:\n%s", substr, path, content))
			testing.Fail()
		}
	}
}

// copyInto copies the fixture at src into dir, keeping its extension, and returns the new path.
func copyInto(helpers test.Helpers, src, dir, name string) string {
	helpers.T().Helper()

	content, err := os.ReadFile(src) //nolint:gosec // fixture path
	if err != nil {
		helpers.T().Log(fmt.Sprintf("reading fixture %s: %v", src, err))
		helpers.T().FailNow()
	}

	if err = os.MkdirAll(dir, 0o755); err != nil {
		helpers.T().Log(fmt.Sprintf("creating %s: %v", dir, err))
		helpers.T().FailNow()
	}

	dst := filepath.Join(dir, name+filepath.Ext(src))

	if err = os.WriteFile(dst, content, 0o600); err != nil {
		helpers.T().Log(fmt.Sprintf("writing %s: %v", dst, err))
		helpers.T().FailNow()
	}

	return dst
}

// expectFileNotContains returns a comparator verifying that the file at path does not contain a substring.
func expectFileNotContains(path, substr string) test.Comparator {
	return func(_ string, testing tig.T) {
		testing.Helper()

		content, err := os.ReadFile(path) //nolint:gosec // test-controlled path
		if err != nil {
			testing.Log(fmt.Sprintf("reading %s: %v", path, err))
			testing.Fail()

			return
		}

		if strings.Contains(string(content), substr) {
			testing.Log(fmt.Sprintf("unexpected substring %q found in %s", substr, path))
			testing.Fail()
		}
	}
}
