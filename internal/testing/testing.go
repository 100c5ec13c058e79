// package testing holds test doubles shared by the reelx packages: a fake TMDB server,
// a scripted identity provider, and failure-injecting writers and transports.
package testing

import (
	"errors"
	"io"
	"net/http"
	"os"
	"testing"
)

// ErrInjected is returned by every failure-injecting double in this package.
var ErrInjected = errors.New("injected failure")

// FailingWriter forwards the first After writes to W and fails every write after that.
// The zero value fails on the first write.
type FailingWriter struct {
	After int
	W     io.Writer

	writes int
}

func (f *FailingWriter) Write(p []byte) (int, error) {
	if f.writes >= f.After {
		return 0, ErrInjected
	}
	f.writes++
	if f.W == nil {
		return len(p), nil
	}
	return f.W.Write(p)
}

// RoundTripFunc adapts a func to [http.RoundTripper].
type RoundTripFunc func(*http.Request) (*http.Response, error)

func (f RoundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// ClientReturning returns a client whose transport always answers with resp and err.
func ClientReturning(resp *http.Response, err error) *http.Client {
	return &http.Client{Transport: RoundTripFunc(func(*http.Request) (*http.Response, error) {
		return resp, err
	})}
}

// FailingBody is a response body whose reads fail.
type FailingBody struct{}

func (FailingBody) Read([]byte) (int, error) { return 0, ErrInjected }
func (FailingBody) Close() error             { return nil }

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected %s to exist: %v", path, err)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(content)
}
