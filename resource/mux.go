package resource

import (
	"context"
	"fmt"
)

// Mux routes s3:// locators to an S3 reader and everything else to the
// local filesystem.
type Mux struct {
	Local  Reader
	Remote Reader
}

var _ Reader = (*Mux)(nil)

// NewMux returns a Mux over the local filesystem. remote may be nil, in which
// case s3 locators fail.
func NewMux(remote Reader) *Mux {
	return &Mux{Local: FileReader{}, Remote: remote}
}

func (m *Mux) pick(locator string) (Reader, error) {
	if _, _, ok := parseS3(locator); ok {
		if m.Remote == nil {
			return nil, fmt.Errorf("no s3 reader configured for %s", locator)
		}
		return m.Remote, nil
	}
	return m.Local, nil
}

func (m *Mux) ReadAllLines(ctx context.Context, locator string, enc Encoding) ([]string, error) {
	r, err := m.pick(locator)
	if err != nil {
		return nil, err
	}
	return r.ReadAllLines(ctx, locator, enc)
}

func (m *Mux) ReadAllContent(ctx context.Context, locator string, enc Encoding) (string, error) {
	r, err := m.pick(locator)
	if err != nil {
		return "", err
	}
	return r.ReadAllContent(ctx, locator, enc)
}

func (m *Mux) List(ctx context.Context, locator string) ([]string, error) {
	r, err := m.pick(locator)
	if err != nil {
		return nil, err
	}
	return r.List(ctx, locator)
}
