package resource

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// FileReader reads resources from the local filesystem.
type FileReader struct{}

var _ Reader = FileReader{}

func (FileReader) ReadAllContent(_ context.Context, locator string, enc Encoding) (string, error) {
	raw, err := os.ReadFile(locator)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, locator)
		}
		return "", fmt.Errorf("IO error: %w", err)
	}
	return Decode(raw, enc)
}

func (r FileReader) ReadAllLines(ctx context.Context, locator string, enc Encoding) ([]string, error) {
	content, err := r.ReadAllContent(ctx, locator, enc)
	if err != nil {
		return nil, err
	}
	return SplitLines(content), nil
}

func (FileReader) List(_ context.Context, locator string) ([]string, error) {
	entries, err := os.ReadDir(locator)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, locator)
		}
		return nil, fmt.Errorf("IO error: %w", err)
	}

	locators := []string{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		locators = append(locators, filepath.Join(locator, e.Name()))
	}
	sort.Strings(locators)
	return locators, nil
}
