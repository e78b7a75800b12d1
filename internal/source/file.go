// Package source provides content sources for the search pipeline. The
// pipeline itself never fetches; a source hands it pre-fetched
// discussion trees for a query.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/reviewlens/reviewlens/internal/discussion"
)

// FileSource reads pre-fetched discussion dumps from a directory. A
// query "acme phone" maps to <dir>/acme phone.json, whose top level is
// an object keyed by source name:
//
//	{"reddit": [ ...threads... ], "youtube": [ ...threads... ]}
//
// One FileSource serves one key of that object.
type FileSource struct {
	dir  string
	name string
}

// NewFileSource creates a source named name reading dumps from dir.
func NewFileSource(dir, name string) *FileSource {
	return &FileSource{dir: dir, name: name}
}

// Name returns the source name, the key this source reads from a dump.
func (f *FileSource) Name() string { return f.name }

// Threads loads the dump for a query and returns this source's threads.
// A dump without this source's key yields no threads and no error.
func (f *FileSource) Threads(ctx context.Context, query string) ([]discussion.Thread, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(f.dir, strings.ToLower(query)+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dump for %q: %w", query, err)
	}

	var dump map[string][]discussion.Thread
	if err := json.Unmarshal(data, &dump); err != nil {
		return nil, fmt.Errorf("parsing dump for %q: %w", query, err)
	}

	return dump[f.name], nil
}
