package metadata

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alnah/go-mdcite/internal/fileutil"
)

// ErrFileUnavailable indicates a metadata file that is missing, unreadable
// or larger than fileutil.MaxMetadataSize.
var ErrFileUnavailable = errors.New("metadata file unavailable")

// LoadFile reads a standalone metadata file. The file may be a complete
// front matter block ("---" fenced) or bare "key: value" YAML.
func LoadFile(path string) (List, error) {
	data, err := fileutil.ReadFileLimited(path, fileutil.MaxMetadataSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileUnavailable, err)
	}
	return ParseFile(string(data)), nil
}

// ParseFile parses the content of a standalone metadata file.
func ParseFile(content string) List {
	content = strings.TrimPrefix(content, "\ufeff")
	if strings.HasPrefix(content, "---") {
		if items, _, ok := extractYAML(content); ok {
			return items
		}
	}
	return parseYAMLBlock(content)
}
