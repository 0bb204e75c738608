package driver

import (
	"strconv"

	"gtrans/internal/project"
	"gtrans/internal/source"
)

// grammarKey identifies a set of grammar documents for the disk cache:
// H(schema || path1 || content1 || path2 || content2 ...). files must be in
// load order so spans in a cached snapshot point at the same FileIDs.
func grammarKey(files []*source.File) project.Digest {
	parts := make([][]byte, 0, 2*len(files)+1)
	parts = append(parts, []byte("gtrans-rules/"+strconv.Itoa(int(diskCacheSchemaVersion))))
	for _, f := range files {
		parts = append(parts, []byte(f.Path), f.Content)
	}
	return project.Combine(parts...)
}
