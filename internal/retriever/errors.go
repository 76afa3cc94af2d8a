package retriever

import (
	"fmt"
	"strings"

	"github.com/valuationkit/mpfcore/internal/storage"
)

// NoFilesFoundError reports that discovery matched no spreadsheet files.
// TotalObjects lets the message distinguish an empty prefix from a prefix
// holding only unsupported file types.
type NoFilesFoundError struct {
	Path         storage.RemotePath
	TotalObjects int
	Extensions   []string
}

func (e *NoFilesFoundError) Error() string {
	if e.TotalObjects == 0 {
		return fmt.Sprintf("no files found under %s", e.Path)
	}
	return fmt.Sprintf("no spreadsheet files (%s) found under %s; %d other objects present",
		strings.Join(e.Extensions, ", "), e.Path, e.TotalObjects)
}

// NoValidFilesError reports that every discovered file failed to download
// or parse.
type NoValidFilesError struct {
	Failed int
}

func (e *NoValidFilesError) Error() string {
	return fmt.Sprintf("none of the %d discovered files could be parsed", e.Failed)
}
