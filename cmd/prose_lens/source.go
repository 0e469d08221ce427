package main

import (
	"fmt"
	"strconv"
	"strings"

	"prose_lens/internal/db"
	"prose_lens/internal/doc"
	"prose_lens/internal/ingest"
	"prose_lens/internal/workspace"
)

const draftPrefix = "draft:"

type source struct {
	Title  string
	Path   string
	Blocks []doc.Block
}

// loadSource reads a file, or a stored draft when arg looks like draft:<id>.
func loadSource(root, arg string) (source, error) {
	if rest, ok := strings.CutPrefix(arg, draftPrefix); ok {
		id, err := strconv.ParseInt(rest, 10, 64)
		if err != nil {
			return source{}, fmt.Errorf("invalid draft id %q: %w", rest, err)
		}
		d, err := db.LoadDraft(workspace.DraftsPath(root), id)
		if err != nil {
			return source{}, err
		}
		return source{Title: d.Title, Path: d.SourcePath, Blocks: d.Blocks}, nil
	}
	parsed, err := ingest.ParseFile(arg)
	if err != nil {
		return source{}, fmt.Errorf("%s: %w", arg, err)
	}
	return source{Title: parsed.Title, Path: parsed.SourcePath, Blocks: parsed.Blocks}, nil
}
