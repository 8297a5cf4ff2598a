package server

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
)

var (
	//go:embed templates/*
	templateFiles embed.FS

	//go:embed static/*
	staticFiles embed.FS
)

var (
	templatesFS = mustSub(templateFiles, "templates")
	staticFS    = mustSub(staticFiles, "static")
)

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic("Failed to create " + dir + " sub filesystem: " + err.Error())
	}
	return sub
}

// StreamFile serves an embedded asset. Missing files are reported to the caller
// instead of being answered.
func StreamFile(w http.ResponseWriter, r *http.Request, fileName string) error {
	if _, err := fs.Stat(staticFS, fileName); err != nil {
		return fmt.Errorf("failed to open %s: %w", fileName, err)
	}
	http.ServeFileFS(w, r, staticFS, fileName)
	return nil
}
