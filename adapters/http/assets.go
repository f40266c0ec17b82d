package docgenhttp

import (
	"net/http"

	"github.com/goliatone/go-docgen/docgen"
)

// RuntimeAssetsHandler serves embedded frontend helpers (document client).
func RuntimeAssetsHandler() http.Handler {
	return http.FileServer(http.FS(docgen.RuntimeAssetsFS()))
}
