package formflow

import (
	"io/fs"

	"github.com/goliatone/go-formflow/pkg/renderers/vanilla"
)

// AssetsFS exposes the stylesheet and change script the HTML views link to,
// for applications that mount the handler under their own asset route.
//
//	mux.Handle("/assets/",
//	  http.StripPrefix("/assets/",
//	    http.FileServerFS(formflow.AssetsFS()),
//	  ),
//	)
func AssetsFS() fs.FS {
	return vanilla.AssetsFS()
}

// EmbeddedTemplates exposes the built-in page and component templates so
// callers can copy or extend them.
func EmbeddedTemplates() fs.FS {
	return vanilla.TemplatesFS()
}
