// internal/app/features/mycourses/templates.go
package mycourses

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "mycourses",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
