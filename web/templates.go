package web

import (
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/gin-contrib/multitemplate"

	"github.com/CrestNiraj12/molterm/domain"
	"github.com/CrestNiraj12/molterm/render"
)

//go:embed templates/*.html
var templateFS embed.FS

// pages are rendered inside templates/base.html. The base is parsed last so
// its body, not a page's empty one, is what gets executed.
var pages = []string{"login", "registered", "feed", "post", "submit", "profile", "error"}

func loadTemplates(funcs template.FuncMap) multitemplate.Renderer {
	r := multitemplate.NewRenderer()
	base := mustRead("base")
	for _, name := range pages {
		r.AddFromStringsFuncs(name, funcs, mustRead(name), base)
	}
	return r
}

func mustRead(name string) string {
	b, err := templateFS.ReadFile("templates/" + name + ".html")
	if err != nil {
		panic(err)
	}
	return string(b)
}

func (s *Server) funcMap() template.FuncMap {
	return template.FuncMap{
		"dict": func(values ...any) (map[string]any, error) {
			if len(values)%2 != 0 {
				return nil, fmt.Errorf("invalid dict call")
			}
			dict := make(map[string]any, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict keys must be strings")
				}
				dict[key] = values[i+1]
			}
			return dict, nil
		},
		"ago": func(t time.Time) string {
			return render.RelativeTime(t, s.now())
		},
		"owned": func(p domain.Post, me string) bool {
			return p.IsOwnedBy(me)
		},
	}
}
