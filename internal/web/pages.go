package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/pubglens/internal/data"
	"github.com/pubglens/internal/logging"
)

//go:embed templates/*.html static/*
var assets embed.FS

var pageNames = []string{"index.html", "player.html", "error.html"}

var templateFuncs = template.FuncMap{
	"mapName":   data.MapName,
	"modeName":  data.GameModeName,
	"rankColor": data.RankColor,
	"pct":       func(v float64) string { return fmt.Sprintf("%.1f%%", v) },
	"num":       func(v float64) string { return fmt.Sprintf("%.0f", v) },
	"ratio":     func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"minutes":   func(sec float64) string { return fmt.Sprintf("%.1f min", sec/60) },
	"date":      func(t time.Time) string { return t.UTC().Format("2006-01-02 15:04") },
}

func mustParsePages() map[string]*template.Template {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		pages[name] = template.Must(template.New(name).Funcs(templateFuncs).
			ParseFS(assets, "templates/layout.html", "templates/"+name))
	}
	return pages
}

// render executes a page into a buffer first so a template error never
// leaves a half written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page string, v any) {
	tmpl, ok := s.pages[page]
	if !ok {
		logging.Ctx(r.Context()).Error().Str("page", page).Msg("unknown page")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", v); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("page", page).Msg("render failed")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("write page")
	}
}
