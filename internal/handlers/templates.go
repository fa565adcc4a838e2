package handlers

import (
	"html/template"
	"net/url"
	"path/filepath"
)

// parseTemplate loads a page template with the helpers every page shares.
// coverURL resolves a cover file name against coverBaseURL and yields ""
// when either is empty, which the templates use to skip the image.
func parseTemplate(path, coverBaseURL string) (*template.Template, error) {
	funcs := template.FuncMap{
		"coverURL": func(fileName string) string {
			if coverBaseURL == "" || fileName == "" {
				return ""
			}
			return coverBaseURL + "/" + url.PathEscape(fileName)
		},
	}
	return template.New(filepath.Base(path)).Funcs(funcs).ParseFiles(path)
}
