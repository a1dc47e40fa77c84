package preview

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed page.html.tmpl
var pageSource string

var pageTemplate = template.Must(template.New("page").Parse(pageSource))

// RenderHTML 将预览写成独立的 HTML 页面，所有文本都会被转义。
func RenderHTML(w io.Writer, display DisplayDocument) error {
	if err := pageTemplate.Execute(w, display); err != nil {
		return fmt.Errorf("render preview html: %w", err)
	}
	return nil
}
