package view

import (
	"fmt"
	"html/template"
	"io"
	"strings"
	"text/tabwriter"

	appweb "quickspend/web"
)

var pageTemplate = template.Must(template.New("index.html").Funcs(template.FuncMap{
	"options": func(p Page) template.HTML { return template.HTML(OptionsHTML(p)) },
}).ParseFS(appweb.TemplatesFS, "templates/index.html"))

// OptionsHTML renders the filter's <option> elements with every label and
// value escaped.
func OptionsHTML(p Page) string {
	var sb strings.Builder
	for _, o := range p.Options {
		sb.WriteString(`<option value="`)
		sb.WriteString(template.HTMLEscapeString(o.Value))
		sb.WriteString(`"`)
		if o.Selected {
			sb.WriteString(" selected")
		}
		sb.WriteString(">")
		sb.WriteString(template.HTMLEscapeString(o.Label))
		sb.WriteString("</option>")
	}
	return sb.String()
}

// WriteHTML renders the full list page.
func WriteHTML(w io.Writer, p Page) error {
	if err := pageTemplate.ExecuteTemplate(w, "index.html", p); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}

// WriteText renders the table, total and snapshot for a terminal.
func WriteText(w io.Writer, p Page) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tCATEGORY\tDESCRIPTION\tAMOUNT\t")
	for _, r := range p.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", r.Date, r.Category, r.Description, r.Amount)
	}
	fmt.Fprintf(tw, "\t\tTotal\t%s\t\n", p.Total)
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("render table: %w", err)
	}

	if p.Status != "" {
		fmt.Fprintln(w, p.Status)
	}

	s := p.Snapshot
	fmt.Fprintf(w, "\n%s · %s\n", s.Chip, s.Label)
	for _, r := range s.Rows {
		fmt.Fprintf(w, "  %-24s %s\n", r.Title, r.Value)
	}
	_, err := fmt.Fprintln(w, s.Footer)
	return err
}
