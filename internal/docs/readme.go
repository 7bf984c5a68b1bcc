// Package docs renders the command reference of the README.
package docs

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"text/template"

	"github.com/keshon/server-warden/internal/command"
	"github.com/keshon/server-warden/pkg/cmd"
)

// CommandSections renders one markdown section per command category, in
// help order, with commands sorted by name.
func CommandSections(registry *cmd.Registry, prefix string) string {
	byCategory := map[string][]cmd.Command{}
	for _, c := range registry.GetAll() {
		cat := command.CategoryUtility
		if meta, ok := cmd.Root(c).(command.Category); ok {
			cat = meta.Category()
		}
		byCategory[cat] = append(byCategory[cat], c)
	}

	var buf bytes.Buffer
	for _, cat := range command.Categories {
		cmds := byCategory[cat]
		if len(cmds) == 0 {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString("\n")
		}
		fmt.Fprintf(&buf, "### %s\n\n", cat)
		for _, c := range cmds {
			fmt.Fprintf(&buf, "- **`%s%s`**: %s\n", prefix, c.Name(), c.Description())
		}
	}
	return buf.String()
}

// Render executes the README template with the command reference.
func Render(w io.Writer, tmpl string, registry *cmd.Registry, prefix string) error {
	t, err := template.New("readme").Parse(tmpl)
	if err != nil {
		return fmt.Errorf("parse template: %w", err)
	}
	data := struct {
		Prefix          string
		CommandSections string
	}{
		Prefix:          prefix,
		CommandSections: CommandSections(registry, prefix),
	}
	return t.Execute(w, data)
}

// UpdateReadme rewrites outPath from the template at tmplPath.
func UpdateReadme(registry *cmd.Registry, prefix, tmplPath, outPath string) error {
	tmpl, err := os.ReadFile(tmplPath)
	if err != nil {
		return err
	}
	var out bytes.Buffer
	if err := Render(&out, string(tmpl), registry, prefix); err != nil {
		return err
	}
	return os.WriteFile(outPath, out.Bytes(), 0o644)
}
