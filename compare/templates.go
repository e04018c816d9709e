package compare

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"
	"github.com/gosimple/slug"

	"cssdiff/config"
)

// NameValues holds variables available for report name template expansion.
type NameValues struct {
	Long      string // slugged name of LONG stylesheet without extension
	Short     string // slugged name of SHORT stylesheet without extension
	LongFile  string // base name of LONG stylesheet as given
	ShortFile string // base name of SHORT stylesheet as given
	Format    string
	Ext       string
}

// ReportFileName expands report name template, used when destination is a
// directory.
func ReportFileName(field, longSrc, shortSrc string, format config.ReportFormat) (string, error) {
	tmpl, err := template.New(string(config.NameTemplateFieldName)).Funcs(sprig.FuncMap()).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", config.NameTemplateFieldName, err)
	}

	ext := ".txt"
	if format == config.ReportFormatYaml {
		ext = ".yaml"
	}
	values := NameValues{
		Long:      stem(longSrc),
		Short:     stem(shortSrc),
		LongFile:  filepath.Base(filepath.FromSlash(longSrc)),
		ShortFile: filepath.Base(filepath.FromSlash(shortSrc)),
		Format:    format.String(),
		Ext:       ext,
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", fmt.Errorf("unable to expand template field %s: %w", config.NameTemplateFieldName, err)
	}
	name := strings.TrimSpace(buf.String())
	if len(name) == 0 || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("template field %s produced unusable file name '%s'", config.NameTemplateFieldName, name)
	}
	return name, nil
}

func stem(src string) string {
	name := filepath.Base(filepath.FromSlash(src))
	if s := slug.Make(strings.TrimSuffix(name, filepath.Ext(name))); len(s) > 0 {
		return s
	}
	return "stylesheet"
}
