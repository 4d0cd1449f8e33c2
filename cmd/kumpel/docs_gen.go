package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/dotsetgreg/kumpel/pkg/config"
	"github.com/dotsetgreg/kumpel/pkg/providers"
	"github.com/spf13/cobra"
	cobraDoc "github.com/spf13/cobra/doc"
)

// newDocsCmd wires the hidden maintenance command that regenerates the
// reference docs under docs/. The factory builds a fresh command tree without
// the docs command itself, so the generated pages never mention it.
func newDocsCmd(newRoot func() *cobra.Command) *cobra.Command {
	var (
		outputDir string
		checkOnly bool
	)

	gen := &cobra.Command{
		Use:   "generate",
		Short: "Regenerate CLI, config, and provider reference docs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(outputDir) == "" {
				return fmt.Errorf("--output must not be empty")
			}
			rendered, err := renderReferenceDocs(newRoot)
			if err != nil {
				return err
			}
			if checkOnly {
				return verifyRenderedDocs(outputDir, rendered)
			}
			return writeRenderedDocs(outputDir, rendered)
		},
	}
	gen.Flags().StringVar(&outputDir, "output", "docs", "Docs directory root")
	gen.Flags().BoolVar(&checkOnly, "check", false, "Fail if generated docs are out of date")

	docs := &cobra.Command{
		Use:    "docs",
		Short:  "Internal docs maintenance commands",
		Hidden: true,
	}
	docs.AddCommand(gen)
	return docs
}

// renderReferenceDocs produces every generated doc file, keyed by path
// relative to the docs root.
func renderReferenceDocs(newRoot func() *cobra.Command) (map[string][]byte, error) {
	cliRoot := newRoot()
	disableAutoGenTags(cliRoot)

	// cobra's doc generators only write into a directory, so render into a
	// scratch dir and read the results back.
	scratch, err := os.MkdirTemp("", "kumpel-docs-*")
	if err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(scratch)

	cliDir := filepath.Join(scratch, "reference", "cli")
	if err := os.MkdirAll(cliDir, 0o755); err != nil {
		return nil, err
	}
	heading := func(filename string) string {
		base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
		return "# " + strings.ReplaceAll(base, "_", " ") + "\n\n"
	}
	sameLink := func(name string) string { return name }
	if err := cobraDoc.GenMarkdownTreeCustom(cliRoot, cliDir, heading, sameLink); err != nil {
		return nil, fmt.Errorf("render cli pages: %w", err)
	}

	manDir := filepath.Join(scratch, "reference", "man")
	if err := os.MkdirAll(manDir, 0o755); err != nil {
		return nil, err
	}
	manHeader := &cobraDoc.GenManHeader{Title: "KUMPEL", Section: "1", Source: "kumpel"}
	if err := cobraDoc.GenManTree(cliRoot, manHeader, manDir); err != nil {
		return nil, fmt.Errorf("render man pages: %w", err)
	}

	rendered := map[string][]byte{}
	err = filepath.WalkDir(scratch, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() {
			return walkErr
		}
		rel, relErr := filepath.Rel(scratch, path)
		if relErr != nil {
			return relErr
		}
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return readErr
		}
		rendered[rel] = data
		return nil
	})
	if err != nil {
		return nil, err
	}

	rendered[filepath.Join("reference", "config.md")] = []byte(renderConfigReference())
	rendered[filepath.Join("reference", "providers.md")] = []byte(renderProviderReference())
	return rendered, nil
}

func disableAutoGenTags(root *cobra.Command) {
	pending := []*cobra.Command{root}
	for len(pending) > 0 {
		cmd := pending[0]
		pending = pending[1:]
		cmd.DisableAutoGenTag = true
		pending = append(pending, cmd.Commands()...)
	}
}

func writeRenderedDocs(outputDir string, rendered map[string][]byte) error {
	// Wipe the generated subtrees first so pages for removed commands do
	// not linger.
	for _, sub := range []string{filepath.Join("reference", "cli"), filepath.Join("reference", "man")} {
		if err := os.RemoveAll(filepath.Join(outputDir, sub)); err != nil {
			return err
		}
	}
	for rel, data := range rendered {
		target := filepath.Join(outputDir, rel)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("write %s: %w", rel, err)
		}
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", rel, err)
		}
	}
	return nil
}

// verifyRenderedDocs compares freshly rendered docs against what is checked
// in under outputDir without writing anything.
func verifyRenderedDocs(outputDir string, rendered map[string][]byte) error {
	rels := make([]string, 0, len(rendered))
	for rel := range rendered {
		rels = append(rels, rel)
	}
	sort.Strings(rels)

	for _, rel := range rels {
		onDisk, err := os.ReadFile(filepath.Join(outputDir, rel))
		if err != nil {
			return fmt.Errorf("docs are stale: %s is missing; run `kumpel docs generate`", rel)
		}
		if !bytes.Equal(onDisk, rendered[rel]) {
			return fmt.Errorf("docs are stale: %s differs; run `kumpel docs generate`", rel)
		}
	}

	// Anything under the generated subtrees that was not rendered this run
	// belongs to a removed command.
	for _, sub := range []string{filepath.Join("reference", "cli"), filepath.Join("reference", "man")} {
		err := filepath.WalkDir(filepath.Join(outputDir, sub), func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil || d.IsDir() {
				return walkErr
			}
			rel, relErr := filepath.Rel(outputDir, path)
			if relErr != nil {
				return relErr
			}
			if _, ok := rendered[rel]; !ok {
				return fmt.Errorf("docs are stale: %s has no source command; run `kumpel docs generate`", rel)
			}
			return nil
		})
		if err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

type configDocEntry struct {
	Key     string
	Type    string
	Env     string
	Default string
}

func renderConfigReference() string {
	entries := collectConfigDocs(reflect.ValueOf(config.DefaultConfig()).Elem(), "")
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })

	var b strings.Builder
	b.WriteString("# Config Reference\n\n")
	b.WriteString("Generated from `pkg/config/config.go` and `config.DefaultConfig()`.\n\n")
	writeDocTable(&b, entries)
	return b.String()
}

// collectConfigDocs walks a config struct value and returns one row per leaf
// field. Defaults come straight from the value, so the table always matches
// DefaultConfig.
func collectConfigDocs(v reflect.Value, prefix string) []configDocEntry {
	var entries []configDocEntry
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		key := name
		if prefix != "" {
			key = prefix + "." + name
		}
		value := v.Field(i)
		if value.Kind() == reflect.Struct {
			entries = append(entries, collectConfigDocs(value, key)...)
			continue
		}
		entries = append(entries, configDocEntry{
			Key:     key,
			Type:    typeLabel(field.Type),
			Env:     field.Tag.Get("env"),
			Default: jsonLabel(value),
		})
	}
	return entries
}

func typeLabel(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "bool"
	case reflect.Int, reflect.Int64:
		return "int"
	case reflect.Float64:
		return "float"
	case reflect.Slice:
		return "array<" + typeLabel(t.Elem()) + ">"
	default:
		return t.String()
	}
}

func jsonLabel(v reflect.Value) string {
	data, err := json.Marshal(v.Interface())
	if err != nil {
		return ""
	}
	return string(data)
}

func writeDocTable(b *strings.Builder, entries []configDocEntry) {
	b.WriteString("| Key | Type | Env Var | Default |\n")
	b.WriteString("| --- | --- | --- | --- |\n")
	for _, e := range entries {
		fmt.Fprintf(b, "| `%s` | `%s` | `%s` | `%s` |\n",
			mdCell(e.Key), mdCell(e.Type), mdCell(orDash(e.Env)), mdCell(orDash(e.Default)))
	}
}

func mdCell(v string) string {
	return strings.ReplaceAll(v, "|", "\\|")
}

func orDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}

// providerDocNotes carries the hand-written half of the provider reference,
// keyed by the json tag in ProvidersConfig.
var providerDocNotes = map[string]struct {
	Summary string
	Auth    string
}{
	"openrouter": {
		Summary: "OpenRouter chat completions provider.",
		Auth:    "Requires `api_key`.",
	},
	"openai": {
		Summary: "OpenAI Platform provider (chat completions API).",
		Auth:    "Requires exactly one credential source: `api_key` OR `oauth_access_token` OR `oauth_token_file`.",
	},
}

func renderProviderReference() string {
	var b strings.Builder
	b.WriteString("# Provider Reference\n\n")
	b.WriteString("Generated from provider factories and config structs.\n\n")
	b.WriteString("## Supported Providers\n\n")

	supported := providers.SupportedProviders()
	sort.Strings(supported)
	for _, name := range supported {
		b.WriteString("- `" + name + "`\n")
	}

	providerDefaults := reflect.ValueOf(config.DefaultConfig()).Elem().FieldByName("Providers")
	t := providerDefaults.Type()
	for i := 0; i < t.NumField(); i++ {
		key, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if key == "" || key == "-" {
			continue
		}
		notes := providerDocNotes[key]
		confPath := "providers." + key

		b.WriteString("\n## `" + key + "`\n\n")
		if notes.Summary != "" {
			b.WriteString(notes.Summary + "\n\n")
		}
		b.WriteString("- Config path: `" + confPath + "`\n")
		if notes.Auth != "" {
			b.WriteString("- Auth: " + notes.Auth + "\n")
		}
		b.WriteString("\n")

		entries := collectConfigDocs(providerDefaults.Field(i), confPath)
		sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
		writeDocTable(&b, entries)
	}

	return b.String()
}
