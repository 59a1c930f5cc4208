package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/mattn/go-isatty"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"tether/internal/config"
	"tether/internal/remote"
	"tether/internal/syncer"
)

func buildExecutors(cfg *config.Config) (syncer.ExecutorSet, error) {
	client, err := remote.NewClient(cfg, nil)
	if err != nil {
		return nil, fmt.Errorf("build remote client: %w", err)
	}
	return client.Executors(cfg), nil
}

// displayLabel picks the configured label for a mutation type, falling back
// to a title-cased rendering of the camelCase type name.
func displayLabel(cfg *config.Config, mutationType string) string {
	if decl, ok := cfg.MutationByType(mutationType); ok && strings.TrimSpace(decl.Label) != "" {
		return decl.Label
	}
	return titleCaser.String(splitCamelCase(mutationType))
}

var titleCaser = cases.Title(language.English)

func splitCamelCase(value string) string {
	var b strings.Builder
	b.Grow(len(value) + 4)
	for i, r := range value {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}

func parsePayload(raw string) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	if !json.Valid([]byte(trimmed)) {
		return nil, fmt.Errorf("payload is not valid JSON: %s", trimmed)
	}
	return json.RawMessage(trimmed), nil
}

func stdoutIsTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}
