package llm

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Prompt names in the embedded catalogue.
const (
	PromptTranscriptToDiagram  = "transcript_to_diagram"
	PromptScreenshotsToDiagram = "screenshots_to_diagram"
	PromptEditDiagram          = "edit_diagram"
	PromptExtractExamples      = "extract_examples"
)

//go:embed prompts.yaml
var promptCatalogue []byte

// PromptTemplate is a system/user prompt pair with {{name}} placeholders.
type PromptTemplate struct {
	System string `yaml:"system"`
	User   string `yaml:"user"`
}

var (
	promptsOnce sync.Once
	prompts     map[string]PromptTemplate
	promptsErr  error
)

// LoadPrompt returns the named template from the embedded catalogue.
func LoadPrompt(name string) (PromptTemplate, error) {
	promptsOnce.Do(func() {
		prompts, promptsErr = parsePrompts(promptCatalogue)
	})
	if promptsErr != nil {
		return PromptTemplate{}, promptsErr
	}
	tmpl, ok := prompts[name]
	if !ok {
		return PromptTemplate{}, fmt.Errorf("unknown prompt %q", name)
	}
	return tmpl, nil
}

func parsePrompts(raw []byte) (map[string]PromptTemplate, error) {
	out := map[string]PromptTemplate{}
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("parse prompt catalogue: %w", err)
	}
	for name, p := range out {
		if strings.TrimSpace(p.User) == "" {
			return nil, fmt.Errorf("prompt %q has no user template", name)
		}
	}
	return out, nil
}

// Request renders the template into a Request. Unknown placeholders are left untouched.
func (p PromptTemplate) Request(vars map[string]string) Request {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	r := strings.NewReplacer(pairs...)
	return Request{
		System: strings.TrimSpace(r.Replace(p.System)),
		Prompt: strings.TrimSpace(r.Replace(p.User)),
		JSON:   true,
	}
}
