/*
Copyright 2026 Apex Labs, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package prompts provides prompt templates with named {{placeholder}}
// bindings. Build fails if any placeholder is left unbound, so a prompt
// can never reach a model with template syntax still in it.
package prompts

import (
	"fmt"
	"maps"
	"regexp"
	"sort"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{\{([a-zA-Z_][a-zA-Z0-9_]*)\}\}`)

// Template is an immutable prompt template. Bind returns a new Template,
// so templates can be shared across goroutines safely.
type Template struct {
	raw    string
	names  map[string]struct{}
	values map[string]string
}

// New parses a template and records its placeholder names.
func New(raw string) (*Template, error) {
	names := make(map[string]struct{})
	for _, m := range placeholderPattern.FindAllStringSubmatch(raw, -1) {
		names[m[1]] = struct{}{}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("template has no placeholders")
	}
	return &Template{raw: raw, names: names, values: map[string]string{}}, nil
}

// MustNew is New for package-level template literals.
func MustNew(raw string) *Template {
	t, err := New(raw)
	if err != nil {
		panic(err)
	}
	return t
}

// Bind returns a copy of the template with the named placeholder bound.
// Binding an unknown or already-bound name is an error.
func (t *Template) Bind(name, value string) (*Template, error) {
	if _, ok := t.names[name]; !ok {
		return nil, fmt.Errorf("unknown placeholder %q", name)
	}
	if _, ok := t.values[name]; ok {
		return nil, fmt.Errorf("placeholder %q already bound", name)
	}
	bound := &Template{
		raw:    t.raw,
		names:  t.names,
		values: maps.Clone(t.values),
	}
	bound.values[name] = value
	return bound, nil
}

// Build substitutes all bindings, failing on any unbound placeholder.
func (t *Template) Build() (string, error) {
	var unbound []string
	for name := range t.names {
		if _, ok := t.values[name]; !ok {
			unbound = append(unbound, name)
		}
	}
	if len(unbound) > 0 {
		sort.Strings(unbound)
		return "", fmt.Errorf("unbound placeholders: %s", strings.Join(unbound, ", "))
	}
	return placeholderPattern.ReplaceAllStringFunc(t.raw, func(m string) string {
		name := placeholderPattern.FindStringSubmatch(m)[1]
		return t.values[name]
	}), nil
}

// Placeholders returns the placeholder names found in the template.
func (t *Template) Placeholders() map[string]struct{} {
	return maps.Clone(t.names)
}
