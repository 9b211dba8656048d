package delivery

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityNeutral Severity = "neutral"
)

// Class is the delivery-time label shown next to a stock row
type Class struct {
	Text     string   `json:"text" yaml:"text"`
	Severity Severity `json:"severity" yaml:"severity"`
}

// Classifier maps a warehouse location and provider to a delivery class
type Classifier interface {
	Classify(location, provider string) Class
}

// ClassifierFunc adapts a plain function to a Classifier
type ClassifierFunc func(location, provider string) Class

func (f ClassifierFunc) Classify(location, provider string) Class {
	return f(location, provider)
}

// Entry is one row of a delivery table. An empty provider matches any.
type Entry struct {
	Location string `yaml:"location"`
	Provider string `yaml:"provider"`
	Class    `yaml:",inline"`
}

type key struct {
	location string
	provider string
}

// Table is a Classifier backed by a static (location, provider) table
type Table struct {
	fallback Class
	classes  map[key]Class
}

// NewTable builds a table. Lookups are case-insensitive.
func NewTable(fallback Class, entries []Entry) *Table {
	t := &Table{
		fallback: fallback,
		classes:  make(map[key]Class, len(entries)),
	}
	for _, e := range entries {
		t.classes[key{normalize(e.Location), normalize(e.Provider)}] = e.Class
	}
	return t
}

// Classify tries (location, provider), then (location, any provider),
// then the table's fallback class.
func (t *Table) Classify(location, provider string) Class {
	loc := normalize(location)
	if c, ok := t.classes[key{loc, normalize(provider)}]; ok {
		return c
	}
	if c, ok := t.classes[key{loc, ""}]; ok {
		return c
	}
	return t.fallback
}

// Len returns the number of entries
func (t *Table) Len() int {
	return len(t.classes)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// DefaultTable is the delivery table used when none is configured
func DefaultTable() *Table {
	return NewTable(Class{Text: "On request", Severity: SeverityNeutral}, []Entry{
		{Location: "In stock", Class: Class{Text: "Today", Severity: SeveritySuccess}},
		{Location: "Highway Warehouse A", Class: Class{Text: "Today", Severity: SeveritySuccess}},
		{Location: "Avenue Warehouse B", Class: Class{Text: "Today", Severity: SeveritySuccess}},
		{Location: "City Center", Class: Class{Text: "Tomorrow", Severity: SeverityInfo}},
		{Location: "On order", Class: Class{Text: "2-3 days", Severity: SeverityInfo}},
		{Location: "On order", Provider: "localvendor", Class: Class{Text: "1-2 days", Severity: SeverityInfo}},
		{Location: "Remote Warehouse", Class: Class{Text: "3-5 days", Severity: SeverityWarning}},
	})
}

type tableFile struct {
	Default Class   `yaml:"default"`
	Entries []Entry `yaml:"entries"`
}

// LoadTable reads a delivery table from a YAML file. A missing file
// yields DefaultTable.
func LoadTable(path string) (*Table, error) {
	if path == "" {
		return DefaultTable(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultTable(), nil
		}
		return nil, fmt.Errorf("failed to read delivery table: %w", err)
	}

	f := tableFile{Default: DefaultTable().fallback}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse delivery table: %w", err)
	}

	return NewTable(f.Default, f.Entries), nil
}
