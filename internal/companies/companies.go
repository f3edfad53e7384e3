// Package companies loads valuation inputs from YAML or JSON files.
//
// A file holds either one company or a list:
//
//	companies:
//	  - id: acme
//	    input: {name: Acme, sector: Technology, revenue: 5000000, ...}
//
// A single company may be written as {id, input} or as the bare input
// fields. The id defaults to a slug of the company name. Every input field
// is required; missing or unknown fields fail with a *valuation.ValidationError.
package companies

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"unicode"

	"gopkg.in/yaml.v2"

	"github.com/seenimoa/fairvalue/internal/valuation"
	"github.com/seenimoa/fairvalue/pkg/models"
)

// ErrEmpty is returned for a document that names no company.
var ErrEmpty = errors.New("no companies in document")

// Company is one identified valuation input.
type Company struct {
	ID    string                `yaml:"id"    json:"id"`
	Input models.ValuationInput `yaml:"input" json:"input"`
}

type document struct {
	Companies []entry                `yaml:"companies"`
	ID        string                 `yaml:"id"`
	Input     map[string]interface{} `yaml:"input"`
}

type entry struct {
	ID    string                 `yaml:"id"`
	Input map[string]interface{} `yaml:"input"`
}

// inputKeys are the yaml keys of every models.ValuationInput field.
var inputKeys = func() []string {
	t := reflect.TypeOf(models.ValuationInput{})
	keys := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("yaml"), ",")
		if name != "" && name != "-" {
			keys = append(keys, name)
		}
	}
	return keys
}()

// Load reads companies from a file.
func Load(path string) ([]Company, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open company file: %w", err)
	}
	defer f.Close()

	list, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return list, nil
}

// Decode reads companies from r. IDs must be unique within a document.
func Decode(r io.Reader) ([]Company, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read company document: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmpty
	}

	var top map[string]interface{}
	if err := yaml.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("parse company document: %w", err)
	}
	if len(top) == 0 {
		return nil, ErrEmpty
	}

	var list []Company
	_, hasList := top["companies"]
	_, hasInput := top["input"]
	if !hasList && !hasInput {
		in, err := decodeInput(top)
		if err != nil {
			return nil, fmt.Errorf("company input: %w", err)
		}
		list = append(list, Company{Input: in})
	} else {
		var doc document
		if err := yaml.UnmarshalStrict(data, &doc); err != nil {
			return nil, fmt.Errorf("parse company document: %w", err)
		}
		if hasInput {
			doc.Companies = append(doc.Companies, entry{ID: doc.ID, Input: doc.Input})
		}
		if len(doc.Companies) == 0 {
			return nil, ErrEmpty
		}
		for i, e := range doc.Companies {
			if e.Input == nil {
				return nil, fmt.Errorf("company %d: missing input", i+1)
			}
			in, err := decodeInput(e.Input)
			if err != nil {
				return nil, fmt.Errorf("company %d: %w", i+1, err)
			}
			list = append(list, Company{ID: e.ID, Input: in})
		}
	}

	seen := make(map[string]int, len(list))
	for i := range list {
		if list[i].ID == "" {
			list[i].ID = Slug(list[i].Input.Name)
		}
		if list[i].ID == "" {
			list[i].ID = fmt.Sprintf("company-%d", i+1)
		}
		if prev, ok := seen[list[i].ID]; ok {
			return nil, fmt.Errorf("duplicate company id %q (entries %d and %d)", list[i].ID, prev+1, i+1)
		}
		seen[list[i].ID] = i
	}
	return list, nil
}

// decodeInput requires every input key exactly once and rejects unknown
// keys, so a misspelt field never values as zero.
func decodeInput(raw map[string]interface{}) (models.ValuationInput, error) {
	fields := make(map[string]string)
	known := make(map[string]bool, len(inputKeys))
	for _, k := range inputKeys {
		known[k] = true
		if v, ok := raw[k]; !ok || v == nil {
			fields[k] = "is required"
		}
	}
	for k := range raw {
		if !known[k] {
			fields[k] = "unknown field"
		}
	}
	if len(fields) > 0 {
		return models.ValuationInput{}, &valuation.ValidationError{Fields: fields}
	}

	data, err := yaml.Marshal(raw)
	if err != nil {
		return models.ValuationInput{}, fmt.Errorf("encode company input: %w", err)
	}
	var in models.ValuationInput
	if err := yaml.UnmarshalStrict(data, &in); err != nil {
		return models.ValuationInput{}, fmt.Errorf("parse company input: %w", err)
	}
	return in, nil
}

// Slug lower-cases name and joins its letter and digit runs with hyphens.
func Slug(name string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			pendingDash = false
			continue
		}
		pendingDash = true
	}
	return b.String()
}
