package forms

import (
	"fmt"

	"github.com/angelmondragon/content-console/pkg/enums"
)

// FieldKind tells the browser how to render a field.
type FieldKind string

const (
	FieldText      FieldKind = "text"
	FieldMultiline FieldKind = "multiline"
	FieldSelect    FieldKind = "select"
	FieldAsset     FieldKind = "asset"
	FieldAssetList FieldKind = "assetList"
	FieldPairList  FieldKind = "pairList"
)

// Cardinality is how many asset slots a form holds.
type Cardinality int

const (
	CardinalityNone Cardinality = iota
	CardinalitySingle
	CardinalityMultiple
)

func (c Cardinality) String() string {
	switch c {
	case CardinalitySingle:
		return "single"
	case CardinalityMultiple:
		return "multiple"
	default:
		return "none"
	}
}

// Field describes one input of a form.
type Field struct {
	Name     string    `json:"name"`
	Label    string    `json:"label"`
	Kind     FieldKind `json:"kind"`
	Required bool      `json:"required"`
	// Options restricts select and pairList values; empty means free text.
	Options []string `json:"options,omitempty"`
}

func (f Field) isText() bool {
	return f.Kind == FieldText || f.Kind == FieldMultiline || f.Kind == FieldSelect
}

// Definition binds a record type to its form schema.
type Definition[T any] struct {
	Resource enums.Resource
	// Noun names one record in notices, e.g. "employee".
	Noun   string
	Fields []Field
	// Hydrate copies an existing record into a draft with Resolved asset slots.
	Hydrate func(record T) Draft
	// Assemble builds the record from a draft whose asset slots are all resolved.
	Assemble func(draft Draft) T
}

// Validate checks the definition is internally consistent.
func (d Definition[T]) Validate() error {
	if !d.Resource.IsValid() {
		return fmt.Errorf("invalid resource %q", d.Resource)
	}
	if d.Hydrate == nil || d.Assemble == nil {
		return fmt.Errorf("%s definition needs hydrate and assemble bindings", d.Resource)
	}
	seen := map[string]bool{}
	assetFields := 0
	for _, f := range d.Fields {
		if f.Name == "" {
			return fmt.Errorf("%s definition has an unnamed field", d.Resource)
		}
		if seen[f.Name] {
			return fmt.Errorf("%s definition repeats field %q", d.Resource, f.Name)
		}
		seen[f.Name] = true
		if f.Kind == FieldAsset || f.Kind == FieldAssetList {
			assetFields++
		}
	}
	if assetFields > 1 {
		return fmt.Errorf("%s definition declares more than one asset field", d.Resource)
	}
	if assetFields == 1 && d.Resource.AssetNamespace() == "" {
		return fmt.Errorf("%s has no asset namespace", d.Resource)
	}
	return nil
}

// Cardinality derives the asset cardinality from the asset field kind.
func (d Definition[T]) Cardinality() Cardinality {
	for _, f := range d.Fields {
		switch f.Kind {
		case FieldAsset:
			return CardinalitySingle
		case FieldAssetList:
			return CardinalityMultiple
		}
	}
	return CardinalityNone
}

func (d Definition[T]) field(kind FieldKind) (Field, bool) {
	for _, f := range d.Fields {
		if f.Kind == kind {
			return f, true
		}
	}
	return Field{}, false
}

func (d Definition[T]) textField(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name && f.isText() {
			return f, true
		}
	}
	return Field{}, false
}
