package content

import (
	"encoding/json"
	"testing"

	"github.com/angelmondragon/content-console/internal/forms"
)

func TestDefinitionsAreConsistent(t *testing.T) {
	if err := ProjectDefinition().Validate(); err != nil {
		t.Fatalf("project: %v", err)
	}
	if err := ServiceDefinition().Validate(); err != nil {
		t.Fatalf("service: %v", err)
	}
	if err := EmployeeDefinition().Validate(); err != nil {
		t.Fatalf("employee: %v", err)
	}
	if err := TestimonialDefinition().Validate(); err != nil {
		t.Fatalf("testimonial: %v", err)
	}
}

func TestCardinalities(t *testing.T) {
	if got := ProjectDefinition().Cardinality(); got != forms.CardinalityMultiple {
		t.Fatalf("project cardinality %s", got)
	}
	if got := ServiceDefinition().Cardinality(); got != forms.CardinalitySingle {
		t.Fatalf("service cardinality %s", got)
	}
}

func TestEmployeeHydrateAssembleRoundTrip(t *testing.T) {
	def := EmployeeDefinition()
	in := Employee{
		ID:          "e1",
		Name:        "Alice Green",
		JobTitle:    "Project Manager",
		Description: "Oversees solar projects",
		Image:       "https://cdn.test/employees/1",
		SocialMedia: []SocialLink{{Platform: "GitHub", Link: "https://github.com/alice"}},
	}
	draft := def.Hydrate(in)
	if !draft.IsEdit() || len(draft.Assets) != 1 || len(draft.Pairs) != 1 {
		t.Fatalf("unexpected draft %+v", draft)
	}
	out := def.Assemble(draft)
	if out.Image != in.Image || out.SocialMedia[0] != in.SocialMedia[0] || out.Name != in.Name {
		t.Fatalf("unexpected record %+v", out)
	}
}

func TestEmptyImageHydratesToNoSlot(t *testing.T) {
	draft := ServiceDefinition().Hydrate(Service{ID: "s1", Service: "Solar"})
	if len(draft.Assets) != 0 {
		t.Fatalf("expected no slots, got %d", len(draft.Assets))
	}
	if got := ServiceDefinition().Assemble(draft).Image; got != "" {
		t.Fatalf("expected empty image, got %q", got)
	}
}

func TestCreateBodyOmitsID(t *testing.T) {
	raw, err := json.Marshal(ProjectDefinition().Assemble(forms.Draft{Text: map[string]string{"title": "Harbor"}}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := body["_id"]; ok {
		t.Fatalf("create body must not carry _id: %s", raw)
	}
	if images, ok := body["images"].([]any); !ok || len(images) != 0 {
		t.Fatalf("expected empty images array, got %v", body["images"])
	}
}

func TestEditBodyCarriesOnlyEditableFields(t *testing.T) {
	def := EmployeeDefinition()
	draft := def.Hydrate(Employee{ID: "e1", Name: "Ada", JobTitle: "Lead", Image: "https://cdn/ada.webp"})
	if draft.ID != "e1" {
		t.Fatalf("expected draft to keep record id, got %q", draft.ID)
	}

	raw, err := json.Marshal(def.Assemble(draft))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := body["_id"]; ok {
		t.Fatalf("update body must not carry _id: %s", raw)
	}
	if body["name"] != "Ada" || body["image"] != "https://cdn/ada.webp" {
		t.Fatalf("unexpected update body %s", raw)
	}
	if got := WithEmployeeID(def.Assemble(draft), draft.ID).RecordID(); got != "e1" {
		t.Fatalf("expected id reapplied after submit, got %q", got)
	}
}
