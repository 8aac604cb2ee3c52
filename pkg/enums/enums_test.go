package enums

import "testing"

func TestParseResource(t *testing.T) {
	got, err := ParseResource("quote")
	if err != nil || got != ResourceQuotes {
		t.Fatalf("expected quote resource, got %q err=%v", got, err)
	}
	if _, err := ParseResource("quotes"); err == nil {
		t.Fatal("expected unknown resource to fail")
	}
}

func TestAssetNamespace(t *testing.T) {
	cases := map[Resource]string{
		ResourceEmployees:    "employees",
		ResourceProjects:     "projects",
		ResourceServices:     "services",
		ResourceTestimonials: "testimonials",
		ResourceContacts:     "",
		ResourceQuotes:       "",
	}
	for resource, want := range cases {
		if got := resource.AssetNamespace(); got != want {
			t.Fatalf("%s: expected namespace %q got %q", resource, want, got)
		}
	}
}

func TestStatusVocabulariesDiffer(t *testing.T) {
	if _, err := ParseContactStatus("complete"); err != nil {
		t.Fatalf("contact complete should parse: %v", err)
	}
	if _, err := ParseContactStatus("completed"); err == nil {
		t.Fatal("contact status must not accept completed")
	}
	if _, err := ParseQuoteStatus("completed"); err != nil {
		t.Fatalf("quote completed should parse: %v", err)
	}
	if _, err := ParseQuoteStatus("complete"); err == nil {
		t.Fatal("quote status must not accept complete")
	}
}

func TestSocialPlatforms(t *testing.T) {
	if len(SocialPlatformOptions()) != 5 {
		t.Fatalf("unexpected platform options %v", SocialPlatformOptions())
	}
	if _, err := ParseSocialPlatform("linkedin"); err == nil {
		t.Fatal("platform parsing is case sensitive")
	}
}
