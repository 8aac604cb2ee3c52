package enums

import "fmt"

// Resource names a collection exposed by the site API.
type Resource string

const (
	ResourceProjects     Resource = "projects"
	ResourceServices     Resource = "services"
	ResourceEmployees    Resource = "employees"
	ResourceTestimonials Resource = "testimonials"
	ResourceContacts     Resource = "contacts"
	ResourceQuotes       Resource = "quote"
)

var validResources = []Resource{
	ResourceProjects,
	ResourceServices,
	ResourceEmployees,
	ResourceTestimonials,
	ResourceContacts,
	ResourceQuotes,
}

// String returns the literal path segment for the resource.
func (r Resource) String() string {
	return string(r)
}

// IsValid reports whether the resource is known.
func (r Resource) IsValid() bool {
	for _, candidate := range validResources {
		if candidate == r {
			return true
		}
	}
	return false
}

// AssetNamespace returns the object-store key prefix for images owned by the resource.
// Resources without images return an empty namespace.
func (r Resource) AssetNamespace() string {
	switch r {
	case ResourceProjects, ResourceServices, ResourceEmployees, ResourceTestimonials:
		return string(r)
	}
	return ""
}

// ParseResource converts raw input into a Resource.
func ParseResource(value string) (Resource, error) {
	for _, candidate := range validResources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid resource %q", value)
}

// Resources returns every known resource in display order.
func Resources() []Resource {
	out := make([]Resource, len(validResources))
	copy(out, validResources)
	return out
}
