package content

import (
	"github.com/angelmondragon/content-console/internal/assets"
	"github.com/angelmondragon/content-console/internal/forms"
	"github.com/angelmondragon/content-console/pkg/enums"
)

func resolved(urls ...string) []assets.Reference {
	var refs []assets.Reference
	for _, u := range urls {
		if u != "" {
			refs = append(refs, assets.Resolved(u))
		}
	}
	return refs
}

func ProjectDefinition() forms.Definition[Project] {
	return forms.Definition[Project]{
		Resource: enums.ResourceProjects,
		Noun:     "project",
		Fields: []forms.Field{
			{Name: "title", Label: "Title", Kind: forms.FieldText, Required: true},
			{Name: "description", Label: "Description", Kind: forms.FieldMultiline, Required: true},
			{Name: "category", Label: "Category", Kind: forms.FieldSelect},
			{Name: "images", Label: "Images", Kind: forms.FieldAssetList},
		},
		Hydrate: func(p Project) forms.Draft {
			return forms.Draft{
				ID:     p.ID,
				Text:   map[string]string{"title": p.Title, "description": p.Description, "category": p.Category},
				Assets: resolved(p.Images...),
			}
		},
		Assemble: func(d forms.Draft) Project {
			images := d.URLs()
			if images == nil {
				images = []string{}
			}
			return Project{
				Title:       d.Text["title"],
				Description: d.Text["description"],
				Category:    d.Text["category"],
				Images:      images,
			}
		},
	}
}

func ServiceDefinition() forms.Definition[Service] {
	return forms.Definition[Service]{
		Resource: enums.ResourceServices,
		Noun:     "service",
		Fields: []forms.Field{
			{Name: "service", Label: "Service", Kind: forms.FieldText, Required: true},
			{Name: "description", Label: "Description", Kind: forms.FieldMultiline, Required: true},
			{Name: "serviceCategory", Label: "Category", Kind: forms.FieldSelect},
			{Name: "image", Label: "Image", Kind: forms.FieldAsset},
		},
		Hydrate: func(s Service) forms.Draft {
			return forms.Draft{
				ID:     s.ID,
				Text:   map[string]string{"service": s.Service, "description": s.Description, "serviceCategory": s.ServiceCategory},
				Assets: resolved(s.Image),
			}
		},
		Assemble: func(d forms.Draft) Service {
			return Service{
				Service:         d.Text["service"],
				Description:     d.Text["description"],
				ServiceCategory: d.Text["serviceCategory"],
				Image:           d.URL(),
			}
		},
	}
}

func EmployeeDefinition() forms.Definition[Employee] {
	return forms.Definition[Employee]{
		Resource: enums.ResourceEmployees,
		Noun:     "employee",
		Fields: []forms.Field{
			{Name: "name", Label: "Name", Kind: forms.FieldText, Required: true},
			{Name: "jobTitle", Label: "Job Title", Kind: forms.FieldText, Required: true},
			{Name: "description", Label: "Description", Kind: forms.FieldMultiline, Required: true},
			{Name: "image", Label: "Image", Kind: forms.FieldAsset},
			{Name: "socialMedia", Label: "Social Media", Kind: forms.FieldPairList, Options: enums.SocialPlatformOptions()},
		},
		Hydrate: func(e Employee) forms.Draft {
			d := forms.Draft{
				ID:     e.ID,
				Text:   map[string]string{"name": e.Name, "jobTitle": e.JobTitle, "description": e.Description},
				Assets: resolved(e.Image),
			}
			for _, s := range e.SocialMedia {
				d.Pairs = append(d.Pairs, forms.Pair{Platform: s.Platform, Link: s.Link})
			}
			return d
		},
		Assemble: func(d forms.Draft) Employee {
			social := make([]SocialLink, 0, len(d.Pairs))
			for _, p := range d.Pairs {
				social = append(social, SocialLink{Platform: p.Platform, Link: p.Link})
			}
			return Employee{
				Name:        d.Text["name"],
				JobTitle:    d.Text["jobTitle"],
				Description: d.Text["description"],
				Image:       d.URL(),
				SocialMedia: social,
			}
		},
	}
}

func TestimonialDefinition() forms.Definition[Testimonial] {
	return forms.Definition[Testimonial]{
		Resource: enums.ResourceTestimonials,
		Noun:     "testimonial",
		Fields: []forms.Field{
			{Name: "name", Label: "Name", Kind: forms.FieldText, Required: true},
			{Name: "profession", Label: "Profession", Kind: forms.FieldText, Required: true},
			{Name: "text", Label: "Text", Kind: forms.FieldMultiline, Required: true},
			{Name: "image", Label: "Image", Kind: forms.FieldAsset},
		},
		Hydrate: func(t Testimonial) forms.Draft {
			return forms.Draft{
				ID:     t.ID,
				Text:   map[string]string{"name": t.Name, "profession": t.Profession, "text": t.Text},
				Assets: resolved(t.Image),
			}
		},
		Assemble: func(d forms.Draft) Testimonial {
			return Testimonial{
				Name:       d.Text["name"],
				Profession: d.Text["profession"],
				Text:       d.Text["text"],
				Image:      d.URL(),
			}
		},
	}
}
