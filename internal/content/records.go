package content

import "github.com/angelmondragon/content-console/pkg/enums"

// Project is a portfolio entry with an image gallery.
type Project struct {
	ID          string   `json:"_id,omitempty"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category,omitempty"`
	Images      []string `json:"images"`
}

func (p Project) RecordID() string { return p.ID }

// Service is an offered service with one image.
type Service struct {
	ID              string `json:"_id,omitempty"`
	Service         string `json:"service"`
	Description     string `json:"description"`
	ServiceCategory string `json:"serviceCategory,omitempty"`
	Image           string `json:"image"`
}

func (s Service) RecordID() string { return s.ID }

type SocialLink struct {
	Platform string `json:"platform"`
	Link     string `json:"link"`
}

type Employee struct {
	ID          string       `json:"_id,omitempty"`
	Name        string       `json:"name"`
	JobTitle    string       `json:"jobTitle"`
	Description string       `json:"description"`
	Image       string       `json:"image"`
	SocialMedia []SocialLink `json:"socialMedia"`
}

func (e Employee) RecordID() string { return e.ID }

type Testimonial struct {
	ID         string `json:"_id,omitempty"`
	Name       string `json:"name"`
	Profession string `json:"profession"`
	Text       string `json:"text"`
	Image      string `json:"image"`
}

func (t Testimonial) RecordID() string { return t.ID }

// Contact is an inbound contact request. It is never created from the console.
type Contact struct {
	ID      string              `json:"_id,omitempty"`
	Name    string              `json:"name"`
	Email   string              `json:"email"`
	Subject string              `json:"subject"`
	Message string              `json:"message"`
	Status  enums.ContactStatus `json:"status"`
}

func (c Contact) RecordID() string { return c.ID }

// Quote is an inbound quote request.
type Quote struct {
	ID      string            `json:"_id,omitempty"`
	Name    string            `json:"name"`
	Email   string            `json:"email"`
	Service string            `json:"service"`
	Status  enums.QuoteStatus `json:"status"`
	Flagged bool              `json:"flagged,omitempty"`
}

func (q Quote) RecordID() string { return q.ID }

// The With*ID helpers apply an identifier when the collaborator answers without a body.

func WithProjectID(p Project, id string) Project             { p.ID = id; return p }
func WithServiceID(s Service, id string) Service             { s.ID = id; return s }
func WithEmployeeID(e Employee, id string) Employee          { e.ID = id; return e }
func WithTestimonialID(t Testimonial, id string) Testimonial { t.ID = id; return t }
