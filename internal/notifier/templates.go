package notifier

import (
	_ "embed"
	"fmt"
	"homeservice-booking/internal/model"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var defaultTemplates []byte

// Message is the text of one template for one audience
type Message struct {
	Title   string `yaml:"title"`
	Message string `yaml:"message"`
}

// Template is the closed set of texts for one notification type
type Template struct {
	Category  string         `yaml:"category"`
	Priority  model.Priority `yaml:"priority"`
	ActionURL string         `yaml:"action_url"`
	Customer  *Message       `yaml:"customer"`
	Worker    *Message       `yaml:"worker"`
}

// Rendered is a template filled in for a single recipient
type Rendered struct {
	Title     string
	Message   string
	Category  string
	Priority  model.Priority
	ActionURL string
}

// Templates maps notification types to their texts
type Templates struct {
	byType map[model.NotificationType]Template
}

// DefaultTemplates parses the embedded template table
func DefaultTemplates() (*Templates, error) {
	return ParseTemplates(defaultTemplates)
}

// ParseTemplates parses a YAML template table. Every entry needs customer text.
func ParseTemplates(data []byte) (*Templates, error) {
	var raw map[model.NotificationType]Template
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	for typ, tpl := range raw {
		if tpl.Customer == nil {
			return nil, fmt.Errorf("template %s: missing customer text", typ)
		}
		if tpl.Priority == "" {
			tpl.Priority = model.PriorityMedium
			raw[typ] = tpl
		}
	}
	return &Templates{byType: raw}, nil
}

// Render fills the template for event as seen by role.
// Workers fall back to the customer text when no worker text is defined.
func (t *Templates) Render(event model.Event, role model.Role) (Rendered, error) {
	tpl, ok := t.byType[event.Type]
	if !ok {
		return Rendered{}, fmt.Errorf("no template for %s", event.Type)
	}

	msg := tpl.Customer
	if role == model.RoleWorker && tpl.Worker != nil {
		msg = tpl.Worker
	}

	r := placeholders(event)
	return Rendered{
		Title:     r.Replace(msg.Title),
		Message:   r.Replace(msg.Message),
		Category:  tpl.Category,
		Priority:  tpl.Priority,
		ActionURL: r.Replace(tpl.ActionURL),
	}, nil
}

func placeholders(event model.Event) *strings.Replacer {
	b := event.Booking
	reason := event.Reason
	if reason == "" {
		reason = "not given"
	}
	return strings.NewReplacer(
		"{bookingId}", b.ID,
		"{date}", b.BookingDate.Format(model.DateLayout),
		"{slot}", b.ScheduledTimeSlot.String(),
		"{status}", strings.ReplaceAll(string(b.Status), "-", " "),
		"{amount}", strconv.FormatFloat(b.TotalAmount, 'f', 2, 64),
		"{reason}", reason,
	)
}
