package notify

import (
	"fmt"
	"html/template"
	"strings"
	"sync"
	texttemplate "text/template"

	"talent2income_backend/internal/events"
	"talent2income_backend/internal/models"
)

// TemplateData - данные для шаблона письма
type TemplateData struct {
	Recipient *models.User
	Event     events.Event
}

type mailTemplate struct {
	subject *texttemplate.Template
	body    *template.Template
}

// TemplateManager хранит шаблоны писем по имени события
type TemplateManager struct {
	templates map[string]mailTemplate
	mutex     sync.RWMutex
}

func NewTemplateManager() *TemplateManager {
	return &TemplateManager{templates: make(map[string]mailTemplate)}
}

// DefaultTemplates - встроенные шаблоны для событий, о которых пишем на почту
func DefaultTemplates() *TemplateManager {
	tm := NewTemplateManager()
	for name, t := range defaultTemplates {
		if err := tm.AddTemplate(name, t[0], t[1]); err != nil {
			panic(err)
		}
	}
	return tm
}

func (tm *TemplateManager) AddTemplate(name, subject, body string) error {
	st, err := texttemplate.New(name + ":subject").Parse(subject)
	if err != nil {
		return fmt.Errorf("failed to parse subject template %s: %w", name, err)
	}
	bt, err := template.New(name + ":body").Parse(body)
	if err != nil {
		return fmt.Errorf("failed to parse body template %s: %w", name, err)
	}

	tm.mutex.Lock()
	tm.templates[name] = mailTemplate{subject: st, body: bt}
	tm.mutex.Unlock()
	return nil
}

func (tm *TemplateManager) Has(name string) bool {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()
	_, ok := tm.templates[name]
	return ok
}

// Render возвращает тему и HTML-тело письма
func (tm *TemplateManager) Render(name string, data TemplateData) (string, string, error) {
	tm.mutex.RLock()
	t, ok := tm.templates[name]
	tm.mutex.RUnlock()
	if !ok {
		return "", "", fmt.Errorf("template not found: %s", name)
	}

	var subject, body strings.Builder
	if err := t.subject.Execute(&subject, data); err != nil {
		return "", "", fmt.Errorf("failed to execute subject template: %w", err)
	}
	if err := t.body.Execute(&body, data); err != nil {
		return "", "", fmt.Errorf("failed to execute body template: %w", err)
	}
	return strings.TrimSpace(subject.String()), body.String(), nil
}

var defaultTemplates = map[string][2]string{
	events.NameMessageSent: {
		"You have a new message",
		`<p>Hi {{.Recipient.Name}},</p><p>You received a new message:</p><blockquote>{{.Event.Content}}</blockquote>`,
	},
	events.NameJobAssigned: {
		"You were assigned to \"{{.Event.Title}}\"",
		`<p>Hi {{.Recipient.Name}},</p><p>You are now working on job #{{.Event.JobID}} "{{.Event.Title}}".</p>`,
	},
	events.NamePaymentReleased: {
		"Payment #{{.Event.PaymentID}} released",
		`<p>Hi {{.Recipient.Name}},</p><p>Payment of {{printf "%.2f" .Event.Amount}} for job #{{.Event.JobID}} has been released.</p>`,
	},
	events.NamePaymentRefunded: {
		"Payment #{{.Event.PaymentID}} refunded",
		`<p>Hi {{.Recipient.Name}},</p><p>Payment of {{printf "%.2f" .Event.Amount}} for job #{{.Event.JobID}} has been refunded.</p>`,
	},
	events.NameReviewCreated: {
		"You received a {{.Event.Rating}}-star review",
		`<p>Hi {{.Recipient.Name}},</p><p>A new review was left for job #{{.Event.JobID}}: {{.Event.Rating}}/5.</p>`,
	},
	events.NameUserRegistered: {
		"Welcome to Talent2Income",
		`<p>Hi {{.Recipient.Name}},</p><p>Your account has been created. Welcome aboard!</p>`,
	},
}
