package mailer

import (
	"fmt"
	"strings"
	"text/template"
)

// Rendered is a template instantiated with its variables.
type Rendered struct {
	Subject string
	Text    string
	HTML    string
}

type templateDef struct {
	subject string
	text    string
	html    string
}

// The template registry. Bodies stay deliberately plain; clinics see these
// in transactional mail only.
var templates = map[string]templateDef{
	"appointment-reminder": {
		subject: "Reminder: appointment with {{.ProfessionalName}}",
		text: "Upcoming appointment: {{.PatientName}} with {{.ProfessionalName}} " +
			"on {{.Date}} at {{.Time}}.",
		html: "<p>Upcoming appointment: <strong>{{.PatientName}}</strong> with " +
			"<strong>{{.ProfessionalName}}</strong> on {{.Date}} at {{.Time}}.</p>",
	},
	"welcome-patient": {
		subject: "Welcome, {{.PatientName}}",
		text:    "Hi {{.PatientName}}, your patient record at {{.ClinicName}} is ready.",
		html:    "<p>Hi <strong>{{.PatientName}}</strong>, your patient record at {{.ClinicName}} is ready.</p>",
	},
}

// Render instantiates a named template with vars.
func Render(name string, vars map[string]string) (*Rendered, error) {
	def, ok := templates[name]
	if !ok {
		return nil, fmt.Errorf("unknown mail template %q", name)
	}

	out := &Rendered{}
	for _, part := range []struct {
		src string
		dst *string
	}{
		{def.subject, &out.Subject},
		{def.text, &out.Text},
		{def.html, &out.HTML},
	} {
		tmpl, err := template.New(name).Option("missingkey=error").Parse(part.src)
		if err != nil {
			return nil, fmt.Errorf("parse template %q: %w", name, err)
		}
		var sb strings.Builder
		if err := tmpl.Execute(&sb, vars); err != nil {
			return nil, fmt.Errorf("render template %q: %w", name, err)
		}
		*part.dst = sb.String()
	}

	return out, nil
}
