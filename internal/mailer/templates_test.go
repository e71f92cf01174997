package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderAppointmentReminder(t *testing.T) {
	out, err := Render("appointment-reminder", map[string]string{
		"PatientName":      "Ana Souza",
		"ProfessionalName": "Dr. Lima",
		"Date":             "2025-03-10",
		"Time":             "09:30:00",
	})
	require.NoError(t, err)

	assert.Equal(t, "Reminder: appointment with Dr. Lima", out.Subject)
	assert.Contains(t, out.Text, "Ana Souza")
	assert.Contains(t, out.Text, "2025-03-10 at 09:30:00")
	assert.Contains(t, out.HTML, "<strong>Dr. Lima</strong>")
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, err := Render("no-such-template", nil)
	assert.Error(t, err)
}

func TestRenderMissingVariable(t *testing.T) {
	_, err := Render("appointment-reminder", map[string]string{"PatientName": "Ana"})
	assert.Error(t, err)
}
