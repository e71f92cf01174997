package reminder

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicdesk/clinic-scheduling/internal/appointment"
	"github.com/clinicdesk/clinic-scheduling/internal/clinic"
	"github.com/clinicdesk/clinic-scheduling/internal/mailer"
	"github.com/clinicdesk/clinic-scheduling/internal/notification"
)

type fakeAppointments struct {
	candidates []appointment.ReminderCandidate
}

func (f *fakeAppointments) FindRemindable(ctx context.Context, from, to time.Time) ([]appointment.ReminderCandidate, error) {
	var out []appointment.ReminderCandidate
	for _, c := range f.candidates {
		if !c.StartsAt.Before(from) && !c.StartsAt.After(to) {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeNotifications struct {
	inserted []notification.Notification
}

func (f *fakeNotifications) Insert(ctx context.Context, n *notification.Notification) (*notification.Notification, error) {
	stored := *n
	stored.ID = uuid.New()
	f.inserted = append(f.inserted, stored)
	return &stored, nil
}

func (f *fakeNotifications) ExistingTargetIDs(ctx context.Context, typ notification.Type, targetIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	existing := make(map[uuid.UUID]bool)
	for _, n := range f.inserted {
		if n.Type != typ || n.TargetID == nil {
			continue
		}
		for _, id := range targetIDs {
			if *n.TargetID == id {
				existing[id] = true
			}
		}
	}
	return existing, nil
}

type fakeStaff struct {
	byClinic map[uuid.UUID][]clinic.StaffUser
}

func (f *fakeStaff) ListStaff(ctx context.Context, clinicID uuid.UUID) ([]clinic.StaffUser, error) {
	return f.byClinic[clinicID], nil
}

type recordingMailer struct {
	sent []mailer.Message
}

func (r *recordingMailer) Send(ctx context.Context, msg mailer.Message) error {
	r.sent = append(r.sent, msg)
	return nil
}

func candidate(clinicID uuid.UUID, startsAt time.Time) appointment.ReminderCandidate {
	return appointment.ReminderCandidate{
		Appointment: appointment.Appointment{
			ID:             uuid.New(),
			ClinicID:       clinicID,
			PatientID:      uuid.New(),
			ProfessionalID: uuid.New(),
			StartsAt:       startsAt,
			Status:         appointment.StatusActive,
		},
		PatientName:      "Ana Souza",
		ProfessionalName: "Dr. Lima",
	}
}

func TestClassWindows(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	from, to := Class24h.Window(now)
	assert.Equal(t, now.Add(23*time.Hour), from)
	assert.Equal(t, now.Add(25*time.Hour), to)

	from, to = Class2h.Window(now)
	assert.Equal(t, now.Add(110*time.Minute), from)
	assert.Equal(t, now.Add(130*time.Minute), to)
}

func TestRunCreatesOneNotificationPerAppointmentAndStaffUser(t *testing.T) {
	now := time.Now().UTC()
	clinicID := uuid.New()

	appts := &fakeAppointments{candidates: []appointment.ReminderCandidate{
		candidate(clinicID, now.Add(24*time.Hour)),
		candidate(clinicID, now.Add(24*time.Hour+30*time.Minute)),
	}}
	notifs := &fakeNotifications{}
	staff := &fakeStaff{byClinic: map[uuid.UUID][]clinic.StaffUser{
		clinicID: {
			{ID: uuid.New(), ClinicID: clinicID, Name: "Front Desk", Email: "desk@clinic.test"},
			{ID: uuid.New(), ClinicID: clinicID, Name: "Admin", Email: "admin@clinic.test"},
		},
	}}
	mail := &recordingMailer{}

	job := NewJob(appts, notifs, staff, mail, nil, zerolog.Nop())

	sent, err := job.Run(context.Background(), Class24h, now)
	require.NoError(t, err)
	assert.Equal(t, 4, sent) // 2 appointments x 2 staff users
	assert.Len(t, mail.sent, 4)

	for _, n := range notifs.inserted {
		assert.Equal(t, notification.TypeReminder24h, n.Type)
		assert.Equal(t, "appointment", n.TargetType)
		require.NotNil(t, n.TargetID)
	}
}

func TestRunIsIdempotentWithinWindow(t *testing.T) {
	now := time.Now().UTC()
	clinicID := uuid.New()

	appts := &fakeAppointments{candidates: []appointment.ReminderCandidate{
		candidate(clinicID, now.Add(24*time.Hour)),
		candidate(clinicID, now.Add(24*time.Hour+time.Hour)),
	}}
	notifs := &fakeNotifications{}
	staff := &fakeStaff{byClinic: map[uuid.UUID][]clinic.StaffUser{
		clinicID: {{ID: uuid.New(), ClinicID: clinicID, Name: "Front Desk", Email: "desk@clinic.test"}},
	}}

	job := NewJob(appts, notifs, staff, nil, nil, zerolog.Nop())

	first, err := job.Run(context.Background(), Class24h, now)
	require.NoError(t, err)
	assert.Equal(t, 2, first)

	second, err := job.Run(context.Background(), Class24h, now)
	require.NoError(t, err)
	assert.Zero(t, second)
	assert.Len(t, notifs.inserted, 2)
}

func TestRunClassesDedupIndependently(t *testing.T) {
	now := time.Now().UTC()
	clinicID := uuid.New()

	// In both the 24h and (shifted) 2h windows under different run times.
	appt := candidate(clinicID, now.Add(2*time.Hour))
	appts := &fakeAppointments{candidates: []appointment.ReminderCandidate{appt}}
	notifs := &fakeNotifications{}
	staff := &fakeStaff{byClinic: map[uuid.UUID][]clinic.StaffUser{
		clinicID: {{ID: uuid.New(), ClinicID: clinicID, Name: "Front Desk"}},
	}}

	job := NewJob(appts, notifs, staff, nil, nil, zerolog.Nop())

	sent2h, err := job.Run(context.Background(), Class2h, now)
	require.NoError(t, err)
	assert.Equal(t, 1, sent2h)

	// A 24h-class reminder for the same appointment is a different type and
	// must not be suppressed by the 2h record.
	sent24h, err := job.Run(context.Background(), Class24h, now.Add(-22*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, sent24h)
}

func TestRunSkipsAppointmentsOutsideWindow(t *testing.T) {
	now := time.Now().UTC()
	clinicID := uuid.New()

	appts := &fakeAppointments{candidates: []appointment.ReminderCandidate{
		candidate(clinicID, now.Add(10*time.Hour)),
		candidate(clinicID, now.Add(48*time.Hour)),
	}}
	notifs := &fakeNotifications{}
	staff := &fakeStaff{byClinic: map[uuid.UUID][]clinic.StaffUser{
		clinicID: {{ID: uuid.New(), ClinicID: clinicID}},
	}}

	job := NewJob(appts, notifs, staff, nil, nil, zerolog.Nop())

	sent, err := job.Run(context.Background(), Class24h, now)
	require.NoError(t, err)
	assert.Zero(t, sent)
}
