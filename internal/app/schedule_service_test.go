package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/mediminder/internal/ports/primary"
	"github.com/example/mediminder/internal/ports/secondary"
)

func TestScheduleService_AddSchedule(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.addRecipient("100001", "")
	svc := NewScheduleService(&mockScheduleRepo{s: store}, &mockRecipientRepo{s: store})

	t.Run("normalizes times", func(t *testing.T) {
		got, err := svc.AddSchedule(ctx, primary.AddScheduleRequest{
			RecipientID: "100001",
			Name:        " Aspirin ",
			Dosage:      "100mg",
			TimesOfDay:  "20:00, 8:00,08:00",
		})
		require.NoError(t, err)
		assert.Equal(t, "MED-001", got.ID)
		assert.Equal(t, "Aspirin", got.Name)
		assert.Equal(t, []string{"08:00", "20:00"}, got.TimesOfDay)
		assert.True(t, got.Active)
	})

	t.Run("rejects unknown recipient", func(t *testing.T) {
		_, err := svc.AddSchedule(ctx, primary.AddScheduleRequest{RecipientID: "999", Name: "Aspirin", TimesOfDay: "08:00"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Register first with /start")
	})

	t.Run("rejects bad times", func(t *testing.T) {
		_, err := svc.AddSchedule(ctx, primary.AddScheduleRequest{RecipientID: "100001", Name: "Aspirin", TimesOfDay: "8am"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Use HH:MM")
	})
}

func TestScheduleService_ListAndDeactivate(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.addRecipient("100001", "")
	store.addSchedule("MED-001", "100001", "Aspirin", "08:00")
	store.addSchedule("MED-002", "100001", "Vitamin D", "09:00")
	svc := NewScheduleService(&mockScheduleRepo{s: store}, &mockRecipientRepo{s: store})

	require.NoError(t, svc.DeactivateSchedule(ctx, "MED-001"))

	list, err := svc.ListSchedules(ctx, "100001")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "MED-002", list[0].ID)

	err = svc.DeactivateSchedule(ctx, "MED-404")
	assert.True(t, errors.Is(err, secondary.ErrNotFound))
}

func TestRecipientService(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := NewRecipientService(&mockRecipientRepo{s: store})

	require.NoError(t, svc.Register(ctx, "100001"))
	require.NoError(t, svc.Register(ctx, "100001"))
	assert.Error(t, svc.Register(ctx, " "))

	assert.ErrorIs(t, svc.SetPhone(ctx, "100001", "12345"), primary.ErrInvalidPhone)
	require.NoError(t, svc.SetPhone(ctx, "100001", " +15550100001 "))

	got, err := svc.GetRecipient(ctx, "100001")
	require.NoError(t, err)
	assert.Equal(t, "+15550100001", got.PhoneNumber)

	err = svc.SetPhone(ctx, "999", "+15550100001")
	assert.True(t, errors.Is(err, secondary.ErrNotFound))
	assert.False(t, errors.Is(err, primary.ErrInvalidPhone))
}

func TestCallEscalator(t *testing.T) {
	ctx := context.Background()
	req := secondary.EscalationRequest{InstanceID: "inst-1", RecipientID: "100001", PhoneNumber: "+15550100001", MedicationName: "Aspirin"}

	t.Run("queues and notifies", func(t *testing.T) {
		store := newMemStore()
		transport := &mockTransport{}
		esc := NewCallEscalator(&mockCallRepo{s: store}, transport)

		require.NoError(t, esc.Escalate(ctx, req))
		require.Len(t, store.calls, 1)
		assert.Equal(t, primary.CallStatusNotified, store.calls["ESC-001"].Status)
		require.Len(t, transport.texts, 1)
		assert.Contains(t, transport.texts[0], "A call would be made to +15550100001")

		calls, err := NewEscalationCallService(&mockCallRepo{s: store}).ListCalls(ctx, primary.EscalationCallFilters{})
		require.NoError(t, err)
		require.Len(t, calls, 1)
		assert.Equal(t, "inst-1", calls[0].InstanceID)
	})

	t.Run("records failed notice", func(t *testing.T) {
		store := newMemStore()
		transport := &mockTransport{textErr: errors.New("Forbidden")}
		esc := NewCallEscalator(&mockCallRepo{s: store}, transport)

		err := esc.Escalate(ctx, req)
		require.Error(t, err)
		assert.Equal(t, primary.CallStatusFailed, store.calls["ESC-001"].Status)
		assert.Equal(t, "Forbidden", store.calls["ESC-001"].Error)
	})
}

func TestReminderService(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(at(8, 0, 5))
	setupAspirin(e, "")
	_, err := e.detector.Tick(ctx)
	require.NoError(t, err)
	id := e.store.onlyInstance().ID

	svc := NewReminderService(e.instances)
	got, err := svc.GetReminder(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "sent", got.Status)

	list, err := svc.ListReminders(ctx, primary.ReminderFilters{Status: "sent"})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.GetReminder(ctx, "missing")
	assert.ErrorIs(t, err, primary.ErrInstanceNotFound)
}
