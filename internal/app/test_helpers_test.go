package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/example/mediminder/internal/core/reminder"
	"github.com/example/mediminder/internal/lock"
	"github.com/example/mediminder/internal/ports/secondary"
)

// memStore is the shared in-memory state behind the mock repositories.
type memStore struct {
	mu         sync.Mutex
	schedules  map[string]*secondary.ScheduleRecord
	instances  map[string]*secondary.InstanceRecord
	recipients map[string]*secondary.RecipientRecord
	calls      map[string]*secondary.EscalationCallRecord
	nextID     int
}

func newMemStore() *memStore {
	return &memStore{
		schedules:  make(map[string]*secondary.ScheduleRecord),
		instances:  make(map[string]*secondary.InstanceRecord),
		recipients: make(map[string]*secondary.RecipientRecord),
		calls:      make(map[string]*secondary.EscalationCallRecord),
	}
}

func (s *memStore) addRecipient(id, phone string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recipients[id] = &secondary.RecipientRecord{ID: id, PhoneNumber: phone}
}

func (s *memStore) addSchedule(id, recipientID, name, times string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schedules[id] = &secondary.ScheduleRecord{ID: id, RecipientID: recipientID, Name: name, Dosage: "100mg", TimesOfDay: times, Active: true}
}

func (s *memStore) instance(id string) secondary.InstanceRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.instances[id]
}

func (s *memStore) instanceCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.instances)
}

func (s *memStore) onlyInstance() secondary.InstanceRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.instances) != 1 {
		panic(fmt.Sprintf("expected exactly one instance, have %d", len(s.instances)))
	}
	for _, inst := range s.instances {
		return *inst
	}
	return secondary.InstanceRecord{}
}

// Ensure mocks implement the interfaces
var (
	_ secondary.ScheduleRepository       = (*mockScheduleRepo)(nil)
	_ secondary.InstanceRepository       = (*mockInstanceRepo)(nil)
	_ secondary.RecipientRepository      = (*mockRecipientRepo)(nil)
	_ secondary.EscalationCallRepository = (*mockCallRepo)(nil)
	_ secondary.NotificationTransport    = (*mockTransport)(nil)
	_ secondary.EscalationChannel        = (*mockChannel)(nil)
	_ secondary.OperatorNotifier         = (*mockOperator)(nil)
)

type mockScheduleRepo struct{ s *memStore }

func (m *mockScheduleRepo) Create(ctx context.Context, r *secondary.ScheduleRecord) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	cp := *r
	m.s.schedules[r.ID] = &cp
	return nil
}

func (m *mockScheduleRepo) GetByID(ctx context.Context, id string) (*secondary.ScheduleRecord, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	r, ok := m.s.schedules[id]
	if !ok {
		return nil, fmt.Errorf("medication %s %w", id, secondary.ErrNotFound)
	}
	cp := *r
	return &cp, nil
}

func (m *mockScheduleRepo) ListActive(ctx context.Context) ([]*secondary.ScheduleRecord, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []*secondary.ScheduleRecord
	for _, r := range m.s.schedules {
		if r.Active {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockScheduleRepo) ListByRecipient(ctx context.Context, recipientID string, activeOnly bool) ([]*secondary.ScheduleRecord, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []*secondary.ScheduleRecord
	for _, r := range m.s.schedules {
		if r.RecipientID == recipientID && (!activeOnly || r.Active) {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockScheduleRepo) Deactivate(ctx context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	r, ok := m.s.schedules[id]
	if !ok {
		return fmt.Errorf("medication %s %w", id, secondary.ErrNotFound)
	}
	r.Active = false
	return nil
}

func (m *mockScheduleRepo) DeactivateRecipient(ctx context.Context, recipientID string) (int, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	n := 0
	for _, r := range m.s.schedules {
		if r.RecipientID == recipientID && r.Active {
			r.Active = false
			n++
		}
	}
	return n, nil
}

func (m *mockScheduleRepo) GetNextID(ctx context.Context) (string, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return fmt.Sprintf("MED-%03d", len(m.s.schedules)+1), nil
}

type mockInstanceRepo struct {
	s *memStore

	createCalls int
	updateErr   error
}

func (m *mockInstanceRepo) Find(ctx context.Context, scheduleID string, scheduledAt time.Time) (*secondary.InstanceRecord, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, r := range m.s.instances {
		if r.ScheduleID == scheduleID && r.ScheduledAt.Equal(scheduledAt) {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockInstanceRepo) Create(ctx context.Context, r *secondary.InstanceRecord) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.createCalls++
	for _, existing := range m.s.instances {
		if existing.ScheduleID == r.ScheduleID && existing.ScheduledAt.Equal(r.ScheduledAt) {
			return fmt.Errorf("reminder instance %w", secondary.ErrAlreadyExists)
		}
	}
	cp := *r
	m.s.instances[r.ID] = &cp
	return nil
}

func (m *mockInstanceRepo) GetByID(ctx context.Context, id string) (*secondary.InstanceRecord, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	r, ok := m.s.instances[id]
	if !ok {
		return nil, fmt.Errorf("reminder %s %w", id, secondary.ErrNotFound)
	}
	cp := *r
	return &cp, nil
}

func (m *mockInstanceRepo) UpdateStatus(ctx context.Context, id string, from string, u secondary.StatusUpdate) (bool, error) {
	if m.updateErr != nil {
		return false, m.updateErr
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	r, ok := m.s.instances[id]
	if !ok || r.Status != from {
		return false, nil
	}
	r.Status = u.Status
	r.UpdatedAt = u.At
	if u.AcknowledgedAt != nil {
		r.AcknowledgedAt = u.AcknowledgedAt
	}
	if u.EscalatedAt != nil {
		r.EscalatedAt = u.EscalatedAt
	}
	if u.RemindAt != nil {
		r.RemindAt = *u.RemindAt
	}
	if u.SnoozeIncrement {
		r.SnoozeCount++
	}
	return true, nil
}

func (m *mockInstanceRepo) ListSentOlderThan(ctx context.Context, cutoff time.Time) ([]*secondary.EscalationCandidate, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []*secondary.EscalationCandidate
	for _, r := range m.s.instances {
		if r.Status != string(reminder.StatusSent) || !r.ScheduledAt.Before(cutoff) {
			continue
		}
		cp := *r
		c := &secondary.EscalationCandidate{Instance: &cp}
		if s, ok := m.s.schedules[r.ScheduleID]; ok {
			c.MedicationName = s.Name
		}
		if rec, ok := m.s.recipients[r.RecipientID]; ok {
			c.PhoneNumber = rec.PhoneNumber
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Instance.ID < out[j].Instance.ID })
	return out, nil
}

func (m *mockInstanceRepo) ListDuePending(ctx context.Context, now time.Time) ([]*secondary.InstanceRecord, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []*secondary.InstanceRecord
	for _, r := range m.s.instances {
		s, ok := m.s.schedules[r.ScheduleID]
		if r.Status == string(reminder.StatusPending) && !r.RemindAt.After(now) && ok && s.Active {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockInstanceRepo) List(ctx context.Context, filters secondary.InstanceFilters) ([]*secondary.InstanceRecord, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []*secondary.InstanceRecord
	for _, r := range m.s.instances {
		if filters.Status != "" && r.Status != filters.Status {
			continue
		}
		if filters.RecipientID != "" && r.RecipientID != filters.RecipientID {
			continue
		}
		if filters.ScheduleID != "" && r.ScheduleID != filters.ScheduleID {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}

type mockRecipientRepo struct{ s *memStore }

func (m *mockRecipientRepo) Register(ctx context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.recipients[id]; !ok {
		m.s.recipients[id] = &secondary.RecipientRecord{ID: id}
	}
	return nil
}

func (m *mockRecipientRepo) GetByID(ctx context.Context, id string) (*secondary.RecipientRecord, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	r, ok := m.s.recipients[id]
	if !ok {
		return nil, fmt.Errorf("recipient %s %w", id, secondary.ErrNotFound)
	}
	cp := *r
	return &cp, nil
}

func (m *mockRecipientRepo) SetPhone(ctx context.Context, id, phone string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	r, ok := m.s.recipients[id]
	if !ok {
		return fmt.Errorf("recipient %s %w", id, secondary.ErrNotFound)
	}
	r.PhoneNumber = phone
	return nil
}

func (m *mockRecipientRepo) Exists(ctx context.Context, id string) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	_, ok := m.s.recipients[id]
	return ok, nil
}

type mockCallRepo struct{ s *memStore }

func (m *mockCallRepo) Create(ctx context.Context, c *secondary.EscalationCallRecord) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	cp := *c
	m.s.calls[c.ID] = &cp
	return nil
}

func (m *mockCallRepo) GetNextID(ctx context.Context) (string, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return fmt.Sprintf("ESC-%03d", len(m.s.calls)+1), nil
}

func (m *mockCallRepo) UpdateStatus(ctx context.Context, id, status, errMsg string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	c, ok := m.s.calls[id]
	if !ok {
		return fmt.Errorf("escalation call %s %w", id, secondary.ErrNotFound)
	}
	c.Status = status
	c.Error = errMsg
	return nil
}

func (m *mockCallRepo) List(ctx context.Context, filters secondary.EscalationCallFilters) ([]*secondary.EscalationCallRecord, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []*secondary.EscalationCallRecord
	for _, c := range m.s.calls {
		if filters.Status != "" && c.Status != filters.Status {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

// mockTransport records messages and returns scripted errors in order.
type mockTransport struct {
	mu        sync.Mutex
	reminders []secondary.ReminderMessage
	texts     []string
	errs      []error
	textErr   error
}

func (m *mockTransport) SendReminder(ctx context.Context, msg secondary.ReminderMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		if err != nil {
			return err
		}
	}
	m.reminders = append(m.reminders, msg)
	return nil
}

func (m *mockTransport) SendText(ctx context.Context, recipientID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.textErr != nil {
		return m.textErr
	}
	m.texts = append(m.texts, recipientID+": "+text)
	return nil
}

func (m *mockTransport) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.reminders)
}

type mockChannel struct {
	mu       sync.Mutex
	requests []secondary.EscalationRequest
	err      error
}

func (m *mockChannel) Escalate(ctx context.Context, req secondary.EscalationRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	return m.err
}

type mockOperator struct {
	mu     sync.Mutex
	alerts []string
}

func (m *mockOperator) NotifyOperator(ctx context.Context, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts = append(m.alerts, text)
	return nil
}

type mockTimers struct {
	mu    sync.Mutex
	armed map[string]time.Time
}

func (m *mockTimers) Arm(instanceID string, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.armed == nil {
		m.armed = make(map[string]time.Time)
	}
	m.armed[instanceID] = at
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type recordingSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
	return ctx.Err()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testEngine bundles a fully wired engine over in-memory collaborators.
type testEngine struct {
	store     *memStore
	schedules *mockScheduleRepo
	instances *mockInstanceRepo
	transport *mockTransport
	channel   *mockChannel
	operator  *mockOperator
	timers    *mockTimers
	clock     *fakeClock
	sleeper   *recordingSleeper
	cfg       EngineConfig

	worker    *DeliveryWorker
	detector  *Detector
	responses *ResponseServiceImpl
	sweeper   *EscalationSweeper
}

func newTestEngine(start time.Time) *testEngine {
	store := newMemStore()
	e := &testEngine{
		store:     store,
		schedules: &mockScheduleRepo{s: store},
		instances: &mockInstanceRepo{s: store},
		transport: &mockTransport{},
		channel:   &mockChannel{},
		operator:  &mockOperator{},
		timers:    &mockTimers{},
		clock:     &fakeClock{now: start},
		sleeper:   &recordingSleeper{},
		cfg:       DefaultEngineConfig(),
	}
	e.cfg.Location = time.UTC

	locks := lock.NewKeyedMutex()
	logger := discardLogger()
	ids := 0
	var idMu sync.Mutex
	newID := func() string {
		idMu.Lock()
		defer idMu.Unlock()
		ids++
		return fmt.Sprintf("inst-%d", ids)
	}

	e.worker = NewDeliveryWorker(e.instances, e.schedules, e.transport, e.operator, locks,
		reminder.DefaultRetryPolicy(e.cfg.MaxSendRetries), e.cfg, e.sleeper.Sleep, e.clock.Now, logger)
	e.detector = NewDetector(e.schedules, e.instances, e.worker, locks, e.cfg, e.clock.Now, newID, logger)
	e.responses = NewResponseService(e.instances, locks, e.timers, e.cfg, e.clock.Now, logger)
	e.sweeper = NewEscalationSweeper(e.instances, e.channel, e.transport, e.operator, locks, e.cfg, e.clock.Now, logger)
	return e
}
