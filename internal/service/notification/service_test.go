package notification

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/aegis-triage/internal/model"
	"github.com/jwalitptl/aegis-triage/pkg/messaging"
)

type mockEmail struct {
	mock.Mock
}

func (m *mockEmail) SendCustom(ctx context.Context, to []string, subject string, body string) error {
	args := m.Called(ctx, to, subject, body)
	return args.Error(0)
}

type recordingPublisher struct {
	mu       sync.Mutex
	channels []string
	err      error
}

func (p *recordingPublisher) Publish(ctx context.Context, channel string, message interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channels = append(p.channels, channel)
	return p.err
}

func testCase(level model.ESILevel) *model.TriageCase {
	return &model.TriageCase{
		ID:        uuid.New(),
		PatientID: "p1",
		ESILevel:  level,
		Category:  model.CategoryCardiac,
		Status:    model.CaseStatusNew,
		Flags:     []string{"High Risk"},
		SBAR:      model.SBAR{Situation: "<chest pain>"},
	}
}

func TestCaseCreatedCritical(t *testing.T) {
	c := testCase(model.ESIEmergent)
	mail := &mockEmail{}
	mail.On("SendCustom", mock.Anything, []string{"oncall@example.org"}, criticalSubject(c), mock.AnythingOfType("string")).
		Return(nil).Once()
	pub := &recordingPublisher{}

	svc := NewService(mail, pub, []string{"oncall@example.org"}, zerolog.Nop())
	require.NoError(t, svc.CaseCreated(context.Background(), c))

	assert.ElementsMatch(t, []string{messaging.ChannelCaseCreated, messaging.ChannelCaseCritical}, pub.channels)
	mail.AssertExpectations(t)
	assert.True(t, strings.HasPrefix(criticalSubject(c), "[ESI 2] CARDIAC case "))
}

func TestCaseCreatedNonCritical(t *testing.T) {
	mail := &mockEmail{}
	pub := &recordingPublisher{}

	svc := NewService(mail, pub, []string{"oncall@example.org"}, zerolog.Nop())
	require.NoError(t, svc.CaseCreated(context.Background(), testCase(model.ESIUrgent)))

	assert.Equal(t, []string{messaging.ChannelCaseCreated}, pub.channels)
	mail.AssertNotCalled(t, "SendCustom", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCaseCreatedRunsAllBranchesOnFailure(t *testing.T) {
	mail := &mockEmail{}
	mail.On("SendCustom", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	pub := &recordingPublisher{err: errors.New("broker down")}

	svc := NewService(mail, pub, []string{"oncall@example.org"}, zerolog.Nop())
	err := svc.CaseCreated(context.Background(), testCase(model.ESIResuscitation))
	assert.Error(t, err)
	mail.AssertExpectations(t)
}

func TestCriticalBodyEscapesText(t *testing.T) {
	body := criticalBody(testCase(model.ESIEmergent))
	assert.NotContains(t, body, "<chest pain>")
	assert.Contains(t, body, "&lt;chest pain&gt;")
}

func TestStatusChanged(t *testing.T) {
	pub := &recordingPublisher{}
	svc := NewService(&mockEmail{}, pub, nil, zerolog.Nop())
	require.NoError(t, svc.StatusChanged(context.Background(), testCase(model.ESIUrgent)))
	assert.Equal(t, []string{messaging.ChannelCaseStatus}, pub.channels)
}

func TestCaseCreatedWithoutEmail(t *testing.T) {
	pub := &recordingPublisher{}
	svc := NewService(nil, pub, []string{"oncall@example.org"}, zerolog.Nop())
	require.NoError(t, svc.CaseCreated(context.Background(), testCase(model.ESIEmergent)))
	assert.ElementsMatch(t, []string{messaging.ChannelCaseCreated, messaging.ChannelCaseCritical}, pub.channels)
}

func TestAlertBodyFromEvent(t *testing.T) {
	evt := NewCaseEvent(testCase(model.ESIResuscitation))
	evt.HospitalID = "<h1>"
	body := AlertBody(evt)
	assert.Contains(t, body, evt.CaseID)
	assert.Contains(t, body, "&lt;h1&gt;")
	assert.True(t, strings.HasPrefix(AlertSubject(evt), "[ESI 1] CARDIAC case "))
}
