package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nsforge/nsforge/pkg/nsapi"
)

func watchedRecord(phase nsapi.Phase) *nsapi.ProvisioningRequest {
	return &nsapi.ProvisioningRequest{
		RequestID:     "req-1",
		NamespaceName: "payments-dev",
		Team:          "payments",
		Environment:   nsapi.EnvDevelopment,
		ResourceTier:  nsapi.TierSmall,
		NetworkPolicy: nsapi.NetworkIsolated,
		Phase:         phase,
		WorkflowRef:   "wf-1",
		CreatedAt:     time.Now(),
	}
}

func TestModelQuitsOnTerminalRecord(t *testing.T) {
	m := NewWatchModel("req-1")

	next, cmd := m.Update(RecordMsg{Record: watchedRecord(nsapi.PhaseCompleted)})
	nm := next.(Model)
	if !nm.Done {
		t.Error("expected model to be done after a terminal record")
	}
	if cmd == nil {
		t.Error("expected a quit command")
	}
}

func TestModelKeepsPollingWhileProvisioning(t *testing.T) {
	m := NewWatchModel("req-1")

	next, cmd := m.Update(RecordMsg{Record: watchedRecord(nsapi.PhaseProvisioning)})
	nm := next.(Model)
	if nm.Done {
		t.Error("model must not finish on a non-terminal record")
	}
	if cmd != nil {
		t.Error("non-terminal records should not emit commands")
	}
}

func TestModelQuitsOnKeypress(t *testing.T) {
	m := NewWatchModel("req-1")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Error("expected quit on q")
	}
}

func TestRenderOnceShowsRecordFields(t *testing.T) {
	out := RenderOnce(watchedRecord(nsapi.PhaseCompleted))

	for _, want := range []string{"payments-dev", "payments", "small", "wf-1", "Completed"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered view missing %q:\n%s", want, out)
		}
	}
}

func TestRenderShowsErrorMessage(t *testing.T) {
	record := watchedRecord(nsapi.PhaseFailed)
	record.ErrorMessage = "apply-rbac: role binding rejected"

	out := RenderOnce(record)
	if !strings.Contains(out, "role binding rejected") {
		t.Errorf("rendered view missing failure detail:\n%s", out)
	}
	if !strings.Contains(out, "Failed") {
		t.Errorf("rendered view missing phase label:\n%s", out)
	}
}
