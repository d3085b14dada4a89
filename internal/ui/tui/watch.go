package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nsforge/nsforge/pkg/nsapi"
)

// StatusFetcher retrieves the current record for a request.
type StatusFetcher interface {
	GetStatus(ctx context.Context, requestID string) (*nsapi.ProvisioningRequest, error)
}

// RunWatch follows a provisioning request in a full-screen TUI until it
// reaches a terminal phase or the user quits. The final record is returned
// so the caller can set an exit code.
func RunWatch(ctx context.Context, fetcher StatusFetcher, requestID string, pollInterval time.Duration) (*nsapi.ProvisioningRequest, error) {
	m := NewWatchModel(requestID)
	p := tea.NewProgram(m, tea.WithAltScreen())

	go func() {
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()

		send := func() bool {
			fetchCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			record, err := fetcher.GetStatus(fetchCtx, requestID)
			cancel()
			if err != nil {
				p.Send(ErrMsg{Err: err})
				return false
			}
			p.Send(RecordMsg{Record: record})
			return !record.Phase.Terminal()
		}

		if !send() {
			return
		}
		for {
			select {
			case <-ctx.Done():
				p.Send(ErrMsg{Err: ctx.Err()})
				return
			case <-ticker.C:
				if !send() {
					return
				}
			}
		}
	}()

	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("TUI error: %w", err)
	}

	fm := finalModel.(Model)
	if fm.Err != nil {
		return fm.Record, fm.Err
	}
	return fm.Record, nil
}

// RenderOnce renders a record snapshot without starting a program, for
// non-interactive output.
func RenderOnce(record *nsapi.ProvisioningRequest) string {
	m := NewWatchModel(record.RequestID)
	m.Record = record
	return renderView(m)
}
