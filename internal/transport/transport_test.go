// file: internal/transport/transport_test.go
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nextEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "events channel closed unexpectedly")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestSingleWriteProducesOneMessageEvent(t *testing.T) {
	input := `{"jsonrpc":"2.0","method":"ping","id":1}` + "\n"
	tr := NewNDJSONTransport(strings.NewReader(input), io.Discard, nil, nil)

	ev := nextEvent(t, tr.Events())
	require.Equal(t, EventMessage, ev.Kind)
	assert.JSONEq(t, `{"jsonrpc":"2.0","method":"ping","id":1}`, string(ev.Message))
}

func TestMessageSplitAcrossMultipleReadsYieldsOneEvent(t *testing.T) {
	full := `{"jsonrpc":"2.0","method":"ping","id":1}` + "\n"
	pr, pw := io.Pipe()
	tr := NewNDJSONTransport(pr, io.Discard, pr, nil)

	go func() {
		_, _ = pw.Write([]byte(full[:10]))
		_, _ = pw.Write([]byte(full[10:25]))
		_, _ = pw.Write([]byte(full[25:]))
	}()

	ev := nextEvent(t, tr.Events())
	require.Equal(t, EventMessage, ev.Kind, "expected a single message event, got error: %v", ev.Err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","method":"ping","id":1}`, string(ev.Message))

	_ = pw.Close()
	closedEv := nextEvent(t, tr.Events())
	assert.Equal(t, EventClosed, closedEv.Kind)
}

func TestOversizedLineYieldsErrorEventAndLoopContinues(t *testing.T) {
	oversized := strings.Repeat("a", MaxMessageSize+1)
	input := `{"jsonrpc":"2.0","method":"big","params":"` + oversized + `"}` + "\n" +
		`{"jsonrpc":"2.0","method":"ping","id":1}` + "\n"
	tr := NewNDJSONTransport(strings.NewReader(input), io.Discard, nil, nil)

	first := nextEvent(t, tr.Events())
	assert.Equal(t, EventError, first.Kind)
	assert.Error(t, first.Err)

	second := nextEvent(t, tr.Events())
	require.Equal(t, EventMessage, second.Kind)
	assert.JSONEq(t, `{"jsonrpc":"2.0","method":"ping","id":1}`, string(second.Message))
}

func TestCloseUnblocksReadAndEmitsClosedEvent(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	tr := NewNDJSONTransport(pr, io.Discard, pr, nil)

	require.NoError(t, tr.Close())

	ev := nextEvent(t, tr.Events())
	assert.Equal(t, EventClosed, ev.Kind)

	_, ok := <-tr.Events()
	assert.False(t, ok, "events channel should be closed after EventClosed")
}

func TestSendRejectsAfterClose(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	tr := NewNDJSONTransport(pr, io.Discard, pr, nil)
	require.NoError(t, tr.Close())

	err := tr.Send(context.Background(), []byte(`{"jsonrpc":"2.0","method":"ping"}`))
	assert.Error(t, err)
}

func TestConcurrentSendsDoNotInterleave(t *testing.T) {
	var buf bytes.Buffer
	var bufMu sync.Mutex
	guardedWriter := writerFunc(func(p []byte) (int, error) {
		bufMu.Lock()
		defer bufMu.Unlock()
		return buf.Write(p)
	})

	tr := NewNDJSONTransport(strings.NewReader(""), guardedWriter, nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			msg, _ := json.Marshal(map[string]any{"jsonrpc": "2.0", "method": "ping", "id": n})
			_ = tr.Send(context.Background(), msg)
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 20)
	for _, line := range lines {
		var decoded map[string]any
		assert.NoError(t, json.Unmarshal([]byte(line), &decoded))
	}
}

type writerFunc func(p []byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }
