package test

import (
	"context"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"lan-chat/admission"
	"lan-chat/moderation"
	"lan-chat/repositories"
	"lan-chat/runtime"
	"lan-chat/runtime/workers"
)

func dial(t *testing.T, addr string) net.Conn {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readUntil(t *testing.T, conn net.Conn, substr string) string {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))

	var sb strings.Builder
	buf := make([]byte, 512)
	for !strings.Contains(sb.String(), substr) {
		n, err := conn.Read(buf)
		if n > 0 {
			sb.Write(buf[:n])
		}
		require.NoError(t, err, "waiting for %q, received %q", substr, sb.String())
	}
	return sb.String()
}

func sendLine(t *testing.T, conn net.Conn, line string) {
	t.Helper()
	_ = conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
	_, err := conn.Write([]byte(line + "\r\n"))
	require.NoError(t, err)
}

func join(t *testing.T, addr, nickname string) net.Conn {
	t.Helper()
	conn := dial(t, addr)
	readUntil(t, conn, "Choose a nickname: ")
	sendLine(t, conn, nickname)
	readUntil(t, conn, "Type /help for commands.")
	return conn
}

func Test_Scenario(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelError)
	historyPath := filepath.Join(t.TempDir(), "chat_log.txt")

	// 1. Wire the server on an ephemeral port
	history := repositories.NewHistoryRepository(historyPath, log)
	journal := runtime.NewJournal(log, history)
	registry := runtime.NewRegistry()
	censor, err := moderation.NewModerator([]string{"swordfish"}, '*')
	req.NoError(err)
	dispatcher := runtime.NewDispatcher(log, registry, history, journal, censor)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	req.NoError(err)
	acceptor := runtime.NewAcceptor(log, listener, admission.AllowAll{}, registry, dispatcher, journal, 2*time.Second)

	supervisor := workers.NewSupervisor(log, 200*time.Millisecond)
	supervisor.Add(acceptor)
	serverDone := make(chan struct{})
	go func() {
		supervisor.Run(context.Background())
		close(serverDone)
	}()
	addr := listener.Addr().String()

	// 2. Two participants connect and negotiate nicknames
	alice := join(t, addr, "alice")
	bob := join(t, addr, "bob")
	readUntil(t, alice, "bob joined the chat.")

	// 3. A mention reaches its target with an alert
	sendLine(t, alice, "hello @bob")
	received := readUntil(t, bob, "hello @bob")
	req.Contains(received, "[ALERT]")
	req.Contains(received, "alice mentioned you!")

	// 4. The censor rewrites banned words before fan-out
	sendLine(t, alice, "the password is swordfish")
	received = readUntil(t, bob, "the password is")
	req.Contains(received, "*********")
	req.NotContains(received, "swordfish")

	// 5. Do-not-disturb suppresses the alert but not the message
	sendLine(t, bob, "/dnd on")
	readUntil(t, bob, "Do Not Disturb mode enabled.")
	sendLine(t, alice, "hi @bob")
	received = readUntil(t, bob, "hi @bob")
	req.NotContains(received, "[ALERT]")

	// 6. The suppressed mention lands in the plain-text log
	req.Eventually(func() bool {
		data, readErr := os.ReadFile(historyPath)
		return readErr == nil && strings.Contains(string(data), "[MENTION] alice -> bob (suppressed, DND active)")
	}, 3*time.Second, 50*time.Millisecond)

	// 7. A private message rings the sender's target unless muted
	sendLine(t, alice, "/msg bob secret handshake")
	received = readUntil(t, bob, "secret handshake")
	req.Contains(received, "(private)")
	req.NotContains(received, "\a")
	readUntil(t, alice, "secret handshake")

	// 8. Quitting says goodbye and notifies the room
	sendLine(t, alice, "/quit")
	readUntil(t, alice, "Goodbye!")
	readUntil(t, bob, "alice left the chat.")

	// 9. Shutdown drains the acceptor
	supervisor.Stop()
	select {
	case <-serverDone:
	case <-time.After(3 * time.Second):
		req.Fail("Timeout: server did not shut down")
	}

	// 10. The log carries the whole session trail, colors stripped
	data, err := os.ReadFile(historyPath)
	req.NoError(err)
	trail := string(data)
	req.Contains(trail, "alice connected from 127.0.0.1")
	req.Contains(trail, "alice: hello @bob")
	req.Contains(trail, "[MENTION] alice -> bob")
	req.Contains(trail, "[PM] alice -> bob")
	req.Contains(trail, "alice disconnected.")
	req.NotContains(trail, "\x1b[")
}

func Test_History_Replay_Across_Connections(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelError)
	historyPath := filepath.Join(t.TempDir(), "chat_log.txt")

	history := repositories.NewHistoryRepository(historyPath, log)
	journal := runtime.NewJournal(log, history)
	registry := runtime.NewRegistry()
	dispatcher := runtime.NewDispatcher(log, registry, history, journal, nil)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	req.NoError(err)
	acceptor := runtime.NewAcceptor(log, listener, admission.AllowAll{}, registry, dispatcher, journal, 2*time.Second)

	supervisor := workers.NewSupervisor(log, 200*time.Millisecond)
	supervisor.Add(acceptor)
	go supervisor.Run(context.Background())
	defer supervisor.Stop()
	addr := listener.Addr().String()

	// A first participant leaves a trace in the log
	alice := join(t, addr, "alice")
	sendLine(t, alice, "remember this line")
	readUntil(t, alice, "remember this line")
	sendLine(t, alice, "/quit")
	readUntil(t, alice, "Goodbye!")

	// A later participant replays it through /history
	req.Eventually(func() bool {
		data, readErr := os.ReadFile(historyPath)
		return readErr == nil && strings.Contains(string(data), "alice disconnected.")
	}, 3*time.Second, 50*time.Millisecond)

	bob := join(t, addr, "bob")
	sendLine(t, bob, "/history")
	readUntil(t, bob, "How many messages to show? (10/30/custom): ")
	sendLine(t, bob, "30")
	received := readUntil(t, bob, "--- End of history ---")
	req.Contains(received, "alice: remember this line")
}
