package runtime

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	stderrors "errors"

	"github.com/google/uuid"

	"lan-chat/contract"
	"lan-chat/domain"
	"lan-chat/errors"
)

// State tracks where a session worker is in its lifecycle. Transitions
// happen only on the owning goroutine; every error path funnels into
// StateDisconnecting.
type State int

const (
	StateConnecting State = iota
	StateNegotiating
	StateActive
	StateDisconnecting
	StateTerminated
)

// Session is one connected client. The worker goroutine owns all reads;
// other goroutines may only Deliver (serialized by writeMu) or trigger
// Teardown, both safe at any time.
type Session struct {
	id           string
	conn         net.Conn
	reader       *bufio.Reader
	log          *slog.Logger
	registry     contract.IRegistry
	dispatcher   *Dispatcher
	journal      *Journal
	writeTimeout time.Duration

	writeMu sync.Mutex
	name    string
	color   string
	state   State
}

func NewSession(conn net.Conn, log *slog.Logger, registry contract.IRegistry,
	dispatcher *Dispatcher, journal *Journal, writeTimeout time.Duration) *Session {
	return &Session{
		id:           uuid.NewString(),
		conn:         conn,
		reader:       bufio.NewReader(conn),
		log:          log,
		registry:     registry,
		dispatcher:   dispatcher,
		journal:      journal,
		writeTimeout: writeTimeout,
		state:        StateConnecting,
	}
}

func (s *Session) SessionID() string { return s.id }
func (s *Session) Nickname() string  { return s.name }
func (s *Session) NickColor() string { return s.color }
func (s *Session) State() State      { return s.state }

// Run drives the state machine to completion. It always returns nil:
// a session ending is never an error for the rest of the server.
func (s *Session) Run(ctx context.Context) error {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Session worker panicked", "remote", s.remoteHost(), "panic", r)
		}
		s.Teardown()
		s.state = StateTerminated
	}()

	if err := s.DeliverRaw("Welcome to the LAN Chat!\r\nChoose a nickname: "); err != nil {
		return nil
	}

	s.state = StateNegotiating
	profile, err := s.negotiate()
	if err != nil {
		s.state = StateDisconnecting
		return nil
	}
	s.state = StateActive

	welcome := domain.Timestamp() + domain.SysColor + "Welcome " + profile.Color + profile.Name +
		domain.Reset + domain.SysColor + "! Type /help for commands." + domain.Reset
	_ = s.Deliver(welcome)
	s.dispatcher.Broadcast(domain.Timestamp()+domain.SysColor+profile.Name+" joined the chat."+domain.Reset, s.id)
	s.journal.Record(fmt.Sprintf("%s connected from %s", profile.Name, profile.Addr))

	for s.state == StateActive {
		line, readErr := s.readLine()
		if readErr != nil {
			s.state = StateDisconnecting
			break
		}
		if line == "" {
			continue
		}
		s.processLine(line)
	}
	return nil
}

// negotiate reads nicknames until one registers. Collisions re-prompt
// indefinitely; only the client ends the exchange by disconnecting.
func (s *Session) negotiate() (domain.Profile, error) {
	name, err := s.readLine()
	if err != nil {
		return domain.Profile{}, err
	}

	for {
		if name == "" {
			name = domain.PlaceholderName()
		}
		profile := domain.Profile{
			Name:  name,
			Color: domain.RandomColor(),
			Addr:  s.remoteHost(),
		}

		regErr := s.registry.Register(s.id, s, profile)
		if regErr == nil {
			s.name = profile.Name
			s.color = profile.Color
			return profile, nil
		}
		if !stderrors.Is(regErr, errors.ErrNameTaken) {
			return domain.Profile{}, regErr
		}

		name, err = s.PromptRead("Name already taken. Choose another: ")
		if err != nil {
			return domain.Profile{}, err
		}
	}
}

// processLine handles one inbound line while keeping the session alive:
// an unexpected failure is recovered here, reported to the sender, and
// the worker goes back to reading.
func (s *Session) processLine(line string) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Line processing failed", "name", s.name, "panic", r)
			_ = s.Deliver("Command processing error.")
		}
	}()

	if domain.IsCommand(line) {
		if quit := s.dispatcher.HandleCommand(s, line); quit {
			s.state = StateDisconnecting
		}
		return
	}
	s.dispatcher.HandleChat(s, line)
}

// Deliver sends one CRLF-terminated line to this session.
func (s *Session) Deliver(text string) error {
	return s.DeliverRaw(text + "\r\n")
}

// DeliverRaw sends bytes verbatim, bounded by the write timeout so a
// stalled peer cannot accumulate unbounded delay for its senders.
func (s *Session) DeliverRaw(text string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.writeTimeout > 0 {
		_ = s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	}
	_, err := s.conn.Write([]byte(text))
	return err
}

// PromptRead sends a prompt without line ending and performs exactly one
// blocking read, used by nickname negotiation and /history.
func (s *Session) PromptRead(prompt string) (string, error) {
	if err := s.DeliverRaw(prompt); err != nil {
		return "", err
	}
	return s.readLine()
}

// Teardown closes the stream and removes the session from the registry.
// It is idempotent: only the call that finds a live registry entry
// broadcasts the departure notice.
func (s *Session) Teardown() {
	profile, found := s.registry.Unregister(s.id)
	_ = s.conn.Close()
	if found {
		s.dispatcher.Broadcast(domain.Timestamp()+domain.SysColor+profile.Name+" left the chat."+domain.Reset, s.id)
		s.journal.Record(profile.Name + " disconnected.")
	}
}

// readLine reads the next CRLF line. Invalid byte sequences are dropped
// rather than failing the connection.
func (s *Session) readLine() (string, error) {
	line, err := s.reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(strings.ToValidUTF8(line, "")), nil
}

func (s *Session) remoteHost() string {
	host, _, err := net.SplitHostPort(s.conn.RemoteAddr().String())
	if err != nil {
		return s.conn.RemoteAddr().String()
	}
	return host
}
