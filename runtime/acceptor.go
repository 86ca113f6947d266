package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	stderrors "errors"

	"lan-chat/contract"
)

// Acceptor owns the listener loop: admission check, then one session
// worker per accepted connection. Accept-level errors are logged and
// the loop continues; only context cancellation stops it.
type Acceptor struct {
	log          *slog.Logger
	listener     net.Listener
	filter       contract.AdmissionFilter
	registry     contract.IRegistry
	dispatcher   *Dispatcher
	journal      *Journal
	writeTimeout time.Duration
}

func NewAcceptor(log *slog.Logger, listener net.Listener, filter contract.AdmissionFilter,
	registry contract.IRegistry, dispatcher *Dispatcher, journal *Journal,
	writeTimeout time.Duration) *Acceptor {
	return &Acceptor{
		log:          log,
		listener:     listener,
		filter:       filter,
		registry:     registry,
		dispatcher:   dispatcher,
		journal:      journal,
		writeTimeout: writeTimeout,
	}
}

func (a *Acceptor) Run(ctx context.Context) error {
	// Closing the listener is the only way to unblock Accept.
	go func() {
		<-ctx.Done()
		_ = a.listener.Close()
	}()

	a.log.Info("Accepting connections", "address", a.listener.Addr().String())
	for {
		conn, err := a.listener.Accept()
		if err != nil {
			if ctx.Err() != nil || stderrors.Is(err, net.ErrClosed) {
				a.log.Info("Acceptor stopped")
				return nil
			}
			a.log.Error("Accept failed", "error", err)
			continue
		}

		host, _, splitErr := net.SplitHostPort(conn.RemoteAddr().String())
		if splitErr != nil {
			host = conn.RemoteAddr().String()
		}
		if !a.filter.Allow(ctx, host) {
			a.journal.Record(fmt.Sprintf("Blocked connection from %s", host))
			_ = conn.Close()
			continue
		}

		session := NewSession(conn, a.log, a.registry, a.dispatcher, a.journal, a.writeTimeout)
		go func() {
			_ = session.Run(ctx)
		}()
	}
}
