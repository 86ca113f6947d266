//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"lan-chat/domain"
	"reflect"
)

// Peer is the delivery side of a connected session. The session worker
// keeps exclusive ownership of reads; Deliver is the only cross-session
// entry point and Teardown the only cross-session consequence.
type Peer interface {
	Deliver(text string) error
	Teardown()
}

// Entry is a registry snapshot element: identity plus delivery handle.
type Entry struct {
	ID      string
	Profile domain.Profile
	Peer    Peer
}

type IRegistry interface {
	Register(id string, peer Peer, profile domain.Profile) error
	Unregister(id string) (domain.Profile, bool)
	Snapshot() []Entry
	SetDnd(id string, enabled bool) bool
	FindByName(name string, caseInsensitive bool) (Entry, bool)
	Len() int
}

type IHistory interface {
	Append(line string) error
	Tail(n int) ([]string, error)
}

// AdmissionFilter decides whether a remote address may connect.
// Implementations must fail closed: when in doubt, deny.
type AdmissionFilter interface {
	Allow(ctx context.Context, remoteHost string) bool
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker
// lifecycle events, avoiding manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
