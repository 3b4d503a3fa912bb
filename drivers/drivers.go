// Package drivers maps connection URL prefixes to database driver
// families and guarantees each family is activated at most once per
// process, under concurrent use.
package drivers

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// DriverID names one supported database-family driver.
type DriverID string

// Built-in driver families.
const (
	DriverJTDS       DriverID = "jtds"
	DriverSQLServer  DriverID = "sqlserver"
	DriverMySQL      DriverID = "mysql"
	DriverOracle     DriverID = "oracle"
	DriverPostgreSQL DriverID = "postgresql"
	DriverInformix   DriverID = "informix"
	DriverDerby      DriverID = "derby"
	DriverH2         DriverID = "h2"
)

// Target describes where to connect and with which credentials.
// Password is sensitive: it is never logged and callers may zero the
// slice once the call returns.
type Target struct {
	URL      string
	Username string
	Password []byte
}

// HasCredentials reports whether both a username and a password were
// supplied. Connections without credentials use the driver's
// anonymous form.
func (t Target) HasCredentials() bool {
	return t.Username != "" && t.Password != nil
}

// WarningSink receives server-emitted warning messages in arrival
// order. A nil sink disables collection.
type WarningSink func(message string)

// Family wires one database family: its URL prefixes, an optional
// one-time activation hook and the connection opener.
type Family struct {
	ID DriverID

	// Prefixes are matched exactly and case-sensitively against the
	// start of a connection URL.
	Prefixes []string

	// Activate runs once per process before the first connection for
	// this family. Quiet asks the hook to silence driver logging that
	// is known to be verbose.
	Activate func(quiet bool) error

	// Open translates the connection URL into the Go driver's native
	// DSN, injects credentials and returns an open handle. Drivers
	// that can surface server notices wire them into warn.
	Open func(t Target, warn WarningSink) (*sql.DB, error)
}

// ErrUnsupportedTarget marks a connection URL that no known family
// prefix matches.
type ErrUnsupportedTarget struct {
	URL string
}

func (e *ErrUnsupportedTarget) Error() string {
	return fmt.Sprintf("no suitable driver for connection URL: %s", e.URL)
}

// ErrActivation marks a driver family that could not be activated.
type ErrActivation struct {
	Driver DriverID
	Cause  error
}

func (e *ErrActivation) Error() string {
	return fmt.Sprintf("activating driver %s: %v", e.Driver, e.Cause)
}

func (e *ErrActivation) Unwrap() error {
	return e.Cause
}

type prefixEntry struct {
	prefix string
	id     DriverID
}

// Registry resolves connection URLs to driver families and records
// which families have been activated. Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	prefixes []prefixEntry // longest prefix first
	families map[DriverID]Family
	active   map[DriverID]bool
	locks    map[DriverID]*sync.Mutex
}

// New returns a registry preloaded with the built-in families.
func New() *Registry {
	r := &Registry{
		families: make(map[DriverID]Family),
		active:   make(map[DriverID]bool),
		locks:    make(map[DriverID]*sync.Mutex),
	}
	for _, f := range builtinFamilies() {
		r.add(f)
	}
	return r
}

// Default backs the package-level execution entry point.
var Default = New()

func builtinFamilies() []Family {
	return []Family{
		jtdsFamily(),
		sqlserverFamily(),
		mysqlFamily(),
		oracleFamily(),
		postgresFamily(),
		missingFamily(DriverInformix, "jdbc:informix-sqli:", "jdbc:informix-direct:"),
		missingFamily(DriverDerby, "jdbc:derby:"),
		missingFamily(DriverH2, "jdbc:h2:"),
	}
}

// Register adds a family or replaces the one with the same ID.
// Replacing is how callers plug a driver for families that ship
// without one (Informix, Derby, H2) or add new engines. Prefixes may
// not overlap those of a different family.
func (r *Registry) Register(f Family) error {
	if f.ID == "" {
		return errors.New("drivers: family ID cannot be empty")
	}
	if len(f.Prefixes) == 0 {
		return fmt.Errorf("drivers: family %s has no URL prefixes", f.ID)
	}
	if f.Open == nil {
		return fmt.Errorf("drivers: family %s has no opener", f.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range f.Prefixes {
		for _, e := range r.prefixes {
			if e.id == f.ID {
				continue
			}
			if strings.HasPrefix(p, e.prefix) || strings.HasPrefix(e.prefix, p) {
				return fmt.Errorf("drivers: prefix %q overlaps %q of family %s", p, e.prefix, e.id)
			}
		}
	}

	r.addLocked(f)
	return nil
}

func (r *Registry) add(f Family) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.addLocked(f)
}

func (r *Registry) addLocked(f Family) {
	if _, ok := r.families[f.ID]; ok {
		kept := r.prefixes[:0]
		for _, e := range r.prefixes {
			if e.id != f.ID {
				kept = append(kept, e)
			}
		}
		r.prefixes = kept
		// A replaced family must re-run its own activation.
		delete(r.active, f.ID)
	}

	r.families[f.ID] = f
	for _, p := range f.Prefixes {
		r.prefixes = append(r.prefixes, prefixEntry{prefix: p, id: f.ID})
	}
	sort.Slice(r.prefixes, func(i, j int) bool {
		if len(r.prefixes[i].prefix) != len(r.prefixes[j].prefix) {
			return len(r.prefixes[i].prefix) > len(r.prefixes[j].prefix)
		}
		return r.prefixes[i].prefix < r.prefixes[j].prefix
	})

	if _, ok := r.locks[f.ID]; !ok {
		r.locks[f.ID] = &sync.Mutex{}
	}
}

// Resolve returns the family whose prefix matches the connection URL.
func (r *Registry) Resolve(url string) (Family, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.prefixes {
		if strings.HasPrefix(url, e.prefix) {
			return r.families[e.id], nil
		}
	}
	return Family{}, &ErrUnsupportedTarget{URL: url}
}

// EnsureActivated runs the family's activation hook exactly once per
// process. Callers racing on the same family block until the winner
// finishes; different families activate independently. A failed
// activation is not recorded, so a later call retries it.
func (r *Registry) EnsureActivated(id DriverID, quiet bool) error {
	r.mu.RLock()
	fam, known := r.families[id]
	done := known && r.active[id]
	lock := r.locks[id]
	r.mu.RUnlock()

	if !known {
		return &ErrActivation{Driver: id, Cause: fmt.Errorf("unknown driver family %q", id)}
	}
	if done {
		return nil
	}

	lock.Lock()
	defer lock.Unlock()

	r.mu.RLock()
	done = r.active[id]
	fam = r.families[id]
	r.mu.RUnlock()
	if done {
		return nil
	}

	if fam.Activate != nil {
		if err := fam.Activate(quiet); err != nil {
			return &ErrActivation{Driver: id, Cause: err}
		}
	}

	r.mu.Lock()
	r.active[id] = true
	r.mu.Unlock()
	return nil
}

// Activated returns a sorted snapshot of the activated families.
func (r *Registry) Activated() []DriverID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]DriverID, 0, len(r.active))
	for id, on := range r.active {
		if on {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// missingFamily keeps a prefix resolvable for families that have no
// native Go driver. Activation fails until a replacement family is
// registered, the same way a missing driver library would.
func missingFamily(id DriverID, prefixes ...string) Family {
	fail := func() error {
		return fmt.Errorf("no Go driver available for %s; register a replacement family", id)
	}
	return Family{
		ID:       id,
		Prefixes: prefixes,
		Activate: func(bool) error { return fail() },
		Open: func(Target, WarningSink) (*sql.DB, error) {
			return nil, fail()
		},
	}
}
