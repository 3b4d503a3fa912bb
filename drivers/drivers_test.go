package drivers

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func stubOpen(Target, WarningSink) (*sql.DB, error) {
	return nil, errors.New("stub opener")
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want DriverID
	}{
		{"jtds", "jdbc:jtds:sqlserver://db1:1433/master", DriverJTDS},
		{"sqlserver", "jdbc:sqlserver://db1:1433;databaseName=master", DriverSQLServer},
		{"mysql", "jdbc:mysql://db1:3306/shop", DriverMySQL},
		{"oracle thin", "jdbc:oracle:thin:@//db1:1521/ORCL", DriverOracle},
		{"postgresql", "jdbc:postgresql://db1:5432/shop", DriverPostgreSQL},
		{"informix sqli", "jdbc:informix-sqli://db1:9088/stores", DriverInformix},
		{"informix direct", "jdbc:informix-direct://stores", DriverInformix},
		{"derby", "jdbc:derby:memory:testdb", DriverDerby},
		{"h2", "jdbc:h2:mem:testdb", DriverH2},
	}

	reg := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fam, err := reg.Resolve(tt.url)
			if err != nil {
				t.Fatalf("Resolve(%q) failed: %v", tt.url, err)
			}
			if fam.ID != tt.want {
				t.Errorf("Resolve(%q) = %s, want %s", tt.url, fam.ID, tt.want)
			}
		})
	}
}

func TestResolveUnknownPrefix(t *testing.T) {
	reg := New()
	for _, url := range []string{"jdbc:sqlite:test.db", "postgres://db1/shop", ""} {
		_, err := reg.Resolve(url)
		var unsupported *ErrUnsupportedTarget
		if !errors.As(err, &unsupported) {
			t.Errorf("Resolve(%q) = %v, want ErrUnsupportedTarget", url, err)
		}
	}
}

func TestEnsureActivatedOnce(t *testing.T) {
	reg := New()
	var calls atomic.Int32
	err := reg.Register(Family{
		ID:       "stub",
		Prefixes: []string{"jdbc:stub:"},
		Activate: func(bool) error {
			calls.Add(1)
			return nil
		},
		Open: stubOpen,
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	const callers = 16
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = reg.EnsureActivated("stub", true)
		}()
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("caller %d: %v", i, err)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("activation ran %d times, want 1", got)
	}
	if got := reg.Activated(); len(got) != 1 || got[0] != "stub" {
		t.Errorf("Activated() = %v, want [stub]", got)
	}
}

func TestEnsureActivatedFailureAllowsRetry(t *testing.T) {
	reg := New()
	var calls atomic.Int32
	if err := reg.Register(Family{
		ID:       "flaky",
		Prefixes: []string{"jdbc:flaky:"},
		Activate: func(bool) error {
			if calls.Add(1) == 1 {
				return errors.New("library missing")
			}
			return nil
		},
		Open: stubOpen,
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	err := reg.EnsureActivated("flaky", true)
	var activation *ErrActivation
	if !errors.As(err, &activation) {
		t.Fatalf("first attempt = %v, want ErrActivation", err)
	}
	if activation.Driver != "flaky" {
		t.Errorf("ErrActivation.Driver = %s, want flaky", activation.Driver)
	}
	if len(reg.Activated()) != 0 {
		t.Errorf("failed activation was recorded: %v", reg.Activated())
	}

	if err := reg.EnsureActivated("flaky", true); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("activation ran %d times, want 2", got)
	}
}

func TestEnsureActivatedDistinctFamiliesDoNotBlock(t *testing.T) {
	reg := New()
	release := make(chan struct{})
	entered := make(chan struct{})

	mustRegister := func(f Family) {
		t.Helper()
		if err := reg.Register(f); err != nil {
			t.Fatalf("Register(%s) failed: %v", f.ID, err)
		}
	}
	mustRegister(Family{
		ID:       "slow",
		Prefixes: []string{"jdbc:slow:"},
		Activate: func(bool) error {
			close(entered)
			<-release
			return nil
		},
		Open: stubOpen,
	})
	mustRegister(Family{
		ID:       "fast",
		Prefixes: []string{"jdbc:fast:"},
		Open:     stubOpen,
	})

	go reg.EnsureActivated("slow", true)
	<-entered

	done := make(chan error, 1)
	go func() { done <- reg.EnsureActivated("fast", true) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("fast activation failed: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("activation of a different family blocked behind an in-flight one")
	}
	close(release)
}

func TestEnsureActivatedUnknownFamily(t *testing.T) {
	reg := New()
	err := reg.EnsureActivated("nope", true)
	var activation *ErrActivation
	if !errors.As(err, &activation) {
		t.Fatalf("EnsureActivated(nope) = %v, want ErrActivation", err)
	}
}

func TestRegisterRejectsOverlap(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
	}{
		{"same prefix", "jdbc:mysql:"},
		{"shorter prefix", "jdbc:my"},
		{"longer prefix", "jdbc:mysql://special"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := New()
			err := reg.Register(Family{
				ID:       "other",
				Prefixes: []string{tt.prefix},
				Open:     stubOpen,
			})
			if err == nil {
				t.Errorf("Register with prefix %q succeeded, want overlap error", tt.prefix)
			}
		})
	}
}

func TestRegisterReplacesSameFamily(t *testing.T) {
	reg := New()
	if err := reg.EnsureActivated(DriverH2, true); err == nil {
		t.Fatal("built-in h2 activation succeeded, want missing-driver error")
	}

	if err := reg.Register(Family{
		ID:       DriverH2,
		Prefixes: []string{"jdbc:h2:"},
		Open:     stubOpen,
	}); err != nil {
		t.Fatalf("replacing h2 family failed: %v", err)
	}

	if err := reg.EnsureActivated(DriverH2, true); err != nil {
		t.Fatalf("activation after replacement failed: %v", err)
	}

	fam, err := reg.Resolve("jdbc:h2:mem:testdb")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if fam.ID != DriverH2 {
		t.Errorf("Resolve = %s, want %s", fam.ID, DriverH2)
	}
}

func TestRegisterValidation(t *testing.T) {
	reg := New()
	tests := []struct {
		name string
		fam  Family
	}{
		{"empty id", Family{Prefixes: []string{"jdbc:x:"}, Open: stubOpen}},
		{"no prefixes", Family{ID: "x", Open: stubOpen}},
		{"no opener", Family{ID: "x", Prefixes: []string{"jdbc:x:"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := reg.Register(tt.fam); err == nil {
				t.Error("Register succeeded, want validation error")
			}
		})
	}
}

func TestActivatedSnapshot(t *testing.T) {
	reg := New()
	for _, id := range []DriverID{"b", "a"} {
		if err := reg.Register(Family{
			ID:       id,
			Prefixes: []string{fmt.Sprintf("jdbc:%s:", id)},
			Open:     stubOpen,
		}); err != nil {
			t.Fatalf("Register(%s) failed: %v", id, err)
		}
		if err := reg.EnsureActivated(id, true); err != nil {
			t.Fatalf("EnsureActivated(%s) failed: %v", id, err)
		}
	}

	got := reg.Activated()
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Activated() = %v, want [a b]", got)
	}
}
