package engine

import (
	"log/slog"
	"os"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func fillConstant(table []uint16, rampSize int) {
	for i := range table {
		table[i] = uint16(i)
	}
}

func TestRegistry_AddRequestsGamma(t *testing.T) {
	svc := newFakeService()
	reg := NewRegistry(svc, testLogger())

	reg.Add(7)

	if len(svc.requested) != 1 || svc.requested[0] != 7 {
		t.Fatalf("expected gamma request for output 7, got %v", svc.requested)
	}
	if len(reg.ReadyOutputs()) != 0 {
		t.Errorf("output must not be ready before its ramp size arrives")
	}
}

func TestRegistry_AddWithoutManagerStaysUnmanaged(t *testing.T) {
	svc := newFakeService()
	svc.hasManager = false
	reg := NewRegistry(svc, testLogger())

	reg.Add(7)

	if len(svc.requested) != 0 {
		t.Errorf("no gamma request expected without a manager, got %v", svc.requested)
	}
}

func TestRegistry_ReadyAfterGammaSize(t *testing.T) {
	svc := newFakeService()
	reg := NewRegistry(svc, testLogger())
	defer reg.Close()

	reg.Add(7)
	if err := reg.SetGammaSize(7, 256); err != nil {
		t.Fatalf("SetGammaSize: %v", err)
	}

	ready := reg.ReadyOutputs()
	if len(ready) != 1 || ready[0] != 7 {
		t.Fatalf("ready outputs = %v, want [7]", ready)
	}
	if !reg.NeedsPush() {
		t.Errorf("freshly ready output must be flagged for an initial push")
	}
}

func TestRegistry_PushClearsInitialFlag(t *testing.T) {
	svc := newFakeService()
	reg := NewRegistry(svc, testLogger())
	defer reg.Close()

	reg.Add(7)
	if err := reg.SetGammaSize(7, 16); err != nil {
		t.Fatalf("SetGammaSize: %v", err)
	}

	pushed, err := reg.Push(fillConstant, false)
	if err != nil {
		t.Fatalf("Push: %v", err)
	}
	if pushed != 1 {
		t.Fatalf("pushed = %d, want 1", pushed)
	}
	if reg.NeedsPush() {
		t.Errorf("initial push flag must be cleared after a push")
	}
	if len(svc.submitted) != 1 || svc.submitted[0] != 7 {
		t.Errorf("submitted = %v, want [7]", svc.submitted)
	}
}

func TestRegistry_PushOnlyStaleSkipsCurrentOutputs(t *testing.T) {
	svc := newFakeService()
	reg := NewRegistry(svc, testLogger())
	defer reg.Close()

	reg.Add(1)
	reg.Add(2)
	if err := reg.SetGammaSize(1, 16); err != nil {
		t.Fatal(err)
	}
	if _, err := reg.Push(fillConstant, false); err != nil {
		t.Fatal(err)
	}

	// Output 2 becomes ready later; an only-stale push must reach it alone.
	if err := reg.SetGammaSize(2, 32); err != nil {
		t.Fatal(err)
	}
	pushed, err := reg.Push(fillConstant, true)
	if err != nil {
		t.Fatal(err)
	}
	if pushed != 1 {
		t.Fatalf("pushed = %d, want 1", pushed)
	}
	if last := svc.submitted[len(svc.submitted)-1]; last != 2 {
		t.Errorf("last submission went to output %d, want 2", last)
	}
}

func TestRegistry_FailureIsSticky(t *testing.T) {
	svc := newFakeService()
	reg := NewRegistry(svc, testLogger())
	defer reg.Close()

	reg.Add(7)
	reg.SetFailed(7)

	if len(svc.released) != 1 || svc.released[0] != 7 {
		t.Errorf("expected gamma release for failed output, got %v", svc.released)
	}

	// A stray gamma size after the failure must not resurrect the output.
	if err := reg.SetGammaSize(7, 256); err != nil {
		t.Fatalf("SetGammaSize after failure: %v", err)
	}
	if len(reg.ReadyOutputs()) != 0 {
		t.Errorf("failed output must stay unmanaged for the process lifetime")
	}
	if reg.NeedsPush() {
		t.Errorf("failed output must not request pushes")
	}
}

func TestRegistry_RemoveReleasesResources(t *testing.T) {
	svc := newFakeService()
	reg := NewRegistry(svc, testLogger())

	reg.Add(7)
	if err := reg.SetGammaSize(7, 16); err != nil {
		t.Fatal(err)
	}
	reg.Remove(7)

	if len(svc.released) != 1 || svc.released[0] != 7 {
		t.Errorf("expected gamma release on removal, got %v", svc.released)
	}
	if len(reg.ReadyOutputs()) != 0 {
		t.Errorf("removed output still listed as ready")
	}

	// Removing twice is harmless.
	reg.Remove(7)
}
