package projection

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type remoteChurch struct {
	ID     string
	Name   string
	Pastor *pastorRef
}

type pastorRef struct {
	ID        string
	FirstName string
	LastName  string
}

type churchForm struct {
	Name     string
	PastorID string
}

func projectChurch(r remoteChurch) churchForm {
	form := churchForm{Name: r.Name}
	if r.Pastor != nil {
		form.PastorID = r.Pastor.ID
	}
	return form
}

func newChurchProjector() *Projector[string, remoteChurch, churchForm] {
	return New[string, remoteChurch, churchForm](projectChurch)
}

func TestRefetchDoesNotRevertEdits(t *testing.T) {
	p := newChurchProjector()
	remote := remoteChurch{
		ID:     "A",
		Name:   "Iglesia Central",
		Pastor: &pastorRef{ID: "p1", FirstName: "Juan", LastName: "Pérez"},
	}

	p.Open(ModeEdit, "A")
	if got := p.Observe("A", remote, true); got != Populated {
		t.Fatalf("expected populated, got %s", got)
	}
	if diff := cmp.Diff(churchForm{Name: "Iglesia Central", PastorID: "p1"}, p.Local()); diff != "" {
		t.Fatalf("unexpected projection (-want +got):\n%s", diff)
	}

	p.Update(func(f *churchForm) { f.Name = "Iglesia Norte" })

	if got := p.Observe("A", remote, true); got != SkippedLatched {
		t.Fatalf("expected latched skip, got %s", got)
	}
	if p.Local().Name != "Iglesia Norte" {
		t.Fatalf("expected edit to survive refetch, got %q", p.Local().Name)
	}
}

func TestGuards(t *testing.T) {
	p := newChurchProjector()
	remote := remoteChurch{ID: "A", Name: "Central"}

	if got := p.Observe("A", remote, true); got != SkippedClosed {
		t.Fatalf("expected closed skip, got %s", got)
	}

	p.OpenCreate()
	if got := p.Observe("A", remote, true); got != SkippedNoTarget {
		t.Fatalf("expected no target skip, got %s", got)
	}

	p.Open(ModeEdit, "B")
	if got := p.Observe("B", remoteChurch{}, false); got != SkippedAbsent {
		t.Fatalf("expected absent skip, got %s", got)
	}
	if got := p.Observe("A", remote, true); got != SkippedStale {
		t.Fatalf("expected stale skip, got %s", got)
	}
	if p.Local() != (churchForm{}) {
		t.Fatalf("expected empty projection, got %+v", p.Local())
	}

	p.SetMode(ModeCreate)
	if got := p.Observe("B", remoteChurch{ID: "B"}, true); got != SkippedMode {
		t.Fatalf("expected mode skip, got %s", got)
	}
}

func TestSelectingNewTargetRepopulates(t *testing.T) {
	p := newChurchProjector()
	p.Open(ModeEdit, "A")
	p.Observe("A", remoteChurch{ID: "A", Name: "Central"}, true)
	p.Update(func(f *churchForm) { f.Name = "edited" })

	p.Select("A")
	if !p.Latched() {
		t.Fatal("expected re-selecting the same target to keep the latch")
	}

	p.Select("B")
	if p.Latched() {
		t.Fatal("expected new target to reset latch")
	}
	if got := p.Observe("B", remoteChurch{ID: "B", Name: "Norte"}, true); got != Populated {
		t.Fatalf("expected populated, got %s", got)
	}
	if p.Local().Name != "Norte" {
		t.Fatalf("expected full repopulation, got %q", p.Local().Name)
	}
}

func TestViewModeFollowsRemote(t *testing.T) {
	var populated []churchForm
	p := New[string, remoteChurch, churchForm](projectChurch, WithOnPopulate(func(f churchForm) {
		populated = append(populated, f)
	}))
	p.Open(ModeView, "A")
	p.Observe("A", remoteChurch{ID: "A", Name: "v1"}, true)
	p.Observe("A", remoteChurch{ID: "A", Name: "v2"}, true)

	if p.Local().Name != "v2" {
		t.Fatalf("expected view to follow remote, got %q", p.Local().Name)
	}
	if len(populated) != 2 {
		t.Fatalf("expected 2 populate callbacks, got %d", len(populated))
	}
}

func TestEnteringEditModeReopensLatch(t *testing.T) {
	p := newChurchProjector()
	p.Open(ModeEdit, "A")
	p.Observe("A", remoteChurch{ID: "A", Name: "v1"}, true)

	p.SetMode(ModeView)
	p.SetMode(ModeEdit)
	if got := p.Observe("A", remoteChurch{ID: "A", Name: "v2"}, true); got != Populated {
		t.Fatalf("expected new edit session to populate, got %s", got)
	}
}

func TestCloseStopsWrites(t *testing.T) {
	p := New[string, remoteChurch, churchForm](projectChurch, WithEmpty(func() churchForm {
		return churchForm{Name: "(new)"}
	}))
	p.Open(ModeEdit, "A")
	p.Observe("A", remoteChurch{ID: "A", Name: "Central"}, true)
	p.Close()

	if got := p.Observe("A", remoteChurch{ID: "A", Name: "late"}, true); got != SkippedClosed {
		t.Fatalf("expected closed skip, got %s", got)
	}
	if p.Update(func(f *churchForm) { f.Name = "late edit" }) {
		t.Fatal("expected edit after close to be rejected")
	}
	if p.Local().Name != "(new)" || p.Latched() || p.IsOpen() {
		t.Fatalf("expected reset projection, got %+v", p.Local())
	}
}

// Model based check over random transition sequences.
func TestProjectionMatchesModelForRandomSequences(t *testing.T) {
	ids := []string{"A", "B", "C"}
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 200; run++ {
		p := newChurchProjector()
		p.Open(ModeEdit, "A")

		target := "A"
		mode := ModeEdit
		latched := ""
		want := churchForm{}
		version := 0

		for step := 0; step < 40; step++ {
			switch rng.Intn(5) {
			case 0:
				next := ids[rng.Intn(len(ids))]
				p.Select(next)
				if next != target {
					latched = ""
				}
				target = next
			case 1:
				next := []Mode{ModeEdit, ModeView}[rng.Intn(2)]
				p.SetMode(next)
				if next != mode {
					latched = ""
				}
				mode = next
			case 2:
				p.Update(func(f *churchForm) { f.Name += "*" })
				want.Name += "*"
			default:
				version++
				id := ids[rng.Intn(len(ids))]
				remote := remoteChurch{ID: id, Name: id + string(rune('a'+version%26))}
				p.Observe(id, remote, true)
				if id == target && !(mode == ModeEdit && latched == target) {
					want = projectChurch(remote)
					if mode == ModeEdit {
						latched = target
					}
				}
			}
			if diff := cmp.Diff(want, p.Local()); diff != "" {
				t.Fatalf("run %d step %d: projection mismatch (-want +got):\n%s", run, step, diff)
			}
		}
	}
}
