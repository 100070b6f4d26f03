package domain

// LocalGameState classifies one locally detected software unit.
// Running implies Installed.
type LocalGameState int

const (
	StateNone LocalGameState = iota
	StateInstalled
	StateRunning
)

func (s LocalGameState) String() string {
	switch s {
	case StateInstalled:
		return "installed"
	case StateRunning:
		return "running"
	default:
		return "none"
	}
}

// LocalGame is one entry of a reconciliation snapshot. Snapshots are
// ephemeral; only their diffs leave the reconciler.
type LocalGame struct {
	GameID GameID
	State  LocalGameState
}

// Install-status code the manifest reports for a completely installed
// unit.
const InstallStatusReady = 5

// ManifestEntry is one locally detected software unit from the install
// manifest.
type ManifestEntry struct {
	SoftwareID     string
	BaseSlug       GameSlug
	OfferID        OfferID
	ExecutablePath string
	ExecuteCheck   string
	InstallStatus  int
}

// DiffStates computes the minimal set of state transitions between two
// snapshots: ids gone from old emit StateNone, new ids emit their
// state, ids present in both emit only when the state changed.
func DiffStates(old, new []LocalGame) []LocalGame {
	oldStates := make(map[GameID]LocalGameState, len(old))
	for _, g := range old {
		oldStates[g.GameID] = g.State
	}
	newStates := make(map[GameID]LocalGameState, len(new))
	for _, g := range new {
		newStates[g.GameID] = g.State
	}

	var changes []LocalGame
	for _, g := range old {
		if _, ok := newStates[g.GameID]; !ok {
			changes = append(changes, LocalGame{GameID: g.GameID, State: StateNone})
		}
	}
	for _, g := range new {
		prev, existed := oldStates[g.GameID]
		if !existed || prev != g.State {
			changes = append(changes, g)
		}
	}
	return changes
}
