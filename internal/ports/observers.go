package ports

import "github.com/BellezaEmporium/galaxy-integration-ead/internal/domain"

// SessionObserver receives session lifecycle events from the session
// manager. CookiesUpdated always carries the complete current cookie
// set so the host can persist it wholesale.
type SessionObserver interface {
	SessionLost()
	CookiesUpdated(cookies []domain.Cookie)
}

// LocalStateNotifier receives one event per detected local-state
// transition.
type LocalStateNotifier interface {
	LocalGameChanged(game domain.LocalGame)
}
