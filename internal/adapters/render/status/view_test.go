package status

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/BellezaEmporium/galaxy-integration-ead/internal/domain"
)

func TestRenderEmptyLibrary(t *testing.T) {
	out := Render(Report{DisplayName: "tester", Authenticated: true}, RenderOptions{})

	assert.Contains(t, out, "EA Desktop Library")
	assert.Contains(t, out, "signed in as tester")
	assert.Contains(t, out, "No games in library.")
}

func TestRenderNotAuthenticated(t *testing.T) {
	out := Render(Report{}, RenderOptions{})
	assert.Contains(t, out, "not authenticated")
}

func TestRenderSortsGamesByTitle(t *testing.T) {
	lastPlayed := int64(1709222423)
	out := Render(Report{
		DisplayName:   "tester",
		Authenticated: true,
		Games: []GameRow{
			{Title: "Zulu", ID: "Z", State: domain.StateInstalled, TotalMinutes: 30},
			{Title: "Alpha", ID: "A", State: domain.StateRunning, TotalMinutes: 91, LastPlayed: &lastPlayed},
		},
	}, RenderOptions{Now: time.Unix(1709300000, 0)})

	assert.Less(t, strings.Index(out, "Alpha"), strings.Index(out, "Zulu"))
	assert.Contains(t, out, "running")
	assert.Contains(t, out, "1h 31m played")
	assert.Contains(t, out, "30m played")
	assert.Contains(t, out, "last played")
}
