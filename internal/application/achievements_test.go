package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BellezaEmporium/galaxy-integration-ead/internal/domain"
)

func newAchievementsFixture(catalog *fakeCatalog, cachedOffers map[domain.OfferID]domain.OfferRecord) *AchievementsService {
	offers := NewOfferService(catalog, &fakeOfferRepo{stored: cachedOffers})
	playTime := NewPlayTimeService(catalog, &fakePlayTimeRepo{})
	library := NewLibraryService(catalog, offers, playTime)
	return NewAchievementsService(catalog, offers, library)
}

func TestUnlockedUsesSetOverride(t *testing.T) {
	setIDQueried := false
	catalog := &fakeCatalog{
		achievementsFn: func(domain.OfferID) (map[string][]domain.Achievement, error) {
			return map[string][]domain.Achievement{
				"override-set": {{ID: "1", Name: "First Blood", UnlockTime: 1709222423}},
				"other-set":    {{ID: "9", Name: "Wrong Set"}},
			}, nil
		},
		setIDFn: func(domain.OfferID) (string, error) {
			setIDQueried = true
			return "other-set", nil
		},
	}
	service := newAchievementsFixture(catalog, map[domain.OfferID]domain.OfferRecord{
		"A": {OfferID: "A", AchievementSetOverride: "override-set"},
	})

	unlocked, err := service.Unlocked(context.Background(), "A@steam")
	require.NoError(t, err)
	require.Len(t, unlocked, 1)
	assert.Equal(t, "First Blood", unlocked[0].Name)
	assert.False(t, setIDQueried, "explicit override skips the backend mapping")
}

func TestUnlockedResolvesSetFromBackend(t *testing.T) {
	catalog := &fakeCatalog{
		achievementsFn: func(domain.OfferID) (map[string][]domain.Achievement, error) {
			return map[string][]domain.Achievement{
				"resolved-set": {{ID: "1", Name: "First Blood"}},
			}, nil
		},
		setIDFn: func(domain.OfferID) (string, error) {
			return "resolved-set", nil
		},
	}
	service := newAchievementsFixture(catalog, nil)

	unlocked, err := service.Unlocked(context.Background(), "A")
	require.NoError(t, err)
	require.Len(t, unlocked, 1)
}

func TestUnlockedEmptyWhenNoSet(t *testing.T) {
	catalog := &fakeCatalog{}
	service := newAchievementsFixture(catalog, nil)

	unlocked, err := service.Unlocked(context.Background(), "A")
	require.NoError(t, err)
	assert.Empty(t, unlocked)
	assert.NotNil(t, unlocked)
}

func TestPrepareIsolatesFailures(t *testing.T) {
	catalog := &fakeCatalog{
		achievementsFn: func(offer domain.OfferID) (map[string][]domain.Achievement, error) {
			if offer == "bad" {
				return nil, domain.ErrTransientBackend
			}
			return map[string][]domain.Achievement{"set": {{ID: "1"}}}, nil
		},
		setIDFn: func(domain.OfferID) (string, error) { return "set", nil },
	}
	service := newAchievementsFixture(catalog, nil)

	service.Prepare(context.Background(), []domain.GameID{"good", "bad"})

	unlocked, err := service.Unlocked(context.Background(), "good")
	require.NoError(t, err)
	assert.Len(t, unlocked, 1)
}
