package domain

// OfferID identifies a purchasable unit of game content on the backend,
// e.g. "Origin.OFR.50.0001672".
type OfferID string

// GameSlug is the human-readable stable identifier of a title,
// e.g. "battlefield-1". It links local install records to remote offers.
type GameSlug string

// GameID is an OfferID optionally tagged with the external store the
// entitlement was obtained through, e.g. "Origin.OFR.50.0001672@steam".
type GameID string

const (
	SuffixSteam        = "@steam"
	SuffixEpic         = "@epic"
	SuffixSubscription = "@subscription"
)

// OfferID strips any external-store suffix, yielding the offer-cache key.
func (id GameID) OfferID() OfferID {
	for i := 0; i < len(id); i++ {
		if id[i] == '@' {
			return OfferID(id[:i])
		}
	}
	return OfferID(id)
}

// Ownership methods reported on entitlements.
const (
	OwnershipSteam = "STEAM"
	OwnershipEpic  = "EPIC"
)

// GameIDFor derives the game id for an offer owned through the given
// store. Unrecognized stores yield the bare offer id.
func GameIDFor(offer OfferID, ownership string) GameID {
	switch ownership {
	case OwnershipSteam:
		return GameID(string(offer) + SuffixSteam)
	case OwnershipEpic:
		return GameID(string(offer) + SuffixEpic)
	default:
		return GameID(offer)
	}
}

// OfferRecord is the cached metadata for one offer. Once cached it is
// only ever replaced wholesale by a repeated fetch, never merged.
type OfferRecord struct {
	OfferID                OfferID
	DisplayName            string
	ContentID              string
	GameSlug               GameSlug
	InstallCheck           string
	AchievementSetOverride string
	MultiplayerID          string
}

const GameTypeBase = "BASE_GAME"

// Entitlement asserts that the account owns an offer, including the
// store it was obtained through.
type Entitlement struct {
	OfferID          OfferID
	GameSlug         GameSlug
	GameType         string
	OwnershipMethods []string
	EntitlementID    string
}

// GameID derives the suffixed id from the first ownership method.
func (e Entitlement) GameID() GameID {
	if len(e.OwnershipMethods) == 0 {
		return GameID(e.OfferID)
	}
	return GameIDFor(e.OfferID, e.OwnershipMethods[0])
}

// GameTimeRecord is the last-known play time for one game. LastPlayed
// is nil when the backend never reported a session end.
type GameTimeRecord struct {
	GameID       GameID
	TotalMinutes int
	LastPlayed   *int64
}

// Fresh reports whether the record can be served for the given
// remote-reported last-played timestamp. An unknown remote timestamp
// always forces a refetch since freshness cannot be verified.
func (r GameTimeRecord) Fresh(remoteLastPlayed *int64) bool {
	if remoteLastPlayed == nil || r.LastPlayed == nil {
		return false
	}
	return *remoteLastPlayed <= *r.LastPlayed
}

// Identity is the authenticated account, resolved once per session.
type Identity struct {
	UserID      string
	PersonaID   string
	DisplayName string
}

type Game struct {
	ID    GameID
	Title string
}

type Friend struct {
	UserID      string
	DisplayName string
}

type Achievement struct {
	ID         string
	Name       string
	UnlockTime int64
}

type Subscription struct {
	Name    string
	Owned   bool
	EndTime *int64
}

type SubscriptionGame struct {
	ID    GameID
	Title string
}

// Cookie is one session cookie name/value pair.
type Cookie struct {
	Name  string
	Value string
}
