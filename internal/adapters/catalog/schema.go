package catalog

import (
	"encoding/json"
	"time"
)

// Backend timestamps: ISO-8601 with fractional seconds and trailing Z.
const timeLayout = "2006-01-02T15:04:05.000Z"

// Billing timestamps carry no fractional part.
const billingTimeLayout = "2006-01-02T15:04:05"

func parseBackendTime(value string) (int64, error) {
	parsed, err := time.Parse(timeLayout, value)
	if err != nil {
		return 0, err
	}
	return parsed.Unix(), nil
}

func parseBillingTime(value string) (*int64, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(billingTimeLayout, value)
	if err != nil {
		return nil, err
	}
	unix := parsed.Unix()
	return &unix, nil
}

// flexString accepts both JSON strings and numbers; several identity
// fields switched between the two across backend revisions.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = flexString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*s = flexString(num.String())
	return nil
}

type playerPayload struct {
	PD          flexString `json:"pd"`
	PSD         flexString `json:"psd"`
	DisplayName string     `json:"displayName"`
}

type identityResponse struct {
	Data struct {
		Me struct {
			Player *playerPayload `json:"player"`
		} `json:"me"`
	} `json:"data"`
}

type entitlementsResponse struct {
	Data struct {
		Me struct {
			OwnedGameProducts struct {
				Items []struct {
					OriginOfferID string `json:"originOfferId"`
					Product       *struct {
						GameSlug string `json:"gameSlug"`
						BaseItem struct {
							GameType string `json:"gameType"`
						} `json:"baseItem"`
						GameProductUser struct {
							OwnershipMethods []string   `json:"ownershipMethods"`
							EntitlementID    flexString `json:"entitlementId"`
						} `json:"gameProductUser"`
					} `json:"product"`
				} `json:"items"`
			} `json:"ownedGameProducts"`
		} `json:"me"`
	} `json:"data"`
}

type offerResponse struct {
	Data struct {
		LegacyOffers []struct {
			OfferID                string     `json:"offerId"`
			ContentID              flexString `json:"contentId"`
			DisplayName            string     `json:"displayName"`
			AchievementSetOverride string     `json:"achievementSetOverride"`
			MultiplayerID          string     `json:"multiplayerId"`
			InstallCheckOverride   string     `json:"installCheckOverride"`
		} `json:"legacyOffers"`
		GameProducts struct {
			Items []struct {
				Name          string `json:"name"`
				OriginOfferID string `json:"originOfferId"`
				GameSlug      string `json:"gameSlug"`
			} `json:"items"`
		} `json:"gameProducts"`
	} `json:"data"`
}

type achievementSetPayload struct {
	ID           string `json:"id"`
	Achievements []struct {
		ID         string `json:"id"`
		Name       string `json:"name"`
		AwardCount int    `json:"awardCount"`
		Date       string `json:"date"`
	} `json:"achievements"`
}

type achievementsResponse struct {
	Data struct {
		Achievements []achievementSetPayload `json:"achievements"`
	} `json:"data"`
}

type recentGamesResponse struct {
	Data struct {
		Me struct {
			RecentGames struct {
				Items []struct {
					GameSlug             string `json:"gameSlug"`
					LastSessionEndDate   string `json:"lastSessionEndDate"`
					TotalPlayTimeSeconds int64  `json:"totalPlayTimeSeconds"`
				} `json:"items"`
			} `json:"recentGames"`
		} `json:"me"`
	} `json:"data"`
}

type friendsResponse struct {
	Data struct {
		Me struct {
			Friends struct {
				Items []struct {
					Player playerPayload `json:"player"`
				} `json:"items"`
			} `json:"friends"`
		} `json:"me"`
	} `json:"data"`
}

// privacySettingsPayload is the legacy XML shape used by the
// favorite/hidden game endpoints. The payload is a semicolon-delimited
// offer id list; hidden games additionally prefix it with "1.0|".
type privacySettingsPayload struct {
	Payload string `xml:"privacySetting>payload"`
}

type subscriptionURIsResponse struct {
	SubscriptionURI []string `json:"subscriptionUri"`
}

// Current backend variant: one nested subscription object.
type subscriptionDetailResponse struct {
	Subscription *struct {
		Status            string `json:"status"`
		SubscriptionLevel string `json:"subscriptionLevel"`
		NextBillingDate   string `json:"nextBillingDate"`
	} `json:"Subscription"`
}

// Legacy backend variant: a flat list of subscription entries.
type legacySubscriptionEntry struct {
	Status string `json:"status"`
	Level  string `json:"level"`
	End    string `json:"end"`
}

type vaultGamesResponse struct {
	Game []struct {
		DisplayName string `json:"displayName"`
		OfferID     string `json:"offerId"`
	} `json:"game"`
}
