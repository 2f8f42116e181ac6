package shield

import (
	"context"

	"tokenradar/internal/domain"
)

// SocialTier checks whether the token publishes any web or social
// presence. Absence is a weak risk signal, never a blocker.
type SocialTier struct{}

// NewSocialTier creates the social-presence tier.
func NewSocialTier() *SocialTier {
	return &SocialTier{}
}

func (t *SocialTier) Name() string { return TierSocial }

func (t *SocialTier) Evaluate(_ context.Context, _ *domain.Candidate, snap *domain.MarketSnapshot) domain.TierVerdict {
	if snap == nil {
		return domain.Unknown(TierSocial, "no market snapshot")
	}

	if !snap.HasWebsite && !snap.HasSocials {
		return domain.TierVerdict{
			Tier:   TierSocial,
			Level:  domain.LevelWarning,
			Reason: "no website or social links published",
		}
	}

	reason := "social presence confirmed:"
	if snap.HasWebsite {
		reason += " website"
	}
	if snap.HasSocials {
		reason += " socials"
	}
	return domain.TierVerdict{Tier: TierSocial, Level: domain.LevelOK, Reason: reason}
}
