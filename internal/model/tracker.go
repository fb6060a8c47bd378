package model

// XpSummary is the per-character XP ledger returned by the web app
type XpSummary struct {
	CharacterName string  `json:"characterName"`
	EarnedXP      float64 `json:"earnedXp"`
	TotalXP       float64 `json:"totalXp"`
	TotalSpends   float64 `json:"totalSpends"`
	AvailableXP   float64 `json:"availableXp"`
}

// ClaimPayload is the body of POST /api/claims.
// Categories maps a claim category key to its evidence link.
type ClaimPayload struct {
	CharacterName string            `json:"characterName"`
	PlayPeriod    string            `json:"playPeriod"`
	Categories    map[string]string `json:"categories"`
}

// SpendCategory names a trait family an XP spend can target
type SpendCategory string

const (
	SpendAttribute          SpendCategory = "Attribute"
	SpendSkill              SpendCategory = "Skill"
	SpendNewSkill           SpendCategory = "New Skill"
	SpendDisciplineInClan   SpendCategory = "Discipline (In-Clan)"
	SpendDisciplineOutClan  SpendCategory = "Discipline (Out-of-Clan)"
	SpendCaitiffDiscipline  SpendCategory = "Caitiff Discipline"
	SpendBloodSorceryRitual SpendCategory = "Blood Sorcery Ritual"
	SpendThinBloodFormula   SpendCategory = "Thin-Blood Alchemy Formula"
	SpendAdvantage          SpendCategory = "Advantage (Merit/Background)"
)

// SpendCategories lists every accepted spend category in display order
var SpendCategories = []SpendCategory{
	SpendAttribute,
	SpendSkill,
	SpendNewSkill,
	SpendDisciplineInClan,
	SpendDisciplineOutClan,
	SpendCaitiffDiscipline,
	SpendBloodSorceryRitual,
	SpendThinBloodFormula,
	SpendAdvantage,
}

// Valid reports whether c is one of SpendCategories
func (c SpendCategory) Valid() bool {
	for _, known := range SpendCategories {
		if c == known {
			return true
		}
	}
	return false
}

// SpendPayload is the body of POST /api/spends
type SpendPayload struct {
	CharacterName string        `json:"characterName"`
	SpendCategory SpendCategory `json:"spendCategory"`
	TraitName     string        `json:"traitName"`
	CurrentDots   int           `json:"currentDots"`
	NewDots       int           `json:"newDots"`
	IsInClan      bool          `json:"isInClan"`
	Justification string        `json:"justification"`
}

// SubmitResult is the outcome of a claim or spend submission.
// Failures are reported here rather than as errors.
type SubmitResult struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}
