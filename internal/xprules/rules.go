// Package xprules computes the XP cost of trait improvements.
package xprules

import (
	"fmt"

	"github.com/ppiankov/xpbridge/internal/model"
)

// maxDotValue bounds any per-dot calculation regardless of category
const maxDotValue = 10

// Rule prices one spend category. Exactly one of Multiplier, FlatCost or
// LevelMultiplier is set.
type Rule struct {
	Description     string
	MinDots         int
	MaxDots         int
	Multiplier      int
	FlatCost        int
	LevelMultiplier int
}

// Costs holds the rule for every model.SpendCategories entry
var Costs = map[model.SpendCategory]Rule{
	model.SpendAttribute:          {Multiplier: 5, Description: "New rating × 5 per dot", MinDots: 1, MaxDots: 5},
	model.SpendSkill:              {Multiplier: 3, Description: "New rating × 3 per dot", MinDots: 1, MaxDots: 5},
	model.SpendNewSkill:           {FlatCost: 3, Description: "3 XP (0 -> 1)", MinDots: 0, MaxDots: 1},
	model.SpendDisciplineInClan:   {Multiplier: 5, Description: "New rating × 5 per dot", MinDots: 0, MaxDots: 5},
	model.SpendDisciplineOutClan:  {Multiplier: 7, Description: "New rating × 7 per dot", MinDots: 0, MaxDots: 5},
	model.SpendCaitiffDiscipline:  {Multiplier: 6, Description: "New rating × 6 per dot", MinDots: 0, MaxDots: 5},
	model.SpendBloodSorceryRitual: {LevelMultiplier: 3, Description: "Ritual level × 3", MinDots: 0, MaxDots: 5},
	model.SpendThinBloodFormula:   {LevelMultiplier: 3, Description: "Formula level × 3", MinDots: 0, MaxDots: 5},
	model.SpendAdvantage:          {Multiplier: 3, Description: "New rating × 3 per dot", MinDots: 0, MaxDots: 5},
}

// Validation is the outcome of checking a player's stated cost
type Validation struct {
	Valid       bool
	CorrectCost int
	Matches     bool
	Message     string
	Description string
}

// CalculateXPCost returns the XP needed to raise a trait in category from
// current to next dots
func CalculateXPCost(category model.SpendCategory, current, next int) (int, error) {
	rule, ok := Costs[category]
	if !ok {
		return 0, fmt.Errorf("unknown spend category %q", category)
	}

	if current < rule.MinDots {
		return 0, fmt.Errorf("%s: current dots (%d) below minimum (%d)", category, current, rule.MinDots)
	}
	if next > rule.MaxDots {
		return 0, fmt.Errorf("%s: new dots (%d) above maximum (%d)", category, next, rule.MaxDots)
	}

	switch {
	case rule.FlatCost > 0:
		if current != 0 || next != 1 {
			return 0, fmt.Errorf("%s: must be 0 -> 1 (got %d -> %d)", category, current, next)
		}
		return rule.FlatCost, nil
	case rule.LevelMultiplier > 0:
		// rituals and formulas are bought by level, not dot by dot
		return next * rule.LevelMultiplier, nil
	default:
		return costPerDot(rule.Multiplier, current, next)
	}
}

// ValidateSpendRequest compares playerCost with the computed cost. Invalid
// requests are reported in the result rather than as an error.
func ValidateSpendRequest(category model.SpendCategory, current, next, playerCost int) Validation {
	cost, err := CalculateXPCost(category, current, next)
	if err != nil {
		return Validation{Message: err.Error()}
	}

	v := Validation{
		Valid:       true,
		CorrectCost: cost,
		Matches:     cost == playerCost,
		Description: Costs[category].Description,
	}
	if v.Matches {
		v.Message = fmt.Sprintf("Cost verified: %d XP", cost)
	} else {
		v.Message = fmt.Sprintf("Cost mismatch: player submitted %d XP, correct cost is %d XP", playerCost, cost)
	}
	return v
}

func costPerDot(multiplier, current, next int) (int, error) {
	if next <= current {
		return 0, fmt.Errorf("New dots (%d) must be greater than current (%d)", next, current)
	}
	if current < 0 || next > maxDotValue {
		return 0, fmt.Errorf("Dot values must be between 0 and %d", maxDotValue)
	}

	total := 0
	for dot := current + 1; dot <= next; dot++ {
		total += dot * multiplier
	}
	return total, nil
}
