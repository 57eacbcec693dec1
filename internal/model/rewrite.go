package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownProfile is returned for audience profiles outside the known set
var ErrUnknownProfile = errors.New("profile must be startup | enterprise | general")

// ProfileID identifies a target audience
type ProfileID string

const (
	ProfileStartup    ProfileID = "startup"
	ProfileEnterprise ProfileID = "enterprise"
	ProfileGeneral    ProfileID = "general"
)

// ProfileIDs lists every supported audience
var ProfileIDs = []ProfileID{ProfileStartup, ProfileEnterprise, ProfileGeneral}

// ParseProfileID validates a raw profile identifier
func ParseProfileID(raw string) (ProfileID, error) {
	id := ProfileID(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range ProfileIDs {
		if id == known {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w (got %q)", ErrUnknownProfile, raw)
}

// Strength controls how freely the generator may rewrite
type Strength string

const (
	StrengthConservative Strength = "conservative"
	StrengthModerate     Strength = "moderate"
	StrengthAggressive   Strength = "aggressive"
)

// ParseStrength maps a raw value to a strength; unknown values become moderate
func ParseStrength(raw string) Strength {
	switch s := Strength(strings.ToLower(strings.TrimSpace(raw))); s {
	case StrengthConservative, StrengthModerate, StrengthAggressive:
		return s
	default:
		return StrengthModerate
	}
}

// Temperature returns the sampling temperature for the strength.
// Values increase monotonically from conservative to aggressive.
func (s Strength) Temperature() float32 {
	switch s {
	case StrengthConservative:
		return 0.2
	case StrengthAggressive:
		return 0.6
	default:
		return 0.4
	}
}

// RuleID names the rewrite rule a generator reports having applied
type RuleID string

const (
	RuleTone        RuleID = "TONE"
	RuleClarity     RuleID = "CLARITY"
	RuleJargon      RuleID = "JARGON"
	RuleConsistency RuleID = "CONSISTENCY"
)

// ParseRuleID clamps a reported rule to the known set, defaulting to CLARITY
func ParseRuleID(raw string) RuleID {
	switch r := RuleID(raw); r {
	case RuleTone, RuleClarity, RuleJargon, RuleConsistency:
		return r
	default:
		return RuleClarity
	}
}

// RewriteAttempt is the normalized output of one generation call.
// Every field is always populated.
type RewriteAttempt struct {
	Rewritten string `json:"rewritten"`
	Reason    string `json:"reason"`
	RuleID    RuleID `json:"rule_id"`
}

// NodeRewriteResult is the final outcome for one text chunk.
// Either Validation.OK is true or Rewritten equals the original text.
type NodeRewriteResult struct {
	Rewritten  string           `json:"rewritten"`
	Reason     string           `json:"reason"`
	RuleID     RuleID           `json:"rule_id"`
	Warnings   []string         `json:"warnings"`
	Validation ValidationResult `json:"validation"`
}
