// Package profile loads audience profiles: ordered rule lists that steer
// how a rewrite is phrased for startup, enterprise or general readers.
package profile

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/contextcraft/internal/model"
)

//go:embed profiles/*.yaml
var builtin embed.FS

// RuleType classifies a profile rule
type RuleType string

const (
	RuleTone       RuleType = "tone"
	RuleStructural RuleType = "structural"
	RuleConstraint RuleType = "constraint"
)

// Rule is one audience instruction
type Rule struct {
	RuleID string   `yaml:"rule_id" json:"rule_id"`
	Type   RuleType `yaml:"type" json:"type"`
	Action string   `yaml:"action" json:"action"`
	Reason string   `yaml:"reason" json:"reason"`
}

// Profile is a named, validated rule list
type Profile struct {
	ID    model.ProfileID `yaml:"-" json:"id"`
	Rules []Rule          `yaml:"rules" json:"rules"`
}

// Parse decodes and validates a profile document
func Parse(id model.ProfileID, data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", id, err)
	}
	p.ID = id

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks that the profile has rules and every rule is well formed
func (p *Profile) Validate() error {
	if len(p.Rules) == 0 {
		return fmt.Errorf("profile %s: no rules", p.ID)
	}

	var errs []error
	for i, r := range p.Rules {
		if r.RuleID == "" {
			errs = append(errs, fmt.Errorf("rule %d: rule_id is empty", i))
		}
		switch r.Type {
		case RuleTone, RuleStructural, RuleConstraint:
		default:
			errs = append(errs, fmt.Errorf("rule %d: unknown type %q", i, r.Type))
		}
		if r.Action == "" {
			errs = append(errs, fmt.Errorf("rule %d: action is empty", i))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("profile %s: %w", p.ID, err)
	}
	return nil
}

// Load returns a built-in profile
func Load(id model.ProfileID) (*Profile, error) {
	data, err := builtin.ReadFile("profiles/" + string(id) + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("%w (got %q)", model.ErrUnknownProfile, id)
	}
	return Parse(id, data)
}

// LoadDir reads <id>.yaml overrides from dir. Missing files are skipped.
func LoadDir(dir string) (map[model.ProfileID]*Profile, error) {
	out := make(map[model.ProfileID]*Profile)
	for _, id := range model.ProfileIDs {
		data, err := os.ReadFile(filepath.Join(dir, string(id)+".yaml"))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read profile %s: %w", id, err)
		}

		p, err := Parse(id, data)
		if err != nil {
			return nil, err
		}
		out[id] = p
	}
	return out, nil
}

// Registry caches loaded profiles. Profiles from dir override built-ins.
type Registry struct {
	mu       sync.RWMutex
	dir      string
	profiles map[model.ProfileID]*Profile
}

// NewRegistry creates a registry; dir may be empty
func NewRegistry(dir string) *Registry {
	return &Registry{
		dir:      dir,
		profiles: make(map[model.ProfileID]*Profile),
	}
}

// Get returns the profile for id, loading it on first use
func (r *Registry) Get(id model.ProfileID) (*Profile, error) {
	r.mu.RLock()
	p, ok := r.profiles[id]
	r.mu.RUnlock()
	if ok {
		return p, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.profiles[id]; ok {
		return p, nil
	}

	if r.dir != "" {
		overrides, err := LoadDir(r.dir)
		if err != nil {
			return nil, err
		}
		for oid, op := range overrides {
			r.profiles[oid] = op
		}
		if p, ok := r.profiles[id]; ok {
			return p, nil
		}
	}

	p, err := Load(id)
	if err != nil {
		return nil, err
	}
	r.profiles[id] = p
	return p, nil
}
