package triage

import (
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"
)

const defaultSLAHours = 24

// Policy maps path prefixes to labels and owners and carries triage knobs.
// Loaded once at startup and replaceable atomically at runtime; readers
// always see an immutable snapshot.
type Policy struct {
	Labels           map[string][]string `yaml:"labels"`
	Owners           map[string][]string `yaml:"owners"`
	AutoApprovePaths []string            `yaml:"auto_approve_paths"`
	ProtectedPaths   map[string][]string `yaml:"protected_paths"`
	SLAHours         int                 `yaml:"sla_hours"`
}

func (p *Policy) PrepareAndValidate() error {
	p.SLAHours = lang.Check(p.SLAHours, defaultSLAHours)
	if p.Labels == nil {
		p.Labels = map[string][]string{}
	}
	if p.Owners == nil {
		p.Owners = map[string][]string{}
	}
	if p.ProtectedPaths == nil {
		p.ProtectedPaths = map[string][]string{}
	}
	return nil
}

// LoadPolicy reads a policy file. A missing path yields an empty policy;
// a malformed file is a fatal configuration error.
func LoadPolicy(path string) (*Policy, error) {
	policy := &Policy{}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, policy); err != nil {
				return nil, errm.Wrap(err, "read policy file")
			}
		}
	}
	if err := policy.PrepareAndValidate(); err != nil {
		return nil, errm.Wrap(err, "validate policy")
	}
	return policy, nil
}
