// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package rbac maps roles to permissions using a policy document loaded
// from YAML or JSON.
package rbac

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync/atomic"

	"gopkg.in/yaml.v3"

	"github.com/olegiv/ocms-api/internal/model"
)

//go:embed default_policy.yaml
var defaultPolicyYAML []byte

// Policy is an immutable role to permission table.
type Policy struct {
	DefaultRole string              `yaml:"default_role" json:"default_role"`
	Roles       map[string][]string `yaml:"roles" json:"roles"`

	index map[string]map[string]struct{}
}

// DefaultPolicy returns the built-in policy.
func DefaultPolicy() *Policy {
	p, err := ParsePolicy(defaultPolicyYAML)
	if err != nil {
		panic(fmt.Sprintf("rbac: invalid embedded policy: %v", err))
	}
	return p
}

// ParsePolicy decodes and validates a policy. JSON documents are accepted
// because they are valid YAML.
func ParsePolicy(data []byte) (*Policy, error) {
	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding policy: %w", err)
	}
	if err := p.build(); err != nil {
		return nil, err
	}
	return &p, nil
}

// LoadPolicy reads a policy file. An empty path yields the built-in policy.
func LoadPolicy(path string) (*Policy, error) {
	if path == "" {
		return DefaultPolicy(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading policy %s: %w", path, err)
	}
	p, err := ParsePolicy(data)
	if err != nil {
		return nil, fmt.Errorf("policy %s: %w", path, err)
	}
	return p, nil
}

func (p *Policy) build() error {
	if len(p.Roles) == 0 {
		return fmt.Errorf("policy defines no roles")
	}
	p.DefaultRole = strings.TrimSpace(p.DefaultRole)
	if p.DefaultRole == "" {
		return fmt.Errorf("policy has no default_role")
	}
	if _, ok := p.Roles[p.DefaultRole]; !ok {
		return fmt.Errorf("default_role %q is not defined", p.DefaultRole)
	}

	known := model.AllPermissions()
	p.index = make(map[string]map[string]struct{}, len(p.Roles))
	for role, perms := range p.Roles {
		set := make(map[string]struct{}, len(perms))
		for _, perm := range perms {
			if !slices.Contains(known, perm) {
				return fmt.Errorf("role %q: unknown permission %q", role, perm)
			}
			set[perm] = struct{}{}
		}
		p.index[role] = set
	}
	return nil
}

// ResolveRole substitutes the default role for an empty one.
func (p *Policy) ResolveRole(role string) string {
	if role == "" {
		return p.DefaultRole
	}
	return role
}

// Has reports whether role holds perm. Unknown roles hold nothing.
func (p *Policy) Has(role, perm string) bool {
	_, ok := p.index[p.ResolveRole(role)][perm]
	return ok
}

// HasAny reports whether role holds at least one of perms.
func (p *Policy) HasAny(role string, perms ...string) bool {
	set := p.index[p.ResolveRole(role)]
	for _, perm := range perms {
		if _, ok := set[perm]; ok {
			return true
		}
	}
	return false
}

// Permissions returns the sorted permissions of role.
func (p *Policy) Permissions(role string) []string {
	set := p.index[p.ResolveRole(role)]
	out := make([]string, 0, len(set))
	for perm := range set {
		out = append(out, perm)
	}
	slices.Sort(out)
	return out
}

// Enforcer serves the current policy and swaps in a new one on Reload.
type Enforcer struct {
	path    string
	current atomic.Pointer[Policy]
}

// NewEnforcer loads the policy at path (or the built-in one when empty).
func NewEnforcer(path string) (*Enforcer, error) {
	p, err := LoadPolicy(path)
	if err != nil {
		return nil, err
	}
	return NewStaticEnforcer(p, path), nil
}

// NewStaticEnforcer wraps an already loaded policy.
func NewStaticEnforcer(p *Policy, path string) *Enforcer {
	e := &Enforcer{path: path}
	e.current.Store(p)
	return e
}

// Policy returns the active policy.
func (e *Enforcer) Policy() *Policy {
	return e.current.Load()
}

// Reload re-reads the policy file. The active policy is kept on error.
func (e *Enforcer) Reload() error {
	p, err := LoadPolicy(e.path)
	if err != nil {
		return err
	}
	e.current.Store(p)
	return nil
}
