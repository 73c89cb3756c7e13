// Package skills implements the skill registry: loading instruction
// bundles from the vault, matching prompts against their triggers, and
// the built-in fallback set used when no skills directory is available.
package skills

import (
	"strings"
	"sync"

	"inkwell/internal/logger"
	"inkwell/internal/vault"
	"inkwell/pkg/inktypes"
)

// Registry holds the loaded skills keyed by name. Iteration order for
// matching is insertion order; replacing a skill keeps its original
// position.
type Registry struct {
	mu     sync.RWMutex
	skills map[string]inktypes.Skill
	order  []string
}

// NewRegistry creates an empty skill registry.
func NewRegistry() *Registry {
	return &Registry{skills: make(map[string]inktypes.Skill)}
}

// Load replaces the registry contents with the skills parsed from the
// markdown documents under dir in the vault. When the directory is
// unavailable or holds no skill documents, the built-in set is loaded
// instead, so the registry is never left empty by a load.
func (r *Registry) Load(store vault.Store, dir string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.skills = make(map[string]inktypes.Skill)
	r.order = nil

	prefix := strings.TrimSuffix(dir, "/") + "/"
	for _, file := range store.ListFilesWithPrefix(prefix) {
		if !strings.HasSuffix(file.Name, ".md") {
			continue
		}
		content, err := store.ReadFile(file.Path)
		if err != nil {
			logger.Warn("Skipping unreadable skill document", "path", file.Path, "error", err)
			continue
		}
		skill := Parse(content, strings.TrimSuffix(file.Name, ".md"))
		r.put(skill)
	}

	if len(r.order) == 0 {
		for _, skill := range builtinSkills() {
			r.put(skill)
		}
		logger.Debug("Loaded built-in skills", "count", len(r.order), "dir", dir)
		return
	}
	logger.Debug("Loaded skills", "count", len(r.order), "dir", dir)
}

// put inserts or replaces a skill, preserving insertion order on
// replacement. Callers must hold the write lock.
func (r *Registry) put(skill inktypes.Skill) {
	if _, exists := r.skills[skill.Name]; !exists {
		r.order = append(r.order, skill.Name)
	}
	r.skills[skill.Name] = skill
}

// Skills returns all skills in insertion order.
func (r *Registry) Skills() []inktypes.Skill {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]inktypes.Skill, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.skills[name])
	}
	return out
}

// Get looks up a skill by name.
func (r *Registry) Get(name string) (inktypes.Skill, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	skill, ok := r.skills[name]
	return skill, ok
}

// FindMatching returns the first enabled skill, in insertion order,
// with a trigger contained in the prompt. Matching is case-insensitive
// substring containment; there is no ranking between multiple matches.
func (r *Registry) FindMatching(prompt string) (inktypes.Skill, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lowerPrompt := strings.ToLower(prompt)
	for _, name := range r.order {
		skill := r.skills[name]
		if !skill.Enabled {
			continue
		}
		for _, trigger := range skill.Triggers {
			if trigger == "" {
				continue
			}
			if strings.Contains(lowerPrompt, strings.ToLower(trigger)) {
				return skill, true
			}
		}
	}
	return inktypes.Skill{}, false
}

// Enable flips the enabled flag of the named skill. Unknown names are
// ignored.
func (r *Registry) Enable(name string, enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if skill, ok := r.skills[name]; ok {
		skill.Enabled = enabled
		r.skills[name] = skill
	}
}

// Add inserts a skill, replacing any existing skill with the same name.
func (r *Registry) Add(skill inktypes.Skill) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.put(skill)
}

// Remove deletes the named skill. Unknown names are ignored.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.skills[name]; !ok {
		return
	}
	delete(r.skills, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}
