package patterns

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// AllGroups selects every known group, in registry order.
const AllGroups = "all"

// GroupNotFoundError reports a group request that cannot be resolved.
type GroupNotFoundError struct {
	Name       string
	Executable string
}

func (e *GroupNotFoundError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("no pattern group matches executable %q (use --group to pick one)", e.Executable)
	}
	return fmt.Sprintf("unknown pattern group %q", e.Name)
}

// Registry is an ordered collection of groups. Custom groups come first and
// shadow builtins of the same name.
type Registry struct {
	groups []Group
	byName map[string]int
}

// NewRegistry returns a registry with custom groups followed by the builtins.
func NewRegistry(custom ...Group) *Registry {
	r := &Registry{byName: map[string]int{}}
	for _, g := range custom {
		r.add(g)
	}
	for _, g := range Builtins() {
		r.add(g)
	}
	return r
}

func (r *Registry) add(g Group) {
	key := normalizeName(g.Name)
	if key == "" || key == AllGroups {
		return
	}
	if _, exists := r.byName[key]; exists {
		return
	}
	r.byName[key] = len(r.groups)
	r.groups = append(r.groups, g)
}

// Groups returns a copy of the registered groups in order.
func (r *Registry) Groups() []Group {
	return append([]Group{}, r.groups...)
}

func (r *Registry) Lookup(name string) (Group, error) {
	idx, ok := r.byName[normalizeName(name)]
	if !ok {
		return Group{}, &GroupNotFoundError{Name: strings.TrimSpace(name)}
	}
	return r.groups[idx], nil
}

// Select resolves a group request into an ordered list of pattern sources.
//
//   - names containing "all": every group, in registry order
//   - explicit names: those groups, in request order, duplicates dropped
//   - no names: groups whose executable globs match the base name of executable
func (r *Registry) Select(names []string, executable string) ([]string, error) {
	var requested []string
	for _, n := range names {
		if n = normalizeName(n); n != "" {
			requested = append(requested, n)
		}
	}

	var chosen []Group
	switch {
	case slices.Contains(requested, AllGroups):
		chosen = r.groups

	case len(requested) > 0:
		seen := map[string]struct{}{}
		for _, n := range requested {
			if _, dup := seen[n]; dup {
				continue
			}
			seen[n] = struct{}{}
			g, err := r.Lookup(n)
			if err != nil {
				return nil, err
			}
			chosen = append(chosen, g)
		}

	default:
		chosen = r.Detect(executable)
		if len(chosen) == 0 {
			return nil, &GroupNotFoundError{Executable: executable}
		}
	}

	var sources []string
	for _, g := range chosen {
		sources = append(sources, g.Patterns...)
	}
	return sources, nil
}

// Detect returns the groups that claim the given executable.
func (r *Registry) Detect(executable string) []Group {
	base := executableBase(executable)
	if base == "" {
		return nil
	}
	var out []Group
	for _, g := range r.groups {
		for _, glob := range g.Executables {
			if ok, err := doublestar.Match(strings.ToLower(glob), base); err == nil && ok {
				out = append(out, g)
				break
			}
		}
	}
	return out
}

func executableBase(executable string) string {
	trimmed := strings.TrimSpace(executable)
	if trimmed == "" {
		return ""
	}
	// Accept both separators so windows paths resolve on any host.
	trimmed = strings.ReplaceAll(trimmed, `\`, "/")
	return strings.ToLower(filepath.Base(trimmed))
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
