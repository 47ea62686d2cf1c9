package engine

import (
	"fmt"
	"strings"

	"github.com/driftlake/watershed/internal/store"
)

// Kind is the coarse classification of a content item.
type Kind string

const (
	KindEpisodic   Kind = "episodic"
	KindSemantic   Kind = "semantic"
	KindProcedural Kind = "procedural"
	KindStrategic  Kind = "strategic"
)

// ParseKind normalizes a kind string. Returns false for anything outside the
// four kinds.
func ParseKind(s string) (Kind, bool) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case KindEpisodic, KindSemantic, KindProcedural, KindStrategic:
		return k, true
	}
	return "", false
}

// kindProfile is the static kind→basin mapping: one basin per kind, with
// creation defaults and an extraction focus hint. Fixed, not learned.
type kindProfile struct {
	Basin         string
	Description   string
	Concepts      []string
	BaseStrength  float64
	BaseStability float64
	Focus         string
}

var kindProfiles = map[Kind]kindProfile{
	KindEpisodic: {
		Basin:         "experiential-basin",
		Description:   "Lived experience and observed events",
		Concepts:      []string{"events", "outcomes", "observations"},
		BaseStrength:  0.7,
		BaseStability: 0.4,
		Focus:         "who did what, when, and what came of it",
	},
	KindSemantic: {
		Basin:         "conceptual-basin",
		Description:   "Facts, concepts, and stable knowledge",
		Concepts:      []string{"facts", "definitions", "relationships"},
		BaseStrength:  0.8,
		BaseStability: 0.5,
		Focus:         "entities, their properties, and how they relate",
	},
	KindProcedural: {
		Basin:         "procedural-basin",
		Description:   "Techniques, methods, and repeatable steps",
		Concepts:      []string{"steps", "tools", "preconditions"},
		BaseStrength:  0.75,
		BaseStability: 0.45,
		Focus:         "actions, their ordering, and what they require",
	},
	KindStrategic: {
		Basin:         "strategic-basin",
		Description:   "Goals, plans, and direction",
		Concepts:      []string{"goals", "priorities", "tradeoffs"},
		BaseStrength:  0.85,
		BaseStability: 0.55,
		Focus:         "intentions, constraints, and what success looks like",
	},
}

func (k Kind) profile() kindProfile {
	p, ok := kindProfiles[k]
	if !ok {
		return kindProfiles[KindSemantic]
	}
	return p
}

// Seed returns the basin creation defaults for this kind.
func (k Kind) Seed() store.BasinSeed {
	p := k.profile()
	return store.BasinSeed{
		Name:          p.Basin,
		Description:   p.Description,
		Concepts:      p.Concepts,
		BaseStrength:  p.BaseStrength,
		BaseStability: p.BaseStability,
	}
}

// BasinName returns the basin this kind routes through.
func (k Kind) BasinName() string {
	return k.profile().Basin
}

// FormatBasinContext renders the extraction-steering summary for a basin.
func FormatBasinContext(b *store.Basin, kind Kind) string {
	p := kind.profile()
	concepts := strings.Join(b.Concepts, ", ")
	if concepts == "" {
		concepts = strings.Join(p.Concepts, ", ")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Basin: %s - %s\n", b.Name, b.Description)
	fmt.Fprintf(&sb, "Strength: %.2f (cap %.1f) | Stability: %.2f (cap %.1f) | Activations: %d\n",
		b.Strength, store.StrengthCap, b.Stability, store.StabilityCap, b.ActivationCount)
	fmt.Fprintf(&sb, "Core concepts: %s\n", concepts)
	fmt.Fprintf(&sb, "Extraction focus: %s", p.Focus)
	return sb.String()
}
