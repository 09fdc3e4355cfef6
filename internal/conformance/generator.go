package conformance

import (
	"math/rand/v2"
	"strings"

	"github.com/roach88/minrx/internal/pattern"
)

// GeneratorConfig bounds the shape of generated patterns and subjects.
type GeneratorConfig struct {
	// Alphabet is the set of bytes literals and noise are drawn from.
	Alphabet string

	// MaxDepth bounds pattern nesting.
	MaxDepth int

	// MaxBranches bounds the number of alternation branches and
	// concatenation parts. Zero-length lists are generated too.
	MaxBranches int

	// MaxLiteral bounds literal length. Empty literals are generated too.
	MaxLiteral int

	// MaxSubject bounds subject length in bytes.
	MaxSubject int
}

// DefaultGeneratorConfig returns the configuration used by the fuzz command.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Alphabet:    "ab",
		MaxDepth:    4,
		MaxBranches: 3,
		MaxLiteral:  2,
		MaxSubject:  12,
	}
}

// Generator produces random patterns and subjects from a seed.
// A Generator is not safe for concurrent use.
type Generator struct {
	seed uint64
	cfg  GeneratorConfig
	rng  *rand.Rand
}

// NewGenerator creates a generator. The same seed and config always yield
// the same sequence of patterns and subjects.
func NewGenerator(seed uint64, cfg GeneratorConfig) *Generator {
	if cfg.Alphabet == "" {
		cfg.Alphabet = DefaultGeneratorConfig().Alphabet
	}
	return &Generator{
		seed: seed,
		cfg:  cfg,
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Seed returns the seed the generator was created with.
func (g *Generator) Seed() uint64 {
	return g.seed
}

// Pattern returns a random pattern no deeper than MaxDepth.
func (g *Generator) Pattern() pattern.Node {
	return g.node(0)
}

func (g *Generator) node(depth int) pattern.Node {
	if depth >= g.cfg.MaxDepth || g.rng.IntN(10) < 3 {
		return pattern.Lit(g.text(g.cfg.MaxLiteral))
	}
	switch g.rng.IntN(3) {
	case 0:
		return pattern.Alt(g.nodes(depth+1)...)
	case 1:
		return pattern.Concat(g.nodes(depth+1)...)
	default:
		return pattern.Star(g.node(depth + 1))
	}
}

func (g *Generator) nodes(depth int) []pattern.Node {
	n := g.rng.IntN(g.cfg.MaxBranches + 1)
	out := make([]pattern.Node, n)
	for i := range out {
		out[i] = g.node(depth)
	}
	return out
}

// text returns up to limit random alphabet bytes.
func (g *Generator) text(limit int) string {
	n := g.rng.IntN(limit + 1)
	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.WriteByte(g.cfg.Alphabet[g.rng.IntN(len(g.cfg.Alphabet))])
	}
	return sb.String()
}

// Subject returns a random subject for p. Half of the subjects are drawn
// from p's language so that accepting paths get exercised, a quarter are
// such members with one byte changed, and the rest are noise. Subjects are
// truncated to MaxSubject bytes.
func (g *Generator) Subject(p pattern.Node) string {
	var s string
	switch g.rng.IntN(4) {
	case 0, 1:
		if member, ok := g.Sample(p); ok {
			s = member
		} else {
			s = g.text(g.cfg.MaxSubject)
		}
	case 2:
		member, _ := g.Sample(p)
		s = g.mutate(member)
	default:
		s = g.text(g.cfg.MaxSubject)
	}
	if len(s) > g.cfg.MaxSubject {
		s = s[:g.cfg.MaxSubject]
	}
	return s
}

// Sample returns a random string accepted by p. The boolean is false when
// p accepts nothing (it contains an unavoidable empty alternation).
func (g *Generator) Sample(p pattern.Node) (string, bool) {
	var sb strings.Builder
	if !g.sample(&sb, p) {
		return "", false
	}
	return sb.String(), true
}

func (g *Generator) sample(sb *strings.Builder, p pattern.Node) bool {
	switch x := p.(type) {
	case pattern.Literal:
		sb.WriteString(x.Text)
		return true

	case pattern.Alternation:
		n := len(x.Branches)
		if n == 0 {
			return false
		}
		start := g.rng.IntN(n)
		mark := sb.Len()
		for i := 0; i < n; i++ {
			if g.sample(sb, x.Branches[(start+i)%n]) {
				return true
			}
			truncate(sb, mark)
		}
		return false

	case pattern.Concatenation:
		for _, part := range x.Parts {
			if !g.sample(sb, part) {
				return false
			}
		}
		return true

	case pattern.Repetition:
		reps := g.rng.IntN(4)
		for i := 0; i < reps; i++ {
			mark := sb.Len()
			if !g.sample(sb, x.Inner) {
				truncate(sb, mark)
				break
			}
		}
		return true

	default:
		return false
	}
}

// truncate cuts sb back to n bytes.
func truncate(sb *strings.Builder, n int) {
	s := sb.String()[:n]
	sb.Reset()
	sb.WriteString(s)
}

// mutate applies a random single-byte edit to s.
func (g *Generator) mutate(s string) string {
	noise := g.cfg.Alphabet + "x"
	c := string(noise[g.rng.IntN(len(noise))])
	if s == "" {
		return c
	}
	i := g.rng.IntN(len(s))
	switch g.rng.IntN(3) {
	case 0:
		return s[:i] + c + s[i:]
	case 1:
		return s[:i] + s[i+1:]
	default:
		return s[:i] + c + s[i+1:]
	}
}
