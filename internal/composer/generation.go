package composer

import (
	"context"
	"log/slog"
	"strings"
)

type GenPhase string

const (
	GenIdle       GenPhase = "idle"
	GenGenerating GenPhase = "generating"
	GenSucceeded  GenPhase = "succeeded"
	GenFailed     GenPhase = "failed"
)

type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneCasual       Tone = "casual"
	ToneHumorous     Tone = "humorous"
	ToneInformative  Tone = "informative"
)

type Length string

const (
	LengthShort  Length = "short"
	LengthMedium Length = "medium"
	LengthLong   Length = "long"
)

type GenerationRequest struct {
	Topic            string     `json:"topic"`
	CustomPrompt     string     `json:"custom_prompt"`
	PlatformHint     PlatformID `json:"platform_hint"`
	Tone             Tone       `json:"tone"`
	Length           Length     `json:"length"`
	UsePreviousPosts bool       `json:"use_previous_posts"`
	UseTrending      bool       `json:"use_trending"`
}

// Candidate is AI-generated content offered as a replacement for the
// draft. It is not applied until SelectCandidate copies it over.
type Candidate struct {
	Primary  string   `json:"primary"`
	Variants []string `json:"variants"`
}

type Generator interface {
	Generate(ctx context.Context, userID int64, req *GenerationRequest) (*Candidate, error)
}

type genState struct {
	phase     GenPhase
	candidate *Candidate
	errMsg    string
}

type GenSnapshot struct {
	Phase     GenPhase   `json:"phase"`
	Candidate *Candidate `json:"candidate,omitempty"`
	Error     string     `json:"error,omitempty"`
}

func (g *genState) snapshot() GenSnapshot {
	snap := GenSnapshot{Phase: g.phase, Error: g.errMsg}
	if g.phase == "" {
		snap.Phase = GenIdle
	}
	if g.candidate != nil {
		snap.Candidate = copyCandidate(g.candidate)
	}
	return snap
}

// Generate runs idle -> generating -> succeeded|failed. An empty topic and
// custom prompt rejects synchronously without a transition. A second call
// while one is in flight is refused; calls from either terminal phase
// re-enter generating and discard the prior candidate or error.
func (c *Composer) Generate(ctx context.Context, req *GenerationRequest) (*Candidate, error) {
	if req == nil || (strings.TrimSpace(req.Topic) == "" && strings.TrimSpace(req.CustomPrompt) == "") {
		return nil, ErrEmptyTopic
	}

	c.mu.Lock()
	if c.gen.phase == GenGenerating {
		c.mu.Unlock()
		return nil, ErrGenerationInFlight
	}
	c.gen = genState{phase: GenGenerating}
	c.mu.Unlock()

	candidate, err := c.generator.Generate(ctx, c.userID, req)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		slog.Info(err.Error())
		c.gen = genState{phase: GenFailed, errMsg: "Unable to generate content. Please try again."}
		return nil, err
	}

	c.gen = genState{phase: GenSucceeded, candidate: copyCandidate(candidate)}
	return copyCandidate(candidate), nil
}

// SelectCandidate copies the chosen text into the content draft. The
// generation state itself is untouched; later edits to the draft never
// reach back into the candidate.
func (c *Composer) SelectCandidate(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.content = text
}

func (c *Composer) Generation() GenSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen.snapshot()
}

func copyCandidate(in *Candidate) *Candidate {
	if in == nil {
		return nil
	}
	out := &Candidate{Primary: in.Primary}
	if len(in.Variants) > 0 {
		out.Variants = append([]string(nil), in.Variants...)
	}
	return out
}
