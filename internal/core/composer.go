package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/campuscare/wellbeing-chat/internal/logger"
)

const (
	// MaxReplySentences bounds the length of a composed reply.
	MaxReplySentences = 3

	DefaultAgentTimeout = 30 * time.Second
)

// SentenceSplitter breaks text into trimmed, non-empty sentences.
type SentenceSplitter interface {
	Split(text string) []string
}

// PeriodSplitter splits on every literal period. Abbreviations such as
// "Dr." therefore end a sentence.
type PeriodSplitter struct{}

func (PeriodSplitter) Split(text string) []string {
	var sentences []string
	for _, part := range strings.Split(text, ".") {
		if s := strings.TrimSpace(part); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// Condense keeps the first max sentences of text, joined by ". " with a
// trailing period. Text with fewer than max sentences is returned as is.
func Condense(text string, splitter SentenceSplitter, max int) string {
	sentences := splitter.Split(text)
	if len(sentences) < max {
		return text
	}
	return strings.Join(sentences[:max], ". ") + "."
}

// MergeOpinions lays the three role opinions into the reply template.
func MergeOpinions(psychiatrist, counselor, wellnessCoach string) string {
	return fmt.Sprintf(
		"I understand what you're sharing. From a clinical perspective: %s. Try this strategy: %s. And consider: %s.",
		trimOpinion(psychiatrist), trimOpinion(counselor), trimOpinion(wellnessCoach))
}

func trimOpinion(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), ".")
}

type Composer struct {
	agents       map[Role]*Agent
	splitter     SentenceSplitter
	agentTimeout time.Duration
	log          *logger.Logger
}

type ComposerOption func(*Composer)

// WithSplitter replaces the default PeriodSplitter.
func WithSplitter(s SentenceSplitter) ComposerOption {
	return func(c *Composer) {
		c.splitter = s
	}
}

// WithAgentTimeout bounds each role consultation.
func WithAgentTimeout(d time.Duration) ComposerOption {
	return func(c *Composer) {
		if d > 0 {
			c.agentTimeout = d
		}
	}
}

func WithLogger(log *logger.Logger) ComposerOption {
	return func(c *Composer) {
		c.log = log
	}
}

// NewComposer requires exactly one agent for each of Roles.
func NewComposer(agents []*Agent, opts ...ComposerOption) (*Composer, error) {
	c := &Composer{
		agents:       make(map[Role]*Agent, len(agents)),
		splitter:     PeriodSplitter{},
		agentTimeout: DefaultAgentTimeout,
		log:          logger.Discard(),
	}
	for _, a := range agents {
		if _, dup := c.agents[a.Role()]; dup {
			return nil, fmt.Errorf("duplicate agent for role %q", a.Role())
		}
		c.agents[a.Role()] = a
	}
	for _, role := range Roles {
		if _, ok := c.agents[role]; !ok {
			return nil, fmt.Errorf("no agent for role %q", role)
		}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Compose consults every role concurrently and merges their opinions into
// one condensed reply. Any failed or timed out consultation cancels the
// others and fails the whole composition with ErrProcessing.
func (c *Composer) Compose(ctx context.Context, conversation, issue string) (string, error) {
	opinions := make([]string, len(Roles))

	g, gctx := errgroup.WithContext(ctx)
	for i, role := range Roles {
		agent := c.agents[role]
		g.Go(func() error {
			actx, cancel := context.WithTimeout(gctx, c.agentTimeout)
			defer cancel()

			start := time.Now()
			opinion, err := agent.Consult(actx, conversation, issue)
			if err != nil {
				return fmt.Errorf("%w: consult %s: %w", ErrProcessing, role, err)
			}
			c.log.Debug("Agent consulted", logrus.Fields{
				"role":        string(role),
				"duration_ms": time.Since(start).Milliseconds(),
			})
			opinions[i] = opinion
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	merged := MergeOpinions(opinions[0], opinions[1], opinions[2])
	return Condense(merged, c.splitter, MaxReplySentences), nil
}
