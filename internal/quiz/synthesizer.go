package quiz

import (
	"context"
	"math/rand/v2"
	"slices"
	"strings"

	"ragquiz/internal/curator"
	"ragquiz/internal/domain"
	"ragquiz/internal/logx"
	"ragquiz/internal/terms"
	"ragquiz/internal/vocab"
)

const openPrefix = "Briefly explain: "

// Options tunes synthesis. Zero values take the defaults listed per field.
type Options struct {
	DefaultTopic   string  // "general"
	FallbackQuery  string  // "network security"
	MinRetrieval   int     // 16
	ExplorationCap int     // 500
	// TrueRatio is the share of true/false items kept true. Nil means 0.8
	// and values outside [0, 1] are clamped.
	TrueRatio *float64
}

func (o Options) withDefaults() Options {
	if o.DefaultTopic == "" {
		o.DefaultTopic = "general"
	}
	if o.FallbackQuery == "" {
		o.FallbackQuery = "network security"
	}
	if o.MinRetrieval <= 0 {
		o.MinRetrieval = 16
	}
	if o.ExplorationCap <= 0 {
		o.ExplorationCap = 500
	}
	if o.TrueRatio == nil {
		r := 0.8
		o.TrueRatio = &r
	}
	return o
}

// Synthesizer builds quizzes from retrieved text without any language model.
type Synthesizer struct {
	retriever domain.Retriever
	curator   *curator.Curator
	terms     *terms.Engine
	negator   *Negator
	opts      Options
	trueRatio float64
}

// NewSynthesizer wires a Synthesizer over a retriever and vocabulary.
func NewSynthesizer(r domain.Retriever, c *curator.Curator, v vocab.Vocabulary, opts Options) *Synthesizer {
	v = v.WithDefaults()
	opts = opts.withDefaults()
	return &Synthesizer{
		retriever: r,
		curator:   c,
		terms:     terms.New(v),
		negator:   NewNegator(v.NegationAnchors),
		opts:      opts,
		trueRatio: min(max(*opts.TrueRatio, 0), 1),
	}
}

// source is one provenance bucket of curated sentences. remaining holds
// the sentences not yet drawn.
type source struct {
	name      string
	remaining []string
}

func (s *source) draw(rng *rand.Rand) string {
	i := rng.IntN(len(s.remaining))
	picked := s.remaining[i]
	last := len(s.remaining) - 1
	s.remaining[i] = s.remaining[last]
	s.remaining = s.remaining[:last]
	return picked
}

// Generate synthesizes up to n items about topic. Sources are visited
// round-robin and each draw picks a not-yet-used sentence uniformly at
// random. The loop stops after n items, after ExplorationCap distinct
// sentences, or once every curated sentence has been considered. An empty
// index or a corpus without usable sentences yields a quiz with no items.
// A nil rng uses a randomly seeded source.
func (s *Synthesizer) Generate(ctx context.Context, topic string, n int, rng *rand.Rand) Quiz {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	topic = strings.TrimSpace(topic)
	q := Quiz{Topic: topic, Items: []Item{}}
	if q.Topic == "" {
		q.Topic = s.opts.DefaultTopic
	}
	if n <= 0 {
		return q
	}
	query := topic
	if query == "" {
		query = s.opts.FallbackQuery
	}

	hits := s.retriever.Retrieve(ctx, query, max(s.opts.MinRetrieval, 5*n))
	if len(hits) == 0 {
		logx.Debugf("quiz %q: no hits", query)
		return q
	}
	sources, all := s.groupBySource(hits)
	if len(sources) == 0 {
		logx.Debugf("quiz %q: %d hits, no usable sentences", query, len(hits))
		return q
	}
	pool := s.terms.Pool(all)

	seen := make(map[string]struct{})
	cursor := 0
	for len(q.Items) < n && len(seen) < s.opts.ExplorationCap && len(sources) > 0 {
		if err := ctx.Err(); err != nil {
			break
		}
		src := sources[cursor]
		sentence := src.draw(rng)
		if len(src.remaining) == 0 {
			sources = append(sources[:cursor], sources[cursor+1:]...)
		} else {
			cursor++
		}
		if len(sources) > 0 {
			cursor %= len(sources)
		}
		if _, dup := seen[sentence]; dup {
			continue
		}
		seen[sentence] = struct{}{}
		q.Items = append(q.Items, s.buildItem(len(q.Items), sentence, src.name, pool, rng))
	}
	logx.Debugf("quiz %q: %d items from %d candidate sentences", query, len(q.Items), len(seen))
	if len(q.Items) > n {
		q.Items = q.Items[:n]
	}
	return q
}

// groupBySource curates every hit and buckets the sentences by source in
// first-seen order, dropping sources that yield nothing.
func (s *Synthesizer) groupBySource(hits []domain.Hit) ([]*source, []string) {
	byName := make(map[string]*source)
	var order []*source
	var all []string
	for _, h := range hits {
		name := h.Source
		if name == "" {
			name = "local"
		}
		src, ok := byName[name]
		if !ok {
			src = &source{name: name}
			byName[name] = src
			order = append(order, src)
		}
		for _, sent := range s.curator.Curate(h.Text) {
			if !slices.Contains(src.remaining, sent) {
				src.remaining = append(src.remaining, sent)
				all = append(all, sent)
			}
		}
	}
	out := order[:0]
	for _, src := range order {
		if len(src.remaining) > 0 {
			out = append(out, src)
		}
	}
	return out, all
}

// buildItem rotates item types by position: tf, mcq, open.
func (s *Synthesizer) buildItem(index int, sentence, src string, pool []string, rng *rand.Rand) Item {
	switch index % 3 {
	case 0:
		return s.trueFalse(sentence, src, rng)
	case 1:
		if item, ok := s.multipleChoice(sentence, src, pool, rng); ok {
			return item
		}
		return Item{Type: TypeTF, Question: sentence, Answer: BoolAnswer(true), Sources: []string{src}}
	default:
		return Item{Type: TypeOpen, Question: openPrefix + sentence, Answer: TextAnswer(sentence), Sources: []string{src}}
	}
}

func (s *Synthesizer) trueFalse(sentence, src string, rng *rand.Rand) Item {
	truth := rng.Float64() < s.trueRatio
	question := sentence
	if !truth {
		question = s.negator.Negate(sentence)
	}
	return Item{Type: TypeTF, Question: question, Answer: BoolAnswer(truth), Sources: []string{src}}
}

// multipleChoice masks one detected term. ok is false when the sentence
// has no term or the vocabulary cannot fill four options.
func (s *Synthesizer) multipleChoice(sentence, src string, pool []string, rng *rand.Rand) (Item, bool) {
	found := s.terms.Extract(sentence)
	if len(found) == 0 {
		return Item{}, false
	}
	correct := found[rng.IntN(len(found))]
	stem, ok := terms.Mask(sentence, correct)
	if !ok {
		return Item{}, false
	}
	opts := s.terms.Options(correct, pool, rng)
	if len(opts) < terms.OptionCount {
		return Item{}, false
	}
	return Item{
		Type:     TypeMCQ,
		Question: stem,
		Answer:   TextAnswer(terms.Render(correct)),
		Options:  opts,
		Sources:  []string{src},
	}, true
}
