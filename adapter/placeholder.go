package adapter

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/revelaction/absaset/absa"
	"github.com/revelaction/absaset/resource"
)

// placeholderToken marks the position of the aspect in the sentence line.
const placeholderToken = "$T$"

var placeholderPolarities = map[string]string{
	"-1": absa.Negative,
	"0":  absa.Neutral,
	"1":  absa.Positive,
}

// Placeholder reads the token placeholder dialect: groups of three lines,
// the sentence with the aspect replaced by $T$, the aspect and the polarity
// code.
type Placeholder struct {
	deps Deps
}

var _ Adapter = (*Placeholder)(nil)

func NewPlaceholder(d Deps) *Placeholder {
	return &Placeholder{deps: d.withDefaults()}
}

func (a *Placeholder) Load(ctx context.Context, loc Locators) (absa.Corpus, error) {
	return loadPartitions(ctx, a.deps, loc, a.load)
}

func (a *Placeholder) load(ctx context.Context, partition, locator string) ([]absa.Document, error) {
	lines, err := a.deps.Reader.ReadAllLines(ctx, locator, resource.UTF8)
	if err != nil {
		return nil, err
	}

	if rest := len(lines) % 3; rest != 0 {
		a.deps.log(partition).WithField("lines", rest).Warn("ignoring incomplete trailing sample")
	}

	docs := make([]absa.Document, 0, len(lines)/3)
	for i := 0; i+2 < len(lines); i += 3 {
		s := a.parse(partition, lines[i], lines[i+1], lines[i+2])
		docs = append(docs, absa.SingleSentenceDocument(s))
	}
	return docs, nil
}

// parse rebuilds the sentence around the aspect. The aspect starts one
// character after the left context, separated by a space, or at 0.
func (a *Placeholder) parse(partition, line, aspectLine, polarityLine string) absa.Sentence {
	left, right, _ := strings.Cut(line, placeholderToken)
	left = strings.TrimSpace(strings.ToLower(left))
	right = strings.TrimSpace(strings.ToLower(right))
	aspect := strings.TrimSpace(strings.ToLower(aspectLine))
	code := strings.TrimSpace(polarityLine)

	text := aspect
	from := 0
	if left != "" {
		text = left + " " + aspect
		from = absa.RuneLen(left) + 1
	}
	if right != "" {
		text = text + " " + right
	}

	polarity, ok := placeholderPolarities[code]
	if !ok {
		a.deps.log(partition).WithFields(logrus.Fields{
			"sample":   line,
			"polarity": code,
		}).Warn("unknown polarity code")
		polarity = code
	}

	term := absa.AspectTerm{
		Term:     aspect,
		Polarity: polarity,
		From:     from,
		To:       from + absa.RuneLen(aspect),
	}
	a.deps.checkTerm(partition, line, text, term)

	return absa.NewSentence(absa.Text{Text: text}, nil, []absa.AspectTerm{term})
}
