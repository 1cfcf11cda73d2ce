package adapter

// Scope tells where the annotations of a markup dialect are attached.
type Scope int

const (
	// ScopeSentence attaches annotations to the sentence that contains them.
	ScopeSentence Scope = iota

	// ScopeDocument attaches annotations to the document only.
	ScopeDocument
)

func (s Scope) String() string {
	if s == ScopeDocument {
		return "document"
	}
	return "sentence"
}

// Schema describes a nested markup dialect: the names of its elements and
// attributes. Names match case insensitively.
type Schema struct {
	// Document is the element grouping sentences. Empty if every sentence
	// is a document of its own.
	Document   string
	DocumentID string

	Sentence   string
	SentenceID string

	// Text is the sentence child holding the sentence text. When missing,
	// all the character data of the sentence is used.
	Text string

	// Annotations are the elements carrying aspect annotations.
	Annotations []string

	// Term, From and To mark an annotation as an aspect term. Annotations
	// without Term are aspect categories.
	Term string
	From string
	To   string

	Category string
	Polarity string

	Scope Scope
}

// SemEval2014 is the dialect of SemEval-2014 task 4 and MAMS: one sentence
// per sample, aspectTerm and aspectCategory elements.
var SemEval2014 = Schema{
	Sentence:    "sentence",
	SentenceID:  "id",
	Text:        "text",
	Annotations: []string{"aspectTerm", "aspectCategory"},
	Term:        "term",
	From:        "from",
	To:          "to",
	Category:    "category",
	Polarity:    "polarity",
	Scope:       ScopeSentence,
}

// SemEval2015 is the dialect of SemEval-2015 task 12 and SemEval-2016 task 5
// subtask 1: reviews of sentences with Opinion elements per sentence.
var SemEval2015 = Schema{
	Document:    "Review",
	DocumentID:  "rid",
	Sentence:    "sentence",
	SentenceID:  "id",
	Text:        "text",
	Annotations: []string{"Opinion"},
	Term:        "target",
	From:        "from",
	To:          "to",
	Category:    "category",
	Polarity:    "polarity",
	Scope:       ScopeSentence,
}

// SemEval2016Text is the dialect of SemEval-2016 task 5 subtask 2, with
// Opinion elements per review.
var SemEval2016Text = Schema{
	Document:    "Review",
	DocumentID:  "rid",
	Sentence:    "sentence",
	SentenceID:  "id",
	Text:        "text",
	Annotations: []string{"Opinion"},
	Term:        "target",
	From:        "from",
	To:          "to",
	Category:    "category",
	Polarity:    "polarity",
	Scope:       ScopeDocument,
}
