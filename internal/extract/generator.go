package extract

import (
	"math/rand"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/docquiz/docquiz-backend/internal/exam"
)

const (
	// DefaultTarget is the question count produced when the caller does not
	// ask for a specific number.
	DefaultTarget = 50
	// MaxTarget caps a single extraction run.
	MaxTarget = 100

	// blanksPerSource limits fill-in-the-blank generation per document so a
	// single verbose file cannot crowd out the rest.
	blanksPerSource = 25
	// minStructured is the threshold under which blank generation kicks in.
	minStructured = 10
)

var (
	questionStartRe = regexp.MustCompile(`^\s*(?:Q(?:uestion)?\.?\s*)?(\d+)[.)]\s+(\S.*)$`)
	optionRe        = regexp.MustCompile(`^\s*(?:\(([A-Da-d])\)|([A-Da-d])[.)])\s*(\S.*)$`)
	whitespaceRe    = regexp.MustCompile(`\s+`)
	junkCharsRe     = regexp.MustCompile(`[^\w\s.,!?;:-]`)
	sentenceSplitRe = regexp.MustCompile(`[.!?]+`)
	yearRe          = regexp.MustCompile(`\d{4}`)
)

// stopwords are too generic to blank out.
var stopwords = map[string]struct{}{
	"that": {}, "this": {}, "with": {}, "from": {}, "they": {}, "have": {},
	"been": {}, "were": {}, "will": {}, "when": {}, "where": {}, "which": {},
	"their": {}, "there": {}, "these": {}, "those": {},
}

// distractorPool supplies wrong options for generated blanks.
var distractorPool = []string{
	"system", "process", "method", "approach", "factor", "element",
	"aspect", "concept", "principle", "structure", "important",
	"significant", "essential", "necessary", "required", "appropriate",
	"suitable", "correct", "proper", "effective",
}

// Generator turns document text into multiple-choice questions. It scrapes
// structured question papers first and falls back to generating
// fill-in-the-blank questions from prose. Randomness (word choice, option
// order) comes from the injected source so runs are reproducible in tests.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a Generator seeded for option shuffling.
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Generate produces up to target questions from the given sources, scraping
// structured questions per document and topping up with generated blanks.
// IDs are reassigned 1..n in output order.
func (g *Generator) Generate(sources []SourceText, target int) []exam.Question {
	if target <= 0 {
		target = DefaultTarget
	}
	if target > MaxTarget {
		target = MaxTarget
	}

	var all []exam.Question
	for _, src := range sources {
		qs := g.ExtractStructured(src.Text)
		if len(qs) < minStructured {
			qs = append(qs, g.FillInBlanks(src.Text, blanksPerSource)...)
		}
		all = append(all, qs...)
		if len(all) >= target {
			break
		}
	}

	if len(all) > target {
		all = all[:target]
	}
	renumber(all)
	return all
}

// ExtractStructured scrapes numbered questions with lettered options from
// exam-paper style text. Papers rarely embed an answer key, so the correct
// option defaults to position 1; callers needing graded sets must supply
// their own key.
func (g *Generator) ExtractStructured(text string) []exam.Question {
	var (
		questions []exam.Question
		current   string
		options   []string
	)

	flush := func() {
		if current != "" && len(options) >= 4 {
			questions = append(questions, exam.Question{
				Text:          current,
				Options:       options[:4],
				CorrectOption: 1,
			})
		}
		current = ""
		options = nil
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if m := optionRe.FindStringSubmatch(line); m != nil {
			options = append(options, strings.TrimSpace(m[3]))
			continue
		}
		if m := questionStartRe.FindStringSubmatch(line); m != nil {
			flush()
			current = strings.TrimSpace(m[2])
		}
	}
	flush()

	return questions
}

// FillInBlanks generates up to limit questions by blanking one content word
// per suitable sentence and surrounding it with distractors.
func (g *Generator) FillInBlanks(text string, limit int) []exam.Question {
	var questions []exam.Question
	used := make(map[string]struct{})

	for _, sentence := range meaningfulSentences(text) {
		if len(questions) >= limit {
			break
		}
		if _, dup := used[sentence]; dup {
			continue
		}

		words := strings.Fields(sentence)
		candidates := blankCandidates(words)
		if len(candidates) == 0 {
			continue
		}

		pick := candidates[g.rng.Intn(len(candidates))]
		answer := words[pick]

		blanked := make([]string, len(words))
		copy(blanked, words)
		blanked[pick] = "______"

		options, correct := g.buildOptions(answer)
		questions = append(questions, exam.Question{
			Text:          strings.Join(blanked, " "),
			Options:       options,
			CorrectOption: correct,
		})
		used[sentence] = struct{}{}
	}

	return questions
}

// buildOptions assembles four shuffled options around the answer and returns
// them with the answer's 1-based position.
func (g *Generator) buildOptions(answer string) ([]string, int) {
	options := []string{answer}
	first, _ := utf8.DecodeRuneInString(answer)
	upper := unicode.IsUpper(first)

	for _, wrong := range distractorPool {
		if len(options) == 4 {
			break
		}
		if strings.EqualFold(wrong, answer) {
			continue
		}
		if upper {
			wrong = strings.ToUpper(wrong[:1]) + wrong[1:]
		}
		options = append(options, wrong)
	}

	g.rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	for i, opt := range options {
		if opt == answer {
			return options, i + 1
		}
	}
	// Unreachable: the answer is always present.
	return options, 1
}

// meaningfulSentences filters prose down to sentences worth blanking.
func meaningfulSentences(text string) []string {
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = junkCharsRe.ReplaceAllString(text, "")

	var out []string
	for _, sentence := range sentenceSplitRe.Split(text, -1) {
		sentence = strings.TrimSpace(sentence)
		if len(sentence) <= 20 || len(sentence) >= 120 {
			continue
		}
		if strings.Count(sentence, " ") <= 3 {
			continue
		}
		if yearRe.MatchString(sentence) {
			continue
		}
		if strings.HasPrefix(sentence, "Q ") || strings.HasPrefix(sentence, "Page ") {
			continue
		}
		if countContentWords(sentence) < 4 {
			continue
		}
		out = append(out, sentence)
	}
	return out
}

// blankCandidates returns indexes of words suitable for blanking.
func blankCandidates(words []string) []int {
	var out []int
	for i, w := range words {
		if len(w) <= 4 || !isAlpha(w) {
			continue
		}
		if _, stop := stopwords[strings.ToLower(w)]; stop {
			continue
		}
		if w == strings.ToUpper(w) {
			continue // acronyms and headings
		}
		out = append(out, i)
	}
	return out
}

func countContentWords(sentence string) int {
	n := 0
	for _, w := range strings.Fields(sentence) {
		if len(w) > 2 && isAlpha(w) {
			n++
		}
	}
	return n
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func renumber(questions []exam.Question) {
	for i := range questions {
		questions[i].ID = i + 1
	}
}

// FallbackQuestions is the built-in set served when no document yields
// questions, so the exam flow stays usable end to end.
func FallbackQuestions() []exam.Question {
	return []exam.Question{
		{ID: 1, Text: "But just then, both of them were ______ by the soldiers", Options: []string{"system", "process", "method", "captured"}, CorrectOption: 4},
		{ID: 2, Text: "______ is not innocent such as Uday", Options: []string{"Method", "System", "Process", "Harmit"}, CorrectOption: 4},
		{ID: 3, Text: "The following ______ has been divided into four segments", Options: []string{"process", "sentence", "method", "system"}, CorrectOption: 2},
		{ID: 4, Text: "If there is no need to substitute it, select No substitution ______", Options: []string{"method", "required", "process", "system"}, CorrectOption: 2},
		{ID: 5, Text: "But, when the ______ was thrown in front of the lion, the lion licked him and quietly sat beside him", Options: []string{"system", "slave", "method", "process"}, CorrectOption: 2},
		{ID: 6, Text: "______ out a tower of pots", Options: []string{"knock", "process", "method", "system"}, CorrectOption: 1},
		{ID: 7, Text: "The following sentence has been divided into four ______", Options: []string{"method", "system", "process", "segments"}, CorrectOption: 4},
		{ID: 8, Text: "How is the structure of health infrastructure and health care system in ______", Options: []string{"Process", "Method", "System", "India"}, CorrectOption: 4},
		{ID: 9, Text: "Parts of the following sentence have been underlined and given as ______", Options: []string{"options", "process", "system", "method"}, CorrectOption: 1},
		{ID: 10, Text: "Read the passage carefully and select the most ______ option to fill in each blank", Options: []string{"appropriate", "process", "system", "method"}, CorrectOption: 1},
	}
}
