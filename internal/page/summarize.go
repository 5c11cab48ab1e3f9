package page

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/dhidargpt/dhidar/internal/llm"
)

// MinSummaryLength is the shortest input, in characters, worth summarizing.
const MinSummaryLength = 100

// TooShortMessage rejects input under MinSummaryLength.
const TooShortMessage = "Le texte doit comporter au moins 100 caractères pour un résumé pertinent."

// ExampleText is offered by the "load example" action.
const ExampleText = `L'intelligence artificielle transforme en profondeur la manière dont nous travaillons, apprenons et communiquons. Dans les entreprises, elle automatise les tâches répétitives, analyse de grands volumes de données et aide les équipes à prendre des décisions plus rapidement. Dans l'éducation, des assistants conversationnels accompagnent les élèves à leur rythme et proposent des explications adaptées à chacun. Le secteur de la santé utilise déjà des modèles capables de repérer des anomalies sur des images médicales avec une précision remarquable.

Ces progrès soulèvent cependant des questions importantes. La protection des données personnelles, la transparence des algorithmes et le risque de biais doivent être pris au sérieux. De nombreux experts estiment qu'un cadre réglementaire clair est nécessaire pour garantir une utilisation responsable de ces technologies. Enfin, la formation des travailleurs reste un enjeu majeur : pour que chacun profite de cette révolution, il faudra développer de nouvelles compétences et repenser certains métiers.`

// SummaryResult is a summary with its length metrics, in characters.
type SummaryResult struct {
	Summary          string `json:"summary"`
	OriginalLength   int    `json:"originalLength"`
	SummaryLength    int    `json:"summaryLength"`
	CompressionRatio int    `json:"compressionRatio"`
}

// NewSummaryResult computes the metrics of summary against its input. The
// ratio is a rounded percentage.
func NewSummaryResult(input, summary string) SummaryResult {
	original := utf8.RuneCountInString(input)
	length := utf8.RuneCountInString(summary)
	ratio := 0
	if original > 0 {
		ratio = int(math.Round(100 * float64(length) / float64(original)))
	}
	return SummaryResult{
		Summary:          summary,
		OriginalLength:   original,
		SummaryLength:    length,
		CompressionRatio: ratio,
	}
}

// ValidateSummaryInput checks text before it is sent for summarization.
func ValidateSummaryInput(text string) error {
	if strings.TrimSpace(text) == "" {
		return &ValidationError{Message: llm.EmptyTextMessage}
	}
	if utf8.RuneCountInString(text) < MinSummaryLength {
		return &ValidationError{Message: TooShortMessage}
	}
	return nil
}

// SummarizeState is the summarize page.
type SummarizeState struct {
	Input  string
	Result *SummaryResult
	Err    string
	Phase  Phase

	pending string
}

// Loading reports whether a summary is pending.
func (s SummarizeState) Loading() bool { return s.Phase == Loading }

// CanSubmit reports whether the summarize trigger is enabled.
func (s SummarizeState) CanSubmit() bool { return !s.Loading() }

// SetInput replaces the text to summarize.
func (s SummarizeState) SetInput(text string) SummarizeState {
	s.Input = text
	return s
}

// LoadExample fills the input with ExampleText.
func (s SummarizeState) LoadExample() SummarizeState {
	s.Input = ExampleText
	return s
}

// FileLoaded replaces the input with the content of a picked file, or shows
// why the file could not be read.
func (s SummarizeState) FileLoaded(text string, err error) SummarizeState {
	if err != nil {
		s.Err = err.Error()
		return s
	}
	s.Input = text
	s.Err = ""
	return s
}

// Submit validates the input and, when it is acceptable, waits for the
// summary. The returned text is what must be summarized.
func (s SummarizeState) Submit() (next SummarizeState, text string, ok bool) {
	if !s.CanSubmit() {
		return s, "", false
	}
	s.Err = ""
	s.Result = nil
	if err := ValidateSummaryInput(s.Input); err != nil {
		s.Err = err.Error()
		s.Phase = Error
		return s, "", false
	}
	s.pending = s.Input
	s.Phase = Loading
	return s, s.pending, true
}

// Complete records the outcome of the pending request. Metrics are computed
// against the text that was submitted, even if the input changed meanwhile.
func (s SummarizeState) Complete(r llm.Result) SummarizeState {
	if !s.Loading() {
		return s
	}
	input := s.pending
	s.pending = ""
	if r.OK() {
		result := NewSummaryResult(input, r.Payload)
		s.Result = &result
		s.Phase = Success
		return s
	}
	s.Err = r.Message()
	if s.Err == "" {
		s.Err = llm.SummarizeFailureMessage
	}
	s.Phase = Error
	return s
}
