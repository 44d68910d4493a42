package domain

// OutcomeKind tags the result of a classified search.
type OutcomeKind int

const (
	OutcomeEmpty OutcomeKind = iota
	OutcomePage
	OutcomeOverflow
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeEmpty:
		return "empty"
	case OutcomePage:
		return "page"
	case OutcomeOverflow:
		return "overflow"
	default:
		return "unknown"
	}
}

const (
	NoResultsReason = "По твоему запросу не найдено ни одной книги. " +
		"Попробуй измени строку поиска. Например оставь только имя автора или только название книги, " +
		"или часть названия, или часть фамилии автора. Можно попробовать удалить из строки поиска лишние символы типа тире, " +
		"если они есть."
	TooManyResultsReason = "Запрос поиска находит больше 50ти книг по запрошенным данным. Попробуй уточнить запрос."
)

// Outcome is the single result of a search call. Books is only set for OutcomePage,
// Reason only for OutcomeEmpty and OutcomeOverflow.
type Outcome struct {
	Kind   OutcomeKind
	Reason string
	Books  []*Book
}

func EmptyOutcome() Outcome {
	return Outcome{Kind: OutcomeEmpty, Reason: NoResultsReason}
}

func OverflowOutcome() Outcome {
	return Outcome{Kind: OutcomeOverflow, Reason: TooManyResultsReason}
}

func PageOutcome(books []*Book) Outcome {
	return Outcome{Kind: OutcomePage, Books: books}
}

// ExportResult describes where an exported book file lives in object storage.
type ExportResult struct {
	Bucket  string `json:"bucket"`
	Key     string `json:"key"`
	Existed bool   `json:"existed"`
}
