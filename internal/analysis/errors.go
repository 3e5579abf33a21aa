package analysis

import "fmt"

// EmptyTableError indicates there are no rows to aggregate.
type EmptyTableError struct {
	Question QuestionID
}

func (e *EmptyTableError) Error() string {
	if e.Question == 0 {
		return "empty table: nothing to analyze"
	}
	return fmt.Sprintf("%s: empty table: nothing to analyze", e.Question)
}

// AggregationError indicates one question cannot be answered from this
// dataset, typically because a required column is absent. It is recoverable:
// the runner skips the question and keeps the others.
type AggregationError struct {
	Question QuestionID
	Column   string
	Reason   string
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("%s: column %q: %s", e.Question, e.Column, e.Reason)
}
