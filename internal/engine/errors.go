package engine

import (
	"errors"
	"fmt"
)

// ValidationError is a locally rejected answer. Nothing is sent to the backend.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid answer: " + e.Reason
}

var (
	// ErrEmptyAnswer is returned for a blank free-text answer.
	ErrEmptyAnswer = &ValidationError{Reason: "answer is empty"}

	// ErrInvalidChoice is returned for a comparison choice other than left, right or skip.
	ErrInvalidChoice = &ValidationError{Reason: "choice must be left, right or skip"}

	// ErrOptionsRequired is returned for free text on a question with fixed options.
	ErrOptionsRequired = &ValidationError{Reason: "question must be answered with one of its options"}
)

// ErrBusy is returned for input while a fetch or submission is in flight.
var ErrBusy = errors.New("engine is busy")

// ErrNoQuestion is returned for an answer when no question is displayed.
var ErrNoQuestion = errors.New("no question is displayed")

// ErrUnknownOption indicates an option index outside the offered options.
type ErrUnknownOption struct {
	Index int
	Count int
}

func (e *ErrUnknownOption) Error() string {
	return fmt.Sprintf("option %d out of range (question has %d options)", e.Index, e.Count)
}

// ErrWrongVariant indicates an answer event that does not fit the displayed question.
type ErrWrongVariant struct {
	Event string
	Type  string
}

func (e *ErrWrongVariant) Error() string {
	return fmt.Sprintf("%s does not apply to a %s question", e.Event, e.Type)
}
