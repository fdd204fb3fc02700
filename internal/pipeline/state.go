package pipeline

import "fmt"

// Stage is the explicit position of a session in the generation flow. Every
// operation checks the stage up front instead of inferring readiness from
// which fields happen to be populated.
type Stage int

const (
	StageIdle Stage = iota
	StageQueries
	StageResearched
	StagePlanned
	StageWritten
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageQueries:
		return "queries_ready"
	case StageResearched:
		return "research_done"
	case StagePlanned:
		return "plan_ready"
	case StageWritten:
		return "article_done"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// StageError reports an operation invoked out of order. The offending call
// fails and leaves the session untouched; the caller recovers by running the
// missing stage first.
type StageError struct {
	Op       string
	Current  Stage
	Required Stage
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline: %s requires stage %s, session is at %s",
		e.Op, e.Required, e.Current)
}
