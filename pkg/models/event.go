package models

// Event is emitted once per candidate after it has been reconciled
type Event struct {
	// Index is the 1-based position of the event in the run
	Index int
	// Total is the number of candidates in the run
	Total   int
	Name    string
	Outcome Outcome
	// Err is set for failed and partially failed outcomes
	Err  error
	File *CandidateFile
}

// NewEvent builds the event for a resolved candidate
func NewEvent(index, total int, c *CandidateFile) Event {
	return Event{
		Index:   index,
		Total:   total,
		Name:    c.Name,
		Outcome: c.Outcome(),
		Err:     c.Err(),
		File:    c,
	}
}
