package hydration

// State is the position of the pipeline in its run state machine.
type State string

const (
	StateIdle                State = "idle"
	StateDeterminingStrategy State = "determining_strategy"
	StateFetching            State = "fetching"
	StatePersisting          State = "persisting"
	StateCompleted           State = "completed"
	StateFailed              State = "failed"
)

// Progress is a snapshot of the current or last run.
type Progress struct {
	RunID           string   `json:"run_id,omitempty"`
	State           State    `json:"state"`
	Strategy        Strategy `json:"strategy,omitempty"`
	PagesCompleted  int      `json:"pages_completed"`
	ObjectsFetched  int      `json:"objects_fetched"`
	TotalKnownCount *int     `json:"total_known_count,omitempty"`
}

// Fraction returns ObjectsFetched / TotalKnownCount. The bool is false while
// the total is unknown, which callers show as indeterminate progress.
func (p Progress) Fraction() (float64, bool) {
	if p.TotalKnownCount == nil {
		return 0, false
	}
	if *p.TotalKnownCount <= 0 {
		return 1, true
	}
	f := float64(p.ObjectsFetched) / float64(*p.TotalKnownCount)
	if f > 1 {
		f = 1
	}
	return f, true
}

// ProgressFunc receives a snapshot after every state change and committed page.
// It is called synchronously from the run goroutine and must not block.
type ProgressFunc func(Progress)
