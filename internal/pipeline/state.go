// internal/pipeline/state.go
package pipeline

type State string

const (
	StateReceived    State = "received"
	StateIdentifying State = "identifying"
	StateRejected    State = "rejected"
	StateIdentified  State = "identified"
	StateReasoning   State = "reasoning"
	StateExplaining  State = "explaining"
	StateCompleted   State = "completed"
)

// step is the progress marker logged alongside each working state.
var step = map[State]string{
	StateIdentifying: "1/3",
	StateReasoning:   "2/3",
	StateExplaining:  "3/3",
}

func (s State) Terminal() bool {
	return s == StateRejected || s == StateCompleted
}
