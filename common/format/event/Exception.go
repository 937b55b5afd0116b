package event

type Mechanism struct {
	Type        string `json:"type"`
	Handled     *bool  `json:"handled,omitempty"`
	Description string `json:"description,omitempty"`
}

type ExceptionValue struct {
	Type          string      `json:"type"`
	Value         string      `json:"value"`
	Module        string      `json:"module,omitempty"`
	Stacktrace    *Stacktrace `json:"stacktrace,omitempty"`
	RawStacktrace *Stacktrace `json:"rawStacktrace,omitempty"`
	ThreadID      ThreadID    `json:"threadId,omitempty"`
	Mechanism     *Mechanism  `json:"mechanism,omitempty"`
}

type Exception struct {
	Values          []ExceptionValue `json:"values"`
	HasSystemFrames bool             `json:"hasSystemFrames"`
	ExcOmitted      *[2]int          `json:"excOmitted,omitempty"`
}
