package analysis

// EventType enum
type EventType string

const (
	EventError      EventType = "error"
	EventPause      EventType = "pause"
	EventRepetition EventType = "repetition"
	EventHesitation EventType = "hesitation"
)

// Level is used for event severity and scenario risk.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Event is a user-experience moment detected in the video.
type Event struct {
	Timestamp   string    `json:"timestamp"` // mm:ss.SS
	Type        EventType `json:"type"`
	Severity    Level     `json:"severity"`
	Description string    `json:"description"`
}

// Scenario is the simulated impact of one adjustable variable set.
type Scenario struct {
	Score     float64 `json:"score"`
	Risk      Level   `json:"risk"`
	TradeOffs any     `json:"trade_offs,omitempty"`
}

// Result is the structured analysis returned by the model.
type Result struct {
	Events         []Event             `json:"events"`
	Scenarios      map[string]Scenario `json:"scenarios"`
	Recommendation []string            `json:"recommendation"`
}
