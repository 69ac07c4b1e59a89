package engine

// Event is something the presentation layer should render.
type Event interface {
	engineEvent()
}

// BottleSelected is emitted when a bottle is picked up.
type BottleSelected struct {
	Bottle    BottleID
	LiftedRun int // Length of the top run to highlight
}

func (BottleSelected) engineEvent() {}

// BottleDeselected is emitted when the picked-up bottle is put back.
type BottleDeselected struct {
	Bottle BottleID
}

func (BottleDeselected) engineEvent() {}

// PourRejected is emitted when the second tap names an illegal target.
// The selection is cancelled.
type PourRejected struct {
	From BottleID
	To   BottleID
}

func (PourRejected) engineEvent() {}

// PourStarted is emitted when a legal pour begins. The presentation layer
// calls Complete when its transfer animation ends; until then the engine is
// busy and ignores taps.
type PourStarted struct {
	From     BottleID
	To       BottleID
	Amount   int
	Complete CompletionSignal
}

func (PourStarted) engineEvent() {}

// BottleContents is the authoritative content of one bottle.
type BottleContents struct {
	Bottle BottleID
	Blocks []Color
}

// BottlesChanged is emitted after a pour is applied.
type BottlesChanged struct {
	Bottles []BottleContents
}

func (BottlesChanged) engineEvent() {}

// LevelSolved is emitted once, the first time the current level is solved.
type LevelSolved struct {
	Level int
	Moves int
}

func (LevelSolved) engineEvent() {}

// UnlockRequired is emitted instead of acting when an ad-locked bottle is
// tapped. An external authority must call Engine.UnlockBottle.
type UnlockRequired struct {
	Bottle BottleID
	Lock   LockStatus
}

func (UnlockRequired) engineEvent() {}

// BottleUnlocked is emitted when a bottle becomes available.
type BottleUnlocked struct {
	Bottle BottleID
}

func (BottleUnlocked) engineEvent() {}

// CompletionSignal finishes a pending pour and returns the resulting events.
// Calling it more than once is a no-op that returns nil.
type CompletionSignal func() []Event
