package game

import (
	"slices"
	"time"
)

// Word is one card on a game board.
type Word struct {
	// ID is the corpus id of the word; unique within a game.
	ID       int64
	Value    string
	Color    Color
	Position int
	// SelectedAt is nil while the word is still active.
	SelectedAt *time.Time
}

// Active reports whether the word has not been guessed yet.
func (w Word) Active() bool {
	return w.SelectedAt == nil
}

// Hint is a clue given by a spymaster.
type Hint struct {
	ID int64
	// Word is empty for the placeholder hint written at game setup.
	Word      string
	Num       int
	Color     Color
	CreatedAt time.Time
}

// Placeholder reports whether h is the setup hint that precedes any real hint.
func (h Hint) Placeholder() bool {
	return h.Word == ""
}

// Player is a session seated at one (color, role) slot.
type Player struct {
	SessionID string
	Color     Color
	Role      Role
	JoinedAt  time.Time
}

// ConditionRecord is one entry of the condition log.
type ConditionRecord struct {
	// Seq is the journal sequence of the event that pushed the condition.
	Seq       uint64
	Condition Condition
	// HintID references the hint active when the condition was pushed; 0 means none.
	HintID    int64
	CreatedAt time.Time
}

// Guess is one recorded move.
type Guess struct {
	WordID     int64
	HintID     int64
	SelectedAt time.Time
}

// State is the folded view of one game.
type State struct {
	GameID           string
	Name             string
	CreatorSessionID string
	CreatedAt        time.Time
	// Created is false until the game.created event has been folded.
	Created    bool
	Words      []Word
	Hints      []Hint
	Conditions []ConditionRecord
	Players    []Player
	Guesses    []Guess
	// LastSeq is the sequence of the last folded event.
	LastSeq uint64
}

// Condition returns the latest condition, or "" before creation.
func (s State) Condition() Condition {
	if len(s.Conditions) == 0 {
		return ""
	}
	return s.Conditions[len(s.Conditions)-1].Condition
}

// LatestHint returns the last hint by insertion order.
func (s State) LatestHint() (Hint, bool) {
	if len(s.Hints) == 0 {
		return Hint{}, false
	}
	return s.Hints[len(s.Hints)-1], true
}

// NextHintID returns the id the next hint will receive.
func (s State) NextHintID() int64 {
	if latest, ok := s.LatestHint(); ok {
		return latest.ID + 1
	}
	return 1
}

// Word returns the board word with the given id.
func (s State) Word(id int64) (Word, bool) {
	for _, w := range s.Words {
		if w.ID == id {
			return w, true
		}
	}
	return Word{}, false
}

// ActiveWords returns the words not guessed yet, in board order.
func (s State) ActiveWords() []Word {
	active := make([]Word, 0, len(s.Words))
	for _, w := range s.Words {
		if w.Active() {
			active = append(active, w)
		}
	}
	return active
}

// RemainingWords counts the active words of color.
func (s State) RemainingWords(color Color) int {
	n := 0
	for _, w := range s.Words {
		if w.Active() && w.Color == color {
			n++
		}
	}
	return n
}

// Player returns the player seated with sessionID.
func (s State) Player(sessionID string) (Player, bool) {
	for _, p := range s.Players {
		if p.SessionID == sessionID {
			return p, true
		}
	}
	return Player{}, false
}

// PlayerAt returns the player holding the (color, role) slot.
func (s State) PlayerAt(color Color, role Role) (Player, bool) {
	for _, p := range s.Players {
		if p.Color == color && p.Role == role {
			return p, true
		}
	}
	return Player{}, false
}

// IsOccupied reports whether some session holds (color, role).
func (s State) IsOccupied(color Color, role Role) bool {
	_, ok := s.PlayerAt(color, role)
	return ok
}

// HasJoined reports whether sessionID is seated in the game.
func (s State) HasJoined(sessionID string) bool {
	_, ok := s.Player(sessionID)
	return ok
}

// Full reports whether all four team slots are occupied.
func (s State) Full() bool {
	for _, color := range Teams {
		for _, role := range Roles {
			if !s.IsOccupied(color, role) {
				return false
			}
		}
	}
	return true
}

// GuessesForHint counts the guesses recorded against hintID.
func (s State) GuessesForHint(hintID int64) int {
	n := 0
	for _, g := range s.Guesses {
		if g.HintID == hintID {
			n++
		}
	}
	return n
}

// RemainingGuesses returns how many guesses the latest hint still licenses:
// its num plus one bonus guess, minus guesses already made against it.
func (s State) RemainingGuesses() int {
	latest, ok := s.LatestHint()
	if !ok {
		return 0
	}
	return latest.Num + 1 - s.GuessesForHint(latest.ID)
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	cloned := s
	cloned.Words = slices.Clone(s.Words)
	for i, w := range cloned.Words {
		if w.SelectedAt != nil {
			at := *w.SelectedAt
			cloned.Words[i].SelectedAt = &at
		}
	}
	cloned.Hints = slices.Clone(s.Hints)
	cloned.Conditions = slices.Clone(s.Conditions)
	cloned.Players = slices.Clone(s.Players)
	cloned.Guesses = slices.Clone(s.Guesses)
	return cloned
}
