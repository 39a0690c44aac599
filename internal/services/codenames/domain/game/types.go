package game

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is a word or team color.
type Color string

const (
	ColorRed      Color = "RED"
	ColorBlue     Color = "BLUE"
	ColorNeutral  Color = "NEUTRAL"
	ColorAssassin Color = "ASSASSIN"
)

var colorIDs = []Color{ColorRed, ColorBlue, ColorNeutral, ColorAssassin}

// ParseColor accepts a color name in any case or its numeric id (RED=1,
// BLUE=2, NEUTRAL=3, ASSASSIN=4).
func ParseColor(value string) (Color, error) {
	value = strings.TrimSpace(value)
	if id, err := strconv.Atoi(value); err == nil {
		if id >= 1 && id <= len(colorIDs) {
			return colorIDs[id-1], nil
		}
		return "", fmt.Errorf("unknown color id %d", id)
	}
	color := Color(strings.ToUpper(value))
	if color.Valid() {
		return color, nil
	}
	return "", fmt.Errorf("unknown color %q", value)
}

// Valid reports whether c is one of the four board colors.
func (c Color) Valid() bool {
	switch c {
	case ColorRed, ColorBlue, ColorNeutral, ColorAssassin:
		return true
	}
	return false
}

// ID returns the numeric id of c, or 0 for an invalid color.
func (c Color) ID() int {
	for i, candidate := range colorIDs {
		if candidate == c {
			return i + 1
		}
	}
	return 0
}

// IsTeam reports whether players can join as c.
func (c Color) IsTeam() bool {
	return c == ColorRed || c == ColorBlue
}

// Opponent returns the other team color. Non-team colors have no opponent.
func (c Color) Opponent() Color {
	switch c {
	case ColorRed:
		return ColorBlue
	case ColorBlue:
		return ColorRed
	}
	return ""
}

// Role is the part a player takes in a team.
type Role string

const (
	// RolePlayer guesses words.
	RolePlayer Role = "PLAYER"
	// RoleSpymaster gives hints.
	RoleSpymaster Role = "SPYMASTER"
)

// Roles lists every role in id order.
var Roles = []Role{RolePlayer, RoleSpymaster}

// Teams lists the joinable colors.
var Teams = []Color{ColorRed, ColorBlue}

// ParseRole accepts a role name in any case or its numeric id (PLAYER=1,
// SPYMASTER=2).
func ParseRole(value string) (Role, error) {
	value = strings.TrimSpace(value)
	if id, err := strconv.Atoi(value); err == nil {
		if id >= 1 && id <= len(Roles) {
			return Roles[id-1], nil
		}
		return "", fmt.Errorf("unknown role id %d", id)
	}
	role := Role(strings.ToUpper(value))
	if role.Valid() {
		return role, nil
	}
	return "", fmt.Errorf("unknown role %q", value)
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RolePlayer || r == RoleSpymaster
}

// ID returns the numeric id of r, or 0 for an invalid role.
func (r Role) ID() int {
	for i, candidate := range Roles {
		if candidate == r {
			return i + 1
		}
	}
	return 0
}

// Condition is the phase marker appended to the condition log.
type Condition string

const (
	ConditionNotStarted Condition = "NOT_STARTED"
	ConditionRedSpy     Condition = "RED_SPY"
	ConditionRedPlayer  Condition = "RED_PLAYER"
	ConditionBlueSpy    Condition = "BLUE_SPY"
	ConditionBluePlayer Condition = "BLUE_PLAYER"
	ConditionRedWins    Condition = "RED_WINS"
	ConditionBlueWins   Condition = "BLUE_WINS"
)

var conditionIDs = []Condition{
	ConditionNotStarted,
	ConditionRedSpy,
	ConditionRedPlayer,
	ConditionBlueSpy,
	ConditionBluePlayer,
	ConditionRedWins,
	ConditionBlueWins,
}

// ParseCondition accepts a condition name in any case.
func ParseCondition(value string) (Condition, error) {
	condition := Condition(strings.ToUpper(strings.TrimSpace(value)))
	if condition.ID() == 0 {
		return "", fmt.Errorf("unknown condition %q", value)
	}
	return condition, nil
}

// ID returns the numeric id of c, or 0 for an unknown condition.
func (c Condition) ID() int {
	for i, candidate := range conditionIDs {
		if candidate == c {
			return i + 1
		}
	}
	return 0
}

// Phase groups conditions by the actions they allow.
type Phase int

const (
	// PhaseUnknown is the phase of a game that has not been created.
	PhaseUnknown Phase = iota
	PhaseNotStarted
	PhaseSpyTurn
	PhasePlayerTurn
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "not started"
	case PhaseSpyTurn:
		return "spymaster turn"
	case PhasePlayerTurn:
		return "player turn"
	case PhaseFinished:
		return "finished"
	}
	return "unknown"
}

// Phase returns the phase of c.
func (c Condition) Phase() Phase {
	switch c {
	case ConditionNotStarted:
		return PhaseNotStarted
	case ConditionRedSpy, ConditionBlueSpy:
		return PhaseSpyTurn
	case ConditionRedPlayer, ConditionBluePlayer:
		return PhasePlayerTurn
	case ConditionRedWins, ConditionBlueWins:
		return PhaseFinished
	}
	return PhaseUnknown
}

// Team returns the team the condition belongs to: the team on turn, or the
// winner for finished games.
func (c Condition) Team() Color {
	switch c {
	case ConditionRedSpy, ConditionRedPlayer, ConditionRedWins:
		return ColorRed
	case ConditionBlueSpy, ConditionBluePlayer, ConditionBlueWins:
		return ColorBlue
	}
	return ""
}

// SpyTurn returns the condition in which color's spymaster gives a hint.
func SpyTurn(color Color) Condition {
	switch color {
	case ColorRed:
		return ConditionRedSpy
	case ColorBlue:
		return ConditionBlueSpy
	}
	return ""
}

// PlayerTurn returns the condition in which color's player guesses.
func PlayerTurn(color Color) Condition {
	switch color {
	case ColorRed:
		return ConditionRedPlayer
	case ColorBlue:
		return ConditionBluePlayer
	}
	return ""
}

// Wins returns the terminal condition for color winning.
func Wins(color Color) Condition {
	switch color {
	case ColorRed:
		return ConditionRedWins
	case ColorBlue:
		return ConditionBlueWins
	}
	return ""
}

// CanTransition reports whether the condition log may move from one
// condition to the next. An empty from is the state before creation.
func CanTransition(from, to Condition) bool {
	switch from.Phase() {
	case PhaseUnknown:
		return from == "" && to == ConditionNotStarted
	case PhaseNotStarted:
		return to == ConditionBlueSpy
	case PhaseSpyTurn:
		return to == PlayerTurn(from.Team())
	case PhasePlayerTurn:
		team := from.Team()
		switch to {
		case PlayerTurn(team), SpyTurn(team.Opponent()), Wins(team), Wins(team.Opponent()):
			return true
		}
	}
	return false
}
