package game

import (
	"errors"
	"fmt"
)

// BoardCounts is the number of words of each color dealt onto a board.
type BoardCounts struct {
	Blue     int
	Red      int
	Neutral  int
	Assassin int
}

// DefaultBoardCounts returns the standard 9/9/9/1 blue/red/neutral/assassin deal.
func DefaultBoardCounts() BoardCounts {
	return BoardCounts{Blue: 9, Red: 9, Neutral: 9, Assassin: 1}
}

// Size returns the number of words on the board.
func (c BoardCounts) Size() int {
	return c.Blue + c.Red + c.Neutral + c.Assassin
}

// Validate checks that both teams have words and the board has an assassin.
func (c BoardCounts) Validate() error {
	if c.Blue < 1 || c.Red < 1 {
		return fmt.Errorf("each team needs at least one word, got blue=%d red=%d", c.Blue, c.Red)
	}
	if c.Neutral < 0 {
		return errors.New("neutral count must not be negative")
	}
	if c.Assassin < 1 {
		return errors.New("board needs at least one assassin")
	}
	return nil
}

// Colors returns the unshuffled color multiset of the board.
func (c BoardCounts) Colors() []Color {
	colors := make([]Color, 0, c.Size())
	for _, entry := range []struct {
		color Color
		n     int
	}{
		{ColorBlue, c.Blue},
		{ColorRed, c.Red},
		{ColorNeutral, c.Neutral},
		{ColorAssassin, c.Assassin},
	} {
		for i := 0; i < entry.n; i++ {
			colors = append(colors, entry.color)
		}
	}
	return colors
}

// CountColors tallies the colors of words.
func CountColors(words []Word) BoardCounts {
	var counts BoardCounts
	for _, w := range words {
		switch w.Color {
		case ColorBlue:
			counts.Blue++
		case ColorRed:
			counts.Red++
		case ColorNeutral:
			counts.Neutral++
		case ColorAssassin:
			counts.Assassin++
		}
	}
	return counts
}
