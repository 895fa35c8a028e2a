package deck

import (
	"fmt"
	rand "math/rand/v2"
)

// TileColor represents one of the four okey tile colours
type TileColor int

const (
	Red TileColor = iota
	Black
	Blue
	Green
)

// String returns the single-letter colour code used on the wire
func (c TileColor) String() string {
	switch c {
	case Red:
		return "R"
	case Black:
		return "K"
	case Blue:
		return "B"
	case Green:
		return "G"
	default:
		return "?"
	}
}

// Tile represents an okey tile. Joker marks the two printed-joker tiles,
// which have no colour or number of their own and stand in for the round's
// okey tile. The wilds of a round are the two copies of the okey tile
// itself, identified by colour and number, not by a field here.
type Tile struct {
	Color  TileColor `json:"color"`
	Number int       `json:"number"`
	Joker  bool      `json:"joker"`
}

// String returns the wire representation, e.g. "R07" or "JOKER"
func (t Tile) String() string {
	if t.Joker {
		return "JOKER"
	}
	return fmt.Sprintf("%s%02d", t.Color, t.Number)
}

// Pile is a shuffled stack of okey tiles sharing the Deck draw contract
type Pile struct {
	tiles []Tile
	rng   *rand.Rand
}

// NewPile builds the full 106-tile okey set: two copies of numbers 1-13 in
// each of the four colours plus the two jokers, shuffled.
func NewPile(rng *rand.Rand) *Pile {
	p := &Pile{
		tiles: make([]Tile, 0, 106),
		rng:   rng,
	}

	for copies := 0; copies < 2; copies++ {
		for color := Red; color <= Green; color++ {
			for n := 1; n <= 13; n++ {
				p.tiles = append(p.tiles, Tile{Color: color, Number: n})
			}
		}
		p.tiles = append(p.tiles, Tile{Joker: true})
	}

	p.Shuffle()
	return p
}

// Shuffle randomizes tile order with an in-place Fisher-Yates pass
func (p *Pile) Shuffle() {
	for i := len(p.tiles) - 1; i > 0; i-- {
		j := p.rng.IntN(i + 1)
		p.tiles[i], p.tiles[j] = p.tiles[j], p.tiles[i]
	}
}

// Draw removes and returns the top tile
func (p *Pile) Draw() (Tile, error) {
	if len(p.tiles) == 0 {
		return Tile{}, ErrExhausted
	}

	tile := p.tiles[0]
	p.tiles = p.tiles[1:]
	return tile, nil
}

// Remaining returns the number of tiles left in the pile
func (p *Pile) Remaining() int {
	return len(p.tiles)
}

// Rig places the given tiles on top of the pile in order, for tests.
func (p *Pile) Rig(tiles ...Tile) {
	p.tiles = append(tiles, p.tiles...)
}

// OkeyFor returns the tile that acts as the round's okey given the face-up
// indicator tile: same colour, one higher, wrapping 13 back to 1.
func OkeyFor(indicator Tile) Tile {
	n := indicator.Number + 1
	if n > 13 {
		n = 1
	}
	return Tile{Color: indicator.Color, Number: n}
}
