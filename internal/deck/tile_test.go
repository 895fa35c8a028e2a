package deck

import (
	"testing"

	"github.com/ardamertdedeoglu/casino-with-friends-sub000/internal/randutil"
)

func TestNewPileHas106Tiles(t *testing.T) {
	t.Parallel()

	p := NewPile(randutil.New(1))
	if p.Remaining() != 106 {
		t.Fatalf("expected 106 tiles, got %d", p.Remaining())
	}
}

func TestPileComposition(t *testing.T) {
	t.Parallel()

	p := NewPile(randutil.New(5))
	counts := make(map[Tile]int)
	jokers := 0

	for p.Remaining() > 0 {
		tile, err := p.Draw()
		if err != nil {
			t.Fatalf("unexpected draw error: %v", err)
		}
		if tile.Joker {
			jokers++
			continue
		}
		counts[tile]++
	}

	if jokers != 2 {
		t.Errorf("expected 2 jokers, got %d", jokers)
	}
	if len(counts) != 52 {
		t.Errorf("expected 52 distinct numbered tiles, got %d", len(counts))
	}
	for tile, n := range counts {
		if n != 2 {
			t.Errorf("tile %s appears %d times, expected 2", tile, n)
		}
	}
}

func TestPileExhaustion(t *testing.T) {
	t.Parallel()

	p := NewPile(randutil.New(2))
	for i := 0; i < 106; i++ {
		if _, err := p.Draw(); err != nil {
			t.Fatalf("draw %d failed: %v", i, err)
		}
	}
	if _, err := p.Draw(); err != ErrExhausted {
		t.Errorf("expected ErrExhausted, got %v", err)
	}
}

func TestOkeyFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		indicator Tile
		want      Tile
	}{
		{Tile{Color: Red, Number: 7}, Tile{Color: Red, Number: 8}},
		{Tile{Color: Black, Number: 13}, Tile{Color: Black, Number: 1}},
		{Tile{Color: Green, Number: 1}, Tile{Color: Green, Number: 2}},
	}

	for _, tt := range tests {
		if got := OkeyFor(tt.indicator); got != tt.want {
			t.Errorf("OkeyFor(%s): expected %s, got %s", tt.indicator, tt.want, got)
		}
	}
}
