package core

import (
	"strings"
	"testing"
)

func TestNewScreen(t *testing.T) {
	s := NewScreen(80, 24)

	if s.Width() != 80 || s.Height() != 24 {
		t.Fatalf("dimensions = %dx%d, expected 80x24", s.Width(), s.Height())
	}
	for y := 0; y < s.Height(); y++ {
		for x := 0; x < s.Width(); x++ {
			if s.Get(x, y) != ' ' {
				t.Fatalf("new screen should be blank, got %q at (%d, %d)", s.Get(x, y), x, y)
			}
		}
	}
}

func TestScreenSetGet(t *testing.T) {
	s := NewScreen(10, 10)

	s.SetColored(5, 5, 'X', ColorCactus)
	cell := s.GetCell(5, 5)
	if cell.Rune != 'X' || cell.Color != ColorCactus {
		t.Errorf("GetCell(5, 5) = %+v, expected red X", cell)
	}

	s.Set(-1, 0, 'A')
	s.Set(100, 0, 'A')
	s.Set(0, -1, 'A')
	if s.Get(-1, 0) != ' ' || s.Get(100, 0) != ' ' {
		t.Error("out of bounds Get should return space")
	}
}

func TestScreenClear(t *testing.T) {
	s := NewScreen(4, 2)
	s.DrawText(0, 0, "XXXX")
	s.Clear()

	if s.String() != "    \n    " {
		t.Errorf("Clear() left %q", s.String())
	}
}

func TestScreenDrawBox(t *testing.T) {
	s := NewScreen(5, 3)
	s.DrawText(0, 1, "hello")
	s.DrawBox(NewRect(0, 0, 5, 3))

	expected := "┌───┐\n│   │\n└───┘"
	if s.String() != expected {
		t.Errorf("DrawBox() = %q, expected %q", s.String(), expected)
	}
}

func TestScreenHLine(t *testing.T) {
	s := NewScreen(6, 1)
	s.DrawHLine(1, 0, 3, '=', ColorGround)

	if s.Row(0) != " ===  " {
		t.Errorf("Row(0) = %q", s.Row(0))
	}
	if s.GetCell(2, 0).Color != ColorGround {
		t.Error("line should carry its color")
	}
}

func TestScreenResize(t *testing.T) {
	s := NewScreen(10, 10)
	s.DrawText(0, 0, "Hello")
	s.Resize(8, 4)

	if s.Width() != 8 || s.Height() != 4 {
		t.Errorf("after resize dimensions = %dx%d, expected 8x4", s.Width(), s.Height())
	}
	if strings.TrimSpace(s.Row(0)) != "" {
		t.Errorf("resize should clear, row 0 = %q", s.Row(0))
	}
	if s.Row(-1) != "        " {
		t.Errorf("out of bounds row should be spaces, got %q", s.Row(-1))
	}
}
