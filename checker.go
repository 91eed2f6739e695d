package chessnote

import (
	"fmt"
)

// A Side is the resolved forward direction of a color on the fixed grid.
type Side int8

const (
	// SideDown means the color plays from the low rows toward the high rows.
	SideDown Side = iota
	// SideUp means the color plays from the high rows toward the low rows.
	SideUp
)

// String implements the fmt.Stringer interface.
func (s Side) String() string {
	if s == SideUp {
		return "up"
	}
	return "down"
}

// ColorSide maps a color and a rotation flag to its board side. Red sits on
// the down side of an unrotated board; black is the complement.
func ColorSide(color Color, rotated bool) Side {
	if (color == Red) != rotated {
		return SideDown
	}
	return SideUp
}

// CheckMove validates a single move against piece rules only. It returns nil
// when the move is legal and an ErrIllegalMove-wrapped reason otherwise. The
// board is never mutated; whole-game legality (check, checkmate) is not
// examined.
func CheckMove(b *Board, start, end Pos, rotated bool) error {
	piece, ok := b.pieces[start]
	if !ok {
		return fmt.Errorf("%w: no piece at start %v", ErrIllegalMove, start)
	}
	if !end.Valid() {
		return fmt.Errorf("%w: end %v", ErrInvalidPosition, end)
	}
	if start == end {
		return fmt.Errorf("%w: start and end cannot be the same", ErrIllegalMove)
	}
	if target, ok := b.pieces[end]; ok && target.Color() == piece.Color() {
		return fmt.Errorf("%w: cannot capture own piece at %v", ErrIllegalMove, end)
	}

	color := piece.Color()
	side := ColorSide(color, rotated)
	dx, dy := end.X-start.X, end.Y-start.Y

	switch piece.Kind() {
	case 'R':
		if dx != 0 && dy != 0 {
			return fmt.Errorf("%w: rook must move straight", ErrIllegalMove)
		}
		cnt, err := countBetween(b, start, end)
		if err != nil {
			return err
		}
		if cnt != 0 {
			return fmt.Errorf("%w: rook path blocked", ErrIllegalMove)
		}

	case 'H':
		if !(abs(dx) == 1 && abs(dy) == 2 || abs(dx) == 2 && abs(dy) == 1) {
			return fmt.Errorf("%w: horse must move in 日-shape", ErrIllegalMove)
		}
		// The leg square sits one step along the length-2 axis.
		leg := Pos{start.X, start.Y + dy/2}
		if abs(dx) == 2 {
			leg = Pos{start.X + dx/2, start.Y}
		}
		if b.Occupied(leg) {
			return fmt.Errorf("%w: horse's leg blocked", ErrIllegalMove)
		}

	case 'E':
		if !(abs(dx) == 2 && abs(dy) == 2) {
			return fmt.Errorf("%w: elephant must move 2 diagonally", ErrIllegalMove)
		}
		if b.Occupied(Pos{start.X + dx/2, start.Y + dy/2}) {
			return fmt.Errorf("%w: elephant's eye blocked", ErrIllegalMove)
		}
		if !onOwnSide(end, side) {
			return fmt.Errorf("%w: elephant cannot cross the river", ErrIllegalMove)
		}

	case 'A':
		if !(abs(dx) == 1 && abs(dy) == 1) {
			return fmt.Errorf("%w: advisor must move 1 diagonally", ErrIllegalMove)
		}
		if !inPalace(end, side) {
			return fmt.Errorf("%w: advisor must stay inside palace", ErrIllegalMove)
		}

	case 'K':
		if !(abs(dx)+abs(dy) == 1) {
			return fmt.Errorf("%w: king must move 1 step orthogonally", ErrIllegalMove)
		}
		if !inPalace(end, side) {
			return fmt.Errorf("%w: king must stay inside palace", ErrIllegalMove)
		}

	case 'C':
		if dx != 0 && dy != 0 {
			return fmt.Errorf("%w: cannon must move straight", ErrIllegalMove)
		}
		cnt, err := countBetween(b, start, end)
		if err != nil {
			return err
		}
		if b.Occupied(end) {
			if cnt != 1 {
				return fmt.Errorf("%w: cannon must jump exactly one piece when capturing", ErrIllegalMove)
			}
		} else if cnt != 0 {
			return fmt.Errorf("%w: cannon path blocked", ErrIllegalMove)
		}

	case 'P':
		if !(abs(dx)+abs(dy) == 1) {
			return fmt.Errorf("%w: pawn must move 1 step", ErrIllegalMove)
		}
		if side == SideUp && dy > 0 || side == SideDown && dy < 0 {
			return fmt.Errorf("%w: pawn cannot move backward", ErrIllegalMove)
		}
		if onOwnSide(end, side) && dx != 0 {
			return fmt.Errorf("%w: pawn cannot move sideways before crossing river", ErrIllegalMove)
		}
	}

	return nil
}

// countBetween counts pieces strictly between two positions that share a row
// or a column.
func countBetween(b *Board, start, end Pos) (int, error) {
	cnt := 0
	switch {
	case start.X == end.X:
		step := 1
		if end.Y < start.Y {
			step = -1
		}
		for y := start.Y + step; y != end.Y; y += step {
			if b.Occupied(Pos{start.X, y}) {
				cnt++
			}
		}
	case start.Y == end.Y:
		step := 1
		if end.X < start.X {
			step = -1
		}
		for x := start.X + step; x != end.X; x += step {
			if b.Occupied(Pos{x, start.Y}) {
				cnt++
			}
		}
	default:
		return 0, fmt.Errorf("%w: %v and %v share neither row nor column", ErrIllegalMove, start, end)
	}
	return cnt, nil
}

// inPalace reports whether pos lies inside the 3x3 palace of the given side.
func inPalace(pos Pos, side Side) bool {
	if pos.X < 3 || pos.X > 5 {
		return false
	}
	if side == SideDown {
		return pos.Y >= 0 && pos.Y <= 2
	}
	return pos.Y >= 7 && pos.Y <= 9
}

// onOwnSide reports whether pos lies on the given side's half of the river.
func onOwnSide(pos Pos, side Side) bool {
	if side == SideDown {
		return pos.Y <= 4
	}
	return pos.Y >= 5
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
