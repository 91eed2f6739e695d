/*
Notation parsing for traditional Chinese move commands. A command is four
glyphs: piece, source column, operation (平 traverse, 进 advance, 退 retreat),
and operand, e.g. "炮二平五". Commands whose pieces share a column use a
front/middle/back marker instead of a source column, e.g. "前炮平三". Red
writes Chinese numerals, black writes Arabic digits, and both count columns
from their own right-hand side.
*/
package chessnote

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// A Move is a concrete (start, end) position pair resolved from notation.
type Move struct {
	Start Pos
	End   Pos
}

// String implements the fmt.Stringer interface.
func (m Move) String() string {
	return fmt.Sprintf("%v -> %v", m.Start, m.End)
}

// A ParseError reports malformed or ambiguous notation.
type ParseError struct {
	Command string // offending command or glyph, may be empty
	Message string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Command != "" {
		return fmt.Sprintf("chessnote: parse %q: %s", e.Command, e.Message)
	}
	return "chessnote: parse: " + e.Message
}

var (
	redGlyphs = map[rune]Piece{
		'车': 'R', '马': 'H', '相': 'E', '仕': 'A', '帅': 'K', '炮': 'C', '兵': 'P',
	}
	blackGlyphs = map[rune]Piece{
		'車': 'r', '馬': 'h', '象': 'e', '士': 'a', '将': 'k', '砲': 'c', '卒': 'p',
	}
	chineseNumerals = map[rune]int{
		'一': 1, '二': 2, '三': 3, '四': 4, '五': 5, '六': 6, '七': 7, '八': 8, '九': 9,
	}
)

// Operation and disambiguation glyphs.
const (
	opTraverse = '平'
	opAdvance  = '进'
	opRetreat  = '退'

	markFront  = '前'
	markMiddle = '中'
	markBack   = '后'
)

// DetectColor determines the mover's color from a command. Red commands
// contain Chinese numerals, black commands contain Arabic digits.
func DetectColor(cmd string) (Color, error) {
	if strings.ContainsAny(cmd, "0123456789") {
		return Black, nil
	}
	if strings.ContainsAny(cmd, "一二三四五六七八九十") {
		return Red, nil
	}
	return NoColor, &ParseError{Command: cmd, Message: "cannot determine color"}
}

var (
	// Turn numbers such as "1." or "12、" are recognized only at the start of
	// a token, so the Arabic digits inside black commands survive.
	turnNumberRE = regexp.MustCompile(`(^|[\s,，、;；])\d+(\.{1,3}|[、:：])?`)
	separatorRE  = regexp.MustCompile(`[\s,，、;；]+`)
)

// NormalizeCommands strips turn numbers and punctuation from raw game text
// and splits it into an ordered command list, enforcing strict red/black
// alternation. It fails on the first command whose color does not alternate
// with its predecessor.
func NormalizeCommands(text string) ([]string, error) {
	text = turnNumberRE.ReplaceAllString(text, "$1")

	var cmds []string
	for _, part := range separatorRE.Split(text, -1) {
		if part = strings.TrimSpace(part); part != "" {
			cmds = append(cmds, part)
		}
	}
	if len(cmds) == 0 {
		return nil, nil
	}

	expected, err := DetectColor(cmds[0])
	if err != nil {
		return nil, err
	}
	for _, cmd := range cmds {
		color, err := DetectColor(cmd)
		if err != nil {
			return nil, err
		}
		if color != expected {
			return nil, &ParseError{
				Command: cmd,
				Message: fmt.Sprintf("alternation error: expected %v, got %v", expected, color),
			}
		}
		expected = expected.Other()
	}
	return cmds, nil
}

// ParsePieceGlyph maps one Chinese piece glyph to the internal symbol. In
// strict mode the glyph must belong to the glyph set of the given color. In
// lenient mode either color's set is accepted and the result is re-cased to
// match the color.
func ParsePieceGlyph(glyph string, color Color, strict bool) (Piece, error) {
	runes := []rune(glyph)
	if len(runes) != 1 {
		return 0, &ParseError{Command: glyph, Message: "piece glyph must be a single character"}
	}
	r := runes[0]

	if strict {
		set := redGlyphs
		if color == Black {
			set = blackGlyphs
		}
		piece, ok := set[r]
		if !ok {
			return 0, &ParseError{
				Command: glyph,
				Message: fmt.Sprintf("invalid piece glyph for %v [strict]", color),
			}
		}
		return piece, nil
	}

	piece, ok := redGlyphs[r]
	if !ok {
		if piece, ok = blackGlyphs[r]; !ok {
			return 0, &ParseError{
				Command: glyph,
				Message: fmt.Sprintf("invalid piece glyph for %v", color),
			}
		}
	}
	if color == Red {
		return piece.Kind(), nil
	}
	return piece.Kind().swap(), nil
}

// ParseColumn parses a column glyph into a 0-based board column. Red glyphs
// are Chinese numerals 一..九, black glyphs are Arabic digits 1..9. Both
// count from the mover's own right-hand side, so the index is mirrored when
// the mover's side is down.
func ParseColumn(glyph string, color Color, side Side) (int, error) {
	var col int
	if color == Red {
		v, ok := chineseNumerals[singleRune(glyph)]
		if !ok {
			return 0, &ParseError{Command: glyph, Message: "red column must be a Chinese numeral 一..九"}
		}
		col = v - 1
	} else {
		v, err := strconv.Atoi(glyph)
		if err != nil {
			return 0, &ParseError{Command: glyph, Message: "black column must be numeric"}
		}
		col = v - 1
		if col < 0 || col > 8 {
			return 0, &ParseError{Command: glyph, Message: "black column must be in 1..9"}
		}
	}

	if side == SideDown {
		col = 8 - col
	}
	return col, nil
}

// ParseRowDelta parses an advance/retreat operand into a signed row step.
// The magnitude follows the numeral family of the color; the sign is negated
// for side up so that a positive advance always points toward the opponent.
func ParseRowDelta(glyph string, color Color, side Side) (int, error) {
	var delta int
	if color == Red {
		v, ok := chineseNumerals[singleRune(glyph)]
		if !ok {
			return 0, &ParseError{Command: glyph, Message: "red step must be a Chinese numeral 一..九"}
		}
		delta = v
	} else {
		v, err := strconv.Atoi(glyph)
		if err != nil {
			return 0, &ParseError{Command: glyph, Message: "black step must be numeric"}
		}
		if v < 0 || v > 9 {
			return 0, &ParseError{Command: glyph, Message: "black step must be in 0..9"}
		}
		delta = v
	}

	if side == SideUp {
		delta = -delta
	}
	return delta, nil
}

func singleRune(s string) rune {
	runes := []rune(s)
	if len(runes) != 1 {
		return 0
	}
	return runes[0]
}

// ParseCommand resolves one notation command against a board state into a
// concrete move. The board is never mutated. The rotation flag fixes which
// color plays from the down side; strict selects strict piece-glyph matching.
func ParseCommand(b *Board, cmd string, rotated, strict bool) (Move, error) {
	runes := []rune(cmd)
	if len(runes) < 4 {
		return Move{}, &ParseError{Command: cmd, Message: "command too short"}
	}

	color, err := DetectColor(cmd)
	if err != nil {
		return Move{}, err
	}
	side := ColorSide(color, rotated)

	marker := runes[0]
	hardMode := marker == markFront || marker == markMiddle || marker == markBack

	var pieceGlyph, colGlyph, opGlyph, argGlyph rune
	if hardMode {
		pieceGlyph, opGlyph, argGlyph = runes[1], runes[2], runes[3]
	} else {
		pieceGlyph, colGlyph, opGlyph, argGlyph = runes[0], runes[1], runes[2], runes[3]
	}

	piece, err := ParsePieceGlyph(string(pieceGlyph), color, strict)
	if err != nil {
		return Move{}, err
	}

	var occurrences []Pos
	for pos, pc := range b.pieces {
		if pc == piece {
			occurrences = append(occurrences, pos)
		}
	}
	// Map iteration order is randomized; fix it so an ambiguous command
	// resolves to the same source on every parse.
	sort.Slice(occurrences, func(i, j int) bool {
		if occurrences[i].X != occurrences[j].X {
			return occurrences[i].X < occurrences[j].X
		}
		return occurrences[i].Y < occurrences[j].Y
	})

	var start Pos
	if !hardMode {
		if len(occurrences) == 0 {
			return Move{}, &ParseError{Command: cmd, Message: fmt.Sprintf("source piece not found: %v", piece)}
		}
		startCol, err := ParseColumn(string(colGlyph), color, side)
		if err != nil {
			return Move{}, err
		}
		found := false
		for _, pos := range occurrences {
			if pos.X == startCol {
				start, found = pos, true
				break
			}
		}
		if !found {
			return Move{}, &ParseError{
				Command: cmd,
				Message: fmt.Sprintf("source piece not found: %v at column %q", piece, string(colGlyph)),
			}
		}
	} else {
		start, err = resolveMarker(marker, piece, occurrences, side, cmd)
		if err != nil {
			return Move{}, err
		}
	}

	end, err := resolveDestination(piece, start, opGlyph, string(argGlyph), color, side, cmd)
	if err != nil {
		return Move{}, err
	}
	return Move{Start: start, End: end}, nil
}

// resolveMarker selects the source among same-kind pieces sharing one column,
// ordered nearest-own-edge first.
func resolveMarker(marker rune, piece Piece, occurrences []Pos, side Side, cmd string) (Pos, error) {
	if len(occurrences) == 0 {
		return Pos{}, &ParseError{Command: cmd, Message: fmt.Sprintf("source piece not found: %v", piece)}
	}
	col := occurrences[0].X
	for _, pos := range occurrences[1:] {
		if pos.X != col {
			return Pos{}, &ParseError{
				Command: cmd,
				Message: fmt.Sprintf("%v pieces are not in the same column", piece),
			}
		}
	}

	sorted := append([]Pos(nil), occurrences...)
	sort.Slice(sorted, func(i, j int) bool {
		if side == SideDown {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].Y < sorted[j].Y
	})

	switch marker {
	case markFront:
		if len(sorted) < 2 {
			return Pos{}, &ParseError{Command: cmd, Message: "front marker requires at least 2 pieces"}
		}
		return sorted[0], nil
	case markBack:
		if len(sorted) < 2 {
			return Pos{}, &ParseError{Command: cmd, Message: "back marker requires at least 2 pieces"}
		}
		return sorted[len(sorted)-1], nil
	default: // markMiddle
		if len(sorted) < 3 {
			return Pos{}, &ParseError{Command: cmd, Message: "middle marker requires at least 3 pieces"}
		}
		return sorted[1], nil
	}
}

func resolveDestination(piece Piece, start Pos, op rune, arg string, color Color, side Side, cmd string) (Pos, error) {
	switch piece.Kind() {
	case 'K', 'R', 'C', 'P':
		switch op {
		case opTraverse:
			col, err := ParseColumn(arg, color, side)
			if err != nil {
				return Pos{}, err
			}
			return Pos{col, start.Y}, nil
		case opAdvance, opRetreat:
			delta, err := ParseRowDelta(arg, color, side)
			if err != nil {
				return Pos{}, err
			}
			row := start.Y + delta
			if op == opRetreat {
				row = start.Y - delta
			}
			if row < 0 || row > 9 {
				return Pos{}, &ParseError{Command: cmd, Message: fmt.Sprintf("row out of range: %d", row)}
			}
			return Pos{start.X, row}, nil
		default:
			return Pos{}, &ParseError{
				Command: cmd,
				Message: fmt.Sprintf("invalid operation %q for %v", string(op), piece),
			}
		}

	case 'A', 'E':
		col, err := ParseColumn(arg, color, side)
		if err != nil {
			return Pos{}, err
		}
		// Advisors always step one row, elephants always two. The operand only
		// names the destination column.
		row, err := fixedDeltaRow(piece, start, op, 0, color, side, cmd)
		if err != nil {
			return Pos{}, err
		}
		return Pos{col, row}, nil

	default: // 'H'
		col, err := ParseColumn(arg, color, side)
		if err != nil {
			return Pos{}, err
		}
		// A one-column shift means a two-row step and vice versa.
		var shift int
		switch abs(col - start.X) {
		case 1:
			shift = 2
		case 2:
			shift = 1
		default:
			return Pos{}, &ParseError{Command: cmd, Message: fmt.Sprintf("invalid horse move for %v", piece)}
		}
		row, err := fixedDeltaRow(piece, start, op, shift, color, side, cmd)
		if err != nil {
			return Pos{}, err
		}
		return Pos{col, row}, nil
	}
}

// fixedDeltaRow resolves the destination row for pieces whose row step is not
// read from the operand: advisors (1), elephants (2), and horses (magnitude
// passed in). The magnitude is expressed in the numeral family of the
// command's color and run through ParseRowDelta for the side sign convention.
func fixedDeltaRow(piece Piece, start Pos, op rune, magnitude int, color Color, side Side, cmd string) (int, error) {
	if magnitude == 0 {
		if piece.Kind() == 'A' {
			magnitude = 1
		} else {
			magnitude = 2
		}
	}

	unit := strconv.Itoa(magnitude)
	if color == Red {
		if magnitude == 1 {
			unit = "一"
		} else {
			unit = "二"
		}
	}
	delta, err := ParseRowDelta(unit, color, side)
	if err != nil {
		return 0, err
	}

	switch op {
	case opAdvance:
		return start.Y + delta, nil
	case opRetreat:
		return start.Y - delta, nil
	default:
		return 0, &ParseError{
			Command: cmd,
			Message: fmt.Sprintf("invalid operation %q for %v", string(op), piece),
		}
	}
}
