package core

// Scale is the fixed-point scale factor: 1 cell = 1000 units.
// All simulation state is kept in these units so that replays are
// bit-identical on every platform.
const Scale = 1000

// Fixed represents a fixed-point integer (scaled by Scale).
type Fixed int

// ToFixed converts a cell count to fixed-point.
func ToFixed(cells int) Fixed {
	return Fixed(cells * Scale)
}

// Milli builds a fixed-point value from thousandths of a cell.
// Config files express physics constants this way.
func Milli(units int) Fixed {
	return Fixed(units)
}

// ToCell converts fixed-point to a cell coordinate (truncated toward zero).
func (f Fixed) ToCell() int {
	return int(f) / Scale
}

// Floor converts fixed-point to a cell coordinate rounding toward negative infinity.
func (f Fixed) Floor() int {
	if f >= 0 {
		return int(f) / Scale
	}
	return -((-int(f) + Scale - 1) / Scale)
}

// MulRatio scales f by num/den using integer math. Returns 0 when den is 0.
func (f Fixed) MulRatio(num, den int) Fixed {
	if den == 0 {
		return 0
	}
	return Fixed(int64(f) * int64(num) / int64(den))
}

// Approach moves f toward target by at most step.
func (f Fixed) Approach(target, step Fixed) Fixed {
	if f < target {
		if f+step > target {
			return target
		}
		return f + step
	}
	if f > target {
		if f-step < target {
			return target
		}
		return f - step
	}
	return f
}
