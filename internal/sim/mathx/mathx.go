package mathx

func FloorDiv(a, b int) int {
	// b > 0
	q := a / b
	r := a % b
	if r < 0 {
		q--
	}
	return q
}

func Mod(a, b int) int {
	// b > 0
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

func AbsInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Chebyshev returns max(|ax-bx|, |ay-by|).
func Chebyshev(ax, ay, bx, by int) int {
	dx := AbsInt(ax - bx)
	dy := AbsInt(ay - by)
	if dy > dx {
		return dy
	}
	return dx
}

func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func Hash2(seed uint64, x, y int) uint64 {
	h := mix64(seed)
	h = mix64(h ^ uint64(int64(x)))
	h = mix64(h ^ uint64(int64(y)))
	return h
}
