package engine

// IsSolved reports whether every bottle in the level is empty or monochrome.
func IsSolved(l *Level) bool {
	for _, b := range l.bottles {
		if !b.IsMonochrome() {
			return false
		}
	}
	return true
}
