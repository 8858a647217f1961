package stage

// maxSurfacedHints caps how many hints are ever shown at once.
const maxSurfacedHints = 3

// EscalateHints returns the prefix of hints to surface for the given
// failure count: one hint for the first failure, two for the second,
// three from the third onward. Never exceeds the available hints.
func EscalateHints(hints []string, failureCount int) []string {
	if len(hints) == 0 {
		return nil
	}
	n := failureCount
	if n < 1 {
		n = 1
	}
	if n > maxSurfacedHints {
		n = maxSurfacedHints
	}
	if n > len(hints) {
		n = len(hints)
	}
	return hints[:n]
}
