package util

// SaturatingAdd adds without wrapping around, sizes of shared-subtree trees
// can exceed int when counted as trees
func SaturatingAdd(a, b int) int {
	if c := a + b; c >= a && c >= b {
		return c
	}
	return int(^uint(0) >> 1)
}
