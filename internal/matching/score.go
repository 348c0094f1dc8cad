package matching

// Ratio is the indel similarity of a and b on a 0-100 scale:
// 100 * 2*LCS / (len(a)+len(b)), rounded to the nearest integer.
// Inputs are folded first.
func Ratio(a, b string) int {
	return ratioRunes([]rune(fold(a)), []rune(fold(b)))
}

// PartialRatio scores the shorter string against every equally long window
// of the longer one and keeps the best window.
func PartialRatio(a, b string) int {
	shorter, longer := []rune(fold(a)), []rune(fold(b))
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if len(shorter) == 0 {
		return 0
	}

	best := 0
	for start := 0; start+len(shorter) <= len(longer); start++ {
		score := ratioRunes(shorter, longer[start:start+len(shorter)])
		if score > best {
			best = score
			if best == 100 {
				break
			}
		}
	}
	return best
}

// TokenSortRatio compares a and b after splitting into words and sorting
// them, so word order does not matter.
func TokenSortRatio(a, b string) int {
	return ratioRunes([]rune(sortedTokens(a)), []rune(sortedTokens(b)))
}

// BestOf returns the maximum of Ratio, PartialRatio and TokenSortRatio.
func BestOf(a, b string) int {
	return max(Ratio(a, b), PartialRatio(a, b), TokenSortRatio(a, b))
}

func ratioRunes(a, b []rune) int {
	total := len(a) + len(b)
	if total == 0 {
		return 0
	}
	common := lcsLength(a, b)
	return (200*common + total/2) / total
}

// lcsLength is the longest common subsequence length using two rolling rows.
func lcsLength(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				curr[j] = prev[j-1] + 1
			case prev[j] >= curr[j-1]:
				curr[j] = prev[j]
			default:
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
