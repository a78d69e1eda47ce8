package rtree

// quickselectThreshold is the range size past which the pivot is chosen by
// ninther to keep average behaviour near-linear on adversarial inputs;
// at or below it the middle element of the range is used as the pivot.
const quickselectThreshold = 600

// partialSort partitions items[lo:hi) in place so that items[lo:k) holds
// the k-lo smallest elements by less, items[k] is in its final sorted
// position, and items[k:hi) holds the rest — a partial quickselect used by
// the OMT bulk loader to carve x-slabs and y-tiles without a full sort.
func partialSort[T any](items []T, lo, hi, k int, less func(a, b T) bool) {
	for hi-lo > 1 {
		if hi-lo > quickselectThreshold {
			ninther(items, lo, hi, less)
		}
		pivotIndex := partition(items, lo, hi, lo+(hi-lo)/2, less)
		if k == pivotIndex {
			return
		} else if k < pivotIndex {
			hi = pivotIndex
		} else {
			lo = pivotIndex + 1
		}
	}
}

// partition performs Lomuto-style partitioning around items[pivotIndex],
// returning the pivot's final index.
func partition[T any](items []T, lo, hi, pivotIndex int, less func(a, b T) bool) int {
	pivot := items[pivotIndex]
	items[pivotIndex], items[hi-1] = items[hi-1], items[pivotIndex]
	store := lo
	for i := lo; i < hi-1; i++ {
		if less(items[i], pivot) {
			items[i], items[store] = items[store], items[i]
			store++
		}
	}
	items[store], items[hi-1] = items[hi-1], items[store]
	return store
}

// ninther picks a pivot via the median of three medians-of-three samples
// spread across the range, then moves it to the midpoint so partition uses
// it — this is what keeps selection near-linear on large, adversarially
// ordered inputs instead of degrading to quadratic.
func ninther[T any](items []T, lo, hi int, less func(a, b T) bool) {
	n := hi - lo
	step := n / 8
	if step < 1 {
		step = 1
	}
	medianOfThree := func(a, b, c int) int {
		if less(items[a], items[b]) {
			if less(items[b], items[c]) {
				return b
			} else if less(items[a], items[c]) {
				return c
			}
			return a
		}
		if less(items[a], items[c]) {
			return a
		} else if less(items[b], items[c]) {
			return c
		}
		return b
	}

	m1 := medianOfThree(lo, lo+step, lo+2*step)
	mid := lo + n/2
	m2 := medianOfThree(mid-step, mid, mid+step)
	m3 := medianOfThree(hi-1-2*step, hi-1-step, hi-1)
	median := medianOfThree(m1, m2, m3)
	items[median], items[lo+n/2] = items[lo+n/2], items[median]
}
