package spatial

import (
	"fmt"
	"sort"
)

// DistanceSortIndex is the ephemeral field-capable index KNNIndex hands
// back: it knows each docid's distance from the query point and nothing
// else, just enough to satisfy resultset.Sorter.
type DistanceSortIndex struct {
	distances map[int64]float64
}

// Sort orders docids by ascending (or, if reverse, descending) distance.
// A docid missing from the KNN result it was built from is an
// unsortable-key error.
func (d *DistanceSortIndex) Sort(docids []int64, reverse bool, limit *int, sortType string) ([]int64, error) {
	var missing []int64
	for _, id := range docids {
		if _, ok := d.distances[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("spatial: missing sort key for docids %v", missing)
	}

	out := append([]int64{}, docids...)
	sort.SliceStable(out, func(i, j int) bool {
		if reverse {
			return d.distances[out[i]] > d.distances[out[j]]
		}
		return d.distances[out[i]] < d.distances[out[j]]
	})
	if limit != nil && *limit >= 0 && *limit < len(out) {
		out = out[:*limit]
	}
	return out, nil
}
