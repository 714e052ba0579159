package quality

// dedupeBy keeps exactly one row per key. Rows are scanned in input order;
// a later row replaces the incumbent only when better reports it strictly
// better, so ties resolve to the first-seen row and the result is
// deterministic for a fixed input order. Output order follows the first
// occurrence of each key.
func dedupeBy[T any, K comparable](rows []T, key func(T) K, better func(candidate, incumbent T) bool) []T {
	out := make([]T, 0, len(rows))
	index := make(map[K]int, len(rows))

	for _, row := range rows {
		k := key(row)
		if i, seen := index[k]; seen {
			if better(row, out[i]) {
				out[i] = row
			}
			continue
		}
		index[k] = len(out)
		out = append(out, row)
	}
	return out
}
