package board

// PageSize is the fixed number of notices per page.
const PageSize = 10

// TotalPages returns ceil(count/PageSize) with a floor of one page.
func TotalPages(count int) int {
	pages := (count + PageSize - 1) / PageSize
	if pages < 1 {
		pages = 1
	}
	return pages
}

// pageOf returns the contiguous slice for a 1-based page index. Indices
// outside [1, TotalPages] are the caller's responsibility to clamp; out of
// range simply yields an empty slice.
func pageOf(items []Notice, page int) []Notice {
	start := (page - 1) * PageSize
	if start < 0 || start >= len(items) {
		return []Notice{}
	}
	end := start + PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
