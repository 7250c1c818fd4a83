package utils

import (
	"strconv"
)

// StringToInt parses s as a base-10 int. Malformed input, including the
// empty string, yields 0; handlers treat 0 as "not provided".
func StringToInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
