package gsheets

import (
	"fmt"
	"strconv"
)

// ColumnLetter converts a 1-based column index to its A1 letter form.
func ColumnLetter(col int) string {
	letters := ""
	for col > 0 {
		col--
		letters = string(rune('A'+col%26)) + letters
		col /= 26
	}
	return letters
}

// RowColToA1 converts 1-based row/column indexes to an A1 address.
func RowColToA1(row, col int) string {
	return fmt.Sprintf("%s%d", ColumnLetter(col), row)
}

// A1ToRowCol parses an A1 address back into 1-based row/column indexes.
func A1ToRowCol(addr string) (row, col int, err error) {
	i := 0
	for i < len(addr) {
		c := addr[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		if c < 'A' || c > 'Z' {
			break
		}
		col = col*26 + int(c-'A') + 1
		i++
	}
	if col == 0 || i == len(addr) {
		return 0, 0, fmt.Errorf("gsheets: malformed A1 address %q", addr)
	}
	row, err = strconv.Atoi(addr[i:])
	if err != nil || row < 1 {
		return 0, 0, fmt.Errorf("gsheets: malformed A1 address %q", addr)
	}
	return row, col, nil
}
