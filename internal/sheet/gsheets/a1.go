package gsheets

import (
	"strconv"
	"strings"
)

// columnLetter converts a 1-based column index to its A1 letters
// (1 -> A, 26 -> Z, 27 -> AA).
func columnLetter(col int) string {
	var b []byte
	for col > 0 {
		col--
		b = append([]byte{byte('A' + col%26)}, b...)
		col /= 26
	}
	return string(b)
}

// quoteTitle quotes a worksheet title for use in an A1 range.
func quoteTitle(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

func rowRange(title string, row int) string {
	n := strconv.Itoa(row)
	return quoteTitle(title) + "!" + n + ":" + n
}

func columnRange(title string, col int) string {
	c := columnLetter(col)
	return quoteTitle(title) + "!" + c + ":" + c
}

func cellRange(title string, row, col int) string {
	return quoteTitle(title) + "!" + columnLetter(col) + strconv.Itoa(row)
}
