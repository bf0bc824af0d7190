package httpparser

import "math"

/*
	parseUint is a tiny strconv.Atoi working directly on bytes. Only decimal digits are
	allowed, no signs and no spaces
*/
func parseUint(raw []byte) (num int, err error) {
	if len(raw) == 0 {
		return 0, ErrInvalidContentLength
	}

	for _, char := range raw {
		char -= '0'

		if char > 9 {
			return 0, ErrInvalidContentLength
		}

		if num > (math.MaxInt-int(char))/10 {
			return 0, ErrInvalidContentLength
		}

		num = num*10 + int(char)
	}

	return num, nil
}

// unhex returns the value of a single hexadecimal digit
func unhex(char byte) (int, bool) {
	switch {
	case '0' <= char && char <= '9':
		return int(char - '0'), true
	case 'a' <= char && char <= 'f':
		return int(char - 'a' + 10), true
	case 'A' <= char && char <= 'F':
		return int(char - 'A' + 10), true
	default:
		return 0, false
	}
}
