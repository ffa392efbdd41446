package channel

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var e164 = regexp.MustCompile(`^\+[1-9]\d{4,14}$`)

// NormalizePhone returns number in E.164 form. Numbers without a leading + are read as
// North American (10 digits, or 11 starting with 1).
func NormalizePhone(number string) (string, error) {
	trimmed := strings.TrimSpace(number)
	digits := make([]byte, 0, len(trimmed))
	for _, r := range trimmed {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			digits = append(digits, byte(r))
		}
	}

	if strings.HasPrefix(trimmed, "+") {
		n := "+" + string(digits)
		if !e164.MatchString(n) {
			return "", fmt.Errorf("%q is not a valid E.164 phone number", number)
		}
		return n, nil
	}

	switch {
	case len(digits) == 10:
		return "+1" + string(digits), nil
	case len(digits) == 11 && digits[0] == '1':
		return "+" + string(digits), nil
	}
	return "", fmt.Errorf("%q is not a valid phone number", number)
}
