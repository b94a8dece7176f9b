package processors

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// MOEX futures month codes, January through December.
var futuresMonthCodes = [12]byte{'F', 'G', 'H', 'J', 'K', 'M', 'N', 'Q', 'U', 'V', 'X', 'Z'}

var (
	longContractCode  = regexp.MustCompile(`^([A-Za-z]{1,4})-(\d{1,2})\.(\d{2})$`)
	shortContractCode = regexp.MustCompile(`^[A-Za-z]{2}[FGHJKMNQUVXZ]\d$`)
)

// MoexContractResolver canonicalizes MOEX derivative contract codes to their
// short form, e.g. "Si-6.21" to "SiM1". Codes already in short form pass
// through unchanged; anything else is reported as unresolvable.
type MoexContractResolver struct{}

func (MoexContractResolver) Resolve(code string) (string, bool) {
	code = strings.TrimSpace(code)
	if shortContractCode.MatchString(code) {
		return code, true
	}
	m := longContractCode.FindStringSubmatch(code)
	if m == nil {
		return "", false
	}
	month, err := strconv.Atoi(m[2])
	if err != nil || month < 1 || month > 12 {
		return "", false
	}
	// Short form keeps only the two-letter ticker root and the last digit of
	// the year.
	ticker := m[1]
	if len(ticker) > 2 {
		ticker = ticker[:2]
	}
	year := m[3][len(m[3])-1]
	return fmt.Sprintf("%s%c%c", ticker, futuresMonthCodes[month-1], year), true
}
