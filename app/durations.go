package app

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var (
	biggerDurationsRE = regexp.MustCompile(`(?m)(\d+)([wdhms])`)
	conv              = map[string]time.Duration{
		"s": time.Second,
		"m": time.Minute,
		"h": time.Hour,
		"d": 24 * time.Hour,
		"w": 7 * 24 * time.Hour,
	}
)

// ParseDuration understands everything time.ParseDuration does, and falls
// back to a parser that supports days and weeks, like `1w2d`.
func ParseDuration(dur string) (result time.Duration, err error) {
	result, err = time.ParseDuration(dur)
	if err == nil {
		return result, nil
	}
	matches := biggerDurationsRE.FindAllStringSubmatch(dur, -1)
	if len(matches) == 0 {
		return 0, fmt.Errorf("invalid duration: %s", dur)
	}
	result = 0
	for _, match := range matches {
		incr, err := strconv.Atoi(match[1])
		if err != nil {
			return 0, err
		}
		multiple, ok := conv[match[2]]
		if !ok {
			return 0, fmt.Errorf("cannot find multiple: %s", match[2])
		}
		result += time.Duration(incr) * multiple
	}
	return result, nil
}
