package r3

import (
	"fmt"
	"regexp"
	"strconv"
)

// ExtractMatch returns the first capture group of match against answer.
func ExtractMatch(answer, match string) (string, error) {
	re, err := regexp.Compile(match)
	if err != nil {
		return "", err
	}
	groups := re.FindStringSubmatch(answer)
	if len(groups) < 2 {
		return "", fmt.Errorf("r3: match %q did not capture a group in %q", match, answer)
	}
	return groups[1], nil
}

// ParseHexInt64 extracts and hex-parses match's capture group from answer.
func ParseHexInt64(answer, match string) (int64, error) {
	s, err := ExtractMatch(answer, match)
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(s, 16, 64)
}

// ParseInt64 extracts and decimal-parses match's capture group from answer.
func ParseInt64(answer, match string) (int64, error) {
	s, err := ExtractMatch(answer, match)
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(s, 10, 64)
}

// ParseUint64 extracts and decimal-parses match's capture group from
// answer.
func ParseUint64(answer, match string) (uint64, error) {
	s, err := ExtractMatch(answer, match)
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(s, 10, 64)
}

// ParseFloat64 extracts and float-parses match's capture group from
// answer, returning 0 for an empty capture.
func ParseFloat64(answer, match string) (float64, error) {
	s, err := ExtractMatch(answer, match)
	if err != nil {
		return 0, err
	}
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

// ParseBool evaluates a single-bit flag from answer. When match is empty
// it reports whether answer is non-empty and does not start with a zero
// byte; otherwise it hex-parses match's capture group and tests bit
// position.
func ParseBool(answer, match string, position int) (bool, error) {
	if match == "" {
		return len(answer) > 0 && answer[0] != 0, nil
	}
	v, err := ParseHexInt64(answer, match)
	if err != nil {
		return false, err
	}
	return v&(1<<uint(position)) != 0, nil
}

var positionPattern = regexp.MustCompile(`\(([^)]*)\)(?:\(([^)]*)\))?`)

// ParsePosition parses a "(x,y,z,...)" or "(x,y,z,...)(fl1,fl2)" tuple,
// extracted from the command's match, into a fixed-size array. The
// trailing two slots are reserved for the optional flag pair and stay
// zero if the answer carries no second group.
func ParsePosition(matchedAnswer string, size int) ([]float64, error) {
	out := make([]float64, size)
	groups := positionPattern.FindStringSubmatch(matchedAnswer)
	if groups == nil {
		return out, nil
	}
	index := 0
	for _, tok := range splitNonEmpty(groups[1]) {
		if index >= size {
			return out, nil
		}
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, err
		}
		out[index] = v
		index++
	}
	if groups[2] != "" {
		index = size - 2
		for _, tok := range splitNonEmpty(groups[2]) {
			if index >= size {
				break
			}
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return nil, err
			}
			out[index] = v
			index++
		}
	}
	return out, nil
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == ',' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

// EvaluateEnum returns the first case whose regex matches answer, in
// declared order, or the "Default" case if none match.
func EvaluateEnum(answer string, cases []EnumCase) (EnumCase, error) {
	for _, cs := range cases {
		if cs.Key == "Default" {
			continue
		}
		re, err := regexp.Compile(cs.Key)
		if err != nil {
			return EnumCase{}, err
		}
		if re.MatchString(answer) {
			return cs, nil
		}
	}
	for _, cs := range cases {
		if cs.Key == "Default" {
			return cs, nil
		}
	}
	return EnumCase{}, fmt.Errorf("r3: no case matched %q and no Default case is defined", answer)
}
