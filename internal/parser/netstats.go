package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/netstats-history/netdelta/internal/models"
)

// DateSeparator splits the date field from the interface list.
const DateSeparator = " @ "

// NetstatsParser handles netstats-history logs.
// Format: "<date> @ <if> RX <bytes> TX <bytes>, <if> RX <bytes> TX <bytes>,"
type NetstatsParser struct {
	ifRegex *regexp.Regexp
	layouts []string
	intern  *StringIntern
}

// NewNetstatsParser returns a parser that tries extraLayouts before DefaultDateLayouts.
func NewNetstatsParser(extraLayouts ...string) *NetstatsParser {
	layouts := make([]string, 0, len(extraLayouts)+len(DefaultDateLayouts))
	layouts = append(layouts, extraLayouts...)
	layouts = append(layouts, DefaultDateLayouts...)
	return &NetstatsParser{
		// Counter tokens are matched loosely so a bad digit string still lines
		// up with its interface and can degrade to 0.
		ifRegex: regexp.MustCompile(`([^\s,]+)\s+RX\s+([^\s,]+)\s+TX\s+([^\s,]+)`),
		layouts: layouts,
		intern:  NewStringIntern(),
	}
}

func (p *NetstatsParser) Name() string {
	return "netstats"
}

// ParseLine parses one trimmed log line. A non-nil error is always a fatal
// *models.ParseError. Malformed counters are returned as warnings alongside
// a usable sample.
func (p *NetstatsParser) ParseLine(line string, lineNum int) (*models.Sample, []*models.ParseError, error) {
	// The date is everything before the last separator.
	sep := strings.LastIndex(line, DateSeparator)
	if sep < 0 {
		return nil, nil, &models.ParseError{Line: lineNum, Kind: models.DateNotFound, Content: line, Reason: "can't locate date"}
	}

	ts, err := ParseDate(line[:sep], p.layouts)
	if err != nil {
		return nil, nil, &models.ParseError{Line: lineNum, Kind: models.DateNotFound, Content: line, Reason: err.Error()}
	}

	matches := p.ifRegex.FindAllStringSubmatch(line[sep+len(DateSeparator):], -1)
	if len(matches) == 0 {
		return nil, nil, &models.ParseError{Line: lineNum, Kind: models.NoInterfaceData, Content: line, Reason: "can't locate interface data"}
	}

	var warnings []*models.ParseError
	ifaces := make([]models.InterfaceCounters, 0, len(matches))
	seen := make(map[string]int, len(matches))

	for _, m := range matches {
		name := p.intern.Intern(m[1])

		rx, err := parseCounter(m[2])
		if err != nil {
			warnings = append(warnings, malformedCounter(lineNum, line, name, "RX", m[2], err))
		}
		tx, err := parseCounter(m[3])
		if err != nil {
			warnings = append(warnings, malformedCounter(lineNum, line, name, "TX", m[3], err))
		}

		ic := models.InterfaceCounters{Name: name, RX: rx, TX: tx}
		if idx, dup := seen[name]; dup {
			ifaces[idx] = ic
			continue
		}
		seen[name] = len(ifaces)
		ifaces = append(ifaces, ic)
	}

	return &models.Sample{Line: lineNum, Timestamp: ts, Interfaces: ifaces}, warnings, nil
}

func parseCounter(tok string) (uint64, error) {
	v, err := strconv.ParseUint(tok, 10, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) {
			return 0, numErr.Err
		}
		return 0, err
	}
	return v, nil
}

func malformedCounter(lineNum int, line, ifname, counter, tok string, cause error) *models.ParseError {
	return &models.ParseError{
		Line:    lineNum,
		Kind:    models.MalformedCounter,
		Content: line,
		Reason:  fmt.Sprintf("%s %s counter %q: %v, recorded as 0", ifname, counter, tok, cause),
	}
}
