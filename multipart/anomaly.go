package multipart

import "strings"

// Anomaly is a set of recoverable irregularities seen in the body. None of them
// stops the parser: it keeps segmenting and resynchronizes on the next line.
type Anomaly uint8

const (
	// AnomalyMalformedLastBoundary is a delimiter followed by a single dash
	AnomalyMalformedLastBoundary Anomaly = 1 << iota
	// AnomalyBoundaryLineJunk is an unexpected byte between a delimiter and its LF
	AnomalyBoundaryLineJunk
	// AnomalyBoundaryAfterLast is a delimiter found after the terminal one
	AnomalyBoundaryAfterLast
	// AnomalyIncomplete means the parser was finalized before the terminal delimiter
	AnomalyIncomplete
	// AnomalyHeaderLineTooLong is a header line dropped for exceeding MaxHeaderLineLength
	AnomalyHeaderLineTooLong
	// AnomalyPartTruncated is a part whose retained value was cut at MaxPartLength
	AnomalyPartTruncated
)

var anomalyNames = [...]string{
	"malformed-last-boundary",
	"boundary-line-junk",
	"boundary-after-last",
	"incomplete",
	"header-line-too-long",
	"part-truncated",
}

func (a Anomaly) Has(flag Anomaly) bool {
	return a&flag == flag
}

func (a Anomaly) String() string {
	if a == 0 {
		return "none"
	}

	var names []string
	for i, name := range anomalyNames {
		if a&(1<<i) != 0 {
			names = append(names, name)
		}
	}

	return strings.Join(names, ",")
}
