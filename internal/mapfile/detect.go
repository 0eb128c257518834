package mapfile

import (
	"math"
	"sort"
	"strings"
	"time"

	"bovespacli/internal/calendar"
	"bovespacli/internal/files"
)

// MinRenameFrequency is the share of sessions a predecessor must have traded on
const MinRenameFrequency = 0.5

// Candidate is a symbol that started trading right after another one stopped
type Candidate struct {
	Current     string
	Predecessor string
	Frequency   float64
	Known       bool
}

// DetectRenames proposes rename pairs from trade dates alone.
//
// A symbol is a candidate predecessor of cur when its last trade falls in
// [session before cur's first trade, cur's first trade). Candidates that
// traded on fewer than MinRenameFrequency of the sessions they spanned are
// dropped as illiquid; the frequency is taken over the whole history and
// over the history since January 1st of the year before the last trade,
// keeping the higher one. dates holds ascending trade dates per symbol.
func DetectRenames(dates map[string][]time.Time, cal *calendar.Calendar) []Candidate {
	symbols := make([]string, 0, len(dates))
	for s, d := range dates {
		if len(d) > 0 {
			symbols = append(symbols, s)
		}
	}
	sort.Strings(symbols)

	var out []Candidate
	for _, cur := range symbols {
		first := dates[cur][0]
		prev, ok := cal.Previous(first)
		if !ok {
			continue
		}
		for _, pred := range symbols {
			if pred == cur {
				continue
			}
			pd := dates[pred]
			last := pd[len(pd)-1]
			if last.Before(prev) || !last.Before(first) {
				continue
			}
			freq := math.Max(tradingFrequency(pd, cal), tradingFrequency(sinceYearBefore(pd), cal))
			if freq < MinRenameFrequency {
				continue
			}
			out = append(out, Candidate{Current: cur, Predecessor: pred, Frequency: freq})
		}
	}
	return out
}

// MarkKnown flags the candidates already listed in renames
func MarkKnown(cands []Candidate, renames Renames) {
	for i := range cands {
		for _, p := range renames[cands[i].Current] {
			if p == cands[i].Predecessor {
				cands[i].Known = true
				break
			}
		}
	}
}

// WriteCandidates writes candidates in the rename table format. Pairs already
// in the table are written commented out, so the file can be reviewed and
// merged into the table as is.
func WriteCandidates(path string, cands []Candidate) error {
	lines := make([]string, 0, len(cands))
	for _, c := range cands {
		line := strings.ToUpper(c.Current) + "," + strings.ToUpper(c.Predecessor)
		if c.Known {
			line = "//" + line
		}
		lines = append(lines, line)
	}
	return files.WriteLinesAtomic(path, lines)
}

// tradingFrequency is the number of trades per session between the first and
// last trade. Dates outside the calendar count from their insertion position.
func tradingFrequency(d []time.Time, cal *calendar.Calendar) float64 {
	if len(d) < 2 {
		return 0
	}
	lo, _ := cal.Index(d[0])
	hi, _ := cal.Index(d[len(d)-1])
	if hi <= lo {
		return 0
	}
	return float64(len(d)-1) / float64(hi-lo)
}

func sinceYearBefore(d []time.Time) []time.Time {
	last := d[len(d)-1]
	cut := time.Date(last.Year()-1, time.January, 1, 0, 0, 0, 0, time.UTC)
	i := sort.Search(len(d), func(i int) bool { return !d[i].Before(cut) })
	return d[i:]
}
