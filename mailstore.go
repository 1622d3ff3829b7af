package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"time"
)

// MailStoreStats summarizes one mbox-format mail store file.
type MailStoreStats struct {
	Size   int64
	Count  int
	Newest time.Time // local time of the most recent boundary; epoch when Count == 0
}

// boundaryRe matches an mbox From_ separator: "From <sender> <ctime date>".
// The weekday token is skipped, not validated.
var boundaryRe = regexp.MustCompile(`^From +\S+ +\S+ +([A-Z][a-z]{2}) +(\d+) +(\d+):(\d+):(\d+) +(\d+)`)

var monthIndex = map[string]time.Month{
	"Jan": time.January, "Feb": time.February, "Mar": time.March,
	"Apr": time.April, "May": time.May, "Jun": time.June,
	"Jul": time.July, "Aug": time.August, "Sep": time.September,
	"Oct": time.October, "Nov": time.November, "Dec": time.December,
}

// readMailStore returns the on-disk size of the store at path and, when
// count is set, scans it for message boundaries to produce a message count
// and the most recent boundary timestamp. With count unset the content is
// never opened beyond the stat, and Count/Newest stay at their zero point.
func readMailStore(path string, count bool) (MailStoreStats, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return MailStoreStats{}, fmt.Errorf("stat %s: %w", path, err)
	}
	stats := MailStoreStats{Size: fi.Size(), Newest: time.Unix(0, 0)}
	if !count {
		return stats, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return MailStoreStats{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	// A boundary can only sit at the start of a line, so matching the first
	// buffer-full of each line is enough; the rest of an oversized line is
	// discarded rather than failing the scan.
	br := bufio.NewReaderSize(f, 64*1024)
	for {
		line, isPrefix, err := br.ReadLine()
		if err != nil {
			if err == io.EOF {
				break
			}
			return MailStoreStats{}, fmt.Errorf("read %s: %w", path, err)
		}
		for isPrefix {
			_, isPrefix, err = br.ReadLine()
			if err != nil {
				if err == io.EOF {
					isPrefix = false
					break
				}
				return MailStoreStats{}, fmt.Errorf("read %s: %w", path, err)
			}
		}
		m := boundaryRe.FindStringSubmatch(string(line))
		if m == nil {
			continue
		}
		stats.Count++
		mon, ok := monthIndex[m[1]]
		if !ok {
			continue
		}
		day, _ := strconv.Atoi(m[2])
		hour, _ := strconv.Atoi(m[3])
		min, _ := strconv.Atoi(m[4])
		sec, _ := strconv.Atoi(m[5])
		year, _ := strconv.Atoi(m[6])
		when := time.Date(year, mon, day, hour, min, sec, 0, time.Local)
		if when.After(stats.Newest) {
			stats.Newest = when
		}
	}
	return stats, nil
}

// newestLabel renders the newest-message cell at day granularity.
// A store with no counted messages carries the epoch sentinel, which must
// read as "no date" rather than 1970.
func (s MailStoreStats) newestLabel() string {
	if s.Count == 0 {
		return "-"
	}
	return s.Newest.Format("2006-01-02")
}
