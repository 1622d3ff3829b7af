package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// columnWidths accumulates the widest cell seen per report column. Widths are
// seeded from the header labels and only ever grow, so every row of the final
// table lines up.
type columnWidths struct {
	name     int
	fullName int
	size     int
	count    int
	forward  int
}

func (w *columnWidths) grow(dst *int, cell string) string {
	if len(cell) > *dst {
		*dst = len(cell)
	}
	return cell
}

// pad right-fills a cell to the column width plus one space of separation.
func pad(cell string, width int) string {
	return cell + strings.Repeat(" ", width-len(cell)+1)
}

const (
	hdrFolder  = "Folder"
	hdrUser    = "User"
	hdrFull    = "Full Name"
	hdrSize    = "Mailbox Size"
	hdrCount   = "Messages"
	hdrForward = "Forward Address"
	hdrNewest  = "Last Message"
)

// renderSingle writes the per-folder breakdown for one account: an inbox row,
// one row per folder sorted by name, and a totals footer with no date cell.
func renderSingle(out io.Writer, rec *accountRecord) {
	names := make([]string, 0, len(rec.Folders))
	for name := range rec.Folders {
		names = append(names, name)
	}
	sort.Strings(names)

	type row struct {
		name, size, count, newest string
	}
	w := columnWidths{name: len(hdrFolder), size: len(hdrSize), count: len(hdrCount)}
	rows := make([]row, 0, len(names)+1)
	add := func(name string, stats MailStoreStats) {
		rows = append(rows, row{
			name:   w.grow(&w.name, name),
			size:   w.grow(&w.size, formatSize(stats.Size)),
			count:  w.grow(&w.count, strconv.Itoa(stats.Count)),
			newest: stats.newestLabel(),
		})
	}
	add("Inbox", rec.Inbox)
	for _, name := range names {
		add(name, rec.Folders[name])
	}
	total := row{
		name:  w.grow(&w.name, "Total"),
		size:  w.grow(&w.size, formatSize(rec.Size)),
		count: w.grow(&w.count, strconv.Itoa(rec.Count)),
	}

	fmt.Fprintf(out, "%s%s%s%s\n", pad(hdrFolder, w.name), pad(hdrSize, w.size), pad(hdrCount, w.count), hdrNewest)
	for _, r := range rows {
		fmt.Fprintf(out, "%s%s%s%s\n", pad(r.name, w.name), pad(r.size, w.size), pad(r.count, w.count), r.newest)
	}
	fmt.Fprintf(out, "%s%s%s\n", pad(total.name, w.name), pad(total.size, w.size), total.count)
}

// renderMulti writes one row per account, sorted by account id. With asCSV
// set the rows go out unpadded through a csv writer; otherwise the columns
// are width-aligned under a dashed separator rule. The message-count column
// only appears when counting was requested.
func renderMulti(out io.Writer, records []*accountRecord, withCounts, asCSV bool) error {
	sort.Slice(records, func(i, j int) bool { return records[i].User < records[j].User })

	header := []string{hdrUser, hdrFull, hdrSize}
	if withCounts {
		header = append(header, hdrCount)
	}
	header = append(header, hdrForward)

	cells := func(rec *accountRecord) []string {
		row := []string{rec.User, rec.FullName, formatSize(rec.Size)}
		if withCounts {
			row = append(row, strconv.Itoa(rec.Count))
		}
		return append(row, rec.Forward)
	}

	if asCSV {
		cw := csv.NewWriter(out)
		if err := cw.Write(header); err != nil {
			return err
		}
		for _, rec := range records {
			if err := cw.Write(cells(rec)); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	}

	w := columnWidths{
		name:     len(hdrUser),
		fullName: len(hdrFull),
		size:     len(hdrSize),
		count:    len(hdrCount),
		forward:  len(hdrForward),
	}
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		row := cells(rec)
		w.grow(&w.name, rec.User)
		w.grow(&w.fullName, rec.FullName)
		w.grow(&w.size, formatSize(rec.Size))
		if withCounts {
			w.grow(&w.count, strconv.Itoa(rec.Count))
		}
		w.grow(&w.forward, rec.Forward)
		rows = append(rows, row)
	}
	colWidths := []int{w.name, w.fullName, w.size}
	if withCounts {
		colWidths = append(colWidths, w.count)
	}
	colWidths = append(colWidths, w.forward)

	writeRow := func(row []string) {
		var b strings.Builder
		for i, cell := range row {
			if i == len(row)-1 {
				b.WriteString(cell)
				break
			}
			b.WriteString(pad(cell, colWidths[i]))
		}
		fmt.Fprintln(out, strings.TrimRight(b.String(), " "))
	}
	writeRow(header)
	ruleWidth := 0
	for _, cw := range colWidths {
		ruleWidth += cw + 1
	}
	fmt.Fprintln(out, strings.Repeat("-", ruleWidth-1))
	for _, row := range rows {
		writeRow(row)
	}
	return nil
}
