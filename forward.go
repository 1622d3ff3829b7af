package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const (
	deliveryRuleFile = ".procmailrc"
	forwardFile      = ".forward"
)

var (
	forwardActionRe = regexp.MustCompile(`^!\s*(\S+@\S+)`)
	addressLineRe   = regexp.MustCompile(`^\S+@\S+`)
)

// resolveLocalForward inspects the account's home directory for a forwarding
// address. The delivery-rule file is scanned first and the forward file, if
// present, overwrites whatever the rule scan produced.
func resolveLocalForward(home string) string {
	addr := ""
	if f, err := os.Open(filepath.Join(home, deliveryRuleFile)); err == nil {
		if a := scanDeliveryRules(f); a != "" {
			addr = a
		}
		f.Close()
	}
	if f, err := os.Open(filepath.Join(home, forwardFile)); err == nil {
		if a := scanForwardFile(f); a != "" {
			addr = a
		}
		f.Close()
	}
	return addr
}

// ruleState tracks the delivery-rule scan. A ":0" recipe header arms the
// scanner; the very next line either carries a "!" forwarding action or
// disarms it. Only the last captured action across the file survives.
type ruleState int

const (
	ruleIdle ruleState = iota
	ruleArmed
)

func scanDeliveryRules(r io.Reader) string {
	addr := ""
	state := ruleIdle
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		switch state {
		case ruleArmed:
			if m := forwardActionRe.FindStringSubmatch(line); m != nil {
				addr = m[1]
			}
			state = ruleIdle
		case ruleIdle:
			if strings.HasPrefix(line, ":0") {
				state = ruleArmed
			}
		}
	}
	return addr
}

func scanForwardFile(r io.Reader) string {
	addr := ""
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if m := addressLineRe.FindString(scanner.Text()); m != "" {
			addr = m
		}
	}
	return addr
}

// aliasTable holds the system-wide alias file. Its entries take precedence
// over anything found in per-account home directories, so it is applied once,
// after every account has been aggregated.
type aliasTable map[string]string

// loadAliases reads the alias file at path. A missing file yields an empty
// table; a file that exists but cannot be read is a hard failure.
func loadAliases(path string) (aliasTable, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return aliasTable{}, nil
		}
		return nil, fmt.Errorf("open alias file: %w", err)
	}
	defer f.Close()

	table := aliasTable{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		key, target, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		target = strings.TrimSpace(target)
		if key == "" || target == "" {
			continue
		}
		table[key] = target
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read alias file: %w", err)
	}
	return table, nil
}

// apply overrides each record's forwarding address with its alias-table
// entry, regardless of what the local files produced.
func (t aliasTable) apply(records []*accountRecord) {
	for _, rec := range records {
		if target, ok := t[rec.User]; ok {
			rec.Forward = target
		}
	}
}
