package main

import (
	"bufio"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Account is one entry from the system account database.
type Account struct {
	Name     string
	FullName string
	Home     string
	UID      int
}

// AccountDB abstracts the system account database so the aggregation engine
// never depends on how it is queried. The production implementation shells
// out to getent; tests substitute a fake.
type AccountDB interface {
	Lookup(name string) (Account, error)
	List(minUID int) ([]string, error)
}

// getentDB queries the account database through getent(1).
type getentDB struct{}

func (getentDB) Lookup(name string) (Account, error) {
	out, err := exec.Command("getent", "passwd", name).Output()
	if err != nil {
		return Account{}, fmt.Errorf("account %s not found", name)
	}
	acct, ok := parsePasswdLine(strings.TrimSpace(string(out)))
	if !ok {
		return Account{}, fmt.Errorf("account %s: malformed passwd entry", name)
	}
	return acct, nil
}

func (getentDB) List(minUID int) ([]string, error) {
	out, err := exec.Command("getent", "passwd").Output()
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	var names []string
	scanner := bufio.NewScanner(strings.NewReader(string(out)))
	for scanner.Scan() {
		acct, ok := parsePasswdLine(scanner.Text())
		if !ok || acct.UID < minUID {
			continue
		}
		names = append(names, acct.Name)
	}
	return names, nil
}

// parsePasswdLine splits one passwd(5) line. The full name is the GECOS
// field truncated at its first comma.
func parsePasswdLine(line string) (Account, bool) {
	fields := strings.Split(line, ":")
	if len(fields) < 6 {
		return Account{}, false
	}
	uid, err := strconv.Atoi(fields[2])
	if err != nil {
		return Account{}, false
	}
	full := fields[4]
	if i := strings.IndexByte(full, ','); i >= 0 {
		full = full[:i]
	}
	return Account{
		Name:     fields[0],
		FullName: full,
		Home:     fields[5],
		UID:      uid,
	}, true
}
