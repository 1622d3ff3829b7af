package main

import (
	"fmt"
	"os"
	"path/filepath"
)

// accountRecord is the aggregated result for one account.
type accountRecord struct {
	User     string
	FullName string
	Size     int64
	Count    int
	Forward  string

	// Inbox and Folders are only populated for the single-account report.
	Inbox   MailStoreStats
	Folders map[string]MailStoreStats
}

// aggregator scans accounts: inbox file, folder subtree, local forwarding
// rules. One aggregator instance is shared by a whole run.
type aggregator struct {
	db        AccountDB
	inboxRoot string // spool directory holding one store per account
	folderDir string // folder subtree name, relative to the account home
	countMode bool
	verbose   bool
	keepStats bool // retain per-folder stats for the single-account report
}

// aggregate builds the record for one account. A missing inbox or folder
// directory degrades to zero values; an unreadable store is fatal.
func (a *aggregator) aggregate(user string) (*accountRecord, error) {
	if a.verbose {
		fmt.Printf("scanning %s...\n", user)
	}
	acct, err := a.db.Lookup(user)
	if err != nil {
		return nil, err
	}
	rec := &accountRecord{User: user, FullName: acct.FullName}
	if a.keepStats {
		rec.Folders = make(map[string]MailStoreStats)
	}

	inbox := filepath.Join(a.inboxRoot, user)
	if _, err := os.Stat(inbox); err == nil {
		stats, err := readMailStore(inbox, a.countMode)
		if err != nil {
			return nil, err
		}
		rec.Size += stats.Size
		rec.Count += stats.Count
		rec.Inbox = stats
	} else if !os.IsNotExist(err) {
		// Only an absent inbox degrades to zero; an unreadable spool is fatal.
		return nil, fmt.Errorf("stat inbox %s: %w", inbox, err)
	}

	folderRoot := filepath.Join(acct.Home, a.folderDir)
	folders, err := discoverFolders(folderRoot)
	if err != nil {
		return nil, err
	}
	for _, name := range folders {
		stats, err := readMailStore(filepath.Join(folderRoot, name), a.countMode)
		if err != nil {
			return nil, err
		}
		rec.Size += stats.Size
		rec.Count += stats.Count
		if a.keepStats {
			rec.Folders[name] = stats
		}
	}

	rec.Forward = resolveLocalForward(acct.Home)
	if a.verbose {
		fmt.Printf("scanning %s done\n", user)
	}
	return rec, nil
}
