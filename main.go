package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"
)

const (
	defaultInboxRoot = "/var/mail"
	defaultFolderDir = "mail"
	defaultAliases   = "/etc/aliases"
	defaultMinUID    = 500
)

func main() {
	log.SetFlags(0)
	_ = godotenv.Load()

	opts := flag.NewFlagSet("mailscan", flag.ExitOnError)
	allAccounts := opts.BoolP("all", "a", false, "report every account in the account database")
	user := opts.StringP("user", "u", "", "report a single account, with per-folder breakdown")
	listFile := opts.StringP("file", "f", "", "report the accounts named in this file, one per line")
	minUID := opts.IntP("min-uid", "U", defaultMinUID, "minimum UID for --all")
	asCSV := opts.BoolP("csv", "c", false, "emit CSV instead of an aligned table (multi-account modes)")
	counts := opts.BoolP("counts", "n", false, "scan stores and include message counts")
	mboxLayout := opts.BoolP("mbox", "m", false, "select the one-file-per-mailbox store layout (the default)")
	maildirLayout := opts.BoolP("maildir", "M", false, "select the one-file-per-message store layout")
	inboxRoot := opts.StringP("inbox-dir", "i", defaultInboxRoot, "spool directory holding per-account inboxes")
	folderDir := opts.StringP("folder-dir", "d", defaultFolderDir, "mail folder subdirectory under each home")
	verbose := opts.BoolP("verbose", "v", false, "print progress markers")
	recentN := opts.IntP("recent", "r", 0, "with --user, also list the last N messages per folder")
	opts.Usage = func() { usage(opts) }
	opts.Parse(os.Args[1:])

	modes := 0
	for _, set := range []bool{*allAccounts, *user != "", *listFile != ""} {
		if set {
			modes++
		}
	}
	if modes != 1 {
		usage(opts)
		os.Exit(2)
	}
	if *maildirLayout {
		log.Fatalf("mailscan: maildir layout not yet supported")
	}
	_ = *mboxLayout // accepted for symmetry; mbox is the only implemented layout

	agg := &aggregator{
		db:        getentDB{},
		inboxRoot: *inboxRoot,
		folderDir: *folderDir,
		countMode: *counts,
		verbose:   *verbose,
	}

	if *user != "" {
		agg.keepStats = true
		rec, err := agg.aggregate(*user)
		if err != nil {
			log.Fatalf("mailscan: %v", err)
		}
		renderSingle(os.Stdout, rec)
		if *recentN > 0 {
			if err := printRecent(os.Stdout, agg, *user, *recentN); err != nil {
				log.Fatalf("mailscan: %v", err)
			}
		}
		return
	}

	var users []string
	var err error
	if *allAccounts {
		users, err = agg.db.List(*minUID)
	} else {
		users, err = readAccountList(*listFile)
	}
	if err != nil {
		log.Fatalf("mailscan: %v", err)
	}

	records := make([]*accountRecord, 0, len(users))
	for _, u := range users {
		rec, err := agg.aggregate(u)
		if err != nil {
			log.Fatalf("mailscan: %v", err)
		}
		records = append(records, rec)
	}

	aliases, err := loadAliases(aliasPath())
	if err != nil {
		log.Fatalf("mailscan: %v", err)
	}
	aliases.apply(records)

	if err := renderMulti(os.Stdout, records, *counts, *asCSV); err != nil {
		log.Fatalf("mailscan: %v", err)
	}

	if dsn := strings.TrimSpace(os.Getenv("MAILSCAN_PG_DSN")); dsn != "" {
		if err := storeSnapshots(dsn, records); err != nil {
			log.Printf("warn: snapshot store: %v", err)
		}
	}
}

func aliasPath() string {
	if p := strings.TrimSpace(os.Getenv("MAILSCAN_ALIASES")); p != "" {
		return p
	}
	return defaultAliases
}

// readAccountList loads account names from a file, one per line. Blank lines
// and # comments are skipped. The file is required, so any open failure is
// passed up as fatal.
func readAccountList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("account list: %w", err)
	}
	defer f.Close()
	var users []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name == "" || strings.HasPrefix(name, "#") {
			continue
		}
		users = append(users, name)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("account list: %w", err)
	}
	return users, nil
}

func usage(opts *flag.FlagSet) {
	log.Println("Usage: mailscan (-a | -u <account> | -f <file>) [options]")
	log.Println("Inventory mail storage per account: store sizes, message counts, forwarding.")
	log.Println()
	log.Println("Exactly one of -a, -u, -f selects the accounts to report.")
	log.Println("Options:")
	log.Println(opts.FlagUsages())
	log.Println("Examples:")
	log.Println("  mailscan -a -U 1000 -c")
	log.Println("  mailscan -u alice -n -r 5")
	log.Println("  mailscan -f accounts.txt -n")
}
