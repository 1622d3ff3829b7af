package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// fakeDB is an in-memory account database for tests.
type fakeDB map[string]Account

func (db fakeDB) Lookup(name string) (Account, error) {
	acct, ok := db[name]
	if !ok {
		return Account{}, fmt.Errorf("account %s not found", name)
	}
	return acct, nil
}

func (db fakeDB) List(minUID int) ([]string, error) {
	var names []string
	for name, acct := range db {
		if acct.UID >= minUID {
			names = append(names, name)
		}
	}
	return names, nil
}

func setupAccount(t *testing.T, spool, user string, inboxSize int, folders map[string]int) Account {
	t.Helper()
	home := t.TempDir()
	if inboxSize >= 0 {
		if err := os.WriteFile(filepath.Join(spool, user), make([]byte, inboxSize), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	for name, size := range folders {
		path := filepath.Join(home, defaultFolderDir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return Account{Name: user, FullName: strings.ToUpper(user[:1]) + user[1:], Home: home, UID: 1000}
}

func TestAggregate(t *testing.T) {
	spool := t.TempDir()

	t.Run("totals are inbox plus every folder", func(t *testing.T) {
		folders := map[string]int{
			"work":                    10,
			"personal":                20,
			"lists/golang":            30,
			filepath.Join("old", "x"): 40,
		}
		db := fakeDB{"dave": setupAccount(t, spool, "dave", 100, folders)}
		agg := &aggregator{db: db, inboxRoot: spool, folderDir: defaultFolderDir, keepStats: true}

		rec, err := agg.aggregate("dave")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.Size != 200 {
			t.Errorf("total size = %d, want 200", rec.Size)
		}
		if rec.Inbox.Size != 100 {
			t.Errorf("inbox size = %d, want 100", rec.Inbox.Size)
		}
		if len(rec.Folders) != 4 {
			t.Fatalf("folders = %v, want 4 entries", rec.Folders)
		}
		var sum int64 = rec.Inbox.Size
		for _, stats := range rec.Folders {
			sum += stats.Size
		}
		if sum != rec.Size {
			t.Errorf("per-folder sum %d does not match total %d", sum, rec.Size)
		}
	})

	t.Run("missing inbox degrades to zero", func(t *testing.T) {
		db := fakeDB{"erin": setupAccount(t, spool, "erin", -1, map[string]int{"work": 64})}
		agg := &aggregator{db: db, inboxRoot: spool, folderDir: defaultFolderDir}

		rec, err := agg.aggregate("erin")
		if err != nil {
			t.Fatalf("missing inbox must not abort: %v", err)
		}
		if rec.Inbox.Size != 0 || rec.Size != 64 {
			t.Errorf("inbox=%d total=%d, want 0 and 64", rec.Inbox.Size, rec.Size)
		}
	})

	t.Run("missing folder directory degrades to inbox only", func(t *testing.T) {
		db := fakeDB{"frank": setupAccount(t, spool, "frank", 32, nil)}
		agg := &aggregator{db: db, inboxRoot: spool, folderDir: defaultFolderDir}

		rec, err := agg.aggregate("frank")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.Size != 32 || rec.Count != 0 {
			t.Errorf("size=%d count=%d, want 32 and 0", rec.Size, rec.Count)
		}
	})

	t.Run("unreadable spool is fatal, not a zero inbox", func(t *testing.T) {
		spoolFile := filepath.Join(t.TempDir(), "spool")
		if err := os.WriteFile(spoolFile, []byte("not a directory"), 0o644); err != nil {
			t.Fatal(err)
		}
		db := fakeDB{"hank": {Name: "hank", Home: t.TempDir(), UID: 1000}}
		agg := &aggregator{db: db, inboxRoot: spoolFile, folderDir: defaultFolderDir}
		if _, err := agg.aggregate("hank"); err == nil {
			t.Fatal("a spool stat failure other than not-exist must abort")
		}
	})

	t.Run("unknown account fails", func(t *testing.T) {
		agg := &aggregator{db: fakeDB{}, inboxRoot: spool, folderDir: defaultFolderDir}
		if _, err := agg.aggregate("ghost"); err == nil {
			t.Fatal("expected an error for an unknown account")
		}
	})
}

func TestParsePasswdLine(t *testing.T) {
	acct, ok := parsePasswdLine("alice:x:1000:1000:Alice A,Room 42,555-0100:/home/alice:/bin/sh")
	if !ok {
		t.Fatal("expected a valid entry")
	}
	if acct.Name != "alice" || acct.UID != 1000 || acct.Home != "/home/alice" {
		t.Errorf("parsed %+v", acct)
	}
	if acct.FullName != "Alice A" {
		t.Errorf("full name = %q, want GECOS truncated at the first comma", acct.FullName)
	}
	if _, ok := parsePasswdLine("garbage line"); ok {
		t.Error("malformed line must not parse")
	}
	if _, ok := parsePasswdLine("x:x:notanumber:0:n:/h:/s"); ok {
		t.Error("non-numeric uid must not parse")
	}
}
