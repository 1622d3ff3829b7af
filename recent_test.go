package main

import (
	"os"
	"path/filepath"
	"testing"
	"unicode/utf8"
)

const twoMessageMbox = `From alice@example.org Wed Jun 30 21:49:08 1993
From: Alice <alice@example.org>
Subject: Hello
Date: Wed, 30 Jun 1993 21:49:08 +0000
Content-Type: text/plain

first body line
second body line

From bob@example.org Fri Dec 23 18:00:01 2022
From: Bob <bob@example.org>
Subject: =?utf-8?Q?Caf=C3=A9_plans?=
Date: Fri, 23 Dec 2022 18:00:01 +0000
Content-Type: text/html

<html><body><p>Hello <b>world</b></p></body></html>
`

func TestTailMessages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mbox")
	if err := os.WriteFile(path, []byte(twoMessageMbox), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Run("keeps only the last n", func(t *testing.T) {
		msgs, err := tailMessages(path, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(msgs) != 1 {
			t.Fatalf("got %d messages, want 1", len(msgs))
		}
		if msgs[0].Subject != "Café plans" {
			t.Errorf("subject = %q, want decoded MIME word", msgs[0].Subject)
		}
		if msgs[0].Snippet != "Hello world" {
			t.Errorf("snippet = %q, want flattened html", msgs[0].Snippet)
		}
	})

	t.Run("zero keeps everything", func(t *testing.T) {
		msgs, err := tailMessages(path, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(msgs) != 2 {
			t.Fatalf("got %d messages, want 2", len(msgs))
		}
		if msgs[0].Snippet != "first body line" {
			t.Errorf("snippet = %q, want first non-empty body line", msgs[0].Snippet)
		}
		if msgs[0].When.IsZero() {
			t.Error("date header should have parsed")
		}
	})

	t.Run("missing store surfaces the open error", func(t *testing.T) {
		if _, err := tailMessages(filepath.Join(t.TempDir(), "absent"), 1); !os.IsNotExist(err) {
			t.Fatalf("got %v, want a not-exist error", err)
		}
	})
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("got %q, want input unchanged", got)
	}
	got := truncate("€€€", 8) // cut point lands inside the second rune
	if got != "€..." {
		t.Errorf("got %q, want %q", got, "€...")
	}
	if !utf8.ValidString(got) {
		t.Errorf("got %q: truncation split a rune", got)
	}
}

func TestHTMLToText(t *testing.T) {
	got := htmlToText("<div>one\n<span>two</span></div> three")
	if got != "one two three" {
		t.Errorf("got %q, want %q", got, "one two three")
	}
}
