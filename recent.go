package main

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/emersion/go-mbox"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

const (
	maxMessageBytes = 12 << 20 // cap per-message read to avoid huge attachments
	maxPartBytes    = 2 << 20  // cap per MIME part when decoding bodies
)

type messageSummary struct {
	From    string
	Subject string
	When    time.Time
	Snippet string
}

// printRecent appends a per-folder listing of the last n messages to the
// single-account report. Stores that fail to parse are skipped with a
// warning; the report itself has already been produced.
func printRecent(out io.Writer, agg *aggregator, user string, n int) error {
	acct, err := agg.db.Lookup(user)
	if err != nil {
		return err
	}
	type store struct {
		label, path string
	}
	stores := []store{{"Inbox", filepath.Join(agg.inboxRoot, user)}}
	folderRoot := filepath.Join(acct.Home, agg.folderDir)
	folders, err := discoverFolders(folderRoot)
	if err != nil {
		return err
	}
	sort.Strings(folders)
	for _, name := range folders {
		stores = append(stores, store{name, filepath.Join(folderRoot, name)})
	}

	for _, s := range stores {
		msgs, err := tailMessages(s.path, n)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			fmt.Fprintf(out, "warn: %s: %v\n", s.label, err)
			continue
		}
		if len(msgs) == 0 {
			continue
		}
		fmt.Fprintf(out, "\n%s:\n", s.label)
		for _, m := range msgs {
			date := ""
			if !m.When.IsZero() {
				date = m.When.Format("2006-01-02 15:04")
			}
			fmt.Fprintf(out, "%-16s | %-40s | %-40s | %s\n",
				date, truncate(m.From, 38), truncate(m.Subject, 38), truncate(m.Snippet, 80))
		}
	}
	return nil
}

// tailMessages keeps the last n message summaries of an mbox store.
func tailMessages(path string, n int) ([]messageSummary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := mbox.NewReader(f)
	var buf []messageSummary
	for {
		msgReader, err := reader.NextMessage()
		if err == io.EOF {
			break
		}
		if err != nil {
			return buf, err
		}
		summary, err := summarizeMessage(msgReader)
		if err != nil {
			continue
		}
		buf = append(buf, summary)
		if n > 0 && len(buf) > n {
			buf = buf[1:]
		}
	}
	return buf, nil
}

func summarizeMessage(r io.Reader) (messageSummary, error) {
	msg, err := mail.ReadMessage(io.LimitReader(r, maxMessageBytes))
	if err != nil {
		return messageSummary{}, err
	}
	decode := new(mime.WordDecoder)
	subject, _ := decode.DecodeHeader(msg.Header.Get("Subject"))
	from, _ := decode.DecodeHeader(msg.Header.Get("From"))
	var when time.Time
	if t, err := mail.ParseDate(msg.Header.Get("Date")); err == nil {
		when = t.In(time.Local)
	}
	body, _ := io.ReadAll(io.LimitReader(msg.Body, maxMessageBytes))
	plain, fallback := extractText(msg.Header, body)
	if plain == "" {
		plain = fallback
	}
	return messageSummary{
		From:    strings.TrimSpace(from),
		Subject: strings.TrimSpace(subject),
		When:    when,
		Snippet: firstNonEmptyLine(plain),
	}, nil
}

// extractText pulls readable body text out of a message: the first
// text/plain part, with a flattened text/html part as fallback.
func extractText(h mail.Header, body []byte) (plain string, fallback string) {
	mediaType, params, err := mime.ParseMediaType(h.Get("Content-Type"))
	if err != nil || mediaType == "" {
		mediaType = "text/plain"
	}
	if strings.HasPrefix(mediaType, "multipart/") {
		boundary := params["boundary"]
		if boundary == "" {
			return "", ""
		}
		mr := multipart.NewReader(bytes.NewReader(body), boundary)
		for {
			part, err := mr.NextPart()
			if err != nil {
				break
			}
			partBody, _ := io.ReadAll(io.LimitReader(part, maxPartBytes))
			pPlain, pFallback := extractText(mail.Header(part.Header), partBody)
			if plain == "" {
				plain = pPlain
			}
			if fallback == "" {
				fallback = pFallback
			}
		}
		return plain, fallback
	}

	if strings.Contains(strings.ToLower(h.Get("Content-Disposition")), "attachment") {
		return "", ""
	}
	if !strings.HasPrefix(mediaType, "text/plain") && !strings.HasPrefix(mediaType, "text/html") {
		return "", ""
	}

	decoded := decodeBody(h.Get("Content-Transfer-Encoding"), body)
	if cs, ok := params["charset"]; ok && !strings.EqualFold(cs, "utf-8") {
		if r, err := charset.NewReaderLabel(cs, bytes.NewReader(decoded)); err == nil {
			if conv, err := io.ReadAll(io.LimitReader(r, maxPartBytes)); err == nil {
				decoded = conv
			}
		}
	}
	if strings.HasPrefix(mediaType, "text/html") {
		return "", htmlToText(string(decoded))
	}
	return string(decoded), ""
}

func decodeBody(encoding string, body []byte) []byte {
	var r io.Reader
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		r = base64.NewDecoder(base64.StdEncoding, bytes.NewReader(body))
	case "quoted-printable":
		r = quotedprintable.NewReader(bytes.NewReader(body))
	default:
		return body
	}
	decoded, err := io.ReadAll(io.LimitReader(r, maxPartBytes))
	if err != nil {
		return body
	}
	return decoded
}

func htmlToText(htmlBody string) string {
	z := html.NewTokenizer(strings.NewReader(htmlBody))
	var b strings.Builder
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt == html.TextToken {
			t := strings.TrimSpace(string(z.Text()))
			if t != "" {
				if b.Len() > 0 {
					b.WriteByte(' ')
				}
				b.WriteString(t)
			}
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func firstNonEmptyLine(body string) string {
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			return line
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
