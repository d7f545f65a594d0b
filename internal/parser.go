package internal

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// maxLineSize bounds a single log line. Tool results with embedded file
// contents can get large.
const maxLineSize = 10 * 1024 * 1024

// ConversationParser parses all JSONL conversation files in one source
// directory into a flat, time-ordered message list.
type ConversationParser struct {
	sourcePath string
}

// NewConversationParser validates the source directory and returns a parser
// for it. A missing or non-directory path is the one fatal error class in
// the pipeline.
func NewConversationParser(sourcePath string) (*ConversationParser, error) {
	info, err := os.Stat(sourcePath)
	if err != nil {
		return nil, &SourceError{Path: sourcePath, Op: "stat", Err: err}
	}
	if !info.IsDir() {
		return nil, &SourceError{Path: sourcePath, Op: "stat", Err: fmt.Errorf("not a directory")}
	}
	return &ConversationParser{sourcePath: sourcePath}, nil
}

// SourcePath returns the directory this parser reads from.
func (p *ConversationParser) SourcePath() string {
	return p.sourcePath
}

// ParseAll parses every conversation file in the source directory and returns
// all messages sorted ascending by timestamp. The sort is stable, so records
// sharing a timestamp keep their encounter order. A failure on one line or
// one file never aborts the rest.
func (p *ConversationParser) ParseAll() ([]*Message, error) {
	files, err := ListLogFiles(p.sourcePath)
	if err != nil {
		return nil, err
	}

	LogInfo("Parsing %d conversation files in %s", len(files), p.sourcePath)

	var all []*Message
	for _, file := range files {
		messages, err := p.parseFile(file)
		if err != nil {
			LogError("Error parsing %s: %v", filepath.Base(file), err)
			continue
		}
		LogDebug("Parsed %d messages from %s", len(messages), filepath.Base(file))
		all = append(all, messages...)
	}

	// One global sort makes the result independent of file enumeration order.
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].TimestampMillis < all[j].TimestampMillis
	})

	LogInfo("Parsed %d total messages", len(all))
	return all, nil
}

// parseFile decodes every non-blank line of one JSONL file. Undecodable
// lines are logged and skipped.
func (p *ConversationParser) parseFile(path string) ([]*Message, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &SourceError{Path: path, Op: "open", Err: err}
	}
	defer func() { _ = f.Close() }()

	var messages []*Message

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 256*1024), maxLineSize)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		msg, err := DecodeRecord(line)
		if err != nil {
			decodeErr := &DecodeError{File: filepath.Base(path), Line: lineNum, Err: err}
			LogWarn("%v", decodeErr)
			continue
		}
		if msg == nil {
			LogDebug("Skipping record without uuid at %s:%d", filepath.Base(path), lineNum)
			continue
		}
		messages = append(messages, msg)
	}

	if err := scanner.Err(); err != nil {
		return nil, &SourceError{Path: path, Op: "read", Err: err}
	}

	return messages, nil
}

// ListLogFiles enumerates the *.jsonl files directly inside a source
// directory. Subdirectories are not descended into.
func ListLogFiles(sourcePath string) ([]string, error) {
	entries, err := os.ReadDir(sourcePath)
	if err != nil {
		return nil, &SourceError{Path: sourcePath, Op: "read", Err: err}
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if filepath.Ext(entry.Name()) != ".jsonl" {
			continue
		}
		files = append(files, filepath.Join(sourcePath, entry.Name()))
	}
	return files, nil
}
