package internal

import "fmt"

// SourceError represents errors accessing a conversation source directory.
// This is the only error class that escalates to the caller; everything else
// in the pipeline degrades gracefully.
type SourceError struct {
	Path string
	Op   string // "stat", "open", "read"
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// DecodeError represents errors decoding a single log record.
type DecodeError struct {
	File string
	Line int
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode error %s:%d: %v", e.File, e.Line, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// CacheError represents errors reading or writing cache entries.
type CacheError struct {
	Key string
	Op  string // "read", "write", "clear"
	Err error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache error: %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *CacheError) Unwrap() error {
	return e.Err
}

// IndexError represents errors building or querying the search index.
type IndexError struct {
	Path string
	Op   string // "open", "build", "query"
	Err  error
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IndexError) Unwrap() error {
	return e.Err
}
