package internal

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const cacheExt = ".cache"

// CacheManager persists parsed message lists so repeated reads of an
// unchanged source skip the full re-parse.
type CacheManager struct {
	cacheDir string
	ttl      time.Duration
}

// cacheEnvelope is the on-disk layout of one cache entry. Messages are
// serialized without children; a cached message always comes back as a root
// and the tree is rebuilt on top.
type cacheEnvelope struct {
	SourcePath   string     `json:"source_path"`
	CachedAt     time.Time  `json:"cached_at"`
	MessageCount int        `json:"message_count"`
	Messages     []*Message `json:"messages"`
}

// cacheIndex is a human-readable YAML summary written beside the entries.
// It is advisory only; freshness decisions come from entry file mtimes.
type cacheIndex struct {
	UpdatedAt time.Time         `yaml:"updated_at"`
	Entries   []cacheIndexEntry `yaml:"entries"`
}

type cacheIndexEntry struct {
	Key          string    `yaml:"key"`
	SourcePath   string    `yaml:"source_path"`
	CachedAt     time.Time `yaml:"cached_at"`
	MessageCount int       `yaml:"message_count"`
}

// CacheStats reports the cache's current footprint.
type CacheStats struct {
	CacheDir       string        `json:"cache_dir"`
	EntryCount     int           `json:"entry_count"`
	TotalSizeBytes int64         `json:"total_size_bytes"`
	TTL            time.Duration `json:"-"`
	TTLSeconds     int64         `json:"ttl_seconds"`
}

// NewCacheManager creates a cache manager rooted at cacheDir. Entries older
// than ttl are treated as misses regardless of source changes.
func NewCacheManager(cacheDir string, ttl time.Duration) *CacheManager {
	return &CacheManager{cacheDir: cacheDir, ttl: ttl}
}

// EnsureCacheDir ensures the cache directory exists.
func (cm *CacheManager) EnsureCacheDir() error {
	return os.MkdirAll(cm.cacheDir, 0755)
}

// CacheDir returns the cache directory path.
func (cm *CacheManager) CacheDir() string {
	return cm.cacheDir
}

// TTL returns the configured time-to-live.
func (cm *CacheManager) TTL() time.Duration {
	return cm.ttl
}

// CacheKey derives the entry key for a source: a hash of the resolved source
// path combined with the latest modification time across its log files. Any
// file add, delete, or rewrite moves the latest mtime and forces a miss.
func (cm *CacheManager) CacheKey(sourcePath string) string {
	resolved, err := filepath.Abs(sourcePath)
	if err != nil {
		resolved = sourcePath
	}

	keyStr := resolved
	if files, err := ListLogFiles(sourcePath); err == nil && len(files) > 0 {
		var latest int64
		for _, file := range files {
			if info, err := os.Stat(file); err == nil {
				if mtime := info.ModTime().UnixNano(); mtime > latest {
					latest = mtime
				}
			}
		}
		keyStr = fmt.Sprintf("%s_%d", resolved, latest)
	}

	sum := md5.Sum([]byte(keyStr))
	return hex.EncodeToString(sum[:])
}

// EntryPath returns the cache file path for a key.
func (cm *CacheManager) EntryPath(key string) string {
	return filepath.Join(cm.cacheDir, key+cacheExt)
}

// IndexPath returns the path of the YAML cache index.
func (cm *CacheManager) IndexPath() string {
	return filepath.Join(cm.cacheDir, "index.yaml")
}

// isEntryFresh checks the entry file's own mtime against the TTL. The file
// mtime, not the envelope field, is the authoritative freshness clock.
func (cm *CacheManager) isEntryFresh(entryPath string) bool {
	info, err := os.Stat(entryPath)
	if err != nil {
		return false
	}
	age := time.Since(info.ModTime())
	if age > cm.ttl {
		LogDebug("Cache expired: %s (age: %s)", filepath.Base(entryPath), age)
		return false
	}
	return true
}

// Get returns the cached message list for a source, or nil and false on any
// kind of miss. A corrupt or unreadable entry is a miss, never an error.
func (cm *CacheManager) Get(sourcePath string) ([]*Message, bool) {
	key := cm.CacheKey(sourcePath)
	entryPath := cm.EntryPath(key)

	if !cm.isEntryFresh(entryPath) {
		return nil, false
	}

	data, err := os.ReadFile(entryPath)
	if err != nil {
		LogWarn("%v", &CacheError{Key: key, Op: "read", Err: err})
		return nil, false
	}

	var envelope cacheEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		LogWarn("%v", &CacheError{Key: key, Op: "read", Err: err})
		return nil, false
	}

	LogInfo("Loaded %d messages from cache for %s", len(envelope.Messages), filepath.Base(sourcePath))
	return envelope.Messages, true
}

// Set serializes the message list for a source. Failures are returned for
// the caller to report; they never block the parse path.
func (cm *CacheManager) Set(sourcePath string, messages []*Message) error {
	key := cm.CacheKey(sourcePath)

	if err := cm.EnsureCacheDir(); err != nil {
		return &CacheError{Key: key, Op: "write", Err: err}
	}

	envelope := cacheEnvelope{
		SourcePath:   sourcePath,
		CachedAt:     time.Now(),
		MessageCount: len(messages),
		Messages:     messages,
	}

	data, err := json.Marshal(&envelope)
	if err != nil {
		return &CacheError{Key: key, Op: "write", Err: err}
	}

	if err := os.WriteFile(cm.EntryPath(key), data, 0644); err != nil {
		return &CacheError{Key: key, Op: "write", Err: err}
	}

	cm.updateIndex(key, envelope)

	LogInfo("Cached %d messages for %s", len(messages), filepath.Base(sourcePath))
	return nil
}

// updateIndex rewrites the advisory YAML index. Best effort: index problems
// are logged, not surfaced.
func (cm *CacheManager) updateIndex(key string, envelope cacheEnvelope) {
	index := cacheIndex{UpdatedAt: time.Now()}
	if data, err := os.ReadFile(cm.IndexPath()); err == nil {
		_ = yaml.Unmarshal(data, &index)
		index.UpdatedAt = time.Now()
	}

	entry := cacheIndexEntry{
		Key:          key,
		SourcePath:   envelope.SourcePath,
		CachedAt:     envelope.CachedAt,
		MessageCount: envelope.MessageCount,
	}

	found := false
	for i := range index.Entries {
		if index.Entries[i].SourcePath == envelope.SourcePath {
			index.Entries[i] = entry
			found = true
			break
		}
	}
	if !found {
		index.Entries = append(index.Entries, entry)
	}

	data, err := yaml.Marshal(&index)
	if err != nil {
		LogWarn("Failed to marshal cache index: %v", err)
		return
	}
	if err := os.WriteFile(cm.IndexPath(), data, 0644); err != nil {
		LogWarn("Failed to write cache index: %v", err)
	}
}

// Clear deletes one source's cache entry, or every entry when sourcePath is
// empty. Missing files count as already cleared.
func (cm *CacheManager) Clear(sourcePath string) (int, error) {
	if sourcePath != "" {
		entryPath := cm.EntryPath(cm.CacheKey(sourcePath))
		if err := os.Remove(entryPath); err != nil {
			if os.IsNotExist(err) {
				return 0, nil
			}
			return 0, &CacheError{Key: filepath.Base(entryPath), Op: "clear", Err: err}
		}
		LogInfo("Cleared cache for %s", filepath.Base(sourcePath))
		return 1, nil
	}

	entries, err := os.ReadDir(cm.cacheDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, &CacheError{Key: cm.cacheDir, Op: "clear", Err: err}
	}

	count := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), cacheExt) {
			continue
		}
		if err := os.Remove(filepath.Join(cm.cacheDir, entry.Name())); err != nil {
			LogWarn("Failed to delete cache file %s: %v", entry.Name(), err)
			continue
		}
		count++
	}
	_ = os.Remove(cm.IndexPath())

	LogInfo("Cleared %d cache files", count)
	return count, nil
}

// Stats reports entry count, total size, and the configured TTL.
func (cm *CacheManager) Stats() (CacheStats, error) {
	stats := CacheStats{
		CacheDir:   cm.cacheDir,
		TTL:        cm.ttl,
		TTLSeconds: int64(cm.ttl.Seconds()),
	}

	entries, err := os.ReadDir(cm.cacheDir)
	if err != nil {
		if os.IsNotExist(err) {
			return stats, nil
		}
		return stats, &CacheError{Key: cm.cacheDir, Op: "read", Err: err}
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), cacheExt) {
			continue
		}
		stats.EntryCount++
		if info, err := entry.Info(); err == nil {
			stats.TotalSizeBytes += info.Size()
		}
	}

	return stats, nil
}
