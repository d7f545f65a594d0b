package internal

import (
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/Looking4OffSwitch/claude-conversation-analysis/testutil"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	cfg, err := DefaultConfig()
	if err != nil {
		t.Fatal(err)
	}
	cfg.CacheDir = testutil.CreateTempDir(t)
	cfg.CacheTTL = time.Hour
	cfg.CacheEnabled = true
	return cfg
}

func TestService_GetOrParse(t *testing.T) {
	cfg := testConfig(t)
	dir := testutil.CreateSourceDir(t,
		testutil.UserRecord("u1", "", "2024-01-01T00:00:00Z", "s1", "question"),
		testutil.AssistantRecord("a1", "u1", "2024-01-01T00:00:05Z", "s1", "answer"),
	)

	svc := NewConversationService(cfg)

	messages, err := svc.GetOrParse(dir, true)
	if err != nil {
		t.Fatalf("GetOrParse() error = %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("GetOrParse() returned %d messages, want 2", len(messages))
	}

	// The first call populated the cache under the source's current key.
	if _, ok := svc.Cache().Get(dir); !ok {
		t.Error("cache entry missing after GetOrParse()")
	}

	again, err := svc.GetOrParse(dir, true)
	if err != nil {
		t.Fatalf("second GetOrParse() error = %v", err)
	}
	if len(again) != 2 {
		t.Errorf("cached GetOrParse() returned %d messages, want 2", len(again))
	}
}

func TestService_GetOrParse_BypassCache(t *testing.T) {
	cfg := testConfig(t)
	dir := testutil.CreateSourceDir(t,
		testutil.UserRecord("u1", "", "2024-01-01T00:00:00Z", "s1", "question"),
	)

	svc := NewConversationService(cfg)
	if _, err := svc.GetOrParse(dir, true); err != nil {
		t.Fatal(err)
	}

	// Poison the entry; a bypassing call must re-parse and overwrite it.
	key := svc.Cache().CacheKey(dir)
	entry := svc.Cache().EntryPath(key)
	if err := os.WriteFile(entry, []byte(`{"messages":[]}`), 0644); err != nil {
		t.Fatal(err)
	}

	messages, err := svc.GetOrParse(dir, false)
	if err != nil {
		t.Fatalf("GetOrParse(refresh) error = %v", err)
	}
	if len(messages) != 1 {
		t.Errorf("GetOrParse(refresh) returned %d messages, want 1", len(messages))
	}

	cached, ok := svc.Cache().Get(dir)
	if !ok || len(cached) != 1 {
		t.Errorf("cache not overwritten after refresh: ok=%v len=%d", ok, len(cached))
	}
}

func TestService_GetOrParse_CacheDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.CacheEnabled = false
	dir := testutil.CreateSourceDir(t,
		testutil.UserRecord("u1", "", "2024-01-01T00:00:00Z", "s1", "question"),
	)

	svc := NewConversationService(cfg)
	messages, err := svc.GetOrParse(dir, true)
	if err != nil {
		t.Fatalf("GetOrParse() error = %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("GetOrParse() returned %d messages, want 1", len(messages))
	}

	stats, err := svc.Cache().Stats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.EntryCount != 0 {
		t.Errorf("cache has %d entries with caching disabled, want 0", stats.EntryCount)
	}
}

func TestService_GetOrParse_MissingSource(t *testing.T) {
	svc := NewConversationService(testConfig(t))
	if _, err := svc.GetOrParse("/nonexistent/source", true); err == nil {
		t.Error("GetOrParse() should fail for a missing source")
	}
}

func TestService_ConcurrentLoads(t *testing.T) {
	cfg := testConfig(t)
	dir := testutil.CreateSourceDir(t,
		testutil.UserRecord("u1", "", "2024-01-01T00:00:00Z", "s1", "question"),
		testutil.AssistantRecord("a1", "u1", "2024-01-01T00:00:05Z", "s1", "answer"),
	)

	svc := NewConversationService(cfg)

	const callers = 8
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			messages, err := svc.GetOrParse(dir, true)
			if err != nil {
				errs <- err
				return
			}
			if len(messages) != 2 {
				errs <- fmt.Errorf("got %d messages, want 2", len(messages))
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent GetOrParse() error = %v", err)
	}
}

func TestService_ConcurrentTreeBuilds(t *testing.T) {
	cfg := testConfig(t)

	// Several linear threads per session; enough records that coalesced
	// callers actually overlap while linking children.
	var records []testutil.Record
	for i := 0; i < 10; i++ {
		root := fmt.Sprintf("u%d", i)
		ts := fmt.Sprintf("2024-01-01T00:%02d:00Z", i)
		records = append(records, testutil.UserRecord(root, "", ts, "s1", "question"))
		parent := root
		for j := 0; j < 4; j++ {
			id := fmt.Sprintf("a%d-%d", i, j)
			ts := fmt.Sprintf("2024-01-01T00:%02d:%02dZ", i, j+1)
			records = append(records, testutil.AssistantRecord(id, parent, ts, "s1", "answer"))
			parent = id
		}
	}
	dir := testutil.CreateSourceDir(t, records...)

	svc := NewConversationService(cfg)

	const callers = 16
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conv, err := svc.Load(dir, true)
			if err != nil {
				errs <- err
				return
			}
			// Every message appears exactly once in every caller's tree,
			// even when the flight's result is shared.
			flattened := FlattenTree(conv.Tree)
			if len(flattened) != len(records) {
				errs <- fmt.Errorf("flattened tree has %d messages, want %d", len(flattened), len(records))
				return
			}
			seen := make(map[string]bool, len(flattened))
			for _, fm := range flattened {
				if seen[fm.Message.UUID] {
					errs <- fmt.Errorf("message %s appears more than once", fm.Message.UUID)
					return
				}
				seen[fm.Message.UUID] = true
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent Load() error = %v", err)
	}
}

func TestService_ConcurrentRefreshNeverServedFromCache(t *testing.T) {
	cfg := testConfig(t)
	dir := testutil.CreateSourceDir(t,
		testutil.UserRecord("u1", "", "2024-01-01T00:00:00Z", "s1", "question"),
	)

	svc := NewConversationService(cfg)
	if _, err := svc.GetOrParse(dir, true); err != nil {
		t.Fatal(err)
	}

	// A stale entry must never leak to refresh callers, even when they race
	// with callers willing to take the cached result.
	key := svc.Cache().CacheKey(dir)
	entry := svc.Cache().EntryPath(key)
	if err := os.WriteFile(entry, []byte(`{"messages":[]}`), 0644); err != nil {
		t.Fatal(err)
	}

	const callers = 8
	var wg sync.WaitGroup
	errs := make(chan error, callers*2)
	for i := 0; i < callers; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := svc.GetOrParse(dir, true); err != nil {
				errs <- err
			}
		}()
		go func() {
			defer wg.Done()
			messages, err := svc.GetOrParse(dir, false)
			if err != nil {
				errs <- err
				return
			}
			if len(messages) != 1 {
				errs <- fmt.Errorf("refresh returned %d messages, want 1", len(messages))
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent GetOrParse() error = %v", err)
	}
}

func TestService_Load(t *testing.T) {
	cfg := testConfig(t)
	dir := testutil.CreateSourceDir(t,
		testutil.UserRecord("u1", "", "2024-01-01T00:00:00Z", "s1", "question"),
		testutil.AssistantRecord("a1", "u1", "2024-01-01T00:00:05Z", "s1", "answer"),
		testutil.UserRecord("u2", "", "2024-01-01T01:00:00Z", "s2", "new topic"),
	)

	svc := NewConversationService(cfg)
	conv, err := svc.Load(dir, true)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(conv.Messages) != 3 {
		t.Errorf("Messages = %d, want 3", len(conv.Messages))
	}
	if len(conv.Tree) != 2 {
		t.Errorf("Tree roots = %d, want 2", len(conv.Tree))
	}
	if conv.Stats.TotalMessages != 3 || conv.Stats.MaxDepth != 1 {
		t.Errorf("Stats = %+v", conv.Stats)
	}
	if len(conv.Sessions) != 2 {
		t.Errorf("Sessions = %d, want 2", len(conv.Sessions))
	}
	if conv.Sessions[0].SessionID != "s1" {
		t.Errorf("Sessions[0] = %s, want s1", conv.Sessions[0].SessionID)
	}
}
