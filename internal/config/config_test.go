package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	s := NewStore()
	snap := s.Snapshot()
	assert.False(t, snap.UpscalerEnabled)
	assert.Equal(t, 1.0, snap.TrafficBoost)
	assert.True(t, snap.IPCEnabled)
	assert.Equal(t, DefaultPipeName, snap.IPCPipeName)
	assert.Equal(t, "info", snap.LogLevel)
}

func TestTrafficBoostClamp(t *testing.T) {
	s := NewStore()
	cases := map[float64]float64{
		0.0:    TrafficBoostMin,
		-3.0:   TrafficBoostMin,
		0.10:   0.10,
		1.5:    1.5,
		50.0:   50.0,
		100.0:  TrafficBoostMax,
		1000.0: TrafficBoostMax,
	}
	for in, want := range cases {
		if got := s.SetTrafficBoost(in); got != want {
			t.Fatalf("SetTrafficBoost(%v) = %v, want %v", in, got, want)
		}
		if got := s.TrafficBoost(); got != want {
			t.Fatalf("TrafficBoost() after %v = %v, want %v", in, got, want)
		}
	}
}

func TestLogLevelFallback(t *testing.T) {
	s := NewStore()
	s.SetLogLevel("verbose")
	assert.Equal(t, "info", s.LogLevel())
	s.SetLogLevel("warn")
	assert.Equal(t, "warn", s.LogLevel())
}

func TestGetSetByKey(t *testing.T) {
	s := NewStore()

	v, err := s.Set(KeyTrafficBoost, 100.0)
	require.NoError(t, err)
	assert.Equal(t, TrafficBoostMax, v)

	v, err = s.Set(KeyUpscalerEnabled, true)
	require.NoError(t, err)
	assert.Equal(t, true, v)

	got, err := s.Get(KeyUpscalerEnabled)
	require.NoError(t, err)
	assert.Equal(t, true, got)

	_, err = s.Set("nope", 1.0)
	assert.Error(t, err)
	_, err = s.Get("nope")
	assert.Error(t, err)
	_, err = s.Set(KeyTrafficBoost, "fast")
	assert.Error(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "MirrorBlade.json")
	s := NewStore()
	s.SetUpscalerEnabled(true)
	s.SetTrafficBoost(2.5)
	s.SetLogLevel("debug")
	s.SetIPCPipeName("custom-pipe")
	require.NoError(t, s.SaveFile(path))

	// Persisted form is an indented JSON object with canonical names.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "upscaler_enabled")
	assert.Contains(t, raw, "traffic_boost")
	assert.Contains(t, raw, "version")

	other := NewStore()
	require.NoError(t, other.LoadFile(path))
	assert.Equal(t, s.Snapshot(), other.Snapshot())

	// No temp residue after a successful save.
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestLoadMissingFileResetsToDefaults(t *testing.T) {
	s := NewStore()
	s.SetTrafficBoost(9)
	err := s.LoadFile(filepath.Join(t.TempDir(), "absent.json"))
	assert.ErrorIs(t, err, ErrMissing)
	assert.Equal(t, Defaults(), s.Snapshot())
}

func TestLoadParseFailureKeepsState(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "MirrorBlade.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s := NewStore()
	s.SetTrafficBoost(3.5)
	err := s.LoadFile(path)
	require.Error(t, err)
	assert.Equal(t, 3.5, s.TrafficBoost())
}

func TestLoadIgnoresUnknownFieldsAndClamps(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "MirrorBlade.json")
	doc := `{"traffic_boost": 500, "log_level": "chatty", "mystery_field": [1,2,3]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	s := NewStore()
	require.NoError(t, s.LoadFile(path))
	assert.Equal(t, TrafficBoostMax, s.TrafficBoost())
	assert.Equal(t, "info", s.LogLevel())
}

func TestConcurrentReadersSeeConsistentSnapshots(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			s.SetTrafficBoost(float64(i%50) + 1)
			s.SetUpscalerEnabled(i%2 == 0)
		}
	}()
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5000; j++ {
				snap := s.Snapshot()
				if snap.TrafficBoost < TrafficBoostMin || snap.TrafficBoost > TrafficBoostMax {
					t.Errorf("torn traffic boost: %v", snap.TrafficBoost)
					return
				}
			}
		}()
	}
	time.Sleep(10 * time.Millisecond)
	close(stop)
	wg.Wait()
}

type recordingSinks struct {
	mu      sync.Mutex
	enabled []bool
	mults   []float64
	levels  []string
}

func (r *recordingSinks) SetEnabled(v bool) {
	r.mu.Lock()
	r.enabled = append(r.enabled, v)
	r.mu.Unlock()
}
func (r *recordingSinks) SetMultiplier(v float64) {
	r.mu.Lock()
	r.mults = append(r.mults, v)
	r.mu.Unlock()
}
func (r *recordingSinks) SetLevel(v string) {
	r.mu.Lock()
	r.levels = append(r.levels, v)
	r.mu.Unlock()
}

func TestAppliersBroadcast(t *testing.T) {
	rec := &recordingSinks{}
	a := NewAppliers()
	a.RegisterUpscaler(rec)
	a.RegisterTraffic(rec)
	a.RegisterLog(rec)

	snap := Defaults()
	snap.UpscalerEnabled = true
	snap.TrafficBoost = 2.0
	snap.LogLevel = "debug"
	a.Apply(snap)
	a.Apply(snap) // idempotent

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, []bool{true, true}, rec.enabled)
	assert.Equal(t, []float64{2.0, 2.0}, rec.mults)
	assert.Equal(t, []string{"debug", "debug"}, rec.levels)
}

func TestAppliersAbsentSinksAreNoops(t *testing.T) {
	a := NewAppliers()
	a.Apply(Defaults()) // must not panic
}

func TestWatcherCommitsAfterDebounce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "MirrorBlade.json")
	s := NewStore()
	require.NoError(t, s.SaveFile(path))

	var mu sync.Mutex
	var applied []Snapshot
	w := NewWatcher(WatcherOptions{
		Path:         path,
		Store:        s,
		PollInterval: 10 * time.Millisecond,
		StablePolls:  4,
		Apply: func(snap Snapshot) {
			mu.Lock()
			applied = append(applied, snap)
			mu.Unlock()
		},
	})
	w.Start()
	defer w.Stop()

	// External edit: flip the upscaler on disk.
	time.Sleep(20 * time.Millisecond)
	doc := `{"upscaler_enabled": true, "traffic_boost": 2.0}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.UpscalerEnabled() {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	require.True(t, s.UpscalerEnabled(), "watcher never committed the edit")

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, applied)
	assert.True(t, applied[len(applied)-1].UpscalerEnabled)
	assert.Equal(t, 2.0, applied[len(applied)-1].TrafficBoost)
}

func TestWatcherKeepsStateOnBadEdit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "MirrorBlade.json")
	s := NewStore()
	s.SetTrafficBoost(4.0)
	require.NoError(t, s.SaveFile(path))

	w := NewWatcher(WatcherOptions{
		Path:         path,
		Store:        s,
		PollInterval: 10 * time.Millisecond,
		StablePolls:  2,
	})
	w.Start()
	defer w.Stop()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 4.0, s.TrafficBoost(), "parse failure must keep previous state")
}
