package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/aagoldberg/far-mca-sub002/internal/domain"
	"github.com/aagoldberg/far-mca-sub002/internal/generator"
	"github.com/aagoldberg/far-mca-sub002/internal/scoring"
	"github.com/aagoldberg/far-mca-sub002/internal/workpool"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestParamsCommandPrintsOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scoring.yaml")
	if err := os.WriteFile(path, []byte("default_quality: 0.5\nlow_risk_weight: 12\n"), 0o600); err != nil {
		t.Fatalf("write params: %v", err)
	}

	out, err := execute(t, "params", "--file", path)
	if err != nil {
		t.Fatalf("params returned error: %v", err)
	}

	var got map[string]any
	if err := yaml.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not YAML: %v\n%s", err, out)
	}
	if got["default_quality"] != 0.5 {
		t.Fatalf("expected overridden default_quality, got %v", got["default_quality"])
	}
	if got["medium_risk_distance"] != scoring.DefaultParams().MediumRiskDistance {
		t.Fatalf("expected default medium_risk_distance, got %v", got["medium_risk_distance"])
	}
}

func TestDatagenCommandWritesDataset(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "datagen",
		"--identities", "50",
		"--avg-following", "5",
		"--community-size", "10",
		"--in-community-chance", "1.5",
		"--output-dir", dir,
	)
	if err != nil {
		t.Fatalf("datagen returned error: %v", err)
	}
	if !strings.Contains(out, "Generated 50 identities") {
		t.Fatalf("unexpected output %q", out)
	}

	dataset, err := generator.ReadDataset(dir)
	if err != nil {
		t.Fatalf("read dataset: %v", err)
	}
	if len(dataset.Identities) != 50 {
		t.Fatalf("expected 50 identities, got %d", len(dataset.Identities))
	}
	if len(dataset.Follows) == 0 || len(dataset.Follows) > 50 {
		t.Fatalf("unexpected follow list count %d", len(dataset.Follows))
	}
}

func TestProximityCommandRejectsBadFID(t *testing.T) {
	if _, err := execute(t, "proximity", "--fid", "abc", "2"); err == nil {
		t.Fatal("expected an error for a non-numeric fid")
	}
}

type recordingWriter struct {
	mu         sync.Mutex
	identities map[int64]bool
	follows    map[int64][]int64
	orphan     bool
	failFID    int64
}

func newRecordingWriter() *recordingWriter {
	return &recordingWriter{identities: map[int64]bool{}, follows: map[int64][]int64{}}
}

func (w *recordingWriter) UpsertIdentity(_ context.Context, id domain.Identity) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if id.ID == w.failFID {
		return errors.New("write rejected")
	}
	w.identities[id.ID] = true
	return nil
}

func (w *recordingWriter) UpsertFollows(_ context.Context, fid int64, followees []int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, f := range append([]int64{fid}, followees...) {
		if !w.identities[f] {
			w.orphan = true
		}
	}
	w.follows[fid] = followees
	return nil
}

func TestSeedDatasetWritesIdentitiesBeforeFollows(t *testing.T) {
	cfg := generator.DefaultConfig()
	cfg.NumIdentities = 40
	cfg.AvgFollowing = 6
	cfg.CommunitySize = 8
	dataset, err := generator.New(cfg).Generate(context.Background())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	w := newRecordingWriter()
	if err := seedDataset(context.Background(), w, workpool.New(4), dataset); err != nil {
		t.Fatalf("seed returned error: %v", err)
	}
	if len(w.identities) != 40 || len(w.follows) != len(dataset.Follows) {
		t.Fatalf("expected 40 identities and %d follow lists, got %d and %d", len(dataset.Follows), len(w.identities), len(w.follows))
	}
	if w.orphan {
		t.Fatal("a follow list was written before one of its identities")
	}
}

func TestSeedDatasetStopsBeforeFollowsOnIdentityFailure(t *testing.T) {
	dataset := generator.Dataset{
		Identities: []generator.IdentityRecord{{FID: 1}, {FID: 2}},
		Follows:    []generator.FollowRecord{{FID: 1, Following: []int64{2}}},
	}
	w := newRecordingWriter()
	w.failFID = 2

	err := seedDataset(context.Background(), w, workpool.New(2), dataset)
	if err == nil || !strings.Contains(err.Error(), "identity 2") {
		t.Fatalf("expected identity failure, got %v", err)
	}
	if len(w.follows) != 0 {
		t.Fatalf("expected no follows written, got %d", len(w.follows))
	}
}
