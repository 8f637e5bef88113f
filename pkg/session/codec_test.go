package session

import (
	"errors"
	"reflect"
	"testing"

	"github.com/oculab/go-ocular/pkg/visual"
)

func sampleRecording() *Recording {
	return &Recording{
		SessionID:  "s-1",
		FPS:        30,
		DurationMs: 66,
		Resolution: Resolution{Width: 128, Height: 64},
		Frames: []RecordedFrame{
			{
				FrameIndex: 0, TimestampMs: 0,
				LeftEAR: 0.3, RightEAR: 0.3,
				LeftState: "open", RightState: "open",
				Draw: visual.Instruction{
					Mode: visual.Rectangles,
					Left: &visual.EyeShape{CenterX: 0.25, CenterY: 0.5, Width: 0.1, Height: 0.2, Openness: 0.85},
				},
			},
			{
				FrameIndex: 1, TimestampMs: 33,
				LeftEAR: 0.11, RightEAR: 0.12,
				LeftState: "closed", RightState: "closed",
				Events: []string{"blinkStart"},
				Draw:   visual.Instruction{Mode: visual.Rectangles},
			},
			{
				FrameIndex: 2, TimestampMs: 66,
				LeftEAR: 0.3, RightEAR: 0.3,
				LeftState: "open", RightState: "open",
				Events: []string{"blinkEnd", "gaze:left"},
				Draw: visual.Instruction{
					Mode: visual.AmplitudeWave,
					Wave: &visual.Waveform{Phase: 0.12, Openness: [2]float64{0.5, 0.5}, Samples: []float64{0, 0.1, -0.1}},
				},
			},
		},
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	rec := sampleRecording()

	data, err := Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if !reflect.DeepEqual(rec, got) {
		t.Errorf("Round trip mismatch:\n%+v\nvs\n%+v", rec, got)
	}
}

func TestCodec_RejectsOutOfOrderIndices(t *testing.T) {
	rec := sampleRecording()
	rec.Frames[2].FrameIndex = 1 // duplicate

	data, err := Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	if _, err := Unmarshal(data); !errors.Is(err, ErrCorruptSession) {
		t.Errorf("Unmarshal error = %v, want ErrCorruptSession", err)
	}
}

func TestCodec_RejectsRegressingTimestamps(t *testing.T) {
	rec := sampleRecording()
	rec.Frames[2].TimestampMs = 10

	data, _ := Marshal(rec)
	if _, err := Unmarshal(data); !errors.Is(err, ErrCorruptSession) {
		t.Errorf("Unmarshal error = %v, want ErrCorruptSession", err)
	}
}

func TestCodec_RejectsGarbage(t *testing.T) {
	cases := [][]byte{
		[]byte(`{not json`),
		[]byte(`{"sessionId":"","fps":30,"frames":[]}`),
		[]byte(`{"sessionId":"x","fps":0,"frames":[]}`),
		[]byte(`{"sessionId":"x","fps":30,"frames":[{"frameIndex":0,"timestampMs":0,"leftState":"sideways","rightState":"open","draw":{"mode":"rectangles"}}]}`),
	}

	for i, data := range cases {
		if _, err := Unmarshal(data); !errors.Is(err, ErrCorruptSession) {
			t.Errorf("Case %d: error = %v, want ErrCorruptSession", i, err)
		}
	}
}

func TestStore_SaveLoadList(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	rec := sampleRecording()
	path, err := store.Save(rec)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	t.Logf("Saved to %s", path)

	got, err := store.Load(rec.SessionID)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(rec, got) {
		t.Error("Loaded session differs from saved")
	}

	ids, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != rec.SessionID {
		t.Errorf("List = %v, want [%s]", ids, rec.SessionID)
	}
}

func TestStore_LoadMissing(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	if _, err := store.Load("nope"); err == nil {
		t.Error("Load of missing session succeeded")
	}
}
