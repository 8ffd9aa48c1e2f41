package trace

import (
	"bytes"
	"strings"
	"testing"
)

func TestIsValidTraceLevel(t *testing.T) {
	for _, level := range []string{"", "none", "epochs", "iterations"} {
		if !IsValidTraceLevel(level) {
			t.Errorf("expected %q to be valid", level)
		}
	}
	if IsValidTraceLevel("decisions") {
		t.Error("expected \"decisions\" to be invalid")
	}
}

func TestTraceConfig_Enabled(t *testing.T) {
	if (TraceConfig{}).Enabled() || (TraceConfig{Level: TraceLevelNone}).Enabled() {
		t.Error("expected empty and none levels to be disabled")
	}
	if !(TraceConfig{Level: TraceLevelIterations}).Enabled() {
		t.Error("expected iterations level to be enabled")
	}
}

func TestWriteRatesCSV(t *testing.T) {
	rt := NewRunTrace(TraceConfig{Level: TraceLevelEpochs})
	rt.RecordRate(RateRecord{Epoch: 0, Iteration: 0, Rate: 0.1})
	rt.RecordRate(RateRecord{Epoch: 12, Iteration: 4680, Rate: 0.1, CycleIndex: 1, Event: EventRestart})

	var buf bytes.Buffer
	if err := WriteRatesCSV(&buf, rt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "epoch,iteration,rate,cycle_index,event\n" +
		"0,0,0.1,0,\n" +
		"12,4680,0.1,1,restart\n"
	if got := buf.String(); got != want {
		t.Errorf("csv mismatch:\n%s\nwant:\n%s", got, want)
	}
	if lines := strings.Count(buf.String(), "\n"); lines != 3 {
		t.Errorf("expected 3 lines, got %d", lines)
	}
}
