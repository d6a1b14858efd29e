package chart

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/psjostrom/springa/internal/model"
)

func TestRenderModel(t *testing.T) {
	m := &model.BGResponseModel{
		ActivitiesAnalyzed: 9,
		ByStartLevel: []model.BucketStats{
			{Bucket: "<8", AvgRate: -1.1, MedianRate: -1.0},
			{Bucket: "8-10", AvgRate: -0.7, MedianRate: -0.6},
		},
	}

	var buf bytes.Buffer
	if err := RenderModel(&buf, m); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if !strings.Contains(out, "Glucose response by starting level") {
		t.Error("output missing chart title")
	}
	if !strings.Contains(out, "9 activities analyzed") {
		t.Error("output missing subtitle")
	}
}

func TestRenderRun(t *testing.T) {
	ev := model.CompletedEvent{
		Category: model.CategoryLong,
		Start:    time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC),
		FuelRate: 40,
		Glucose: []model.TimeSample{
			{Offset: 0, Value: 8.0}, {Offset: 60, Value: 7.9}, {Offset: 120, Value: 7.7},
		},
		HR: []model.TimeSample{
			{Offset: 0, Value: 120}, {Offset: 60, Value: 132}, {Offset: 120, Value: 138},
		},
	}

	var buf bytes.Buffer
	if err := RenderRun(&buf, ev); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "long run 2026-02-01") {
		t.Error("output missing run title")
	}
}
