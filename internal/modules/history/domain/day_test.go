package domain_test

import (
	"strings"
	"testing"
	"time"

	"mamatimer/internal/modules/history/domain"
)

func TestParseKind(t *testing.T) {
	t.Parallel()
	tests := []struct {
		raw     string
		want    domain.Kind
		wantErr bool
	}{
		{raw: "", want: domain.KindAll},
		{raw: "ALL", want: domain.KindAll},
		{raw: " fetal ", want: domain.KindFetal},
		{raw: "contraction", want: domain.KindContraction},
		{raw: "weight", wantErr: true},
	}
	for _, tc := range tests {
		got, err := domain.ParseKind(tc.raw)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("%q: expected error", tc.raw)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("%q: got %q, %v", tc.raw, got, err)
		}
	}
	if domain.KindFetal.IncludesContraction() || !domain.KindAll.IncludesFetal() {
		t.Fatalf("unexpected kind coverage")
	}
}

func TestBodyForEmptyDay(t *testing.T) {
	t.Parallel()
	day := domain.Day{
		Key:         "2026-10-18",
		Fetal:       &domain.FetalSummary{},
		Contraction: &domain.ContractionSummary{},
	}
	if !day.Empty() {
		t.Fatalf("expected empty day")
	}
	body := day.Body(time.UTC)
	if !strings.Contains(body, "No counting sessions.") || !strings.Contains(body, "No contractions recorded.") {
		t.Fatalf("unexpected body:\n%s", body)
	}
}

func TestFrontmatterOmitsUnrequestedKinds(t *testing.T) {
	t.Parallel()
	day := domain.Day{Key: "2026-10-18", Fetal: &domain.FetalSummary{Sessions: 2, ValidCount: 7}}
	meta := day.Frontmatter(time.Date(2026, 10, 18, 21, 0, 0, 0, time.UTC))
	if meta["date"] != "2026-10-18" || meta["schema_version"] != domain.SchemaVersion {
		t.Fatalf("unexpected meta: %#v", meta)
	}
	if _, ok := meta["contraction"]; ok {
		t.Fatalf("contraction should be absent")
	}
	fetal, ok := meta["fetal"].(map[string]any)
	if !ok || fetal["valid_count"] != 7 {
		t.Fatalf("unexpected fetal meta: %#v", meta["fetal"])
	}
	if strings.Contains(day.Body(time.UTC), "Contractions") {
		t.Fatalf("body should not mention contractions")
	}
}
