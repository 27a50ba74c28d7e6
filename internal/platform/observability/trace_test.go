package observability

import (
	"strings"
	"testing"

	"github.com/kitzone/api/internal/platform/requestctx"
)

func TestParseCloudTraceContext(t *testing.T) {
	info, remote, ok := parseCloudTraceContext("105445aa7843bc8bf206b12000100000/1;o=1")
	if !ok {
		t.Fatal("expected header to parse")
	}
	if info.TraceID != "105445aa7843bc8bf206b12000100000" {
		t.Fatalf("unexpected trace id %s", info.TraceID)
	}
	if !info.Sampled {
		t.Fatal("expected sampled flag")
	}
	if !remote.IsRemote() || !remote.IsSampled() {
		t.Fatalf("unexpected remote span context %+v", remote)
	}
}

func TestParseCloudTraceContextDecimalSpan(t *testing.T) {
	info, _, ok := parseCloudTraceContext("105445aa7843bc8bf206b12000100000/18446744073709551615;o=0")
	if !ok {
		t.Fatal("expected decimal span id to parse")
	}
	if info.Sampled {
		t.Fatal("expected unsampled")
	}
	if info.SpanID != "ffffffffffffffff" {
		t.Fatalf("unexpected span id %s", info.SpanID)
	}
}

func TestParseCloudTraceContextRejectsGarbage(t *testing.T) {
	for _, header := range []string{"", "no-slash", "shorttrace/1", "105445aa7843bc8bf206b12000100000/"} {
		if _, _, ok := parseCloudTraceContext(header); ok {
			t.Fatalf("expected %q to be rejected", header)
		}
	}
}

func TestFormatCloudTraceHeader(t *testing.T) {
	header := formatCloudTraceHeader(requestctx.TraceInfo{
		TraceID: "105445aa7843bc8bf206b12000100000",
		SpanID:  "00000000000000a1",
		Sampled: true,
	})
	if header != "105445aa7843bc8bf206b12000100000/00000000000000a1;o=1" {
		t.Fatalf("unexpected header %s", header)
	}
	if formatCloudTraceHeader(requestctx.TraceInfo{}) != "" {
		t.Fatal("expected empty header for zero info")
	}
}

func TestScrubDropsControlCharactersAndCaps(t *testing.T) {
	if got := scrub("ord\x00er\x1b", 0); got != "order" {
		t.Fatalf("unexpected scrubbed value %q", got)
	}
	if got := scrub(strings.Repeat("a", 300), 0); len(got) != maxFieldRunes {
		t.Fatalf("expected cap at %d runes, got %d", maxFieldRunes, len(got))
	}
	if got := SanitizeRoute(""); got != "/" {
		t.Fatalf("expected root route fallback, got %q", got)
	}
}
