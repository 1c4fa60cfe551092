package responsewriter

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWrap_DefaultsTo200(t *testing.T) {
	w := Wrap(httptest.NewRecorder())

	if w.StatusCode() != http.StatusOK {
		t.Fatalf("StatusCode = %d, want 200", w.StatusCode())
	}
	if w.BytesWritten() != 0 {
		t.Fatalf("BytesWritten = %d, want 0", w.BytesWritten())
	}
}

func TestWriteHeader_RecordsStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	w := Wrap(rec)

	w.WriteHeader(http.StatusNotFound)

	if w.StatusCode() != http.StatusNotFound {
		t.Fatalf("StatusCode = %d, want 404", w.StatusCode())
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("underlying Code = %d, want 404", rec.Code)
	}
}

func TestWriteHeader_FirstCallWins(t *testing.T) {
	rec := httptest.NewRecorder()
	w := Wrap(rec)

	w.WriteHeader(http.StatusBadRequest)
	w.WriteHeader(http.StatusInternalServerError)

	if w.StatusCode() != http.StatusBadRequest {
		t.Fatalf("StatusCode = %d, want 400", w.StatusCode())
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("underlying Code = %d, want 400", rec.Code)
	}
}

func TestWrite_CountsBytesAndImplies200(t *testing.T) {
	rec := httptest.NewRecorder()
	w := Wrap(rec)

	if _, err := w.Write([]byte(`{"ok":true}`)); err != nil {
		t.Fatalf("Write err=%v", err)
	}
	if _, err := w.Write([]byte("\n")); err != nil {
		t.Fatalf("Write err=%v", err)
	}

	if w.StatusCode() != http.StatusOK {
		t.Fatalf("StatusCode = %d, want implicit 200", w.StatusCode())
	}
	if w.BytesWritten() != 12 {
		t.Fatalf("BytesWritten = %d, want 12", w.BytesWritten())
	}
	if got := rec.Body.String(); got != "{\"ok\":true}\n" {
		t.Fatalf("body = %q", got)
	}
}

func TestUnwrap_ReturnsUnderlyingWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	w := Wrap(rec)

	if w.Unwrap() != rec {
		t.Fatal("Unwrap did not return the wrapped writer")
	}
}
