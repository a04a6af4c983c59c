package clipboard

import "testing"

func TestMemoryRoundTrip(t *testing.T) {
	var m Memory
	if err := m.WriteAll("привет мир"); err != nil {
		t.Fatalf("WriteAll failed: %v", err)
	}
	got, err := m.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if got != "привет мир" {
		t.Fatalf("expected clipboard text, got %q", got)
	}
}
