package core

import "testing"

func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

func TestIDString(t *testing.T) {
	id := ID("test-123")
	if id.String() != "test-123" {
		t.Errorf("expected String() to return 'test-123', got '%s'", id.String())
	}
}

func TestIDIsEmpty(t *testing.T) {
	if !ID("").IsEmpty() {
		t.Error("expected empty ID to be empty")
	}
	if ID("not-empty").IsEmpty() {
		t.Error("expected non-empty ID to not be empty")
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		input    string
		expected ID
		hasError bool
	}{
		{"valid-id", ID("valid-id"), false},
		{"", "", true},
		{"   ", "", true},
	}

	for _, test := range tests {
		result, err := ParseID(test.input)
		if test.hasError && err == nil {
			t.Errorf("expected error for input %q, got none", test.input)
		}
		if !test.hasError && err != nil {
			t.Errorf("unexpected error for input %q: %v", test.input, err)
		}
		if result != test.expected {
			t.Errorf("expected %s, got %s", test.expected, result)
		}
	}
}
