package model

import (
	"testing"

	"github.com/google/uuid"
)

func TestSubjectRoundTrip(t *testing.T) {
	id := uuid.New()

	kind, parsed, err := ParseSubject(Subject(KindProspect, id))
	if err != nil {
		t.Fatalf("ParseSubject failed: %v", err)
	}

	if kind != KindProspect {
		t.Errorf("expected kind %q, got %q", KindProspect, kind)
	}

	if parsed != id {
		t.Errorf("expected id %s, got %s", id, parsed)
	}
}

func TestParseSubjectRejectsMalformed(t *testing.T) {
	for _, subject := range []string{
		"",
		"prospect",
		"prospect/not-a-uuid",
		"/4be0643f-1d98-573b-97cd-ca98a65347dd/extra-part-is-fine-but-id-is-not",
	} {
		if _, _, err := ParseSubject(subject); err == nil {
			t.Errorf("%q: expected error", subject)
		}
	}
}
