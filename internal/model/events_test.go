package model

import "testing"

func TestTopicForRoutesEveryKnownEvent(t *testing.T) {
	cases := map[string]string{
		EventProspectCreated:   TopicProspects,
		EventProspectUpdated:   TopicProspects,
		EventProspectDeleted:   TopicProspects,
		EventStudentCreated:    TopicStudents,
		EventStudentUpdated:    TopicStudents,
		EventStudentDeleted:    TopicStudents,
		EventInstructorCreated: TopicInstructors,
		EventInstructorUpdated: TopicInstructors,
		EventInstructorDeleted: TopicInstructors,
	}

	for eventType, want := range cases {
		topic, ok := TopicFor(eventType)
		if !ok {
			t.Errorf("%s: no topic", eventType)
			continue
		}

		if topic != want {
			t.Errorf("%s: expected %q, got %q", eventType, want, topic)
		}
	}
}

func TestTopicForUnknownEvent(t *testing.T) {
	if _, ok := TopicFor("Admissions.SomethingElseHappened"); ok {
		t.Fatal("unknown event type must not route")
	}
}

func TestIsValidationEvent(t *testing.T) {
	if !IsValidationEvent("Admissions.SubscriptionValidationEvent") {
		t.Error("suffix match expected")
	}

	if IsValidationEvent(EventProspectCreated) {
		t.Error("domain event misclassified as validation")
	}
}

func TestEventKindClassifiers(t *testing.T) {
	if !IsCreatedEvent(EventStudentCreated) || IsCreatedEvent(EventStudentUpdated) {
		t.Error("IsCreatedEvent misclassifies")
	}

	if !IsUpdatedEvent(EventStudentUpdated) || IsUpdatedEvent(EventStudentDeleted) {
		t.Error("IsUpdatedEvent misclassifies")
	}

	if !IsDeletedEvent(EventStudentDeleted) || IsDeletedEvent(EventStudentCreated) {
		t.Error("IsDeletedEvent misclassifies")
	}
}
