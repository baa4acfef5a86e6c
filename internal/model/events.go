package model

import "strings"

const (
	EventProspectCreated = "Admissions.ProspectCreated"
	EventProspectUpdated = "Admissions.ProspectUpdated"
	EventProspectDeleted = "Admissions.ProspectDeleted"

	EventStudentCreated = "Admissions.StudentCreated"
	EventStudentUpdated = "Admissions.StudentUpdated"
	EventStudentDeleted = "Admissions.StudentDeleted"

	EventInstructorCreated = "Admissions.InstructorCreated"
	EventInstructorUpdated = "Admissions.InstructorUpdated"
	EventInstructorDeleted = "Admissions.InstructorDeleted"
)

// ValidationEventSuffix marks the one-time subscription activation handshake
// sent by the push substrate. It is answered inline and never dispatched.
const ValidationEventSuffix = "SubscriptionValidationEvent"

const (
	TopicProspects   = "admissions-prospects"
	TopicStudents    = "admissions-students"
	TopicInstructors = "admissions-instructors"
)

// Topics is the static event-type to topic routing table used by the relay.
var Topics = map[string]string{
	EventProspectCreated: TopicProspects,
	EventProspectUpdated: TopicProspects,
	EventProspectDeleted: TopicProspects,

	EventStudentCreated: TopicStudents,
	EventStudentUpdated: TopicStudents,
	EventStudentDeleted: TopicStudents,

	EventInstructorCreated: TopicInstructors,
	EventInstructorUpdated: TopicInstructors,
	EventInstructorDeleted: TopicInstructors,
}

// StreamEvents is the default subscription set of a fresh live connection.
var StreamEvents = []string{
	EventProspectCreated,
	EventProspectUpdated,
	EventProspectDeleted,
	EventStudentCreated,
	EventStudentUpdated,
	EventStudentDeleted,
	EventInstructorCreated,
	EventInstructorUpdated,
	EventInstructorDeleted,
}

func TopicFor(eventType string) (string, bool) {
	topic, ok := Topics[eventType]

	return topic, ok
}

func IsValidationEvent(eventType string) bool {
	return strings.HasSuffix(eventType, ValidationEventSuffix)
}

func IsCreatedEvent(eventType string) bool {
	return strings.HasSuffix(eventType, "Created")
}

func IsUpdatedEvent(eventType string) bool {
	return strings.HasSuffix(eventType, "Updated")
}

func IsDeletedEvent(eventType string) bool {
	return strings.HasSuffix(eventType, "Deleted")
}

// ValidationData is the payload of the subscription validation handshake.
type ValidationData struct {
	ValidationCode string `json:"validationCode"`
}

// ValidationResponse echoes the validation code back to the push substrate.
type ValidationResponse struct {
	ValidationResponse string `json:"validationResponse"`
}
