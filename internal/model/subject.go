package model

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Subject renders an aggregate reference like "prospect/42e...".
func Subject(kind string, id uuid.UUID) string {
	return kind + "/" + id.String()
}

func ParseSubject(subject string) (kind string, id uuid.UUID, err error) {
	parts := strings.SplitN(subject, "/", 2)
	if len(parts) != 2 {
		return "", uuid.Nil, fmt.Errorf("malformed subject: %q", subject)
	}

	id, err = uuid.Parse(parts[1])
	if err != nil {
		return "", uuid.Nil, fmt.Errorf("malformed subject id: %w", err)
	}

	return parts[0], id, nil
}
