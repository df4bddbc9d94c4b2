package certificate

import "time"

// Certificate records a learner's completion of a course. One per
// (user, course), enforced by the storage layer.
type Certificate struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	CourseID     string    `json:"course_id"`
	SerialNumber string    `json:"serial_number"`
	IssuedAt     time.Time `json:"issued_at"` // UTC
}
