// Package dummydb provides in-memory repository implementations used in
// tests and local development without a database.
package dummydb

import (
	"sync"

	"github.com/joesive47/skillnexus-lms-sub005/core/catalog"
	"github.com/joesive47/skillnexus-lms-sub005/core/certificate"
	"github.com/joesive47/skillnexus-lms-sub005/core/progress"
	"github.com/joesive47/skillnexus-lms-sub005/core/user"
)

type (
	DB struct {
		user        *userTable
		course      *courseTable
		lesson      *lessonTable
		enrollment  *enrollmentTable
		progress    *progressTable
		certificate *certificateTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	courseTable struct {
		sync.RWMutex
		table map[string]*catalog.Course
	}

	lessonTable struct {
		sync.RWMutex
		table map[string]*catalog.Lesson
	}

	enrollmentTable struct {
		sync.RWMutex
		table map[enrollmentKey]*catalog.Enrollment
	}

	progressTable struct {
		sync.RWMutex
		table map[progressKey]*progress.WatchProgress
	}

	certificateTable struct {
		sync.RWMutex
		table map[certificateKey]*certificate.Certificate
	}

	enrollmentKey  struct{ userID, courseID string }
	progressKey    struct{ userID, lessonID string }
	certificateKey struct{ userID, courseID string }
)

func Open() (*DB, error) {
	db := &DB{
		user:        &userTable{table: make(map[string]*user.User)},
		course:      &courseTable{table: make(map[string]*catalog.Course)},
		lesson:      &lessonTable{table: make(map[string]*catalog.Lesson)},
		enrollment:  &enrollmentTable{table: make(map[enrollmentKey]*catalog.Enrollment)},
		progress:    &progressTable{table: make(map[progressKey]*progress.WatchProgress)},
		certificate: &certificateTable{table: make(map[certificateKey]*certificate.Certificate)},
	}
	return db, nil
}
