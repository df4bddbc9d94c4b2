package echoapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/joesive47/skillnexus-lms-sub005/core/catalog"
	"github.com/joesive47/skillnexus-lms-sub005/core/certificate"
	"github.com/joesive47/skillnexus-lms-sub005/core/progress"
	"github.com/joesive47/skillnexus-lms-sub005/core/user"
)

func createTestCourse(t *testing.T, title string, lessons ...catalog.NewLesson) (catalog.Course, []catalog.Lesson) {
	t.Helper()
	ctx := context.Background()

	course, err := catalogSvc.CreateCourse(ctx, catalog.NewCourse{Title: title})
	if err != nil {
		t.Fatalf("createTestCourse(): %v", err)
	}
	created := make([]catalog.Lesson, 0, len(lessons))
	for _, nl := range lessons {
		nl.CourseID = course.ID
		lesson, err := catalogSvc.CreateLesson(ctx, nl)
		if err != nil {
			t.Fatalf("createTestCourse(): %v", err)
		}
		created = append(created, lesson)
	}
	return course, created
}

func enrollTestUser(t *testing.T, usr user.User, course catalog.Course) {
	t.Helper()
	if _, err := catalogSvc.Enroll(context.Background(), usr.ID, course.ID); err != nil {
		t.Fatalf("enrollTestUser(): %v", err)
	}
}

func reportBody(lessonID string, watched, total float64, completed bool) []byte {
	return []byte(fmt.Sprintf(
		`{"lesson_id": %q, "watched_seconds": %v, "total_seconds": %v, "completed": %t}`,
		lessonID, watched, total, completed,
	))
}

func TestProgressApi_report(t *testing.T) {
	usr := createTestUser(t, "Watcher", "watcherusr", "watcher@skillnexus.test", "s3cr3t-pwd", []string{user.RoleStudent})
	stranger := createTestUser(t, "Stranger", "strangerusr", "stranger@skillnexus.test", "s3cr3t-pwd", []string{user.RoleStudent})
	course, lessons := createTestCourse(t, "Go Fundamentals",
		catalog.NewLesson{Title: "Interfaces", DurationSeconds: 60, Required: true},
	)
	enrollTestUser(t, usr, course)
	lesson := lessons[0]
	token := getToken(t, usr)

	tests := []httpTest{
		{
			name:     "anonymous is rejected",
			body:     reportBody(lesson.ID, 10, 60, false),
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name:     "unknown lesson",
			body:     reportBody("00000000-0000-0000-0000-000000000000", 10, 60, false),
			token:    token,
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name:     "not enrolled",
			body:     reportBody(lesson.ID, 10, 60, false),
			token:    getToken(t, stranger),
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name:     "missing lesson_id",
			body:     []byte(`{"watched_seconds": 10, "total_seconds": 60}`),
			token:    token,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"lesson_id": "this field is required"}),
		},
		{
			name:     "below threshold",
			body:     reportBody(lesson.ID, 45, 60, false),
			token:    token,
			wantCode: http.StatusOK,
			extra:    false, // wantCompleted
		},
		{
			name:     "at threshold",
			body:     reportBody(lesson.ID, 48, 60, false),
			token:    token,
			wantCode: http.StatusOK,
			extra:    true,
		},
		{
			name:     "rewatch keeps completion",
			body:     reportBody(lesson.ID, 10, 60, false),
			token:    token,
			wantCode: http.StatusOK,
			extra:    true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/progress", tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if wantCompleted, ok := tt.extra.(bool); ok {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v: %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				var wp progress.WatchProgress
				if err := json.Unmarshal(rec.Body.Bytes(), &wp); err != nil {
					t.Fatalf("decoding WatchProgress: %v", err)
				}
				if wp.Completed != wantCompleted {
					t.Errorf("failed! completed = %t; want %t", wp.Completed, wantCompleted)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func TestProgressApi_retrieve(t *testing.T) {
	usr := createTestUser(t, "Resumer", "resumerusr", "resumer@skillnexus.test", "s3cr3t-pwd", []string{user.RoleStudent})
	course, lessons := createTestCourse(t, "Go Concurrency",
		catalog.NewLesson{Title: "Channels", DurationSeconds: 60, Required: true},
	)
	enrollTestUser(t, usr, course)
	lesson := lessons[0]
	token := getToken(t, usr)

	t.Run("missing lesson_id", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/progress", token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "lesson_id is required"}),
		}, rec)
	})

	t.Run("no record yet", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/progress?lesson_id="+lesson.ID, token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
		}
		if body := strings.TrimSpace(rec.Body.String()); body != "null" {
			t.Errorf("failed! body = %q; want null", body)
		}
	})

	t.Run("after a report", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/progress", token, reportBody(lesson.ID, 22.5, 60, false))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("report failed! code = %v: %s", rec.Code, rec.Body.String())
		}

		req, rec = newAuthRequest(http.MethodGet, "/v1/progress?lesson_id="+lesson.ID, token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
		}
		var wp progress.WatchProgress
		if err := json.Unmarshal(rec.Body.Bytes(), &wp); err != nil {
			t.Fatalf("decoding WatchProgress: %v", err)
		}
		if wp.WatchedSeconds != 22.5 {
			t.Errorf("failed! watched_seconds = %v; want 22.5", wp.WatchedSeconds)
		}
	})
}

func TestProgressApi_courseCompletionAndCertificate(t *testing.T) {
	usr := createTestUser(t, "Finisher", "finisherusr", "finisher@skillnexus.test", "s3cr3t-pwd", []string{user.RoleStudent})
	course, lessons := createTestCourse(t, "Go Certification Track",
		catalog.NewLesson{Title: "Basics", DurationSeconds: 60, Required: true},
		catalog.NewLesson{Title: "Bonus", DurationSeconds: 60, Required: false},
		catalog.NewLesson{Title: "Final Exam", DurationSeconds: 60, FinalExam: true},
	)
	enrollTestUser(t, usr, course)
	token := getToken(t, usr)

	completionPath := "/v1/courses/" + course.ID + "/completion"
	getCompletion := func(t *testing.T) progress.CourseCompletion {
		t.Helper()
		req, rec := newAuthRequest(http.MethodGet, completionPath, token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v: %s", rec.Code, rec.Body.String())
		}
		var completion progress.CourseCompletion
		if err := json.Unmarshal(rec.Body.Bytes(), &completion); err != nil {
			t.Fatalf("decoding CourseCompletion: %v", err)
		}
		return completion
	}
	report := func(t *testing.T, lesson catalog.Lesson) {
		t.Helper()
		req, rec := newAuthRequest(http.MethodPost, "/v1/progress", token, reportBody(lesson.ID, 60, 60, false))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("report failed! code = %v: %s", rec.Code, rec.Body.String())
		}
	}

	t.Run("unknown course", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/courses/nope/completion", token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"})}, rec)
	})

	t.Run("nothing watched", func(t *testing.T) {
		completion := getCompletion(t)
		if completion.Complete {
			t.Error("failed! course complete before any lesson was watched")
		}
		if completion.RequiredLessons != 2 { // Basics + Final Exam
			t.Errorf("failed! required_lessons = %d; want 2", completion.RequiredLessons)
		}
	})

	t.Run("required done but final exam pending", func(t *testing.T) {
		report(t, lessons[0])
		completion := getCompletion(t)
		if completion.Complete {
			t.Error("failed! course complete without the final exam")
		}
		if completion.FinalExamDone {
			t.Error("failed! final_exam_done without watching it")
		}
	})

	t.Run("final exam completes the course", func(t *testing.T) {
		report(t, lessons[2])
		completion := getCompletion(t)
		if !completion.Complete {
			t.Error("failed! course not complete")
		}
		if !completion.FinalExamDone {
			t.Error("failed! final exam not marked done")
		}
	})

	t.Run("certificate was issued", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/certificates", token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v: %s", rec.Code, rec.Body.String())
		}
		var certs []certificate.Certificate
		if err := json.Unmarshal(rec.Body.Bytes(), &certs); err != nil {
			t.Fatalf("decoding certificates: %v", err)
		}
		if len(certs) != 1 {
			t.Fatalf("failed! len(certs) = %d; want 1", len(certs))
		}
		if certs[0].CourseID != course.ID {
			t.Errorf("failed! course_id = %q; want %q", certs[0].CourseID, course.ID)
		}

		req, rec = newAuthRequest(http.MethodGet, "/v1/courses/"+course.ID+"/certificate", token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v: %s", rec.Code, rec.Body.String())
		}
	})
}
