package main

import (
	"context"
	"fmt"
)

// courseStatus prints the learner's completion standing in the course.
func (cli *commandLine) courseStatus(userID, courseID string) error {
	ctx := context.Background()

	course, err := cli.catalogSvc.GetCourse(ctx, courseID)
	if err != nil {
		return err
	}
	completion, err := cli.progressSvc.CourseCompletion(ctx, userID, courseID)
	if err != nil {
		return err
	}

	fmt.Printf("Course: %s (%s)\n", course.Title, course.ID)
	fmt.Printf("  completed lessons: %d\n", completion.CompletedLessons)
	fmt.Printf("  required lessons:  %d\n", completion.RequiredLessons)
	if completion.FinalExamLessonID != "" {
		fmt.Printf("  final exam done:   %t\n", completion.FinalExamDone)
	}
	fmt.Printf("  complete:          %t\n", completion.Complete)
	return nil
}
