package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Skotchmaster/edu_platform/internal/models"
	"github.com/Skotchmaster/edu_platform/internal/repo"
	"github.com/Skotchmaster/edu_platform/pkg/logging"
)

var ErrValidation = errors.New("validation error")

type ClassroomStore interface {
	ListStudents(ctx context.Context) ([]models.Student, error)
	ListLessons(ctx context.Context) ([]models.Lesson, error)
	ListClassrooms(ctx context.Context, teacherID string) ([]models.Classroom, error)
	CreateAssignment(ctx context.Context, a *models.Assignment) error
	AssignmentsForStudent(ctx context.Context, studentID string) ([]models.Assignment, error)
	CreateResponse(ctx context.Context, sr *models.StudentResponse) error
	ResponsesForStudent(ctx context.Context, studentID string) ([]models.StudentResponse, error)
	ExportAssignments(ctx context.Context) ([]repo.ExportRow, error)
}

type ClassroomService struct {
	Store ClassroomStore
}

var exportHeader = []string{"student_id", "student_name", "item_id", "subject", "source", "assigned_at"}

func (s *ClassroomService) Students(ctx context.Context) ([]models.Student, error) {
	return s.Store.ListStudents(ctx)
}

func (s *ClassroomService) Lessons(ctx context.Context) ([]models.Lesson, error) {
	return s.Store.ListLessons(ctx)
}

func (s *ClassroomService) Classrooms(ctx context.Context, teacherID string) ([]models.Classroom, error) {
	return s.Store.ListClassrooms(ctx, teacherID)
}

func (s *ClassroomService) Assign(ctx context.Context, studentID, itemID string) (*models.Assignment, error) {
	l := logging.FromContext(ctx).With("svc", "classroom.assign")

	studentID, itemID = strings.TrimSpace(studentID), strings.TrimSpace(itemID)
	if studentID == "" || itemID == "" {
		return nil, fmt.Errorf("%w: student_id and item_id required", ErrValidation)
	}

	a := &models.Assignment{StudentID: studentID, ItemID: itemID}
	if err := s.Store.CreateAssignment(ctx, a); err != nil {
		l.Error("assign_failed", "status", 500, "error", err)
		return nil, err
	}
	l.Info("assigned", "student_id", studentID, "item_id", itemID, "assignment_id", a.ID)
	return a, nil
}

func (s *ClassroomService) Assignments(ctx context.Context, studentID string) ([]models.Assignment, error) {
	return s.Store.AssignmentsForStudent(ctx, studentID)
}

func (s *ClassroomService) SubmitResponse(ctx context.Context, studentID, itemID, answer string, correct bool) (*models.StudentResponse, error) {
	if strings.TrimSpace(itemID) == "" {
		return nil, fmt.Errorf("%w: item_id required", ErrValidation)
	}
	sr := &models.StudentResponse{
		StudentID: studentID,
		ItemID:    strings.TrimSpace(itemID),
		Answer:    answer,
		Correct:   correct,
	}
	if err := s.Store.CreateResponse(ctx, sr); err != nil {
		logging.FromContext(ctx).Error("response_failed", "svc", "classroom.respond", "status", 500, "error", err)
		return nil, err
	}
	return sr, nil
}

func (s *ClassroomService) Responses(ctx context.Context, studentID string) ([]models.StudentResponse, error) {
	return s.Store.ResponsesForStudent(ctx, studentID)
}

// ExportCSV writes every assignment as CSV with a header row.
func (s *ClassroomService) ExportCSV(ctx context.Context, w io.Writer) error {
	rows, err := s.Store.ExportAssignments(ctx)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.StudentID, r.StudentName, r.ItemID, r.Subject, r.Source, r.AssignedAt}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
