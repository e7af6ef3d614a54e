package repo

import (
	"context"
	"fmt"

	"github.com/Skotchmaster/edu_platform/internal/models"
)

type ExportRow struct {
	StudentID   string
	StudentName string
	ItemID      string
	Subject     string
	Source      string
	AssignedAt  string
}

func (r *GormRepo) ListStudents(ctx context.Context) ([]models.Student, error) {
	var out []models.Student
	if err := r.DB.WithContext(ctx).Order("student_id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return out, nil
}

func (r *GormRepo) ListLessons(ctx context.Context) ([]models.Lesson, error) {
	var out []models.Lesson
	if err := r.DB.WithContext(ctx).Order("item_id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	return out, nil
}

// ListClassrooms returns every classroom, or only those of teacherID when it is set.
func (r *GormRepo) ListClassrooms(ctx context.Context, teacherID string) ([]models.Classroom, error) {
	q := r.DB.WithContext(ctx).Order("id")
	if teacherID != "" {
		q = q.Where("teacher_id = ?", teacherID)
	}
	var out []models.Classroom
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list classrooms: %w", err)
	}
	return out, nil
}

func (r *GormRepo) CreateAssignment(ctx context.Context, a *models.Assignment) error {
	if a.AssignedAt.IsZero() {
		a.AssignedAt = r.now().UTC()
	}
	if err := r.DB.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

func (r *GormRepo) AssignmentsForStudent(ctx context.Context, studentID string) ([]models.Assignment, error) {
	var out []models.Assignment
	err := r.DB.WithContext(ctx).Where("student_id = ?", studentID).Order("id").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("assignments for %s: %w", studentID, err)
	}
	return out, nil
}

func (r *GormRepo) CreateResponse(ctx context.Context, sr *models.StudentResponse) error {
	if sr.SubmittedAt.IsZero() {
		sr.SubmittedAt = r.now().UTC()
	}
	if err := r.DB.WithContext(ctx).Create(sr).Error; err != nil {
		return fmt.Errorf("create response: %w", err)
	}
	return nil
}

func (r *GormRepo) ResponsesForStudent(ctx context.Context, studentID string) ([]models.StudentResponse, error) {
	var out []models.StudentResponse
	err := r.DB.WithContext(ctx).Where("student_id = ?", studentID).Order("id").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("responses for %s: %w", studentID, err)
	}
	return out, nil
}

// ExportAssignments joins every assignment with its student name and lesson
// metadata. Unknown students or lessons leave those columns empty.
func (r *GormRepo) ExportAssignments(ctx context.Context) ([]ExportRow, error) {
	var rows []ExportRow
	err := r.DB.WithContext(ctx).
		Table("assignments AS a").
		Select(`a.student_id AS student_id,
			COALESCE(s.name, '') AS student_name,
			a.item_id AS item_id,
			COALESCE(l.subject, '') AS subject,
			COALESCE(l.source, '') AS source,
			a.assigned_at AS assigned_at`).
		Joins("LEFT JOIN students AS s ON s.student_id = a.student_id").
		Joins("LEFT JOIN lessons AS l ON l.item_id = a.item_id").
		Order("a.id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("export assignments: %w", err)
	}
	return rows, nil
}
