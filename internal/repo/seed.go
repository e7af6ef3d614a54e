package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/edu_platform/internal/models"
)

func seedStudents() []models.Student {
	return []models.Student{
		{StudentID: "s1", Name: "Amina", Grade: 4},
		{StudentID: "s2", Name: "Chinedu", Grade: 4},
		{StudentID: "s3", Name: "Ngozi", Grade: 4},
	}
}

func seedClassrooms() []models.Classroom {
	return []models.Classroom{
		{Name: "Class 4A", TeacherID: "t1"},
		{Name: "Class 4B"},
	}
}

func seedLessons() []models.Lesson {
	return []models.Lesson{
		{ItemID: "g4-num-001", Subject: "numeracy", Prompt: "What is 7 x 8?", Source: "numeracy"},
		{ItemID: "g4-num-002", Subject: "numeracy", Prompt: "Round 347 to the nearest ten.", Source: "numeracy"},
		{ItemID: "g4-lit-001", Subject: "literacy", Prompt: "Find the verb: The goat ran home.", Source: "literacy"},
		{ItemID: "g4-lit-002", Subject: "literacy", Prompt: "Write the plural of 'child'.", Source: "literacy"},
	}
}

// Seed fills each classroom table with sample rows when it is empty.
func (r *GormRepo) Seed(ctx context.Context) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := seedIfEmpty(tx, &models.Student{}, seedStudents()); err != nil {
			return fmt.Errorf("seed students: %w", err)
		}
		if err := seedIfEmpty(tx, &models.Classroom{}, seedClassrooms()); err != nil {
			return fmt.Errorf("seed classrooms: %w", err)
		}
		if err := seedIfEmpty(tx, &models.Lesson{}, seedLessons()); err != nil {
			return fmt.Errorf("seed lessons: %w", err)
		}
		return nil
	})
}

func seedIfEmpty[T any](tx *gorm.DB, model any, rows []T) error {
	var n int64
	if err := tx.Model(model).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	return tx.Create(&rows).Error
}
