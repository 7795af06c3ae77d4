package academic

import (
	"context"
	"encoding/json"
	"time"
)

const statsCacheTTL = time.Minute

type (
	// AdminStats is the administrator dashboard summary.
	AdminStats struct {
		TotalStudents     int `json:"total_estudiantes"`
		TotalTeachers     int `json:"total_docentes"`
		TotalSubjects     int `json:"total_materias"`
		TotalMentions     int `json:"total_menciones"`
		TotalEnrollments  int `json:"total_inscripciones"`
		ActiveEnrollments int `json:"inscripciones_activas"`
	}

	// TeacherStats summarizes a teacher's dashboard.
	TeacherStats struct {
		Subjects      int `json:"materias"`
		Students      int `json:"estudiantes"`
		GradedCount   int `json:"calificadas"`
		PendingGrades int `json:"pendientes"`
	}

	// StudentStats summarizes a student's dashboard.
	StudentStats struct {
		EnrolledSubjects  int     `json:"materias_inscritas"`
		CompletedSubjects int     `json:"materias_completadas"`
		AverageScore      float64 `json:"promedio"`
	}
)

func (svc *Service) invalidateStats(ctx context.Context, keys ...string) {
	if svc.cache != nil {
		svc.cache.Delete(ctx, append(keys, "stats:admin")...)
	}
}

// enrollmentStatsKeys lists the role-scoped cache keys a write touching e
// affects: the student's dashboard and, when the subject has a teacher
// assigned, that teacher's dashboard.
func (svc *Service) enrollmentStatsKeys(ctx context.Context, e Enrollment) []string {
	keys := []string{"stats:student:" + e.StudentID}
	if subj, err := svc.repo.GetSubjectByID(ctx, e.SubjectID); err == nil && subj.TeacherID != "" {
		keys = append(keys, "stats:teacher:"+subj.TeacherID)
	}
	return keys
}

// cachedStats fills dst from the cache, or computes and stores it.
func (svc *Service) cachedStats(ctx context.Context, key string, dst interface{}, compute func() error) error {
	if svc.cache != nil {
		if raw, ok := svc.cache.Get(ctx, key); ok {
			if err := json.Unmarshal(raw, dst); err == nil {
				return nil
			}
			// a corrupt entry is recomputed below
		}
	}
	if err := compute(); err != nil {
		return err
	}
	if svc.cache != nil {
		if raw, err := json.Marshal(dst); err == nil {
			svc.cache.Set(ctx, key, raw, statsCacheTTL)
		}
	}
	return nil
}

func (svc *Service) AdminStats(ctx context.Context) (AdminStats, error) {
	var stats AdminStats
	err := svc.cachedStats(ctx, "stats:admin", &stats, func() error {
		students, err := svc.repo.QueryAllStudents(ctx)
		if err != nil {
			return err
		}
		teachers, err := svc.repo.QueryAllTeachers(ctx)
		if err != nil {
			return err
		}
		subjects, err := svc.repo.QueryAllSubjects(ctx)
		if err != nil {
			return err
		}
		mentions, err := svc.repo.QueryAllMentions(ctx)
		if err != nil {
			return err
		}
		enrollments, err := svc.repo.QueryAllEnrollments(ctx)
		if err != nil {
			return err
		}

		stats = AdminStats{
			TotalStudents:    len(students),
			TotalTeachers:    len(teachers),
			TotalSubjects:    len(subjects),
			TotalMentions:    len(mentions),
			TotalEnrollments: len(enrollments),
		}
		for _, e := range enrollments {
			if e.IsActive() {
				stats.ActiveEnrollments++
			}
		}
		return nil
	})
	return stats, err
}

func (svc *Service) TeacherStats(ctx context.Context, teacherID string) (TeacherStats, error) {
	var stats TeacherStats
	err := svc.cachedStats(ctx, "stats:teacher:"+teacherID, &stats, func() error {
		subjects, err := svc.repo.QuerySubjectsByTeacher(ctx, teacherID)
		if err != nil {
			return err
		}
		stats.Subjects = len(subjects)

		seen := make(map[string]bool)
		for _, subj := range subjects {
			enrollments, err := svc.repo.QueryEnrollmentsBySubject(ctx, subj.ID)
			if err != nil {
				return err
			}
			for _, e := range enrollments {
				if !seen[e.StudentID] {
					seen[e.StudentID] = true
					stats.Students++
				}
				if !e.IsActive() {
					continue
				}
				grades, err := svc.repo.QueryGradesByEnrollment(ctx, e.ID)
				if err != nil {
					return err
				}
				if len(grades) > 0 {
					stats.GradedCount++
				} else {
					stats.PendingGrades++
				}
			}
		}
		return nil
	})
	return stats, err
}

func (svc *Service) StudentStats(ctx context.Context, studentID string) (StudentStats, error) {
	var stats StudentStats
	err := svc.cachedStats(ctx, "stats:student:"+studentID, &stats, func() error {
		enrollments, err := svc.repo.QueryEnrollmentsByStudent(ctx, studentID)
		if err != nil {
			return err
		}

		var scoreSum float64
		var scoreCount int
		for _, e := range enrollments {
			switch e.Status {
			case EnrollmentActive:
				stats.EnrolledSubjects++
			case EnrollmentCompleted:
				stats.CompletedSubjects++
			}
			grades, err := svc.repo.QueryGradesByEnrollment(ctx, e.ID)
			if err != nil {
				return err
			}
			for _, g := range grades {
				scoreSum += g.Score
				scoreCount++
			}
		}
		if scoreCount > 0 {
			stats.AverageScore = scoreSum / float64(scoreCount)
		}
		return nil
	})
	return stats, err
}
