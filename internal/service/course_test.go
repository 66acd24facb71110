package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SpyBeast07/lms-system/internal/domain"
	apperrors "github.com/SpyBeast07/lms-system/pkg/errors"
)

type courseMocks struct {
	courses     *mockCourseRepository
	enrollments *mockEnrollmentRepository
}

func newTestCourseService() (*CourseService, *courseMocks) {
	m := &courseMocks{
		courses:     new(mockCourseRepository),
		enrollments: new(mockEnrollmentRepository),
	}
	svc := NewCourseService(
		m.courses,
		m.enrollments,
		newTestActivityService(new(mockActivityLogRepository)),
		newTestLogger(),
	)
	return svc, m
}

func testCourse(id, schoolID string) *domain.Course {
	now := time.Now().UTC()
	return &domain.Course{
		ID:          id,
		SchoolID:    schoolID,
		Title:       "Physics 101",
		Description: "Mechanics and waves",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestCreateCourse_InActorSchool(t *testing.T) {
	ctx := context.Background()
	svc, m := newTestCourseService()

	m.courses.On("Create", ctx, mock.AnythingOfType("*domain.Course")).Return(nil)

	course, err := svc.Create(ctx, principalActor("school-1"), CourseInput{Title: "Physics 101"})

	require.NoError(t, err)
	assert.Equal(t, "school-1", course.SchoolID)
	m.courses.AssertExpectations(t)
}

func TestGetCourse_TeacherMustBeAssigned(t *testing.T) {
	ctx := context.Background()
	svc, m := newTestCourseService()

	course := testCourse("course-1", "school-1")
	m.courses.On("GetByID", ctx, "course-1").Return(course, nil)
	m.enrollments.On("IsTeacherAssigned", ctx, "teacher-1", "course-1").Return(false, nil)

	actor := Actor{ID: "teacher-1", Role: domain.RoleTeacher, BaseRole: domain.RoleTeacher, SchoolID: "school-1"}
	_, err := svc.Get(ctx, actor, "course-1")

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "FORBIDDEN", appErr.Code)
}

func TestGetCourse_EnrolledStudentSees(t *testing.T) {
	ctx := context.Background()
	svc, m := newTestCourseService()

	course := testCourse("course-1", "school-1")
	m.courses.On("GetByID", ctx, "course-1").Return(course, nil)
	m.enrollments.On("IsStudentEnrolled", ctx, "student-1", "course-1").Return(true, nil)

	actor := Actor{ID: "student-1", Role: domain.RoleStudent, BaseRole: domain.RoleStudent, SchoolID: "school-1"}
	got, err := svc.Get(ctx, actor, "course-1")

	require.NoError(t, err)
	assert.Equal(t, "course-1", got.ID)
}

func TestGetCourse_DeletedIsNotFound(t *testing.T) {
	ctx := context.Background()
	svc, m := newTestCourseService()

	course := testCourse("course-1", "school-1")
	course.IsDeleted = true
	m.courses.On("GetByID", ctx, "course-1").Return(course, nil)

	_, err := svc.Get(ctx, superAdminActor(), "course-1")

	assert.True(t, apperrors.IsNotFound(err))
}

func TestListCourses_DispatchesByRole(t *testing.T) {
	ctx := context.Background()
	svc, m := newTestCourseService()
	p := pagedParams()

	m.courses.On("ListBySchool", ctx, "school-1", p).Return([]domain.Course{}, 0, nil)
	m.courses.On("ListByTeacher", ctx, "teacher-1", p).Return([]domain.Course{}, 0, nil)
	m.courses.On("ListByStudent", ctx, "student-1", p).Return([]domain.Course{}, 0, nil)

	_, _, err := svc.List(ctx, principalActor("school-1"), "ignored", p)
	require.NoError(t, err)

	teacher := Actor{ID: "teacher-1", Role: domain.RoleTeacher, BaseRole: domain.RoleTeacher, SchoolID: "school-1"}
	_, _, err = svc.List(ctx, teacher, "", p)
	require.NoError(t, err)

	student := Actor{ID: "student-1", Role: domain.RoleStudent, BaseRole: domain.RoleStudent, SchoolID: "school-1"}
	_, _, err = svc.List(ctx, student, "", p)
	require.NoError(t, err)

	m.courses.AssertCalled(t, "ListBySchool", ctx, "school-1", p)
	m.courses.AssertCalled(t, "ListByTeacher", ctx, "teacher-1", p)
	m.courses.AssertCalled(t, "ListByStudent", ctx, "student-1", p)
}

func TestDeleteCourse_PrincipalOwnSchool(t *testing.T) {
	ctx := context.Background()
	svc, m := newTestCourseService()

	course := testCourse("course-1", "school-1")
	m.courses.On("GetByID", ctx, "course-1").Return(course, nil)
	m.courses.On("SetDeleted", ctx, "course-1", true).Return(nil)

	err := svc.Delete(ctx, principalActor("school-1"), "course-1")

	require.NoError(t, err)
	m.courses.AssertExpectations(t)
}

func TestRestoreCourse_NotDeletedConflicts(t *testing.T) {
	ctx := context.Background()
	svc, m := newTestCourseService()

	course := testCourse("course-1", "school-1")
	m.courses.On("GetByID", ctx, "course-1").Return(course, nil)

	_, err := svc.Restore(ctx, principalActor("school-1"), "course-1")

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CONFLICT", appErr.Code)
	m.courses.AssertNotCalled(t, "SetDeleted", mock.Anything, mock.Anything, mock.Anything)
}

func TestRestoreCourse_Success(t *testing.T) {
	ctx := context.Background()
	svc, m := newTestCourseService()

	course := testCourse("course-1", "school-1")
	course.IsDeleted = true
	m.courses.On("GetByID", ctx, "course-1").Return(course, nil)
	m.courses.On("SetDeleted", ctx, "course-1", false).Return(nil)

	restored, err := svc.Restore(ctx, principalActor("school-1"), "course-1")

	require.NoError(t, err)
	assert.False(t, restored.IsDeleted)
	m.courses.AssertExpectations(t)
}

func TestUpdateCourse_DifferentSchoolForbidden(t *testing.T) {
	ctx := context.Background()
	svc, m := newTestCourseService()

	course := testCourse("course-1", "school-2")
	m.courses.On("GetByID", ctx, "course-1").Return(course, nil)

	_, err := svc.Update(ctx, principalActor("school-1"), "course-1", CourseInput{Title: "Renamed"})

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "FORBIDDEN", appErr.Code)
	m.courses.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}
