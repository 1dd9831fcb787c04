package app_errors

import "errors"

var ErrNotAuthenticated = errors.New("not authenticated")
var ErrNotAuthorized = errors.New("insufficient permissions")
var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrIncorrectPassword = errors.New("incorrect password")
var ErrInvalidRole = errors.New("invalid role")
var ErrUserInactive = errors.New("user account is deactivated")
var ErrTokenNotFound = errors.New("token not found")
var ErrTokenExpired = errors.New("token expired")
var ErrCourseNotFound = errors.New("course not found")
var ErrCourseNotPublished = errors.New("course not published")
var ErrNotCourseInstructor = errors.New("you are not the course instructor")
var ErrLessonNotFound = errors.New("lesson not found")
var ErrEnrollmentNotFound = errors.New("enrollment not found")
var ErrAlreadyEnrolled = errors.New("user is already enrolled in this course")
var ErrCapacityExceeded = errors.New("course has reached the maximum number of students")
var ErrValidation = errors.New("validation error")
var ErrStoreUnavailable = errors.New("storage unavailable")
var ErrQuizNotStarted = errors.New("quiz attempt not started")
var ErrQuizNotInProgress = errors.New("quiz attempt is not in progress")
var ErrQuizIncomplete = errors.New("not all questions have been answered")
var ErrQuizNotSubmitted = errors.New("quiz attempt has not been submitted")
