package models

import "time"

// Exam types recorded in a student's exam history.
const (
	ExamTypeReview = "R"
	ExamTypeUnit   = "U"
	ExamTypeFinal  = "F"
)

// StudentExam is one recorded exam attempt.
type StudentExam struct {
	StudentID string    `db:"student_id" json:"student_id"`
	CourseID  string    `db:"course" json:"course"`
	Unit      int       `db:"unit" json:"unit"`
	ExamType  string    `db:"exam_type" json:"exam_type"`
	Score     *int      `db:"exam_score" json:"exam_score,omitempty"`
	Passed    bool      `db:"passed" json:"passed"`
	ExamDate  time.Time `db:"exam_dt" json:"exam_dt"`
}

// Homework types that unlock a standard's mastery exam.
const (
	HomeworkTypeStandard = "ST"
	HomeworkTypeLegacy   = "HW"
)

// StudentHomework is one recorded homework attempt.
type StudentHomework struct {
	StudentID    string `db:"student_id" json:"student_id"`
	CourseID     string `db:"course" json:"course"`
	Unit         int    `db:"unit" json:"unit"`
	Objective    int    `db:"objective" json:"objective"`
	HomeworkType string `db:"hw_type" json:"hw_type"`
	Passed       bool   `db:"passed" json:"passed"`
}

// MasteryExam is the exam that certifies mastery of one standard.
type MasteryExam struct {
	ExamID    string `db:"exam_id" json:"exam_id"`
	CourseID  string `db:"course" json:"course"`
	Unit      int    `db:"unit" json:"unit"`
	Objective int    `db:"objective" json:"objective"`
}

// MasteryAttempt is one student attempt on a mastery exam.
type MasteryAttempt struct {
	SerialNumber int64  `db:"serial_nbr" json:"serial_nbr"`
	ExamID       string `db:"exam_id" json:"exam_id"`
	StudentID    string `db:"student_id" json:"student_id"`
	Passed       bool   `db:"passed" json:"passed"`
}

// MasteryAttemptAnswer records whether one question of a mastery attempt was answered correctly.
type MasteryAttemptAnswer struct {
	SerialNumber   int64  `db:"serial_nbr" json:"serial_nbr"`
	ExamID         string `db:"exam_id" json:"exam_id"`
	QuestionNumber int    `db:"question_nbr" json:"question_nbr"`
	Correct        bool   `db:"correct" json:"correct"`
}
