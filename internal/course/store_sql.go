package course

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"
)

var _ Store = (*SQLStore)(nil)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
	now    func() time.Time
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver, now: time.Now}
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func exists(ctx context.Context, q queryer, table string, id int64) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM `+table+` WHERE id=$1`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

func affectedOrNotFound(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ---- courses ----

func (s *SQLStore) CreateCourse(ctx context.Context, in NewCourse) (Course, error) {
	in, err := normalizeNewCourse(in)
	if err != nil {
		return Course{}, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Course{}, err
	}
	defer tx.Rollback()

	ts := s.now().Unix()
	var id int64
	if err := tx.QueryRowContext(ctx, `INSERT INTO courses (title,lesson_count,has_certification,created_at,updated_at)
		VALUES ($1,$2,$3,$4,$5) RETURNING id`,
		in.Title, in.LessonCount, in.HasCertification, ts, ts).Scan(&id); err != nil {
		return Course{}, err
	}
	for i := 1; i <= in.LessonCount; i++ {
		if _, err := tx.ExecContext(ctx, `INSERT INTO lessons (course_id,position,title) VALUES ($1,$2,$3)`,
			id, i, defaultLessonTitle(i)); err != nil {
			return Course{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return Course{}, err
	}
	return s.GetTree(ctx, id)
}

func (s *SQLStore) ListCourses(ctx context.Context) ([]CourseSummary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,title,lesson_count,has_certification,created_at,updated_at
		FROM courses ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []CourseSummary{}
	for rows.Next() {
		var c CourseSummary
		if err := rows.Scan(&c.ID, &c.Title, &c.LessonCount, &c.HasCertification, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetTree loads the subtree level by level; each result set is drained
// before the next query so a single-connection pool never blocks.
func (s *SQLStore) GetTree(ctx context.Context, id int64) (Course, error) {
	var c Course
	err := s.db.QueryRowContext(ctx, `SELECT id,title,lesson_count,has_certification FROM courses WHERE id=$1`, id).
		Scan(&c.ID, &c.Title, &c.LessonCount, &c.HasCertification)
	if err != nil {
		return Course{}, notFound(err)
	}

	lessons, err := s.lessonsOf(ctx, id)
	if err != nil {
		return Course{}, err
	}
	lessonPos := make(map[int64]int, len(lessons))
	for i, l := range lessons {
		lessonPos[l.ID] = i
	}

	chapters, err := s.chaptersOf(ctx, id)
	if err != nil {
		return Course{}, err
	}
	for _, ch := range chapters {
		i := lessonPos[ch.LessonID]
		lessons[i].Chapters = append(lessons[i].Chapters, ch)
	}

	quizzes, err := s.quizzesOf(ctx, `SELECT q.id,q.lesson_id,q.title FROM quizzes q
		JOIN lessons l ON l.id=q.lesson_id WHERE l.course_id=$1`, id)
	if err != nil {
		return Course{}, err
	}
	for i := range quizzes {
		qz := quizzes[i]
		lessons[lessonPos[qz.LessonID]].Quiz = &qz
	}

	c.Lessons = lessons
	return c, nil
}

func (s *SQLStore) lessonsOf(ctx context.Context, courseID int64) ([]Lesson, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,course_id,position,title FROM lessons
		WHERE course_id=$1 ORDER BY position, id`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Lesson
	for rows.Next() {
		var l Lesson
		if err := rows.Scan(&l.ID, &l.CourseID, &l.Index, &l.Title); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *SQLStore) chaptersOf(ctx context.Context, courseID int64) ([]Chapter, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT ch.id,ch.lesson_id,ch.position,ch.title,ch.html_content
		FROM chapters ch JOIN lessons l ON l.id=ch.lesson_id
		WHERE l.course_id=$1 ORDER BY ch.position, ch.id`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Chapter
	for rows.Next() {
		var ch Chapter
		var body string
		if err := rows.Scan(&ch.ID, &ch.LessonID, &ch.Index, &ch.Title, &body); err != nil {
			return nil, err
		}
		ch.HTMLContent = Fragment(body)
		out = append(out, ch)
	}
	return out, rows.Err()
}

// quizzesOf loads quizzes selected by query, then their questions and options.
func (s *SQLStore) quizzesOf(ctx context.Context, query string, args ...any) ([]Quiz, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	var quizzes []Quiz
	for rows.Next() {
		var qz Quiz
		if err := rows.Scan(&qz.ID, &qz.LessonID, &qz.Title); err != nil {
			rows.Close()
			return nil, err
		}
		quizzes = append(quizzes, qz)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range quizzes {
		qs, err := s.questionsOf(ctx, quizzes[i].ID)
		if err != nil {
			return nil, err
		}
		quizzes[i].Questions = qs
	}
	return quizzes, nil
}

func (s *SQLStore) questionsOf(ctx context.Context, quizID int64) ([]Question, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,quiz_id,position,text,type FROM questions
		WHERE quiz_id=$1 ORDER BY position, id`, quizID)
	if err != nil {
		return nil, err
	}
	var out []Question
	for rows.Next() {
		var q Question
		var typ string
		if err := rows.Scan(&q.ID, &q.QuizID, &q.Index, &q.Text, &typ); err != nil {
			rows.Close()
			return nil, err
		}
		q.Type = QuestionType(typ)
		out = append(out, q)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	orows, err := s.db.QueryContext(ctx, `SELECT o.id,o.question_id,o.text,o.is_correct
		FROM answer_options o JOIN questions q ON q.id=o.question_id
		WHERE q.quiz_id=$1 ORDER BY o.id`, quizID)
	if err != nil {
		return nil, err
	}
	defer orows.Close()
	pos := make(map[int64]int, len(out))
	for i, q := range out {
		pos[q.ID] = i
	}
	for orows.Next() {
		var o Option
		if err := orows.Scan(&o.ID, &o.QuestionID, &o.Text, &o.IsCorrect); err != nil {
			return nil, err
		}
		i := pos[o.QuestionID]
		out[i].Options = append(out[i].Options, o)
	}
	return out, orows.Err()
}

func (s *SQLStore) UpdateCourse(ctx context.Context, id int64, p CoursePatch) (Course, error) {
	title, err := requiredPatch(p.Title, "title")
	if err != nil {
		return Course{}, err
	}
	sets, args := []string{}, []any{}
	if title != nil {
		args = append(args, *title)
		sets = append(sets, "title="+placeholder(len(args)))
	}
	if p.HasCertification != nil {
		args = append(args, *p.HasCertification)
		sets = append(sets, "has_certification="+placeholder(len(args)))
	}
	if len(sets) > 0 {
		args = append(args, s.now().Unix())
		sets = append(sets, "updated_at="+placeholder(len(args)))
		args = append(args, id)
		q := `UPDATE courses SET ` + strings.Join(sets, ", ") + ` WHERE id=` + placeholder(len(args))
		if err := affectedOrNotFound(s.db.ExecContext(ctx, q, args...)); err != nil {
			return Course{}, err
		}
	}
	return s.GetTree(ctx, id)
}

func (s *SQLStore) DeleteCourse(ctx context.Context, id int64) error {
	return affectedOrNotFound(s.db.ExecContext(ctx, `DELETE FROM courses WHERE id=$1`, id))
}

// ---- lessons / chapters ----

func (s *SQLStore) UpdateLesson(ctx context.Context, id int64, p LessonPatch) (Lesson, error) {
	title, err := requiredPatch(p.Title, "lesson title")
	if err != nil {
		return Lesson{}, err
	}
	if title != nil {
		if err := affectedOrNotFound(s.db.ExecContext(ctx, `UPDATE lessons SET title=$1 WHERE id=$2`, *title, id)); err != nil {
			return Lesson{}, err
		}
	}
	var l Lesson
	err = s.db.QueryRowContext(ctx, `SELECT id,course_id,position,title FROM lessons WHERE id=$1`, id).
		Scan(&l.ID, &l.CourseID, &l.Index, &l.Title)
	return l, notFound(err)
}

func (s *SQLStore) AddChapter(ctx context.Context, in NewChapter) (Chapter, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Chapter{}, err
	}
	defer tx.Rollback()
	ok, err := exists(ctx, tx, "lessons", in.LessonID)
	if err != nil {
		return Chapter{}, err
	}
	if !ok {
		return Chapter{}, invalid("lesson not found")
	}
	ch := Chapter{LessonID: in.LessonID, Title: strings.TrimSpace(in.Title), HTMLContent: in.HTMLContent}
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(position),0)+1 FROM chapters WHERE lesson_id=$1`, in.LessonID).
		Scan(&ch.Index); err != nil {
		return Chapter{}, err
	}
	if err := tx.QueryRowContext(ctx, `INSERT INTO chapters (lesson_id,position,title,html_content)
		VALUES ($1,$2,$3,$4) RETURNING id`, ch.LessonID, ch.Index, ch.Title, string(ch.HTMLContent)).Scan(&ch.ID); err != nil {
		return Chapter{}, err
	}
	return ch, tx.Commit()
}

func (s *SQLStore) GetChapter(ctx context.Context, id int64) (Chapter, error) {
	var ch Chapter
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT id,lesson_id,position,title,html_content FROM chapters WHERE id=$1`, id).
		Scan(&ch.ID, &ch.LessonID, &ch.Index, &ch.Title, &body)
	if err != nil {
		return Chapter{}, notFound(err)
	}
	ch.HTMLContent = Fragment(body)
	return ch, nil
}

func (s *SQLStore) UpdateChapter(ctx context.Context, id int64, p ChapterPatch) (Chapter, error) {
	title, err := requiredPatch(p.Title, "chapter title")
	if err != nil {
		return Chapter{}, err
	}
	sets, args := []string{}, []any{}
	if title != nil {
		args = append(args, *title)
		sets = append(sets, "title="+placeholder(len(args)))
	}
	if p.HTMLContent != nil {
		args = append(args, string(*p.HTMLContent))
		sets = append(sets, "html_content="+placeholder(len(args)))
	}
	if len(sets) > 0 {
		args = append(args, id)
		q := `UPDATE chapters SET ` + strings.Join(sets, ", ") + ` WHERE id=` + placeholder(len(args))
		if err := affectedOrNotFound(s.db.ExecContext(ctx, q, args...)); err != nil {
			return Chapter{}, err
		}
	}
	return s.GetChapter(ctx, id)
}

func (s *SQLStore) DeleteChapter(ctx context.Context, id int64) error {
	return affectedOrNotFound(s.db.ExecContext(ctx, `DELETE FROM chapters WHERE id=$1`, id))
}

// ---- quizzes ----

func (s *SQLStore) GetOrCreateQuiz(ctx context.Context, lessonID int64, title string) (Quiz, error) {
	ok, err := exists(ctx, s.db, "lessons", lessonID)
	if err != nil {
		return Quiz{}, err
	}
	if !ok {
		return Quiz{}, invalid("lesson not found")
	}
	if qz, err := s.QuizByLesson(ctx, lessonID); err != nil || qz != nil {
		if err != nil {
			return Quiz{}, err
		}
		return *qz, nil
	}
	qz := Quiz{LessonID: lessonID, Title: quizTitle(title)}
	err = s.db.QueryRowContext(ctx, `INSERT INTO quizzes (lesson_id,title) VALUES ($1,$2) RETURNING id`,
		qz.LessonID, qz.Title).Scan(&qz.ID)
	return qz, err
}

func (s *SQLStore) QuizByLesson(ctx context.Context, lessonID int64) (*Quiz, error) {
	qs, err := s.quizzesOf(ctx, `SELECT id,lesson_id,title FROM quizzes WHERE lesson_id=$1`, lessonID)
	if err != nil || len(qs) == 0 {
		return nil, err
	}
	return &qs[0], nil
}

func (s *SQLStore) GetQuiz(ctx context.Context, id int64) (Quiz, error) {
	qs, err := s.quizzesOf(ctx, `SELECT id,lesson_id,title FROM quizzes WHERE id=$1`, id)
	if err != nil {
		return Quiz{}, err
	}
	if len(qs) == 0 {
		return Quiz{}, ErrNotFound
	}
	return qs[0], nil
}

// ---- questions / options ----

func (s *SQLStore) AddQuestion(ctx context.Context, in NewQuestion) (Question, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Question{}, err
	}
	defer tx.Rollback()
	ok, err := exists(ctx, tx, "quizzes", in.QuizID)
	if err != nil {
		return Question{}, err
	}
	if !ok {
		return Question{}, invalid("quiz not found")
	}
	in, err = normalizeNewQuestion(in)
	if err != nil {
		return Question{}, err
	}
	q := Question{QuizID: in.QuizID, Text: in.Text, Type: in.Type}
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(position),0)+1 FROM questions WHERE quiz_id=$1`, in.QuizID).
		Scan(&q.Index); err != nil {
		return Question{}, err
	}
	if err := tx.QueryRowContext(ctx, `INSERT INTO questions (quiz_id,position,text,type)
		VALUES ($1,$2,$3,$4) RETURNING id`, q.QuizID, q.Index, q.Text, string(q.Type)).Scan(&q.ID); err != nil {
		return Question{}, err
	}
	return q, tx.Commit()
}

func (s *SQLStore) UpdateQuestion(ctx context.Context, id int64, p QuestionPatch) (Question, error) {
	p, err := normalizeQuestionPatch(p)
	if err != nil {
		return Question{}, err
	}
	sets, args := []string{}, []any{}
	if p.Text != nil {
		args = append(args, *p.Text)
		sets = append(sets, "text="+placeholder(len(args)))
	}
	if p.Type != nil {
		args = append(args, string(*p.Type))
		sets = append(sets, "type="+placeholder(len(args)))
	}
	if len(sets) > 0 {
		args = append(args, id)
		q := `UPDATE questions SET ` + strings.Join(sets, ", ") + ` WHERE id=` + placeholder(len(args))
		if err := affectedOrNotFound(s.db.ExecContext(ctx, q, args...)); err != nil {
			return Question{}, err
		}
	}
	var q Question
	var typ string
	err = s.db.QueryRowContext(ctx, `SELECT id,quiz_id,position,text,type FROM questions WHERE id=$1`, id).
		Scan(&q.ID, &q.QuizID, &q.Index, &q.Text, &typ)
	q.Type = QuestionType(typ)
	return q, notFound(err)
}

func (s *SQLStore) DeleteQuestion(ctx context.Context, id int64) error {
	return affectedOrNotFound(s.db.ExecContext(ctx, `DELETE FROM questions WHERE id=$1`, id))
}

func (s *SQLStore) AddOption(ctx context.Context, in NewOption) (Option, error) {
	ok, err := exists(ctx, s.db, "questions", in.QuestionID)
	if err != nil {
		return Option{}, err
	}
	if !ok {
		return Option{}, invalid("question not found")
	}
	in, err = normalizeNewOption(in)
	if err != nil {
		return Option{}, err
	}
	o := Option{QuestionID: in.QuestionID, Text: in.Text, IsCorrect: in.IsCorrect}
	err = s.db.QueryRowContext(ctx, `INSERT INTO answer_options (question_id,text,is_correct)
		VALUES ($1,$2,$3) RETURNING id`, o.QuestionID, o.Text, o.IsCorrect).Scan(&o.ID)
	return o, err
}

func (s *SQLStore) UpdateOption(ctx context.Context, id int64, p OptionPatch) (Option, error) {
	text, err := requiredPatch(p.Text, "option text")
	if err != nil {
		return Option{}, err
	}
	sets, args := []string{}, []any{}
	if text != nil {
		args = append(args, *text)
		sets = append(sets, "text="+placeholder(len(args)))
	}
	if p.IsCorrect != nil {
		args = append(args, *p.IsCorrect)
		sets = append(sets, "is_correct="+placeholder(len(args)))
	}
	if len(sets) > 0 {
		args = append(args, id)
		q := `UPDATE answer_options SET ` + strings.Join(sets, ", ") + ` WHERE id=` + placeholder(len(args))
		if err := affectedOrNotFound(s.db.ExecContext(ctx, q, args...)); err != nil {
			return Option{}, err
		}
	}
	var o Option
	err = s.db.QueryRowContext(ctx, `SELECT id,question_id,text,is_correct FROM answer_options WHERE id=$1`, id).
		Scan(&o.ID, &o.QuestionID, &o.Text, &o.IsCorrect)
	return o, notFound(err)
}

func (s *SQLStore) DeleteOption(ctx context.Context, id int64) error {
	return affectedOrNotFound(s.db.ExecContext(ctx, `DELETE FROM answer_options WHERE id=$1`, id))
}

func placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}
