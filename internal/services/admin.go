package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/yungbote/examgenius-backend/internal/data/repos"
	types "github.com/yungbote/examgenius-backend/internal/domain"
	"github.com/yungbote/examgenius-backend/internal/domain/catalog"
	"github.com/yungbote/examgenius-backend/internal/pkg/apierr"
	"github.com/yungbote/examgenius-backend/internal/pkg/dbctx"
	"github.com/yungbote/examgenius-backend/internal/pkg/logger"
	"github.com/yungbote/examgenius-backend/internal/utils"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	userStatsBatchSize   = 50
	userStatsConcurrency = 4
	maxUploadQuestions   = 1000
)

// QuestionUpload is one question of an admin upload or a seed file.
type QuestionUpload struct {
	Topic            string            `json:"topic" yaml:"topic"`
	QuestionText     string            `json:"question_text" yaml:"question_text"`
	Options          map[string]string `json:"options" yaml:"options"`
	CorrectOption    string            `json:"correct_option" yaml:"correct_option"`
	NegativeMark     *float64          `json:"negative_mark,omitempty" yaml:"negative_mark,omitempty"`
	TimeLimitSeconds *int              `json:"time_limit_seconds,omitempty" yaml:"time_limit_seconds,omitempty"`
}

type UploadedQuestion struct {
	ID           uuid.UUID `json:"id"`
	Topic        string    `json:"topic"`
	QuestionText string    `json:"question_text"`
}

type QuestionPage struct {
	Questions []*types.Question `json:"questions"`
	Total     int64             `json:"total"`
	Limit     int               `json:"limit"`
	Offset    int               `json:"offset"`
}

type SectionInput struct {
	Name               string `json:"name"`
	Description        string `json:"description"`
	DefaultTimeMinutes int    `json:"default_time_minutes"`
}

type TestSectionInput struct {
	SectionID     uuid.UUID `json:"section_id"`
	TimeMinutes   int       `json:"time_minutes"`
	SequenceOrder int       `json:"sequence_order"`
}

type TestQuestionInput struct {
	QuestionID    uuid.UUID  `json:"question_id"`
	SequenceOrder int        `json:"sequence_order"`
	SectionID     *uuid.UUID `json:"section_id,omitempty"`
}

type CreateTestInput struct {
	Title           string              `json:"title"`
	Description     string              `json:"description"`
	DurationMinutes int                 `json:"duration_minutes"`
	Sections        []TestSectionInput  `json:"sections"`
	Questions       []TestQuestionInput `json:"questions"`
}

type CreatedTest struct {
	TestID         uuid.UUID `json:"test_id"`
	Title          string    `json:"title"`
	QuestionsCount int       `json:"questions_count"`
	SectionsCount  int       `json:"sections_count"`
}

type UserWithStats struct {
	*types.User
	TotalAttempts     int64    `json:"total_attempts"`
	CompletedAttempts int64    `json:"completed_attempts"`
	AverageScore      *float64 `json:"average_score"`
	HighestScore      *float64 `json:"highest_score"`
	TotalCorrect      int64    `json:"total_correct"`
	TotalIncorrect    int64    `json:"total_incorrect"`
}

type UserPage struct {
	Users  []UserWithStats `json:"users"`
	Total  int64           `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

type UserReport struct {
	User             *types.User              `json:"user"`
	Attempts         []repos.AttemptMarks     `json:"attempts"`
	TopicPerformance []repos.TopicPerformance `json:"topic_performance"`
}

type AdminService interface {
	UploadQuestions(ctx context.Context, items []QuestionUpload) ([]UploadedQuestion, error)
	ListQuestions(ctx context.Context, topicID *uuid.UUID, limit, offset int) (*QuestionPage, error)
	ListTopics(ctx context.Context) ([]repos.TopicWithCount, error)
	CreateSection(ctx context.Context, in SectionInput) (*types.Section, error)
	ListSections(ctx context.Context) ([]*types.Section, error)
	CreateTest(ctx context.Context, in CreateTestInput) (*CreatedTest, error)
	SetTestActive(ctx context.Context, testID uuid.UUID, active bool) (*types.Test, error)
	ListUsers(ctx context.Context, limit, offset int) (*UserPage, error)
	UserReports(ctx context.Context, userID uuid.UUID) (*UserReport, error)
}

type adminService struct {
	db           *gorm.DB
	log          *logger.Logger
	userRepo     repos.UserRepo
	topicRepo    repos.TopicRepo
	questionRepo repos.QuestionRepo
	sectionRepo  repos.SectionRepo
	testRepo     repos.TestRepo
	attemptRepo  repos.AttemptRepo
	answerRepo   repos.AnswerRepo
	catalog      CatalogService
}

func NewAdminService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	topicRepo repos.TopicRepo,
	questionRepo repos.QuestionRepo,
	sectionRepo repos.SectionRepo,
	testRepo repos.TestRepo,
	attemptRepo repos.AttemptRepo,
	answerRepo repos.AnswerRepo,
	catalogService CatalogService,
) AdminService {
	return &adminService{
		db:           db,
		log:          log.With("service", "AdminService"),
		userRepo:     userRepo,
		topicRepo:    topicRepo,
		questionRepo: questionRepo,
		sectionRepo:  sectionRepo,
		testRepo:     testRepo,
		attemptRepo:  attemptRepo,
		answerRepo:   answerRepo,
		catalog:      catalogService,
	}
}

// validateUpload checks every record before anything is written.
func validateUpload(items []QuestionUpload) ([]*types.Question, []string, error) {
	if len(items) == 0 {
		return nil, nil, apierr.Validation("request body must be a non-empty array of questions")
	}
	if len(items) > maxUploadQuestions {
		return nil, nil, apierr.Validation("at most %d questions may be uploaded at once", maxUploadQuestions)
	}
	questions := make([]*types.Question, 0, len(items))
	topics := make([]string, 0, len(items))
	for i, it := range items {
		topic := utils.ParseInputString(it.Topic)
		text := utils.ParseInputString(it.QuestionText)
		correct := strings.ToUpper(utils.ParseInputString(it.CorrectOption))
		if topic == "" || text == "" || len(it.Options) == 0 || correct == "" {
			return nil, nil, apierr.Validation("question %d: missing required fields: topic, question_text, options, correct_option", i+1)
		}
		if !catalog.ValidLetter(correct) {
			return nil, nil, apierr.Validation("question %d: correct_option must be one of A, B, C or D", i+1)
		}
		var opts types.Options
		for key, val := range it.Options {
			letter := strings.ToUpper(strings.TrimSpace(key))
			if !catalog.ValidLetter(letter) {
				return nil, nil, apierr.Validation("question %d: unexpected option key %q", i+1, key)
			}
			opts.Set(letter, strings.TrimSpace(val))
		}
		if !opts.Complete() {
			return nil, nil, apierr.Validation("question %d: options A, B, C and D are all required", i+1)
		}
		// zero keeps the default, as unset does
		neg := catalog.DefaultNegativeMark
		if it.NegativeMark != nil {
			if *it.NegativeMark < 0 {
				return nil, nil, apierr.Validation("question %d: negative_mark must not be negative", i+1)
			}
			if *it.NegativeMark > 0 {
				neg = *it.NegativeMark
			}
		}
		limit := catalog.DefaultTimeLimitSeconds
		if it.TimeLimitSeconds != nil {
			if *it.TimeLimitSeconds < 0 {
				return nil, nil, apierr.Validation("question %d: time_limit_seconds must not be negative", i+1)
			}
			if *it.TimeLimitSeconds > 0 {
				limit = *it.TimeLimitSeconds
			}
		}
		questions = append(questions, &types.Question{
			QuestionText:     text,
			Options:          datatypes.NewJSONType(opts),
			CorrectOption:    correct,
			NegativeMark:     neg,
			TimeLimitSeconds: limit,
		})
		topics = append(topics, topic)
	}
	return questions, topics, nil
}

func (s *adminService) UploadQuestions(ctx context.Context, items []QuestionUpload) ([]UploadedQuestion, error) {
	questions, topics, err := validateUpload(items)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.WithTx(ctx, tx)
		topicIDs := map[string]uuid.UUID{}
		for i, name := range topics {
			id, ok := topicIDs[name]
			if !ok {
				t, err := s.topicRepo.GetOrCreate(dbc, name, fmt.Sprintf("Questions related to %s", name))
				if err != nil {
					return err
				}
				id = t.ID
				topicIDs[name] = id
			}
			questions[i].TopicID = id
		}
		return s.questionRepo.CreateMany(dbc, questions)
	})
	if err != nil {
		return nil, apierr.FromDB("upload questions", err, "")
	}

	out := make([]UploadedQuestion, 0, len(questions))
	for i, q := range questions {
		out = append(out, UploadedQuestion{ID: q.ID, Topic: topics[i], QuestionText: q.QuestionText})
	}
	s.log.Info("Questions uploaded", "count", len(out), "topics", len(uniqueStrings(topics)))
	return out, nil
}

func uniqueStrings(in []string) map[string]struct{} {
	out := make(map[string]struct{}, len(in))
	for _, s := range in {
		out[s] = struct{}{}
	}
	return out
}

func (s *adminService) ListQuestions(ctx context.Context, topicID *uuid.UUID, limit, offset int) (*QuestionPage, error) {
	limit, offset = pageBounds(limit, offset)
	rows, total, err := s.questionRepo.List(dbctx.New(ctx), topicID, limit, offset)
	if err != nil {
		return nil, apierr.FromDB("list questions", err, "")
	}
	if rows == nil {
		rows = []*types.Question{}
	}
	return &QuestionPage{Questions: rows, Total: total, Limit: limit, Offset: offset}, nil
}

func (s *adminService) ListTopics(ctx context.Context) ([]repos.TopicWithCount, error) {
	topics, err := s.topicRepo.ListWithCounts(dbctx.New(ctx))
	if err != nil {
		return nil, apierr.FromDB("list topics", err, "")
	}
	if topics == nil {
		topics = []repos.TopicWithCount{}
	}
	return topics, nil
}

func (s *adminService) CreateSection(ctx context.Context, in SectionInput) (*types.Section, error) {
	name := utils.ParseInputString(in.Name)
	if name == "" {
		return nil, apierr.Validation("section name is required")
	}
	minutes := in.DefaultTimeMinutes
	if minutes <= 0 {
		minutes = catalog.DefaultSectionTimeMinutes
	}
	sec := &types.Section{
		Name:               name,
		Description:        utils.ParseInputString(in.Description),
		DefaultTimeMinutes: minutes,
	}
	if err := s.sectionRepo.Create(dbctx.New(ctx), sec); err != nil {
		return nil, apierr.FromDB("create section", err, "")
	}
	return sec, nil
}

func (s *adminService) ListSections(ctx context.Context) ([]*types.Section, error) {
	rows, err := s.sectionRepo.List(dbctx.New(ctx))
	if err != nil {
		return nil, apierr.FromDB("list sections", err, "")
	}
	if rows == nil {
		rows = []*types.Section{}
	}
	return rows, nil
}

func (s *adminService) CreateTest(ctx context.Context, in CreateTestInput) (*CreatedTest, error) {
	uid, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	title := utils.ParseInputString(in.Title)
	if title == "" || len(in.Questions) == 0 {
		return nil, apierr.Validation("test title and questions are required")
	}
	duration := in.DurationMinutes
	if duration <= 0 {
		duration = catalog.DefaultTestDuration
	}

	questionIDs := make([]uuid.UUID, 0, len(in.Questions))
	seenQ := map[uuid.UUID]bool{}
	for _, q := range in.Questions {
		if q.QuestionID == uuid.Nil {
			return nil, apierr.Validation("every question needs a question_id")
		}
		if seenQ[q.QuestionID] {
			return nil, apierr.Validation("question %s listed twice", q.QuestionID)
		}
		seenQ[q.QuestionID] = true
		questionIDs = append(questionIDs, q.QuestionID)
	}
	sectionIDs := make([]uuid.UUID, 0, len(in.Sections))
	seenS := map[uuid.UUID]bool{}
	for _, sec := range in.Sections {
		if sec.SectionID == uuid.Nil || seenS[sec.SectionID] {
			return nil, apierr.Validation("sections must reference distinct section ids")
		}
		seenS[sec.SectionID] = true
		sectionIDs = append(sectionIDs, sec.SectionID)
	}
	for _, q := range in.Questions {
		if q.SectionID != nil && !seenS[*q.SectionID] {
			return nil, apierr.Validation("question %s is assigned to a section that is not part of the test", q.QuestionID)
		}
	}

	test := &types.Test{
		Title:           title,
		Description:     utils.ParseInputString(in.Description),
		DurationMinutes: duration,
		IsActive:        true,
		CreatedBy:       &uid,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.WithTx(ctx, tx)
		found, err := s.questionRepo.GetByIDs(dbc, questionIDs)
		if err != nil {
			return err
		}
		if len(found) != len(questionIDs) {
			return apierr.Validation("one or more questions do not exist")
		}
		sections, err := s.sectionRepo.GetByIDs(dbc, sectionIDs)
		if err != nil {
			return err
		}
		if len(sections) != len(sectionIDs) {
			return apierr.Validation("one or more sections do not exist")
		}
		defaults := map[uuid.UUID]int{}
		for _, sec := range sections {
			defaults[sec.ID] = sec.DefaultTimeMinutes
		}

		if err := s.testRepo.Create(dbc, test); err != nil {
			return err
		}
		if len(in.Sections) > 0 {
			rows := make([]*types.TestSection, 0, len(in.Sections))
			for i, sec := range in.Sections {
				minutes := sec.TimeMinutes
				if minutes <= 0 {
					minutes = defaults[sec.SectionID]
				}
				rows = append(rows, &types.TestSection{
					TestID:        test.ID,
					SectionID:     sec.SectionID,
					TimeMinutes:   minutes,
					SequenceOrder: orderOr(sec.SequenceOrder, i+1),
				})
			}
			if err := s.testRepo.CreateSections(dbc, rows); err != nil {
				return err
			}
		}
		rows := make([]*types.TestQuestion, 0, len(in.Questions))
		for i, q := range in.Questions {
			rows = append(rows, &types.TestQuestion{
				TestID:        test.ID,
				QuestionID:    q.QuestionID,
				SectionID:     q.SectionID,
				SequenceOrder: orderOr(q.SequenceOrder, i+1),
			})
		}
		return s.testRepo.CreateQuestions(dbc, rows)
	})
	if err != nil {
		return nil, apierr.FromDB("create test", err, "")
	}

	s.catalog.InvalidateActiveTests(ctx)
	s.log.Info("Test created", "test_id", test.ID, "questions", len(in.Questions), "sections", len(in.Sections))
	return &CreatedTest{
		TestID:         test.ID,
		Title:          test.Title,
		QuestionsCount: len(in.Questions),
		SectionsCount:  len(in.Sections),
	}, nil
}

func orderOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

func (s *adminService) SetTestActive(ctx context.Context, testID uuid.UUID, active bool) (*types.Test, error) {
	var out *types.Test
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.WithTx(ctx, tx)
		if err := s.testRepo.SetActive(dbc, testID, active); err != nil {
			return err
		}
		t, err := s.testRepo.GetByID(dbc, testID)
		if err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, apierr.FromDB("set test status", err, "test not found")
	}
	s.catalog.InvalidateActiveTests(ctx)
	s.log.Info("Test status changed", "test_id", testID, "is_active", active)
	return out, nil
}

func (s *adminService) ListUsers(ctx context.Context, limit, offset int) (*UserPage, error) {
	limit, offset = pageBounds(limit, offset)

	var (
		users []*types.User
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = s.userRepo.ListNonAdmin(dbctx.New(gctx), limit, offset)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.userRepo.CountNonAdmin(dbctx.New(gctx))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apierr.FromDB("list users", err, "")
	}

	batches := make([][]repos.UserAttemptStats, (len(users)+userStatsBatchSize-1)/userStatsBatchSize)
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(userStatsConcurrency)
	for b := range batches {
		start := b * userStatsBatchSize
		end := min(start+userStatsBatchSize, len(users))
		ids := make([]uuid.UUID, 0, end-start)
		for _, u := range users[start:end] {
			ids = append(ids, u.ID)
		}
		g.Go(func() error {
			stats, err := s.attemptRepo.StatsForUsers(dbctx.New(gctx), ids)
			if err != nil {
				return err
			}
			batches[b] = stats
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apierr.FromDB("load user stats", err, "")
	}

	byUser := map[uuid.UUID]repos.UserAttemptStats{}
	for _, batch := range batches {
		for _, st := range batch {
			byUser[st.UserID] = st
		}
	}
	out := make([]UserWithStats, 0, len(users))
	for _, u := range users {
		st := byUser[u.ID]
		out = append(out, UserWithStats{
			User:              u,
			TotalAttempts:     st.TotalAttempts,
			CompletedAttempts: st.CompletedAttempts,
			AverageScore:      st.AverageScore,
			HighestScore:      st.HighestScore,
			TotalCorrect:      st.TotalCorrect,
			TotalIncorrect:    st.TotalIncorrect,
		})
	}
	return &UserPage{Users: out, Total: total, Limit: limit, Offset: offset}, nil
}

func (s *adminService) UserReports(ctx context.Context, userID uuid.UUID) (*UserReport, error) {
	u, err := s.userRepo.GetByID(dbctx.New(ctx), userID)
	if err != nil {
		return nil, apierr.FromDB("load user", err, "user not found")
	}
	if u.IsAdmin {
		return nil, apierr.NotFound("user not found")
	}

	report := &UserReport{User: u}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		report.Attempts, err = s.attemptRepo.ListMarksByUser(dbctx.New(gctx), userID)
		return err
	})
	g.Go(func() error {
		var err error
		report.TopicPerformance, err = s.answerRepo.TopicPerformanceForUser(dbctx.New(gctx), userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apierr.FromDB("load user reports", err, "")
	}
	if report.Attempts == nil {
		report.Attempts = []repos.AttemptMarks{}
	}
	if report.TopicPerformance == nil {
		report.TopicPerformance = []repos.TopicPerformance{}
	}
	return report, nil
}
