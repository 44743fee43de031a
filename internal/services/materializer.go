package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"fintrack/internal/dateutil"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
	"fintrack/internal/models"
)

// errCursorConflict signals that another run advanced a rule's cursor
// between read and write. The rule's whole batch is rolled back; the
// competing run already owns those months.
var errCursorConflict = errors.New("materialization cursor changed concurrently")

// materializerService generates transactions from recurring rules.
type materializerService struct {
	db *gorm.DB
}

// NewMaterializerService creates a new MaterializerServicer.
func NewMaterializerService(db *gorm.DB) MaterializerServicer {
	return &materializerService{db: db}
}

// ruleSchedule is the kind-independent view of a recurring rule that the
// materialization loop operates on.
type ruleSchedule struct {
	ID            string
	Description   string
	Amount        int64
	CategoryID    string
	RecurrenceDay int
	StartDate     time.Time
	EndDate       time.Time
	Cursor        *time.Time
}

// MaterializeAll runs materialization for both rule kinds.
func (s *materializerService) MaterializeAll(today time.Time) (MaterializationResult, error) {
	var total MaterializationResult
	for _, kind := range []RuleKind{RuleKindIncome, RuleKindExpense} {
		res, err := s.MaterializeDue(kind, today)
		total.ProcessedRules += res.ProcessedRules
		total.CreatedTransactions += res.CreatedTransactions
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// MaterializeDue generates all not-yet-materialized transactions for
// rules of the given kind whose start date is on or before today, and
// advances each rule's cursor through the last fully materialized month.
// Rules whose category no longer exists are skipped entirely.
func (s *materializerService) MaterializeDue(kind RuleKind, today time.Time) (MaterializationResult, error) {
	var result MaterializationResult
	today = dateutil.Midnight(today)

	schedules, err := s.loadSchedules(kind, today)
	if err != nil {
		return result, err
	}

	for _, sched := range schedules {
		// Category existence precondition: a rule orphaned by an
		// out-of-band category deletion is skipped, not failed.
		var count int64
		if err := s.db.Model(&models.Category{}).Where("id = ?", sched.CategoryID).Count(&count).Error; err != nil {
			return result, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count == 0 {
			logger.Get().Warnw("skipping recurring rule with missing category",
				"kind", kind,
				"rule_id", sched.ID,
				"category_id", sched.CategoryID,
			)
			continue
		}

		created, err := s.processRule(kind, sched, today)
		if err != nil {
			if errors.Is(err, errCursorConflict) {
				continue
			}
			return result, err
		}
		result.ProcessedRules++
		result.CreatedTransactions += created
	}

	return result, nil
}

// loadSchedules reads the rules of one kind that have started by today
// and flattens them into kind-independent schedules.
func (s *materializerService) loadSchedules(kind RuleKind, today time.Time) ([]ruleSchedule, error) {
	var schedules []ruleSchedule

	switch kind {
	case RuleKindIncome:
		var rules []models.RecurringIncome
		if err := s.db.Where("start_date <= ?", today).Find(&rules).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		for _, r := range rules {
			schedules = append(schedules, ruleSchedule{
				ID: r.ID, Description: r.Description, Amount: r.Amount,
				CategoryID: r.CategoryID, RecurrenceDay: r.RecurrenceDay,
				StartDate: r.StartDate, EndDate: r.EndDate, Cursor: r.LastProcessedDate,
			})
		}
	case RuleKindExpense:
		var rules []models.RecurringExpense
		if err := s.db.Where("start_date <= ?", today).Find(&rules).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		for _, r := range rules {
			schedules = append(schedules, ruleSchedule{
				ID: r.ID, Description: r.Description, Amount: r.Amount,
				CategoryID: r.CategoryID, RecurrenceDay: r.RecurrenceDay,
				StartDate: r.StartDate, EndDate: r.EndDate, Cursor: r.LastProcessedDate,
			})
		}
	default:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("unknown rule kind %q", kind))
	}

	return schedules, nil
}

// pendingDates returns the transaction dates owed for the schedule as of
// today. The generation cursor starts at the first day of the month
// containing the start date, or the month after the one containing the
// stored cursor, and walks month by month. The recurrence day is clamped
// to each month's length; a candidate still in the future is not owed.
// Its month stays ahead of the cursor target so a later run picks it up.
func pendingDates(sched ruleSchedule, today time.Time) []time.Time {
	var cursor time.Time
	if sched.Cursor == nil {
		cursor = dateutil.MonthStart(sched.StartDate)
	} else {
		cursor = dateutil.NextMonth(*sched.Cursor)
	}

	todayMonth := dateutil.MonthStart(today)
	endMonth := dateutil.MonthStart(sched.EndDate)

	var dates []time.Time
	for !cursor.After(todayMonth) && !cursor.After(endMonth) {
		candidate := dateutil.ClampedDate(cursor.Year(), cursor.Month(), sched.RecurrenceDay, cursor.Location())
		if !candidate.After(today) {
			dates = append(dates, candidate)
		}
		cursor = dateutil.NextMonth(cursor)
	}
	return dates
}

// cursorTarget returns the date the rule's cursor should hold after a run
// at today. When today's month has an occurrence still ahead of today the
// month is not finished yet, so the cursor parks at the end of the
// previous month and the next run revisits it. Otherwise the cursor
// advances to today.
func cursorTarget(sched ruleSchedule, today time.Time) time.Time {
	candidate := dateutil.ClampedDate(today.Year(), today.Month(), sched.RecurrenceDay, today.Location())
	if candidate.After(today) {
		return dateutil.MonthStart(today).AddDate(0, 0, -1)
	}
	return today
}

// processRule inserts the owed transactions for one rule and advances its
// cursor. Inserts and the cursor write happen in a single
// database transaction, and the cursor write is a compare-and-swap
// against the value read at batch start, so a partial failure or a
// concurrent run can never produce duplicate months.
func (s *materializerService) processRule(kind RuleKind, sched ruleSchedule, today time.Time) (int, error) {
	dates := pendingDates(sched, today)
	through := cursorTarget(sched, today)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, date := range dates {
			transaction := models.Transaction{
				Description: sched.Description,
				CategoryID:  sched.CategoryID,
				Date:        date,
			}
			switch kind {
			case RuleKindIncome:
				transaction.Type = models.TransactionTypeIncome
				transaction.Amount = sched.Amount
				id := sched.ID
				transaction.RecurringIncomeID = &id
			case RuleKindExpense:
				transaction.Type = models.TransactionTypeExpense
				amount := sched.Amount
				if amount < 0 {
					amount = -amount
				}
				transaction.Amount = -amount
				id := sched.ID
				transaction.RecurringExpenseID = &id
			}
			if err := tx.Create(&transaction).Error; err != nil {
				return err
			}
		}

		return s.advanceCursor(tx, kind, sched, through)
	})
	if err != nil {
		if errors.Is(err, errCursorConflict) {
			return 0, errCursorConflict
		}
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if len(dates) > 0 {
		logger.Get().Infow("materialized recurring rule",
			"kind", kind,
			"rule_id", sched.ID,
			"created", len(dates),
			"through", through.Format("2006-01-02"),
		)
	}
	return len(dates), nil
}

// advanceCursor sets last_processed_date to through if and only if it
// still holds the value read when the batch started.
func (s *materializerService) advanceCursor(tx *gorm.DB, kind RuleKind, sched ruleSchedule, through time.Time) error {
	var model interface{}
	switch kind {
	case RuleKindIncome:
		model = &models.RecurringIncome{}
	case RuleKindExpense:
		model = &models.RecurringExpense{}
	}

	update := tx.Model(model).Where("id = ?", sched.ID)
	if sched.Cursor == nil {
		update = update.Where("last_processed_date IS NULL")
	} else {
		update = update.Where("last_processed_date = ?", *sched.Cursor)
	}

	res := update.Update("last_processed_date", through)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errCursorConflict
	}
	return nil
}
