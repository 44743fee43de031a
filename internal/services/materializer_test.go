package services

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"fintrack/internal/models"
	"fintrack/internal/testutil"
)

func generatedTransactions(t *testing.T, db *gorm.DB, kind RuleKind, ruleID string) []models.Transaction {
	t.Helper()
	var transactions []models.Transaction
	column := "recurring_income_id"
	if kind == RuleKindExpense {
		column = "recurring_expense_id"
	}
	if err := db.Where(column+" = ?", ruleID).Order("date ASC").Find(&transactions).Error; err != nil {
		t.Fatalf("failed to load generated transactions: %v", err)
	}
	return transactions
}

func TestMaterializeDue(t *testing.T) {
	t.Run("one_transaction_per_elapsed_month", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewMaterializerService(db)
		cat := testutil.CreateTestCategory(t, db, models.CategoryTypeIncome)

		// Rule active January through December, paid on the 15th.
		rule := testutil.CreateTestRecurringIncome(t, db, cat.ID, 15,
			testutil.Date(2025, time.January, 1), testutil.Date(2025, time.December, 31))

		today := testutil.Date(2025, time.May, 20)
		result, err := svc.MaterializeDue(RuleKindIncome, today)
		testutil.AssertNoError(t, err)

		if result.ProcessedRules != 1 {
			t.Errorf("expected 1 processed rule, got %d", result.ProcessedRules)
		}
		if result.CreatedTransactions != 5 {
			t.Errorf("expected 5 created transactions (Jan-May), got %d", result.CreatedTransactions)
		}

		transactions := generatedTransactions(t, db, RuleKindIncome, rule.ID)
		if len(transactions) != 5 {
			t.Fatalf("expected 5 transactions, got %d", len(transactions))
		}
		for i, tx := range transactions {
			want := testutil.Date(2025, time.Month(i+1), 15)
			if !tx.Date.Equal(want) {
				t.Errorf("transaction %d: expected date %v, got %v", i, want, tx.Date)
			}
		}
	})

	t.Run("idempotent_second_run", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewMaterializerService(db)
		cat := testutil.CreateTestCategory(t, db, models.CategoryTypeIncome)
		rule := testutil.CreateTestRecurringIncome(t, db, cat.ID, 1,
			testutil.Date(2025, time.January, 1), testutil.Date(2025, time.December, 31))

		today := testutil.Date(2025, time.March, 10)
		first, err := svc.MaterializeDue(RuleKindIncome, today)
		testutil.AssertNoError(t, err)
		if first.CreatedTransactions != 3 {
			t.Fatalf("expected 3 transactions on first run, got %d", first.CreatedTransactions)
		}

		second, err := svc.MaterializeDue(RuleKindIncome, today)
		testutil.AssertNoError(t, err)
		if second.CreatedTransactions != 0 {
			t.Errorf("expected 0 transactions on second run, got %d", second.CreatedTransactions)
		}
		if got := len(generatedTransactions(t, db, RuleKindIncome, rule.ID)); got != 3 {
			t.Errorf("expected 3 transactions total, got %d", got)
		}
	})

	t.Run("clamps_recurrence_day_to_month_end", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewMaterializerService(db)
		cat := testutil.CreateTestCategory(t, db, models.CategoryTypeNeeds)
		rule := testutil.CreateTestRecurringExpense(t, db, cat.ID, 31,
			testutil.Date(2025, time.January, 1), testutil.Date(2025, time.December, 31))

		_, err := svc.MaterializeDue(RuleKindExpense, testutil.Date(2025, time.March, 31))
		testutil.AssertNoError(t, err)

		transactions := generatedTransactions(t, db, RuleKindExpense, rule.ID)
		if len(transactions) != 3 {
			t.Fatalf("expected 3 transactions, got %d", len(transactions))
		}
		wantDates := []time.Time{
			testutil.Date(2025, time.January, 31),
			testutil.Date(2025, time.February, 28),
			testutil.Date(2025, time.March, 31),
		}
		for i, tx := range transactions {
			if !tx.Date.Equal(wantDates[i]) {
				t.Errorf("transaction %d: expected date %v, got %v", i, wantDates[i], tx.Date)
			}
		}
	})

	t.Run("expense_amounts_forced_negative", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewMaterializerService(db)
		cat := testutil.CreateTestCategory(t, db, models.CategoryTypeNeeds)
		rule := testutil.CreateTestRecurringExpense(t, db, cat.ID, 1,
			testutil.Date(2025, time.January, 1), testutil.Date(2025, time.December, 31))

		_, err := svc.MaterializeDue(RuleKindExpense, testutil.Date(2025, time.February, 1))
		testutil.AssertNoError(t, err)

		for _, tx := range generatedTransactions(t, db, RuleKindExpense, rule.ID) {
			if tx.Amount >= 0 {
				t.Errorf("expected negative amount, got %d", tx.Amount)
			}
			if tx.Type != models.TransactionTypeExpense {
				t.Errorf("expected expense type, got %s", tx.Type)
			}
		}
	})

	t.Run("income_amounts_positive", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewMaterializerService(db)
		cat := testutil.CreateTestCategory(t, db, models.CategoryTypeIncome)
		rule := testutil.CreateTestRecurringIncome(t, db, cat.ID, 1,
			testutil.Date(2025, time.January, 1), testutil.Date(2025, time.December, 31))

		_, err := svc.MaterializeDue(RuleKindIncome, testutil.Date(2025, time.February, 1))
		testutil.AssertNoError(t, err)

		for _, tx := range generatedTransactions(t, db, RuleKindIncome, rule.ID) {
			if tx.Amount <= 0 {
				t.Errorf("expected positive amount, got %d", tx.Amount)
			}
			if tx.Type != models.TransactionTypeIncome {
				t.Errorf("expected income type, got %s", tx.Type)
			}
		}
	})

	t.Run("skips_rule_with_missing_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewMaterializerService(db)
		cat := testutil.CreateTestCategory(t, db, models.CategoryTypeIncome)
		rule := testutil.CreateTestRecurringIncome(t, db, cat.ID, 1,
			testutil.Date(2025, time.January, 1), testutil.Date(2025, time.December, 31))

		// Out-of-band category deletion leaves the rule orphaned.
		if err := db.Delete(cat).Error; err != nil {
			t.Fatalf("failed to delete category: %v", err)
		}

		result, err := svc.MaterializeDue(RuleKindIncome, testutil.Date(2025, time.March, 1))
		testutil.AssertNoError(t, err)
		if result.ProcessedRules != 0 {
			t.Errorf("expected 0 processed rules, got %d", result.ProcessedRules)
		}
		if result.CreatedTransactions != 0 {
			t.Errorf("expected 0 transactions, got %d", result.CreatedTransactions)
		}

		// The cursor must remain untouched for a skipped rule.
		var reloaded models.RecurringIncome
		if err := db.First(&reloaded, "id = ?", rule.ID).Error; err != nil {
			t.Fatalf("failed to reload rule: %v", err)
		}
		if reloaded.LastProcessedDate != nil {
			t.Errorf("expected nil cursor, got %v", reloaded.LastProcessedDate)
		}
	})

	t.Run("cursor_parks_before_unfinished_month", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewMaterializerService(db)
		cat := testutil.CreateTestCategory(t, db, models.CategoryTypeIncome)
		rule := testutil.CreateTestRecurringIncome(t, db, cat.ID, 25,
			testutil.Date(2025, time.January, 1), testutil.Date(2025, time.December, 31))

		// The 10th is before the 25th: January's candidate is still in
		// the future, so nothing is owed yet and the cursor parks at the
		// end of December so a later run revisits January.
		result, err := svc.MaterializeDue(RuleKindIncome, testutil.Date(2025, time.January, 10))
		testutil.AssertNoError(t, err)
		if result.CreatedTransactions != 0 {
			t.Errorf("expected 0 transactions, got %d", result.CreatedTransactions)
		}
		if result.ProcessedRules != 1 {
			t.Errorf("expected 1 processed rule, got %d", result.ProcessedRules)
		}

		var reloaded models.RecurringIncome
		if err := db.First(&reloaded, "id = ?", rule.ID).Error; err != nil {
			t.Fatalf("failed to reload rule: %v", err)
		}
		wantCursor := testutil.Date(2024, time.December, 31)
		if reloaded.LastProcessedDate == nil || !reloaded.LastProcessedDate.Equal(wantCursor) {
			t.Fatalf("expected cursor %v, got %v", wantCursor, reloaded.LastProcessedDate)
		}

		// A second run before the due day still emits nothing.
		again, err := svc.MaterializeDue(RuleKindIncome, testutil.Date(2025, time.January, 12))
		testutil.AssertNoError(t, err)
		if again.CreatedTransactions != 0 {
			t.Errorf("expected 0 transactions on repeat run, got %d", again.CreatedTransactions)
		}

		// Once the 25th arrives, January's transaction is generated and
		// the cursor moves to today.
		later, err := svc.MaterializeDue(RuleKindIncome, testutil.Date(2025, time.January, 25))
		testutil.AssertNoError(t, err)
		if later.CreatedTransactions != 1 {
			t.Fatalf("expected 1 transaction on the due day, got %d", later.CreatedTransactions)
		}
		transactions := generatedTransactions(t, db, RuleKindIncome, rule.ID)
		if len(transactions) != 1 || !transactions[0].Date.Equal(testutil.Date(2025, time.January, 25)) {
			t.Errorf("expected a single transaction on 2025-01-25, got %v", transactions)
		}
		if err := db.First(&reloaded, "id = ?", rule.ID).Error; err != nil {
			t.Fatalf("failed to reload rule: %v", err)
		}
		if reloaded.LastProcessedDate == nil || !reloaded.LastProcessedDate.Equal(testutil.Date(2025, time.January, 25)) {
			t.Errorf("expected cursor 2025-01-25, got %v", reloaded.LastProcessedDate)
		}
	})

	t.Run("stops_at_end_date_month", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewMaterializerService(db)
		cat := testutil.CreateTestCategory(t, db, models.CategoryTypeNeeds)
		rule := testutil.CreateTestRecurringExpense(t, db, cat.ID, 1,
			testutil.Date(2025, time.January, 1), testutil.Date(2025, time.March, 31))

		_, err := svc.MaterializeDue(RuleKindExpense, testutil.Date(2025, time.August, 1))
		testutil.AssertNoError(t, err)

		if got := len(generatedTransactions(t, db, RuleKindExpense, rule.ID)); got != 3 {
			t.Errorf("expected 3 transactions (Jan-Mar), got %d", got)
		}
	})

	t.Run("resumes_from_cursor", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewMaterializerService(db)
		cat := testutil.CreateTestCategory(t, db, models.CategoryTypeIncome)
		rule := testutil.CreateTestRecurringIncome(t, db, cat.ID, 1,
			testutil.Date(2025, time.January, 1), testutil.Date(2025, time.December, 31))

		_, err := svc.MaterializeDue(RuleKindIncome, testutil.Date(2025, time.February, 15))
		testutil.AssertNoError(t, err)

		// Months later, only the months after the cursor are generated.
		result, err := svc.MaterializeDue(RuleKindIncome, testutil.Date(2025, time.June, 15))
		testutil.AssertNoError(t, err)
		if result.CreatedTransactions != 4 {
			t.Errorf("expected 4 new transactions (Mar-Jun), got %d", result.CreatedTransactions)
		}
		if got := len(generatedTransactions(t, db, RuleKindIncome, rule.ID)); got != 6 {
			t.Errorf("expected 6 transactions total, got %d", got)
		}
	})

	t.Run("rule_not_yet_started_is_ignored", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewMaterializerService(db)
		cat := testutil.CreateTestCategory(t, db, models.CategoryTypeIncome)
		testutil.CreateTestRecurringIncome(t, db, cat.ID, 1,
			testutil.Date(2026, time.January, 1), testutil.Date(2026, time.December, 31))

		result, err := svc.MaterializeDue(RuleKindIncome, testutil.Date(2025, time.June, 1))
		testutil.AssertNoError(t, err)
		if result.ProcessedRules != 0 {
			t.Errorf("expected 0 processed rules, got %d", result.ProcessedRules)
		}
	})
}

func TestMaterializeAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewMaterializerService(db)
	incomeCat := testutil.CreateTestCategory(t, db, models.CategoryTypeIncome)
	needsCat := testutil.CreateTestCategory(t, db, models.CategoryTypeNeeds)

	testutil.CreateTestRecurringIncome(t, db, incomeCat.ID, 1,
		testutil.Date(2025, time.January, 1), testutil.Date(2025, time.December, 31))
	testutil.CreateTestRecurringExpense(t, db, needsCat.ID, 1,
		testutil.Date(2025, time.January, 1), testutil.Date(2025, time.December, 31))

	result, err := svc.MaterializeAll(testutil.Date(2025, time.March, 1))
	testutil.AssertNoError(t, err)

	if result.ProcessedRules != 2 {
		t.Errorf("expected 2 processed rules, got %d", result.ProcessedRules)
	}
	if result.CreatedTransactions != 6 {
		t.Errorf("expected 6 created transactions, got %d", result.CreatedTransactions)
	}
}

func TestPendingDates(t *testing.T) {
	t.Run("nil_cursor_starts_at_start_month", func(t *testing.T) {
		sched := ruleSchedule{
			RecurrenceDay: 10,
			StartDate:     testutil.Date(2025, time.March, 20),
			EndDate:       testutil.Date(2025, time.December, 31),
		}
		// The start month itself is generated even when the start date
		// falls after the recurrence day.
		dates := pendingDates(sched, testutil.Date(2025, time.April, 30))
		if len(dates) != 2 {
			t.Fatalf("expected 2 dates, got %d", len(dates))
		}
		if !dates[0].Equal(testutil.Date(2025, time.March, 10)) {
			t.Errorf("expected first date 2025-03-10, got %v", dates[0])
		}
	})

	t.Run("set_cursor_starts_at_following_month", func(t *testing.T) {
		cursor := testutil.Date(2025, time.March, 20)
		sched := ruleSchedule{
			RecurrenceDay: 10,
			StartDate:     testutil.Date(2025, time.January, 1),
			EndDate:       testutil.Date(2025, time.December, 31),
			Cursor:        &cursor,
		}
		dates := pendingDates(sched, testutil.Date(2025, time.May, 15))
		if len(dates) != 2 {
			t.Fatalf("expected 2 dates (Apr, May), got %d", len(dates))
		}
		if !dates[0].Equal(testutil.Date(2025, time.April, 10)) {
			t.Errorf("expected first date 2025-04-10, got %v", dates[0])
		}
	})
}

func TestCursorTarget(t *testing.T) {
	sched := ruleSchedule{RecurrenceDay: 25}

	t.Run("before_due_day_parks_at_previous_month_end", func(t *testing.T) {
		got := cursorTarget(sched, testutil.Date(2025, time.March, 10))
		if !got.Equal(testutil.Date(2025, time.February, 28)) {
			t.Errorf("expected 2025-02-28, got %v", got)
		}
	})

	t.Run("on_due_day_advances_to_today", func(t *testing.T) {
		today := testutil.Date(2025, time.March, 25)
		if got := cursorTarget(sched, today); !got.Equal(today) {
			t.Errorf("expected %v, got %v", today, got)
		}
	})

	t.Run("clamped_due_day_counts_as_reached", func(t *testing.T) {
		clamped := ruleSchedule{RecurrenceDay: 31}
		today := testutil.Date(2025, time.February, 28)
		if got := cursorTarget(clamped, today); !got.Equal(today) {
			t.Errorf("expected %v, got %v", today, got)
		}
	})
}
