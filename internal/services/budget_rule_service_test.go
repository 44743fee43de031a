package services

import (
	"testing"
	"time"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/pagination"
	"fintrack/internal/testutil"
)

func TestCreateBudgetRule(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewBudgetRuleService(db)

	t.Run("success", func(t *testing.T) {
		rule, err := svc.CreateBudgetRule("Lean Year", testutil.Date(2025, time.January, 1), nil, 0.6, 0.2, 0.2)
		testutil.AssertNoError(t, err)
		if rule.ID == "" {
			t.Error("expected generated ID")
		}
		if rule.EndDate != nil {
			t.Error("expected open-ended rule")
		}
	})

	t.Run("empty_name_rejected", func(t *testing.T) {
		_, err := svc.CreateBudgetRule("", testutil.Date(2025, time.January, 1), nil, 0.5, 0.3, 0.2)
		testutil.AssertAppError(t, err, apperrors.ErrInvalidInput.Code)
	})

	t.Run("end_before_start_rejected", func(t *testing.T) {
		end := testutil.Date(2024, time.June, 1)
		_, err := svc.CreateBudgetRule("Backwards", testutil.Date(2025, time.January, 1), &end, 0.5, 0.3, 0.2)
		testutil.AssertAppError(t, err, apperrors.ErrEndBeforeStart.Code)
	})
}

func TestGetBudgetRules(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewBudgetRuleService(db)

	testutil.CreateTestBudgetRule(t, db, testutil.Date(2025, time.January, 1), nil, 0.5, 0.3, 0.2)
	testutil.CreateTestBudgetRule(t, db, testutil.Date(2025, time.June, 1), nil, 0.4, 0.3, 0.3)

	t.Run("newest_start_first", func(t *testing.T) {
		resp, err := svc.GetBudgetRules(pagination.PageRequest{Page: 1, PageSize: 10})
		testutil.AssertNoError(t, err)
		if resp.TotalItems != 2 {
			t.Fatalf("expected 2 rules, got %d", resp.TotalItems)
		}
		if !resp.Data[0].StartDate.After(resp.Data[1].StartDate) {
			t.Error("expected newest start date first")
		}
	})

	t.Run("not_found", func(t *testing.T) {
		_, err := svc.GetBudgetRuleByID("0191a999-0000-7000-8000-000000000000")
		testutil.AssertAppError(t, err, apperrors.ErrBudgetRuleNotFound.Code)
	})
}

func TestUpdateBudgetRule(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewBudgetRuleService(db)

	rule := testutil.CreateTestBudgetRule(t, db, testutil.Date(2025, time.January, 1), nil, 0.5, 0.3, 0.2)

	t.Run("updates_ratios", func(t *testing.T) {
		needs, wants, savings := 0.4, 0.3, 0.3
		updated, err := svc.UpdateBudgetRule(rule.ID, nil, nil, nil, &needs, &wants, &savings)
		testutil.AssertNoError(t, err)
		if updated.NeedsRatio != 0.4 || updated.WantsRatio != 0.3 || updated.SavingsRatio != 0.3 {
			t.Errorf("unexpected ratios: %v/%v/%v", updated.NeedsRatio, updated.WantsRatio, updated.SavingsRatio)
		}
	})

	t.Run("end_before_start_rejected", func(t *testing.T) {
		end := testutil.Date(2024, time.June, 1)
		_, err := svc.UpdateBudgetRule(rule.ID, nil, nil, &end, nil, nil, nil)
		testutil.AssertAppError(t, err, apperrors.ErrEndBeforeStart.Code)
	})

	t.Run("not_found", func(t *testing.T) {
		name := "missing"
		_, err := svc.UpdateBudgetRule("0191a999-0000-7000-8000-000000000000", &name, nil, nil, nil, nil, nil)
		testutil.AssertAppError(t, err, apperrors.ErrBudgetRuleNotFound.Code)
	})
}

func TestDeleteBudgetRule(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewBudgetRuleService(db)

	rule := testutil.CreateTestBudgetRule(t, db, testutil.Date(2025, time.January, 1), nil, 0.5, 0.3, 0.2)

	testutil.AssertNoError(t, svc.DeleteBudgetRule(rule.ID))

	_, err := svc.GetBudgetRuleByID(rule.ID)
	testutil.AssertAppError(t, err, apperrors.ErrBudgetRuleNotFound.Code)
}
