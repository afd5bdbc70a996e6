package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"spendwise/internal/models"
	"spendwise/internal/store"
)

// statsService aggregates a user's transactions into chart buckets.
type statsService struct {
	transactions store.Transactions
}

// NewStatsService creates a new StatsServicer.
func NewStatsService(transactions store.Transactions) StatsServicer {
	return &statsService{transactions: transactions}
}

// WeeklyStats buckets the last 7 days of transactions by day.
func (s *statsService) WeeklyStats(userID string) ([]PeriodStat, []models.Transaction, error) {
	now := time.Now()
	from := now.AddDate(0, 0, -7)

	transactions, err := s.fetchRange(userID, from, now)
	if err != nil {
		return nil, nil, err
	}

	// One bucket per day, oldest first.
	stats := make([]PeriodStat, 0, 7)
	index := make(map[string]int, 7)
	for i := 6; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		key := day.Format("2006-01-02")
		index[key] = len(stats)
		stats = append(stats, PeriodStat{
			Label:   day.Format("Mon"),
			Income:  decimal.Zero,
			Expense: decimal.Zero,
		})
	}

	for _, t := range transactions {
		i, ok := index[t.Date.Format("2006-01-02")]
		if !ok {
			continue
		}
		accumulate(&stats[i], t)
	}
	return stats, transactions, nil
}

// MonthlyStats buckets the last 12 months of transactions by month.
func (s *statsService) MonthlyStats(userID string) ([]PeriodStat, []models.Transaction, error) {
	now := time.Now()
	from := now.AddDate(0, -12, 0)

	transactions, err := s.fetchRange(userID, from, now)
	if err != nil {
		return nil, nil, err
	}

	stats := make([]PeriodStat, 0, 12)
	index := make(map[string]int, 12)
	for i := 11; i >= 0; i-- {
		month := now.AddDate(0, -i, 0)
		key := month.Format("2006-01")
		index[key] = len(stats)
		stats = append(stats, PeriodStat{
			Label:   month.Format("Jan 06"),
			Income:  decimal.Zero,
			Expense: decimal.Zero,
		})
	}

	for _, t := range transactions {
		i, ok := index[t.Date.Format("2006-01")]
		if !ok {
			continue
		}
		accumulate(&stats[i], t)
	}
	return stats, transactions, nil
}

// YearlyStats buckets the user's full history by year, from the
// earliest transaction through the current year.
func (s *statsService) YearlyStats(userID string) ([]PeriodStat, []models.Transaction, error) {
	transactions, _, err := s.transactions.Query(store.TransactionFilter{UserID: userID}, nil)
	if err != nil {
		return nil, nil, err
	}

	currentYear := time.Now().Year()
	firstYear := currentYear
	for _, t := range transactions {
		if y := t.Date.Year(); y < firstYear {
			firstYear = y
		}
	}

	stats := make([]PeriodStat, 0, currentYear-firstYear+1)
	index := make(map[int]int, currentYear-firstYear+1)
	for year := firstYear; year <= currentYear; year++ {
		index[year] = len(stats)
		stats = append(stats, PeriodStat{
			Label:   fmt.Sprintf("%d", year),
			Income:  decimal.Zero,
			Expense: decimal.Zero,
		})
	}

	for _, t := range transactions {
		i, ok := index[t.Date.Year()]
		if !ok {
			continue
		}
		accumulate(&stats[i], t)
	}
	return stats, transactions, nil
}

func (s *statsService) fetchRange(userID string, from, to time.Time) ([]models.Transaction, error) {
	filter := store.TransactionFilter{
		UserID:   userID,
		FromDate: &from,
		ToDate:   &to,
	}
	transactions, _, err := s.transactions.Query(filter, nil)
	return transactions, err
}

func accumulate(stat *PeriodStat, t models.Transaction) {
	switch t.Type {
	case models.TransactionTypeIncome:
		stat.Income = stat.Income.Add(t.Amount)
	case models.TransactionTypeExpense:
		stat.Expense = stat.Expense.Add(t.Amount)
	}
}
