package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func TestTotalSpentByUser(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStatsRepository(db)

	rows := sqlmock.NewRows([]string{"coalesce"}).AddRow("245.50")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE user_id = $1")).
		WithArgs("u1").
		WillReturnRows(rows)

	total, err := repo.TotalSpentByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "245.5", total.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTotalSpentByUserNoOrders(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStatsRepository(db)

	rows := sqlmock.NewRows([]string{"coalesce"}).AddRow("0")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE user_id = $1")).
		WithArgs("ghost").
		WillReturnRows(rows)

	total, err := repo.TotalSpentByUser(context.Background(), "ghost")
	require.NoError(t, err)
	assert.True(t, total.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSpentByUserBetween(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStatsRepository(db)

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"coalesce"}).AddRow("120.00")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE user_id = $1 AND order_time >= $2 AND order_time < $3")).
		WithArgs("u1", from, to).
		WillReturnRows(rows)

	total, err := repo.SpentByUserBetween(context.Background(), "u1", from, to)
	require.NoError(t, err)
	assert.Equal(t, "120", total.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUniqueUsersBetween(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStatsRepository(db)

	from := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)
	rows := sqlmock.NewRows([]string{"count"}).AddRow(14)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(DISTINCT user_id) FROM orders WHERE order_time >= $1 AND order_time < $2")).
		WithArgs(from, to).
		WillReturnRows(rows)

	count, err := repo.UniqueUsersBetween(context.Background(), from, to)
	require.NoError(t, err)
	assert.Equal(t, 14, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpenIssuesCount(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStatsRepository(db)

	rows := sqlmock.NewRows([]string{"count"}).AddRow(3)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM issues WHERE status = $1")).
		WithArgs("Open").
		WillReturnRows(rows)

	count, err := repo.OpenIssuesCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMostOrderedItemByUser(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStatsRepository(db)

	// Ranking is by summed amount: {10,10} on A vs {30} on B means B wins.
	rows := sqlmock.NewRows([]string{"menu_id", "description", "total_amount"}).
		AddRow("menu-b", "Paneer Biryani", "30")
	mock.ExpectQuery("SELECT m.id AS menu_id, m.description, SUM\\(o.total_amount\\) AS total_amount").
		WithArgs("u1").
		WillReturnRows(rows)

	item, err := repo.MostOrderedItemByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "menu-b", item.MenuID)
	assert.Equal(t, "30", item.TotalAmount.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMostOrderedItemByUserNoOrders(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStatsRepository(db)

	mock.ExpectQuery("SELECT m.id AS menu_id, m.description, SUM\\(o.total_amount\\) AS total_amount").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"menu_id", "description", "total_amount"}))

	item, err := repo.MostOrderedItemByUser(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, item)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMealTimeRows(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStatsRepository(db)

	from := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)
	rows := sqlmock.NewRows([]string{"order_time", "quantity", "meal_time"}).
		AddRow(from.Add(8*time.Hour), 2, "Breakfast").
		AddRow(from.Add(13*time.Hour), 1, "Lunch").
		AddRow(from.Add(20*time.Hour), 3, nil)
	mock.ExpectQuery("SELECT o.order_time, o.quantity, m.meal_time").
		WithArgs("u1", from, to).
		WillReturnRows(rows)

	got, err := repo.MealTimeRows(context.Background(), "u1", from, to)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 2, got[0].Quantity)
	assert.Nil(t, got[2].MealTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}
