package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"quickspend/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// SQLiteRepositoryTestSuite runs every test against a fresh database file.
type SQLiteRepositoryTestSuite struct {
	suite.Suite
	path string
	repo *SQLiteRepository
	ctx  context.Context
}

func (s *SQLiteRepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.path = filepath.Join(s.T().TempDir(), "expenses.db")
	repo, err := NewSQLiteRepository(s.path)
	require.NoError(s.T(), err, "failed to create test database")
	s.repo = repo
}

func (s *SQLiteRepositoryTestSuite) TearDownTest() {
	if s.repo != nil {
		s.repo.Close()
	}
}

func (s *SQLiteRepositoryTestSuite) insert(cents int64, category, date string) int64 {
	id, err := s.repo.Insert(s.ctx, core.Draft{
		Amount:    core.Money{Cents: cents},
		Category:  category,
		Date:      date,
		CreatedAt: "2024-01-01T00:00:00.000Z",
	})
	require.NoError(s.T(), err)
	return id
}

func (s *SQLiteRepositoryTestSuite) TestInsertAndGet() {
	id, err := s.repo.Insert(s.ctx, core.Draft{
		Amount:      core.Money{Cents: 1250},
		Category:    "Food",
		Description: "lunch",
		Date:        "2024-03-01",
		CreatedAt:   "2024-03-01T12:00:00.000Z",
	})
	require.NoError(s.T(), err)
	assert.Positive(s.T(), id)

	got, err := s.repo.Get(s.ctx, id)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), id, got.ID)
	assert.Equal(s.T(), int64(1250), got.Amount.Cents)
	assert.Equal(s.T(), "Food", got.Category)
	require.NotNil(s.T(), got.Description)
	assert.Equal(s.T(), "lunch", *got.Description)
	assert.Equal(s.T(), "2024-03-01", got.Date)
	assert.Equal(s.T(), "2024-03-01T12:00:00.000Z", got.CreatedAt)
}

func (s *SQLiteRepositoryTestSuite) TestIDsIncrease() {
	first := s.insert(100, "a", "2024-01-01")
	second := s.insert(100, "a", "2024-01-01")
	assert.Greater(s.T(), second, first)
}

func (s *SQLiteRepositoryTestSuite) TestGetMissing() {
	_, err := s.repo.Get(s.ctx, 999)
	assert.ErrorIs(s.T(), err, ErrNotFound)
}

func (s *SQLiteRepositoryTestSuite) TestNullDescriptionReadsAsNil() {
	db, err := sql.Open("sqlite", s.path)
	require.NoError(s.T(), err)
	defer db.Close()
	res, err := db.Exec(`INSERT INTO expenses (amount_cents, category, description, date, created_at) VALUES (500, 'Misc', NULL, '2024-01-01', '2024-01-01T00:00:00.000Z')`)
	require.NoError(s.T(), err)
	id, err := res.LastInsertId()
	require.NoError(s.T(), err)

	got, err := s.repo.Get(s.ctx, id)
	require.NoError(s.T(), err)
	assert.Nil(s.T(), got.Description)
}

func (s *SQLiteRepositoryTestSuite) TestListEmpty() {
	got, err := s.repo.List(s.ctx, core.ListQuery{})
	require.NoError(s.T(), err)
	assert.NotNil(s.T(), got)
	assert.Empty(s.T(), got)
}

func (s *SQLiteRepositoryTestSuite) TestListOrdering() {
	a := s.insert(100, "Food", "2024-01-02")
	b := s.insert(200, "Travel", "2024-01-01")
	c := s.insert(300, "Food", "2024-01-02")

	asc, err := s.repo.List(s.ctx, core.ListQuery{})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), []int64{b, a, c}, ids(asc))

	desc, err := s.repo.List(s.ctx, core.ListQuery{NewestFirst: true})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), []int64{c, a, b}, ids(desc))
}

func (s *SQLiteRepositoryTestSuite) TestListFilterPartitions() {
	s.insert(100, "Food", "2024-01-01")
	s.insert(200, "Travel", "2024-01-02")
	s.insert(300, "Food", "2024-01-03")
	s.insert(400, "food", "2024-01-04")

	all, err := s.repo.List(s.ctx, core.ListQuery{})
	require.NoError(s.T(), err)

	total := 0
	for _, cat := range []string{"Food", "Travel", "food"} {
		got, err := s.repo.List(s.ctx, core.ListQuery{Category: cat})
		require.NoError(s.T(), err)
		for _, e := range got {
			assert.Equal(s.T(), cat, e.Category)
		}
		total += len(got)
	}
	assert.Equal(s.T(), len(all), total)
}

func (s *SQLiteRepositoryTestSuite) TestReopenKeepsData() {
	s.insert(100, "Food", "2024-01-01")
	require.NoError(s.T(), s.repo.Close())

	repo, err := NewSQLiteRepository(s.path)
	require.NoError(s.T(), err)
	s.repo = repo

	got, err := s.repo.List(s.ctx, core.ListQuery{})
	require.NoError(s.T(), err)
	assert.Len(s.T(), got, 1)
	assert.NoError(s.T(), s.repo.Ping(s.ctx))
}

func TestSQLiteRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(SQLiteRepositoryTestSuite))
}

func TestBuildListQuery(t *testing.T) {
	q, args := buildListQuery(core.ListQuery{}, questionMark)
	assert.Equal(t, "SELECT "+selectColumns+" FROM expenses ORDER BY date ASC, id ASC", q)
	assert.Empty(t, args)

	q, args = buildListQuery(core.ListQuery{Category: "Food", NewestFirst: true}, dollar)
	assert.Equal(t, "SELECT "+selectColumns+" FROM expenses WHERE category = $1 ORDER BY date DESC, id DESC", q)
	assert.Equal(t, []any{"Food"}, args)
}

func ids(expenses []core.Expense) []int64 {
	out := make([]int64, len(expenses))
	for i, e := range expenses {
		out[i] = e.ID
	}
	return out
}
