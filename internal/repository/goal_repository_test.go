package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/goal-community-api/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const promoteSQL = `UPDATE "goals" SET "status"=.*WHERE.*status = .*SELECT COALESCE\(SUM\(value\), 0\) FROM "goal_votes" WHERE goal_id = .*>=`

func newMockRepository(t *testing.T) (GoalRepository, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	return NewGoalRepository(db), mock
}

func TestPromoteIfReached_SingleConditionalUpdate(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(promoteSQL).
		WithArgs("ACTIVE", sqlmock.AnyArg(), uint64(7), "PENDING", uint64(7), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	promoted, err := repo.PromoteIfReached(context.Background(), 7, 2)

	require.NoError(t, err)
	assert.True(t, promoted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPromoteIfReached_NoRowsMeansNotPromoted(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(promoteSQL).WillReturnResult(sqlmock.NewResult(0, 0))

	promoted, err := repo.PromoteIfReached(context.Background(), 7, 2)

	require.NoError(t, err)
	assert.False(t, promoted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteMember_GuardsOnJoinedStatus(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(`UPDATE "goal_members" SET "status"=\$1 WHERE .*goal_id = \$2 AND user_id = \$3 AND status = \$4`).
		WithArgs("COMPLETED", uint64(3), uint64(9), "JOINED").
		WillReturnResult(sqlmock.NewResult(0, 0))

	updated, err := repo.CompleteMember(context.Background(), 3, 9)

	require.NoError(t, err)
	assert.False(t, updated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithOwner_RollsBackGoalWhenOwnerInsertFails(t *testing.T) {
	repo, mock := newMockRepository(t)
	insertErr := errors.New("owner insert failed")

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "goals"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectExec(`INSERT INTO "goal_members"`).
		WillReturnError(insertErr)
	mock.ExpectRollback()

	goal := &models.Goal{Name: "Run", CreatedBy: 4, Status: models.GoalStatusPending}
	owner := &models.GoalMember{UserID: 4, Role: models.RoleOwner, Status: models.MembershipJoined}

	err := repo.CreateWithOwner(context.Background(), goal, owner)

	require.ErrorIs(t, err, insertErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithOwner_CommitsBothRows(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "goals"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectExec(`INSERT INTO "goal_members"`).
		WithArgs(uint64(11), uint64(4), "owner", "JOINED", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	goal := &models.Goal{Name: "Run", CreatedBy: 4, Status: models.GoalStatusPending}
	owner := &models.GoalMember{UserID: 4, Role: models.RoleOwner, Status: models.MembershipJoined}

	require.NoError(t, repo.CreateWithOwner(context.Background(), goal, owner))
	assert.EqualValues(t, 11, goal.ID)
	assert.EqualValues(t, 11, owner.GoalID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
