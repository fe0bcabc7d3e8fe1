package repository

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockRepo(t *testing.T) (MembershipRepository, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return NewMembershipRepository(db), mock
}

func TestTransferOwnership_CommitsBothUpdates(t *testing.T) {
	repo, mock := setupMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `memberships` SET `role`=").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE `memberships` SET `role`=").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.TransferOwnership(1, 10, 20))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransferOwnership_RollsBackWhenTargetMissing(t *testing.T) {
	repo, mock := setupMockRepo(t)

	// The owner demotion lands, but no row matches the target. The whole
	// transaction must roll back so the demotion never becomes visible.
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `memberships` SET `role`=").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE `memberships` SET `role`=").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.TransferOwnership(1, 10, 20)
	require.ErrorIs(t, err, ErrOwnerMissing)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransferOwnership_RollsBackWhenOwnerMissing(t *testing.T) {
	repo, mock := setupMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `memberships` SET `role`=").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.TransferOwnership(1, 10, 20)
	require.ErrorIs(t, err, ErrOwnerMissing)
	require.NoError(t, mock.ExpectationsWereMet())
}
