package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/visaflow/backend/internal/domain/payment"
	"github.com/visaflow/backend/internal/domain/shared"
)

// newMockLedgerRepository creates a GormLedgerRepository with a mocked SQL connection
func newMockLedgerRepository(t *testing.T) (*GormLedgerRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	return NewGormLedgerRepository(gormDB), mock, mockDB
}

func ledgerColumns() []string {
	return []string{"id", "created_at", "updated_at", "client_id", "product_type", "entity_kind", "entity_id", "amount", "payment_date", "invoice_no", "remarks"}
}

func TestGormLedgerRepository_FindByID(t *testing.T) {
	t.Run("finds existing row", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		rowID := uuid.New()
		clientID := uuid.New()
		now := time.Now()

		rows := sqlmock.NewRows(ledgerColumns()).
			AddRow(rowID, now, now, clientID, "consultation_fee", "master_only", nil, decimal.NewFromInt(1500), now, "INV-1", "")

		mock.ExpectQuery(`SELECT \* FROM "payment_ledger" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(rowID, 1).
			WillReturnRows(rows)

		row, err := repo.FindByID(context.Background(), rowID)

		assert.NoError(t, err)
		require.NotNil(t, row)
		assert.Equal(t, rowID, row.ID)
		assert.Equal(t, clientID, row.ClientID)
		assert.Equal(t, payment.KindMasterOnly, row.EntityKind)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns nil for missing row", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		rowID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "payment_ledger"`).
			WithArgs(rowID, 1).
			WillReturnRows(sqlmock.NewRows(ledgerColumns()))

		row, err := repo.FindByID(context.Background(), rowID)

		assert.NoError(t, err)
		assert.Nil(t, row)
	})
}

func TestGormLedgerRepository_FindByClient(t *testing.T) {
	t.Run("lists newest first", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		clientID := uuid.New()
		now := time.Now()
		detailID := uuid.New()

		rows := sqlmock.NewRows(ledgerColumns()).
			AddRow(uuid.New(), now, now, clientID, "sim_card", "sim_card", detailID, nil, nil, nil, "").
			AddRow(uuid.New(), now.Add(-time.Hour), now, clientID, "embassy_fee", "master_only", nil, decimal.NewFromInt(900), now, nil, "")

		mock.ExpectQuery(`SELECT \* FROM "payment_ledger" WHERE client_id = \$1 ORDER BY created_at DESC`).
			WithArgs(clientID).
			WillReturnRows(rows)

		result, err := repo.FindByClient(context.Background(), clientID)

		assert.NoError(t, err)
		assert.Len(t, result, 2)
		assert.Equal(t, detailID, *result[0].EntityID)
		assert.Nil(t, result[0].Amount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormLedgerRepository_FindByEntityID(t *testing.T) {
	t.Run("finds the linking row", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		entityID := uuid.New()
		now := time.Now()

		rows := sqlmock.NewRows(ledgerColumns()).
			AddRow(uuid.New(), now, now, uuid.New(), "financing", "financing", entityID, nil, nil, nil, "")

		mock.ExpectQuery(`SELECT \* FROM "payment_ledger" WHERE entity_kind = \$1 AND entity_id = \$2`).
			WithArgs("financing", entityID, 1).
			WillReturnRows(rows)

		row, err := repo.FindByEntityID(context.Background(), payment.KindFinancing, entityID)

		assert.NoError(t, err)
		require.NotNil(t, row)
		assert.Equal(t, entityID, *row.EntityID)
	})

	t.Run("returns nil when no row links the entity", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		entityID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "payment_ledger"`).
			WithArgs("financing", entityID, 1).
			WillReturnRows(sqlmock.NewRows(ledgerColumns()))

		row, err := repo.FindByEntityID(context.Background(), payment.KindFinancing, entityID)

		assert.NoError(t, err)
		assert.Nil(t, row)
	})
}

func TestGormLedgerRepository_Create(t *testing.T) {
	t.Run("inserts a row", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		row, err := payment.NewMasterOnlyRow(uuid.New(), payment.ProductEmbassyFee, decimal.NewFromInt(900), time.Now(), nil, "")
		require.NoError(t, err)

		mock.ExpectExec(`INSERT INTO "payment_ledger"`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Create(context.Background(), row))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormLedgerRepository_Save(t *testing.T) {
	t.Run("updates a row", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		row, err := payment.NewMasterOnlyRow(uuid.New(), payment.ProductEmbassyFee, decimal.NewFromInt(900), time.Now(), nil, "")
		require.NoError(t, err)

		mock.ExpectExec(`UPDATE "payment_ledger" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Save(context.Background(), row))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormLedgerRepository_Delete(t *testing.T) {
	t.Run("deletes existing row", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		rowID := uuid.New()

		mock.ExpectExec(`DELETE FROM "payment_ledger" WHERE id = \$1`).
			WithArgs(rowID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(context.Background(), rowID))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports not found for missing row", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		rowID := uuid.New()

		mock.ExpectExec(`DELETE FROM "payment_ledger" WHERE id = \$1`).
			WithArgs(rowID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(context.Background(), rowID)

		assert.True(t, shared.IsNotFound(err))
	})
}

func TestGormLedgerRepository_ExistsByInvoiceNo(t *testing.T) {
	t.Run("reports collision", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "payment_ledger" WHERE invoice_no = \$1`).
			WithArgs("INV-1").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		exists, err := repo.ExistsByInvoiceNo(context.Background(), "INV-1", uuid.Nil)

		assert.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("excludes own row on update", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		ownID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "payment_ledger" WHERE invoice_no = \$1 AND id <> \$2`).
			WithArgs("INV-1", ownID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		exists, err := repo.ExistsByInvoiceNo(context.Background(), "INV-1", ownID)

		assert.NoError(t, err)
		assert.False(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
