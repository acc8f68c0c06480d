package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"terminal-portal/internal/db/dbtest"
	"terminal-portal/internal/model"
)

func verificationFixture() *model.VerificationRecord {
	return &model.VerificationRecord{
		RecorridoID:      42,
		TipoRecorrido:    model.DirectionDeparture,
		PatenteIngresada: "AB1234",
		AndenIngresado:   "3",
		AndenProgramado:  "3",
		EsPatenteValida:  true,
		EsAndenCorrecto:  true,
		Resultado:        model.VerificationAccepted,
		UsuarioID:        5,
		FechaManual:      "2024-06-10",
		HoraManual:       "10:00:00",
	}
}

func TestRecordVerificationCommitsAuditAndStatus(t *testing.T) {
	gdb, mock := dbtest.NewMock(t)
	repo := NewCheckinRepository(gdb)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "historial_verificaciones"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectExec(`UPDATE "import_salidas" SET "estado"=\$1 WHERE id = \$2`).
		WithArgs(model.MovementStatusAtBay, int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	record := verificationFixture()
	err := repo.RecordVerification(context.Background(), record, model.MovementStatusAtBay)
	require.NoError(t, err)
	assert.Equal(t, int64(7), record.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordVerificationRollsBackWhenMovementVanished(t *testing.T) {
	gdb, mock := dbtest.NewMock(t)
	repo := NewCheckinRepository(gdb)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "historial_verificaciones"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(8))
	mock.ExpectExec(`UPDATE "import_salidas"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.RecordVerification(context.Background(), verificationFixture(), model.MovementStatusAtBay)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordVerificationRollsBackOnStatusFailure(t *testing.T) {
	gdb, mock := dbtest.NewMock(t)
	repo := NewCheckinRepository(gdb)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "historial_verificaciones"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))
	mock.ExpectExec(`UPDATE "import_salidas"`).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := repo.RecordVerification(context.Background(), verificationFixture(), model.MovementStatusAtBay)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordVerificationSkipsStatusWhenAuditFails(t *testing.T) {
	gdb, mock := dbtest.NewMock(t)
	repo := NewCheckinRepository(gdb)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "historial_verificaciones"`).
		WillReturnError(errors.New("insert or update violates foreign key constraint"))
	mock.ExpectRollback()

	err := repo.RecordVerification(context.Background(), verificationFixture(), model.MovementStatusAtBay)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordVerificationRejectsUnknownDirection(t *testing.T) {
	gdb, mock := dbtest.NewMock(t)
	repo := NewCheckinRepository(gdb)

	record := verificationFixture()
	record.TipoRecorrido = model.Direction("usuarios")
	require.Error(t, repo.RecordVerification(context.Background(), record, model.MovementStatusAtBay))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateExtraTranslatesDuplicate(t *testing.T) {
	gdb, mock := dbtest.NewMock(t)
	repo := NewCheckinRepository(gdb)

	mock.ExpectQuery(`INSERT INTO "historial_extras"`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "historial_extras_pkey"})

	err := repo.CreateExtra(context.Background(), &model.ExtraTripRecord{
		Fecha:         "2024-06-10",
		Hora:          "11:15:00",
		Patente:       "ZZ9999",
		Empresa:       model.UnregisteredCompany,
		TipoRecorrido: model.DirectionArrival,
		Anden:         "2",
		UsuarioID:     5,
	})
	require.ErrorIs(t, err, ErrDuplicate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListVerificationsFiltersByDay(t *testing.T) {
	gdb, mock := dbtest.NewMock(t)
	repo := NewCheckinRepository(gdb)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "historial_verificaciones" WHERE fecha_manual = \$1`).
		WithArgs("2024-06-10").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT id, recorrido_id, .* FROM "historial_verificaciones" WHERE fecha_manual = \$1 ORDER BY created_at DESC, id DESC LIMIT \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "recorrido_id", "tipo_recorrido", "patente_ingresada", "resultado", "fecha_manual", "hora_manual"}).
			AddRow(1, 42, "salida", "AB1234", "ACEPTADO", "2024-06-10", "10:00:00"))

	records, total, err := repo.ListVerifications(context.Background(), HistoryFilter{Fecha: "2024-06-10", Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, records, 1)
	assert.Equal(t, model.DirectionDeparture, records[0].TipoRecorrido)
	assert.Equal(t, model.VerificationAccepted, records[0].Resultado)
	require.NoError(t, mock.ExpectationsWereMet())
}
