package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func projectionColumns() []string {
	return []string{
		"id", "tipo_autorizacion", "fecha_ingreso", "fecha_salida",
		"dentro_fuera", "observaciones",
		"c_id", "c_primer_nombre", "c_segundo_nombre", "c_primer_apellido",
		"c_segundo_apellido", "c_cedula",
		"e_id", "e_nombre",
		"g_id", "g_codigo", "g_estado",
		"v_id", "v_numero_placa", "v_tipo",
		"pe_id", "pe_nombre", "pe_codigo",
		"ps_id", "ps_nombre", "ps_codigo",
		"ui_id", "ui_primer_nombre", "ui_primer_apellido",
		"us_id", "us_primer_nombre", "us_primer_apellido",
	}
}

func TestReaderGetProjection(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	entryAt := time.Now().Add(-90 * time.Minute)
	mock.ExpectQuery(`SELECT .+ FROM ingresos i .+ AND i\.id = \$1`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows(projectionColumns()).AddRow(
			42, "AUTOMATIC", entryAt, nil, true, "sin novedad",
			7, "Juan", "Carlos", "Pérez", nil, "1-1111-1111",
			2, "Constructora Sur",
			3, "G-014", "ACTIVE",
			nil, nil, nil,
			1, "Portón Norte", "PN",
			nil, nil, nil,
			9, "Laura", "Mora",
			nil, nil, nil,
		))

	p, err := NewReader(db).GetProjection(context.Background(), 42)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, int64(42), p.ID)
	assert.Equal(t, "Juan Carlos Pérez", p.Contractor.FullName)
	assert.Equal(t, "Constructora Sur", p.Contractor.Company.Name)
	assert.Equal(t, "G-014", p.Badge.Code)
	assert.Nil(t, p.Vehicle)
	assert.Equal(t, "Portón Norte", p.EntryPoint.Name)
	assert.Nil(t, p.ExitPoint)
	assert.Equal(t, "Laura Mora", p.RegisteredBy.DisplayName)
	assert.True(t, p.Inside)
	assert.Equal(t, "1h 30m", p.Duration)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReaderGetProjectionMissing(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.ExpectQuery(`SELECT .+ FROM ingresos i .+ AND i\.id = \$1`).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(projectionColumns()))

	p, err := NewReader(db).GetProjection(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReaderListProjections(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.ExpectQuery(`SELECT count\(\*\) FROM ingresos`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(23))

	now := time.Now()
	rows := sqlmock.NewRows(projectionColumns())
	for _, id := range []int64{23, 22} {
		rows.AddRow(
			id, "AUTOMATIC", now, nil, true, nil,
			7, "Juan", nil, "Pérez", nil, "1-1111-1111",
			nil, nil,
			nil, nil, nil,
			nil, nil, nil,
			nil, nil, nil,
			nil, nil, nil,
			9, "Laura", "Mora",
			nil, nil, nil,
		)
	}
	mock.ExpectQuery(`SELECT .+ FROM ingresos i .+ ORDER BY i\.id DESC`).
		WithArgs(10, 0).
		WillReturnRows(rows)

	projections, total, err := NewReader(db).ListProjections(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 23, total)
	require.Len(t, projections, 2)
	assert.Equal(t, int64(23), projections[0].ID)
	assert.Equal(t, int64(22), projections[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
