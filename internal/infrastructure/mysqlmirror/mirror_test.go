package mysqlmirror

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	role1 = "11111111-1111-1111-1111-111111111111"
	role2 = "22222222-2222-2222-2222-222222222222"
	role3 = "33333333-3333-3333-3333-333333333333"
)

func newMocks(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	src, srcMock, err := sqlmock.New()
	require.NoError(t, err)
	dst, dstMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		src.Close()
		dst.Close()
	})
	return src, srcMock, dst, dstMock
}

func TestRun_CopiaPorLotesYVerifica(t *testing.T) {
	src, srcMock, dst, dstMock := newMocks(t)
	m := New(src, dst, nil)
	m.schema = "CREATE TABLE roles (id CHAR(36) PRIMARY KEY)"

	// esquema ya aplicado: 1050 se omite
	dstMock.ExpectExec(regexp.QuoteMeta("CREATE TABLE roles")).
		WillReturnError(&mysql.MySQLError{Number: 1050, Message: "Table 'roles' already exists"})

	srcMock.ExpectQuery(regexp.QuoteMeta("FROM information_schema.columns")).
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type", "udt_name"}).
			AddRow("id", "uuid", "uuid").
			AddRow("name", "text", "text").
			AddRow("description", "text", "text").
			AddRow("hierarchy_level", "integer", "int4").
			AddRow("created_at", "timestamp with time zone", "timestamptz"))
	dstMock.ExpectQuery(regexp.QuoteMeta("FROM information_schema.columns WHERE table_schema = DATABASE()")).
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}).
			AddRow("id").AddRow("name").AddRow("hierarchy_level").AddRow("created_at"))

	bogota := time.FixedZone("COT", -5*3600)
	created := time.Date(2024, 3, 1, 0, 0, 0, 0, bogota)
	cols := []string{"id", "name", "hierarchy_level", "created_at"}

	srcMock.ExpectQuery(regexp.QuoteMeta(`SELECT "id", "name", "hierarchy_level", "created_at" FROM roles ORDER BY id LIMIT 2 OFFSET 0`)).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(role1, "admin", int64(100), created).
			AddRow(role2, "manager", int64(80), created))
	dstMock.ExpectExec(regexp.QuoteMeta("INSERT INTO roles (`id`,`name`,`hierarchy_level`,`created_at`) VALUES (?,?,?,?),(?,?,?,?) "+
		"ON DUPLICATE KEY UPDATE `id`=VALUES(`id`),`name`=VALUES(`name`),`hierarchy_level`=VALUES(`hierarchy_level`),`created_at`=VALUES(`created_at`)")).
		WithArgs(role1, "admin", int64(100), "2024-03-01 05:00:00", role2, "manager", int64(80), "2024-03-01 05:00:00").
		WillReturnResult(sqlmock.NewResult(0, 3)) // role1 nuevo, role2 actualizado

	srcMock.ExpectQuery(regexp.QuoteMeta("LIMIT 2 OFFSET 2")).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(role3, "employee", int64(10), created))
	dstMock.ExpectExec(regexp.QuoteMeta("INSERT INTO roles")).
		WillReturnResult(sqlmock.NewResult(0, 0)) // role3 sin cambios

	expectCounts(srcMock, dstMock, "roles", 3, 3)
	updated := time.Date(2024, 3, 2, 10, 30, 0, 123456000, bogota)
	expectStamps(srcMock, dstMock, "roles", "updated_at", updated, "2024-03-02 15:30:00.123456")

	rep, err := m.Run(context.Background(), Options{Tables: []string{"roles"}, BatchSize: 2})
	require.NoError(t, err)
	require.Len(t, rep.Tables, 1)
	tr := rep.Tables[0]
	assert.Equal(t, int64(3), tr.Copied)
	assert.Equal(t, int64(3), tr.Affected)
	assert.Equal(t, "2024-03-02 15:30:00.123456", tr.SourceMax)
	assert.Equal(t, int64(3), tr.SourceRows)
	assert.False(t, tr.Mismatch)
	assert.Empty(t, tr.Error)
	assert.Zero(t, rep.Mismatches())

	assert.NoError(t, srcMock.ExpectationsWereMet())
	assert.NoError(t, dstMock.ExpectationsWereMet())
}

func TestRun_SoloVerificacionDetectaDiferencias(t *testing.T) {
	src, srcMock, dst, dstMock := newMocks(t)
	m := New(src, dst, nil)

	expectCounts(srcMock, dstMock, "leads", 10, 7)
	expectStamps(srcMock, dstMock, "leads", "updated_at", time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC), "2024-05-01 08:00:00.000000")

	rep, err := m.Run(context.Background(), Options{Tables: []string{"leads"}, VerifyOnly: true})
	require.NoError(t, err)
	require.Len(t, rep.Tables, 1)
	assert.True(t, rep.Tables[0].Mismatch)
	assert.Zero(t, rep.Tables[0].Copied)
	assert.Equal(t, 1, rep.Mismatches())
	assert.NoError(t, srcMock.ExpectationsWereMet())
	assert.NoError(t, dstMock.ExpectationsWereMet())
}

func TestRun_SoloVerificacionDetectaFilaModificada(t *testing.T) {
	src, srcMock, dst, dstMock := newMocks(t)
	m := New(src, dst, nil)

	// mismo conteo, pero un lead se editó en Postgres después de la última copia
	expectCounts(srcMock, dstMock, "leads", 10, 10)
	expectStamps(srcMock, dstMock, "leads", "updated_at", time.Date(2024, 5, 2, 9, 15, 0, 0, time.UTC), "2024-05-01 08:00:00.000000")

	rep, err := m.Run(context.Background(), Options{Tables: []string{"leads"}, VerifyOnly: true})
	require.NoError(t, err)
	require.Len(t, rep.Tables, 1)
	tr := rep.Tables[0]
	assert.True(t, tr.Mismatch)
	assert.Equal(t, "2024-05-02 09:15:00", tr.SourceMax)
	assert.Equal(t, "2024-05-01 08:00:00", tr.TargetMax)
	assert.NoError(t, srcMock.ExpectationsWereMet())
	assert.NoError(t, dstMock.ExpectationsWereMet())
}

func TestRun_SoloVerificacionTablaVaciaEnAmbos(t *testing.T) {
	src, srcMock, dst, dstMock := newMocks(t)
	m := New(src, dst, nil)

	expectCounts(srcMock, dstMock, "chat_messages", 0, 0)
	srcMock.ExpectQuery(regexp.QuoteMeta(`SELECT MAX("created_at") FROM chat_messages`)).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(nil))
	dstMock.ExpectQuery(regexp.QuoteMeta("MAX(`created_at`)")).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(nil))

	rep, err := m.Run(context.Background(), Options{Tables: []string{"chat_messages"}, VerifyOnly: true})
	require.NoError(t, err)
	assert.False(t, rep.Tables[0].Mismatch)
	assert.Empty(t, rep.Tables[0].Error)
}

func TestUpsertClause(t *testing.T) {
	assert.Equal(t, "ON DUPLICATE KEY UPDATE `task_id`=VALUES(`task_id`),`employee_id`=VALUES(`employee_id`)",
		upsertClause([]string{"`task_id`", "`employee_id`"}))
}

func TestRun_ErrorDeEsquemaAborta(t *testing.T) {
	src, _, dst, dstMock := newMocks(t)
	m := New(src, dst, nil)
	m.schema = "CREATE TABLE roles (id CHAR(36))"

	dstMock.ExpectExec("CREATE TABLE roles").WillReturnError(&mysql.MySQLError{Number: 1045, Message: "Access denied"})

	_, err := m.Run(context.Background(), Options{Tables: []string{"roles"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "esquema")
}

func TestSelectTables(t *testing.T) {
	all, err := SelectTables(nil)
	require.NoError(t, err)
	assert.Equal(t, "roles", all[0].Name)

	sel, err := SelectTables([]string{"chat_messages", "users"})
	require.NoError(t, err)
	require.Len(t, sel, 2)
	assert.Equal(t, "users", sel[0].Name, "respeta el orden de dependencias")

	_, err = SelectTables([]string{"facturas"})
	assert.ErrorContains(t, err, "facturas")
}

func TestCoerce(t *testing.T) {
	v, err := coerce(Column{Name: "is_active", DataType: "boolean"}, true)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	v, err = coerce(Column{Name: "gross_value", DataType: "numeric"}, []byte("1500.50"))
	require.NoError(t, err)
	assert.Equal(t, "1500.50", v)

	v, err = coerce(Column{Name: "services", DataType: "ARRAY"}, `{seo,"web design","a\"b",NULL}`)
	require.NoError(t, err)
	assert.JSONEq(t, `["seo","web design","a\"b",null]`, v.(string))

	v, err = coerce(Column{Name: "services", DataType: "ARRAY"}, "{}")
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	v, err = coerce(Column{Name: "sale_date", DataType: "date"}, time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "2024-05-10", v)

	v, err = coerce(Column{Name: "id", DataType: "uuid"}, [16]byte{0x11, 0x11, 0x11, 0x11, 0x11, 0x11, 0x11, 0x11, 0x11, 0x11, 0x11, 0x11, 0x11, 0x11, 0x11, 0x11})
	require.NoError(t, err)
	assert.Equal(t, role1, v)

	v, err = coerce(Column{Name: "after", DataType: "jsonb"}, []byte(`{"can_read":true}`))
	require.NoError(t, err)
	assert.Equal(t, `{"can_read":true}`, v)

	v, err = coerce(Column{Name: "lead_id", DataType: "uuid"}, nil)
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = coerce(Column{Name: "cash_in", DataType: "numeric"}, "abc")
	assert.Error(t, err)
}

func expectCounts(src, dst sqlmock.Sqlmock, table string, srcN, dstN int64) {
	src.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM " + table)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(srcN))
	dst.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM " + table)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(dstN))
}

func expectStamps(src, dst sqlmock.Sqlmock, table, col string, srcMax time.Time, dstMax string) {
	src.ExpectQuery(regexp.QuoteMeta(`SELECT MAX("` + col + `") FROM ` + table)).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(srcMax))
	dst.ExpectQuery(regexp.QuoteMeta("SELECT DATE_FORMAT(MAX(`" + col + "`), '%Y-%m-%d %H:%i:%s.%f') FROM " + table)).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(dstMax))
}
