package directory

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "directory.db")
	store, err := Open(context.Background(), DriverSQLite, dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func TestSQLStore_MigrateIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Migrate(context.Background()))

	all, err := store.Query(context.Background(), Filter{}, 100)
	require.NoError(t, err)
	assert.Len(t, all, 6)
}

func TestSQLStore_QueryByLastnameIgnoresCase(t *testing.T) {
	store := newTestStore(t)

	var f Filter
	f.Eq(FieldLastname, "Anderson")
	doctors, err := store.Query(context.Background(), f, 10)
	require.NoError(t, err)
	require.Len(t, doctors, 3)
	assert.Equal(t, "ANDERSON, VIRGINIA  MHC", doctors[0].FullName)
	assert.Equal(t, "REDMOND, WA 980524465", doctors[0].City)
	assert.Equal(t, "Nurse", doctors[0].Specialization)
}

func TestSQLStore_QueryCombinesPredicates(t *testing.T) {
	store := newTestStore(t)

	var f Filter
	f.Eq(FieldLastname, "anderson").Eq(FieldGender, "M")
	doctors, err := store.Query(context.Background(), f, 10)
	require.NoError(t, err)
	require.Len(t, doctors, 2)
	for _, d := range doctors {
		assert.NotEqual(t, "ANDERSON, VIRGINIA  MHC", d.FullName)
	}
}

func TestSQLStore_QueryHonoursLimit(t *testing.T) {
	store := newTestStore(t)

	var f Filter
	f.Eq(FieldZipcode, "98052")
	doctors, err := store.Query(context.Background(), f, 1)
	require.NoError(t, err)
	assert.Len(t, doctors, 1)
}

func TestSQLStore_ValuesAreNotInterpolated(t *testing.T) {
	store := newTestStore(t)

	var f Filter
	f.Eq(FieldLastname, "x' OR '1'='1")
	doctors, err := store.Query(context.Background(), f, 10)
	require.NoError(t, err)
	assert.Empty(t, doctors)

	all, err := store.Query(context.Background(), Filter{}, 100)
	require.NoError(t, err)
	assert.Len(t, all, 6, "table must be untouched")
}

func TestBuildQuery_RejectsUnknownField(t *testing.T) {
	t.Parallel()

	_, _, err := buildQuery(Filter{Predicates: []Predicate{{Field: "id; DROP TABLE doctors", Op: OpEq, Value: "1"}}}, 5)
	assert.Error(t, err)

	_, _, err = buildQuery(Filter{Predicates: []Predicate{{Field: FieldLastname, Op: "LIKE", Value: "A%"}}}, 5)
	assert.Error(t, err)
}

func TestBuildQuery_Placeholders(t *testing.T) {
	t.Parallel()

	var f Filter
	f.Eq(FieldZipcode, "98052").Eq(FieldGender, "F")
	q, args, err := buildQuery(f, 7)
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT full_name, street, city, specialty FROM doctors WHERE UPPER(zipcode) = UPPER(?) AND UPPER(gender) = UPPER(?) ORDER BY id LIMIT ?",
		q)
	assert.Equal(t, []any{"98052", "F", 7}, args)
}

func TestFilter_String(t *testing.T) {
	t.Parallel()

	var f Filter
	assert.Equal(t, "", f.String())
	assert.True(t, f.Empty())

	f.Eq(FieldLastname, "O'Brien").Eq(FieldGender, "M")
	assert.Equal(t, "lastname = 'O''Brien' AND gender = 'M'", f.String())
	v, ok := f.Value(FieldGender)
	assert.True(t, ok)
	assert.Equal(t, "M", v)
}

func TestMySQLConfig_DSN(t *testing.T) {
	t.Parallel()

	dsn := MySQLConfig{Host: "db.local", Port: 3306, User: "app", Password: "secret", DBName: "healthylinkx"}.DSN()
	assert.Contains(t, dsn, "app:secret@tcp(db.local:3306)/healthylinkx")
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), "postgres", "host=x")
	assert.Error(t, err)
	_, err = Open(context.Background(), DriverSQLite, " ")
	assert.Error(t, err)
}
