package configstore

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/nebari-dev/modelconfig/internal/hooks"
	"github.com/nebari-dev/modelconfig/internal/models"
	"github.com/nebari-dev/modelconfig/internal/valuetype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// team is a second owner kind, used to show entries are partitioned by type.
type team struct{ id string }

func (t team) ConfigurableType() string { return "teams" }
func (t team) ConfigurableID() string   { return t.id }

// recorder captures value-set events and appends its name to a shared log.
type recorder struct {
	name   string
	log    *[]string
	events []hooks.ValueSetEvent
	err    error
}

func (r *recorder) OnValueSet(ctx context.Context, ev hooks.ValueSetEvent) error {
	*r.log = append(*r.log, r.name)
	r.events = append(r.events, ev)
	return r.err
}

// testDB opens a fresh SQLite database with the configuration schema.
func testDB(t *testing.T, entry any) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, entry))
	return db
}

// createTestUser inserts a user and returns it.
func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := models.User{Username: username, Email: username + "@test.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func testStore(t *testing.T, opts Options) (*DefaultStore, *gorm.DB) {
	t.Helper()
	db := testDB(t, &models.Configuration{})
	return NewDefault(db, opts), db
}

func TestSetValue_CreatesThenUpdates(t *testing.T) {
	ctx := context.Background()
	store, db := testStore(t, Options{Keys: KeyPolicy{FoldCase: true}})
	alice := createTestUser(t, db, "alice")

	first, created, err := store.SetValue(ctx, alice, "theme", "dark", valuetype.String)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "users", first.ConfigurableType)
	assert.Equal(t, alice.ID.String(), first.ConfigurableID)

	second, created, err := store.SetValue(ctx, alice, "THEME", float64(3), valuetype.Int)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, valuetype.Int, second.Type)

	var count int64
	require.NoError(t, db.Model(&models.Configuration{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	v, err := store.GetValue(ctx, alice, "theme")
	require.NoError(t, err)
	assert.Equal(t, int64(3), v.Interface())
}

func TestSetValue_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store, db := testStore(t, Options{Keys: KeyPolicy{FoldCase: true}})
	alice := createTestUser(t, db, "alice")

	tests := []struct {
		key string
		typ valuetype.Type
		raw any
	}{
		{"s", valuetype.String, "hello"},
		{"s_empty", valuetype.String, ""},
		{"i", valuetype.Int, "42"},
		{"i_zero", valuetype.Int, float64(0)},
		{"f", valuetype.Float, 2.45},
		{"b_true", valuetype.Bool, "yes"},
		{"b_false", valuetype.Bool, false},
		{"arr_map", valuetype.Array, map[string]any{"theme": "dark", "color": "#333333"}},
		{"arr_list", valuetype.Array, []any{"a", float64(2)}},
		{"arr_scalar", valuetype.Array, "solo"},
		{"j", valuetype.JSON, map[string]any{"nested": []any{true, nil}}},
		{"d", valuetype.Date, "2025-06-30T12:04:53Z"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			_, _, err := store.SetValue(ctx, alice, tt.key, tt.raw, tt.typ)
			require.NoError(t, err)

			got, err := store.GetValue(ctx, alice, tt.key)
			require.NoError(t, err)
			require.True(t, got.Present())
			assert.Equal(t, tt.typ.Coerce(tt.raw).Interface(), got.Interface())

			typ, err := store.GetType(ctx, alice, tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.typ, typ)
		})
	}
}

func TestSetValue_NumericEntriesReloadFromDB(t *testing.T) {
	ctx := context.Background()
	store, db := testStore(t, Options{})
	alice := createTestUser(t, db, "alice")

	_, _, err := store.SetValue(ctx, alice, "retries", 3, valuetype.Int)
	require.NoError(t, err)
	_, _, err = store.SetValue(ctx, alice, "ratio", 0.5, valuetype.Float)
	require.NoError(t, err)
	_, _, err = store.SetValue(ctx, alice, "beta", true, valuetype.Bool)
	require.NoError(t, err)

	var kind string
	require.NoError(t, db.Raw("SELECT typeof(value) FROM configurations WHERE key = ?", "retries").Scan(&kind).Error)
	assert.Equal(t, "text", kind)

	_, created, err := store.SetValue(ctx, alice, "retries", 4, valuetype.Int)
	require.NoError(t, err)
	assert.False(t, created)

	v, err := store.GetValue(ctx, alice, "retries")
	require.NoError(t, err)
	assert.Equal(t, int64(4), v.Interface())
	v, err = store.GetValue(ctx, alice, "ratio")
	require.NoError(t, err)
	assert.Equal(t, 0.5, v.Interface())
	v, err = store.GetValue(ctx, alice, "beta")
	require.NoError(t, err)
	assert.Equal(t, true, v.Interface())

	all, err := store.List(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	require.NoError(t, store.Delete(ctx, alice, "retries"))
	_, err = store.Get(ctx, alice, "retries")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetValue_LargeIntKeepsPrecision(t *testing.T) {
	ctx := context.Background()
	store, db := testStore(t, Options{})
	alice := createTestUser(t, db, "alice")

	for _, n := range []int64{9007199254740993, -9007199254740993, math.MaxInt64} {
		_, _, err := store.SetValue(ctx, alice, "big", n, valuetype.Int)
		require.NoError(t, err)

		v, err := store.GetValue(ctx, alice, "big")
		require.NoError(t, err)
		assert.Equal(t, n, v.Interface())
	}

	_, _, err := store.SetValue(ctx, alice, "ids", []any{"a", 2}, valuetype.Array)
	require.NoError(t, err)
	v, err := store.GetValue(ctx, alice, "ids")
	require.NoError(t, err)
	assert.Equal(t, []any{"a", float64(2)}, v.Interface())
}

func TestSetValue_ThemePreferenceExample(t *testing.T) {
	ctx := context.Background()
	store, db := testStore(t, Options{Keys: KeyPolicy{FoldCase: true}})
	alice := createTestUser(t, db, "alice")

	entry, _, err := store.SetValue(ctx, alice, "Theme Preference!", map[string]any{"theme": "dark"}, valuetype.Array)
	require.NoError(t, err)
	assert.Equal(t, "theme_preference", entry.Key)

	v, err := store.GetValue(ctx, alice, "theme_preference")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"theme": "dark"}, v.Interface())
}

func TestSetValue_CaseFoldingDisabled(t *testing.T) {
	ctx := context.Background()
	store, db := testStore(t, Options{Keys: KeyPolicy{FoldCase: false}})
	alice := createTestUser(t, db, "alice")

	_, _, err := store.SetValue(ctx, alice, "Theme", "dark", valuetype.String)
	require.NoError(t, err)
	_, created, err := store.SetValue(ctx, alice, "theme", "light", valuetype.String)
	require.NoError(t, err)
	assert.True(t, created, "keys differing only in case are distinct when folding is off")

	_, err = store.Get(ctx, alice, "THEME")
	assert.ErrorIs(t, err, ErrNotFound)

	entries, err := store.List(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestSetValue_UnparseableDateIsAbsent(t *testing.T) {
	ctx := context.Background()
	store, db := testStore(t, Options{})
	alice := createTestUser(t, db, "alice")

	entry, _, err := store.SetValue(ctx, alice, "k", "not-a-date", valuetype.Date)
	require.NoError(t, err)
	assert.JSONEq(t, "null", string(entry.Value))

	v, err := store.GetValue(ctx, alice, "k")
	require.NoError(t, err)
	assert.False(t, v.Present())
}

func TestSetValue_DateStoredAsCanonicalString(t *testing.T) {
	ctx := context.Background()
	store, db := testStore(t, Options{})
	alice := createTestUser(t, db, "alice")

	when := time.Date(2025, 1, 2, 3, 4, 5, 0, time.FixedZone("plus2", 2*3600))
	entry, _, err := store.SetValue(ctx, alice, "launch", when, valuetype.Date)
	require.NoError(t, err)
	assert.JSONEq(t, `"2025-01-02 01:04:05"`, string(entry.Value))

	v, err := store.GetValue(ctx, alice, "launch")
	require.NoError(t, err)
	assert.True(t, when.Equal(v.Interface().(time.Time)))
}

func TestSetValue_Validation(t *testing.T) {
	ctx := context.Background()
	store, db := testStore(t, Options{})
	alice := createTestUser(t, db, "alice")

	_, _, err := store.SetValue(ctx, alice, "k", "v", valuetype.Type("decimal"))
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "type", ve.Field)

	_, _, err = store.SetValue(ctx, alice, "!!!", "v", valuetype.String)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "key", ve.Field)
}

func TestAllowedKeys_GateWritesOnly(t *testing.T) {
	ctx := context.Background()
	db := testDB(t, &models.Configuration{})
	alice := createTestUser(t, db, "alice")

	open := NewDefault(db, Options{Keys: KeyPolicy{FoldCase: true}})
	_, _, err := open.SetValue(ctx, alice, "legacy", "x", valuetype.String)
	require.NoError(t, err)

	gated := NewDefault(db, Options{Keys: KeyPolicy{FoldCase: true, Allowed: []string{"theme"}}})

	_, _, err = gated.SetValue(ctx, alice, "legacy", "y", valuetype.String)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "key", ve.Field)

	_, _, err = gated.SetValue(ctx, alice, "Theme", "dark", valuetype.String)
	require.NoError(t, err)

	// Reads and deletes ignore the allow-list.
	v, err := gated.GetValue(ctx, alice, "legacy")
	require.NoError(t, err)
	assert.Equal(t, "x", v.Interface())
	require.NoError(t, gated.Delete(ctx, alice, "legacy"))
}

func TestOwnerIsolation(t *testing.T) {
	ctx := context.Background()
	store, db := testStore(t, Options{})
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	_, _, err := store.SetValue(ctx, alice, "theme", 2.45, valuetype.Float)
	require.NoError(t, err)

	_, err = store.Get(ctx, bob, "theme")
	assert.ErrorIs(t, err, ErrNotFound)

	v, err := store.GetValue(ctx, bob, "theme")
	require.NoError(t, err)
	assert.False(t, v.Present())

	assert.ErrorIs(t, store.Delete(ctx, bob, "theme"), ErrNotFound)

	entries, err := store.List(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// Same id under a different owner type is a different owner.
	other := team{id: alice.ID.String()}
	_, err = store.Get(ctx, other, "theme")
	assert.ErrorIs(t, err, ErrNotFound)

	_, created, err := store.SetValue(ctx, other, "theme", "team-default", valuetype.String)
	require.NoError(t, err)
	assert.True(t, created)

	v, err = store.GetValue(ctx, alice, "theme")
	require.NoError(t, err)
	assert.Equal(t, 2.45, v.Interface())
}

func TestDelete_Twice(t *testing.T) {
	ctx := context.Background()
	store, db := testStore(t, Options{})
	alice := createTestUser(t, db, "alice")

	_, _, err := store.SetValue(ctx, alice, "k", "v", valuetype.String)
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, alice, "k"))
	assert.ErrorIs(t, store.Delete(ctx, alice, "k"), ErrNotFound)
}

func TestGetValue_UnknownTypeIsAbsent(t *testing.T) {
	ctx := context.Background()
	store, db := testStore(t, Options{})
	alice := createTestUser(t, db, "alice")

	entry, _, err := store.SetValue(ctx, alice, "k", "v", valuetype.String)
	require.NoError(t, err)
	require.NoError(t, db.Model(entry).Update("type", "legacy").Error)

	v, err := store.GetValue(ctx, alice, "k")
	require.NoError(t, err)
	assert.False(t, v.Present())

	_, err = store.GetType(ctx, alice, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList_OrderedByCreation(t *testing.T) {
	ctx := context.Background()
	store, db := testStore(t, Options{})
	alice := createTestUser(t, db, "alice")

	for _, k := range []string{"c", "a", "b"} {
		_, _, err := store.SetValue(ctx, alice, k, k, valuetype.String)
		require.NoError(t, err)
	}

	entries, err := store.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"c", "a", "b"}, []string{entries[0].Key, entries[1].Key, entries[2].Key})
}

func TestValueSetHooks(t *testing.T) {
	ctx := context.Background()
	var calls []string
	first := &recorder{name: "first", log: &calls}
	second := &recorder{name: "second", log: &calls}
	dispatcher, err := hooks.NewDispatcher(first, second)
	require.NoError(t, err)

	store, db := testStore(t, Options{Keys: KeyPolicy{FoldCase: true}, Hooks: dispatcher})
	alice := createTestUser(t, db, "alice")

	entry, _, err := store.SetValue(ctx, alice, "Launch Date", "2025-06-30", valuetype.Date)
	require.NoError(t, err)
	_, _, err = store.SetValue(ctx, alice, "launch_date", "garbage", valuetype.Date)
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second", "first", "second"}, calls)
	require.Len(t, first.events, 2)

	created := first.events[0]
	assert.True(t, created.Created)
	assert.Equal(t, "launch_date", created.Key)
	assert.Equal(t, valuetype.Date, created.Type)
	assert.Equal(t, alice.ID.String(), created.Owner.ConfigurableID())
	assert.Equal(t, entry.ID, created.Entry.ID)
	assert.IsType(t, time.Time{}, created.Value.Interface())

	updated := first.events[1]
	assert.False(t, updated.Created)
	assert.False(t, updated.Value.Present())
}

func TestValueSetHooks_ErrorPropagates(t *testing.T) {
	ctx := context.Background()
	var calls []string
	boom := errors.New("boom")
	failing := &recorder{name: "failing", log: &calls, err: boom}
	after := &recorder{name: "after", log: &calls}
	dispatcher, err := hooks.NewDispatcher(failing, after)
	require.NoError(t, err)

	store, db := testStore(t, Options{Hooks: dispatcher})
	alice := createTestUser(t, db, "alice")

	entry, created, err := store.SetValue(ctx, alice, "k", "v", valuetype.String)
	assert.ErrorIs(t, err, boom)
	assert.True(t, created)
	require.NotNil(t, entry)
	assert.Equal(t, []string{"failing"}, calls)

	// The write itself is not rolled back.
	_, err = store.Get(ctx, alice, "k")
	assert.NoError(t, err)
}

func TestVersionedStore(t *testing.T) {
	ctx := context.Background()
	db := testDB(t, &models.VersionedConfiguration{})
	store := New[models.VersionedConfiguration](db, Options{})
	alice := createTestUser(t, db, "alice")

	entry, created, err := store.SetValue(ctx, alice, "k", "one", valuetype.String)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 1, entry.Revision)

	entry, created, err = store.SetValue(ctx, alice, "k", "two", valuetype.String)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 2, entry.Revision)

	reloaded, err := store.Get(ctx, alice, "k")
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.Revision)
	assert.Equal(t, "configurations", reloaded.TableName())

	entries, err := store.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 2, entries[0].Revision)
}

func TestBind(t *testing.T) {
	ctx := context.Background()
	store, db := testStore(t, Options{Keys: KeyPolicy{FoldCase: true}})
	alice := createTestUser(t, db, "alice")
	cfg := store.Bind(alice)

	assert.Equal(t, alice, cfg.Owner())

	_, created, err := cfg.Set(ctx, "notifications", map[string]any{"email": true, "push": false}, valuetype.JSON)
	require.NoError(t, err)
	assert.True(t, created)

	entry, err := cfg.Config(ctx, "Notifications")
	require.NoError(t, err)
	assert.Equal(t, "notifications", entry.Key)

	typ, err := cfg.Type(ctx, "notifications")
	require.NoError(t, err)
	assert.Equal(t, valuetype.JSON, typ)

	v, err := cfg.Value(ctx, "notifications")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"email": true, "push": false}, v.Interface())

	all, err := cfg.Configurations(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, cfg.Delete(ctx, "notifications"))
	_, err = cfg.Config(ctx, "notifications")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAccessor_VersionedEntries(t *testing.T) {
	ctx := context.Background()
	db := testDB(t, &models.VersionedConfiguration{})
	store := New[models.VersionedConfiguration](db, Options{})
	alice := createTestUser(t, db, "alice")

	var acc Accessor = store.Bind(alice)

	base, created, err := acc.Put(ctx, "retries", "3", valuetype.Int)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "retries", base.Key)
	assert.JSONEq(t, `3`, string(base.Value))

	_, _, err = acc.Put(ctx, "retries", 4, valuetype.Int)
	require.NoError(t, err)

	entries, err := acc.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.JSONEq(t, `4`, string(entries[0].Value))

	rec, err := store.Get(ctx, alice, "retries")
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Revision)

	_, _, err = acc.Put(ctx, "retries", 1, valuetype.Type("decimal"))
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}
