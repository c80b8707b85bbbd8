package database

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"testing/fstest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minkgkyaw9899/m-blog-server/internal/config"
)

func TestEmbeddedMigrations(t *testing.T) {
	ms := GetMigrations()
	require.Len(t, ms, 4)

	names := []string{"create_users", "create_posts", "create_likes", "create_comments"}
	for i, m := range ms {
		assert.Equal(t, i+1, m.Version)
		assert.Equal(t, names[i], m.Name)
		assert.NotEmpty(t, m.UpScript)
		assert.NotEmpty(t, m.DownScript)
	}

	assert.Contains(t, GetMigrationByVersion(3).UpScript, "idx_user_post")
	assert.Equal(t, "000003_create_likes", GetMigrationByVersion(3).String())
	assert.Nil(t, GetMigrationByVersion(99))
}

func TestLoadMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"m/000002_second.up.sql":   {Data: []byte("CREATE TABLE b (id int);")},
		"m/000002_second.down.sql": {Data: []byte("DROP TABLE b;")},
		"m/000001_first.up.sql":    {Data: []byte("CREATE TABLE a (id int);")},
		"m/000001_first.down.sql":  {Data: []byte("DROP TABLE a;")},
		"m/README.md":              {Data: []byte("ignored")},
		"m/bad.up.sql":             {Data: []byte("ignored")},
	}

	ms, err := LoadMigrations(fsys, "m")
	require.NoError(t, err)
	require.Len(t, ms, 2)
	assert.Equal(t, 1, ms[0].Version)
	assert.Equal(t, "first", ms[0].Name)
	assert.Equal(t, "DROP TABLE b;", ms[1].DownScript)
}

func TestLoadMigrations_MissingDown(t *testing.T) {
	fsys := fstest.MapFS{
		"m/000001_first.up.sql": {Data: []byte("CREATE TABLE a (id int);")},
	}
	_, err := LoadMigrations(fsys, "m")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "000001_first.down.sql")
}

func TestValidateAppliedVersions(t *testing.T) {
	registered := []Migration{{Version: 1}, {Version: 2}}

	assert.NoError(t, validateAppliedVersions(nil, registered))
	assert.NoError(t, validateAppliedVersions([]int{1, 2}, registered))

	err := validateAppliedVersions([]int{1, 7, 5}, registered)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "000005, 000007")
}

type fakeStore struct {
	applied   []int
	appliedTo []int
	failOn    int
}

func (f *fakeStore) GetAppliedMigrations(context.Context) ([]int, error) { return f.applied, nil }

func (f *fakeStore) ApplyMigration(_ context.Context, version int, _, _ string) error {
	if version == f.failOn {
		return errors.New("apply failed")
	}
	f.appliedTo = append(f.appliedTo, version)
	return nil
}

func (f *fakeStore) RemoveMigration(context.Context, int, string, string) error { return nil }

func TestRunMigrations_AppliesOnlyPending(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS migration_logs")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	store := &fakeStore{applied: []int{1}}
	registered := []Migration{{Version: 1, Name: "a"}, {Version: 2, Name: "b"}, {Version: 3, Name: "c"}}

	require.NoError(t, runMigrations(context.Background(), db, store, registered))
	assert.Equal(t, []int{2, 3}, store.appliedTo)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_StopsOnFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS migration_logs")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	store := &fakeStore{failOn: 2}
	registered := []Migration{{Version: 1}, {Version: 2}, {Version: 3}}

	err := runMigrations(context.Background(), db, store, registered)
	require.Error(t, err)
	assert.Equal(t, []int{1}, store.appliedTo)
}

func TestRunMigrations_RejectsUnknownApplied(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS migration_logs")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := runMigrations(context.Background(), db, &fakeStore{applied: []int{9}}, []Migration{{Version: 1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "000009")
}

func TestMigrationStore_ApplyAndRemove(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.AutoMigrate(&MigrationLog{}))
	store := NewMigrationStore(db)
	ctx := context.Background()

	require.NoError(t, store.ApplyMigration(ctx, 1, "widgets", "CREATE TABLE widgets (id INTEGER)"))
	applied, err := store.GetAppliedMigrations(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, applied)
	assert.True(t, db.Migrator().HasTable("widgets"))

	require.NoError(t, store.RemoveMigration(ctx, 1, "widgets", "DROP TABLE widgets"))
	applied, err = store.GetAppliedMigrations(ctx)
	require.NoError(t, err)
	assert.Empty(t, applied)
	assert.False(t, db.Migrator().HasTable("widgets"))
}

func TestMigrationStore_ApplyRollsBackOnBadSQL(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.AutoMigrate(&MigrationLog{}))
	store := NewMigrationStore(db)

	err := store.ApplyMigration(context.Background(), 1, "broken", "CREATE TABLEX nope")
	require.Error(t, err)

	applied, err := store.GetAppliedMigrations(context.Background())
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestMigrationStore_MissingTableIsEmpty(t *testing.T) {
	db := setupTestDB(t)
	applied, err := NewMigrationStore(db).GetAppliedMigrations(context.Background())
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestSchemaPolicy(t *testing.T) {
	tests := []struct {
		name    string
		mode    string
		env     string
		runSQL  bool
		runAuto bool
		wantErr bool
	}{
		{"hybrid dev", "hybrid", "development", true, true, false},
		{"hybrid prod", "hybrid", "production", true, false, false},
		{"empty defaults to hybrid", "", "staging", true, false, false},
		{"sql", "sql", "development", true, false, false},
		{"auto dev", "auto", "test", false, true, false},
		{"auto prod refused", "auto", "prod", false, false, true},
		{"unknown", "magic", "development", false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runSQL, runAuto, err := schemaPolicy(&config.Config{DBSchemaMode: tt.mode, Env: tt.env})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.runSQL, runSQL)
			assert.Equal(t, tt.runAuto, runAuto)
		})
	}
}

func TestApplySchema_AutoMode(t *testing.T) {
	db := setupTestDB(t)
	cfg := &config.Config{DBSchemaMode: "auto", Env: "test"}

	require.NoError(t, ApplySchema(context.Background(), db, cfg))
	assert.True(t, db.Migrator().HasTable("posts"))

	status, err := GetSchemaStatus(context.Background(), db, cfg)
	require.NoError(t, err)
	assert.False(t, status.WillRunSQL)
	assert.True(t, status.WillRunAutoMigrate)
	assert.Empty(t, status.PendingMigrations)
}

func TestPendingMigrations(t *testing.T) {
	pending := pendingMigrations([]int{1, 3}, []Migration{{Version: 1}, {Version: 2}, {Version: 3}, {Version: 4}})
	require.Len(t, pending, 2)
	assert.Equal(t, 2, pending[0].Version)
	assert.Equal(t, 4, pending[1].Version)
}
