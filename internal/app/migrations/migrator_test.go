package migrations

import (
	"testing"
	"testing/fstest"

	schema "github.com/yigit/hackathon/migrations"
)

func TestSortedSQLFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"010_later.sql":  {Data: []byte("SELECT 1;")},
		"002_second.sql": {Data: []byte("SELECT 1;")},
		"README.md":      {Data: []byte("docs")},
		"001_first.sql":  {Data: []byte("SELECT 1;")},
	}

	files, err := SortedSQLFiles(fsys)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"001_first.sql", "002_second.sql", "010_later.sql"}
	if len(files) != len(want) {
		t.Fatalf("got %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("files[%d] = %q, want %q", i, files[i], want[i])
		}
	}
}

func TestMigrationVersion(t *testing.T) {
	if v := migrationVersion("003_create_school_applications.sql"); v != "003" {
		t.Errorf("version = %q", v)
	}
}

func TestEmbeddedSchemaIsComplete(t *testing.T) {
	files, err := SortedSQLFiles(schema.FS)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 5 || files[0] != "001_create_users.sql" {
		t.Errorf("unexpected embedded migrations %v", files)
	}
}
