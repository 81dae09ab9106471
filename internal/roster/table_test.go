package roster

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/statuslog/internal/ir"
	"github.com/roach88/statuslog/internal/store"
)

const sampleRoster = "athlete,injurySite,injury,severity,status,color\n" +
	"Alice,Knee,ACL,High,Available,#00ff00\n" +
	"Bob,Ankle,Sprain,Low,Injured,#ff0000\n" +
	",Shoulder,,Medium,Limited,#ffaa00\n" +
	"Alice,,,,,\n"

func TestParseTable_Subjects(t *testing.T) {
	tbl := ParseTable([]byte(sampleRoster))
	assert.Equal(t, []string{"Alice", "Bob"}, tbl.Subjects())
	assert.True(t, tbl.HasSubject(" Bob "))
	assert.False(t, tbl.HasSubject("Carol"))
}

func TestParseTable_CRLFAndBlankLines(t *testing.T) {
	tbl := ParseTable([]byte("Athletes,Status\r\n\r\nAlice,Available\r\nBob,\r\n"))
	assert.Equal(t, []string{"Alice", "Bob"}, tbl.Subjects())
	assert.Equal(t, []string{"Available"}, tbl.values(ColStatus))
}

func TestConfig(t *testing.T) {
	cfg := ParseTable([]byte(sampleRoster)).Config()

	assert.Equal(t, []string{"Alice", "Bob"}, cfg.Athletes)
	assert.Equal(t, []string{"Knee", "Ankle", "Shoulder"}, cfg.InjurySites)
	assert.Equal(t, []string{"ACL", "Sprain"}, cfg.Injuries)
	assert.Equal(t, []string{"High", "Low", "Medium"}, cfg.Severities)
	assert.Equal(t, []string{"Available", "Injured", "Limited"}, cfg.Statuses)
	assert.Equal(t, map[string]string{
		"Available": "#00ff00",
		"Injured":   "#ff0000",
		"Limited":   "#ffaa00",
	}, cfg.StatusColors)
}

func TestConfig_DefaultStatuses(t *testing.T) {
	cfg := ParseTable([]byte("athlete\nAlice\n")).Config()
	assert.Equal(t, ir.DefaultStatuses, cfg.Statuses)
	assert.Empty(t, cfg.StatusColors)

	cfg = ParseTable([]byte("athlete,status\nAlice,Injured\n")).Config()
	assert.Equal(t, []string{"Available", "Injured"}, cfg.Statuses)
}

func TestAddSubject(t *testing.T) {
	tbl := ParseTable([]byte(sampleRoster))
	assert.True(t, tbl.AddSubject("Carol"))
	assert.False(t, tbl.AddSubject("Carol"))
	assert.False(t, tbl.AddSubject("Alice"))
	assert.Equal(t, []string{"Alice", "Bob", "Carol"}, tbl.Subjects())
	assert.Equal(t, sampleRoster+"Carol,,,,,\n", string(tbl.Encode()))
}

func TestAddSubject_EmptyRoster(t *testing.T) {
	tbl := ParseTable(nil)
	require.True(t, tbl.AddSubject("Alice"))
	assert.Equal(t, "athlete,injurySite,injury,severity,status,color\nAlice,,,,,\n", string(tbl.Encode()))
}

func TestRemoveSubject_KeepsCatalogue(t *testing.T) {
	tbl := ParseTable([]byte(sampleRoster))
	require.True(t, tbl.RemoveSubject("Alice"))
	assert.Equal(t, []string{"Bob"}, tbl.Subjects())

	// Alice's first row still carries catalogue values; the second is dropped.
	want := "athlete,injurySite,injury,severity,status,color\n" +
		",Knee,ACL,High,Available,#00ff00\n" +
		"Bob,Ankle,Sprain,Low,Injured,#ff0000\n" +
		",Shoulder,,Medium,Limited,#ffaa00\n"
	assert.Equal(t, want, string(tbl.Encode()))

	cfg := tbl.Config()
	assert.Contains(t, cfg.InjurySites, "Knee")
	assert.Contains(t, cfg.Statuses, "Available")
}

func TestRemoveSubject_Missing(t *testing.T) {
	tbl := ParseTable([]byte(sampleRoster))
	assert.False(t, tbl.RemoveSubject("Carol"))
	assert.False(t, ParseTable(nil).RemoveSubject("Alice"))
}

func TestEncode_EmptyTable(t *testing.T) {
	assert.Nil(t, ParseTable(nil).Encode())
}

func TestStoreProvider(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	p := NewStoreProvider(mem, "roster.csv")

	subjects, err := p.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, subjects)

	_, err = mem.Put(ctx, "roster.csv", []byte(sampleRoster), "")
	require.NoError(t, err)

	subjects, err = p.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice", "Bob"}, subjects)

	cfg, err := p.Config(ctx)
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", cfg.StatusColors["Injured"])
}

func TestStatic(t *testing.T) {
	subjects, err := Static{"A", "B"}.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, subjects)
}
