package codec

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/statuslog/internal/ir"
)

func TestDecode_Empty(t *testing.T) {
	for name, raw := range map[string]string{
		"empty":              "",
		"header only":        Header,
		"header and newline": Header + "\n",
		"blank lines":        Header + "\n\n  \n",
	} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, 0, Decode([]byte(raw)).Len())
		})
	}
}

func TestDecode_DiscardsHeaderWhateverItSays(t *testing.T) {
	log := Decode([]byte("whatever\nA-2024-01-01,Injured,,,,\n"))
	require.Equal(t, 1, log.Len())
	rec, _ := log.Get("A-2024-01-01")
	assert.Equal(t, "Injured", rec.Status)
}

func TestDecode_MissingTrailingFields(t *testing.T) {
	log := Decode([]byte(Header + "\nA-2024-01-01,Limited,Knee\nB-2024-01-01\n"))

	rec, ok := log.Get("A-2024-01-01")
	require.True(t, ok)
	assert.Equal(t, ir.Record{Status: "Limited", InjurySite: "Knee"}, rec)

	rec, ok = log.Get("B-2024-01-01")
	require.True(t, ok)
	assert.Equal(t, ir.Record{}, rec)
}

func TestDecode_DropsEmptyKey(t *testing.T) {
	log := Decode([]byte(Header + "\n,Injured,Knee,,,\nA-2024-01-01,Available,,,,\n"))
	assert.Equal(t, []ir.Key{"A-2024-01-01"}, log.Keys())
}

func TestDecode_CRLF(t *testing.T) {
	log := Decode([]byte(Header + "\r\nA-2024-01-01,Injured,,,High,sore\r\n"))
	rec, ok := log.Get("A-2024-01-01")
	require.True(t, ok)
	assert.Equal(t, "sore", rec.Comment)
}

func TestDecode_CommentAbsorbsCommas(t *testing.T) {
	log := Decode([]byte(Header + "\nA-2024-01-01,Injured,Knee,ACL,High,out, maybe longer\n"))
	rec, _ := log.Get("A-2024-01-01")
	assert.Equal(t, "out, maybe longer", rec.Comment)
}

func TestDecode_DuplicateKeyLaterWins(t *testing.T) {
	log := Decode([]byte(Header + "\nA-2024-01-01,Injured,,,,\nB-2024-01-01,Available,,,,\nA-2024-01-01,Limited,,,,\n"))
	assert.Equal(t, []ir.Key{"A-2024-01-01", "B-2024-01-01"}, log.Keys())
	rec, _ := log.Get("A-2024-01-01")
	assert.Equal(t, "Limited", rec.Status)
}

func TestRoundTrip(t *testing.T) {
	log := ir.NewLog()
	log.Set("Mary-Jane-2024-01-01", ir.Record{Status: "Injured", InjurySite: "Ankle", Injury: "Sprain", Severity: "High", Comment: "rolled it"})
	log.Set("Al-2024-01-01", ir.Record{Status: "Available"})
	log.Set("Alice-2024-01-01", ir.Record{Status: "Limited", Comment: "light, no contact"})
	log.Set("Bo-2024-01-01", ir.Record{})

	got := Decode(Encode(log))
	assert.True(t, log.Equal(got), "decode(encode(m)) must equal m")
}

func TestEncode_EmptyLog(t *testing.T) {
	assert.Equal(t, Header+"\n", string(Encode(ir.NewLog())))
}

func TestEncode_Golden(t *testing.T) {
	log := ir.NewLog()
	log.Set("B-2024-01-02", ir.Record{Status: "Available"})
	log.Set("A-2024-01-01", ir.Record{Status: "Injured", InjurySite: "Knee", Injury: "ACL", Severity: "High", Comment: "surgery"})
	log.Set("A-2024-01-02", ir.Record{Status: "Injured", InjurySite: "Knee", Injury: "ACL", Severity: "High", Comment: "surgery"})

	g := goldie.New(t, goldie.WithFixtureDir("testdata"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "encode", Encode(log))
}
