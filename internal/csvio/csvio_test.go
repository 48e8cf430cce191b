package csvio

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smirnoffmg/who-read-whom/internal/domain"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func TestExportWritersScenario(t *testing.T) {
	writers := []domain.Writer{
		{ID: 1, Name: "Jane Austen", BirthYear: 1775, DeathYear: intPtr(1817), Bio: nil},
		{ID: 2, Name: "Mark Twain", BirthYear: 1835, DeathYear: intPtr(1910), Bio: strPtr("humorist")},
	}

	got := ExportWriters(writers)
	want := "id,name,birth_year,death_year,bio\n" +
		"1,Jane Austen,1775,1817,\n" +
		"2,Mark Twain,1835,1910,humorist\n"
	assert.Equal(t, want, got)
}

func TestExportIsDeterministic(t *testing.T) {
	writers := []domain.Writer{{ID: 3, Name: "Fyodor Dostoevsky", BirthYear: 1821}}
	assert.Equal(t, ExportWriters(writers), ExportWriters(writers))
}

func TestExportEscapesEmbeddedDelimitersAndNewlines(t *testing.T) {
	writers := []domain.Writer{
		{ID: 1, Name: `Johann "Jean Paul" Richter`, BirthYear: 1763, Bio: strPtr("satirist, humorist\nand novelist")},
	}

	out := ExportWriters(writers)
	result, err := ImportWriters(out)
	require.NoError(t, err)
	require.True(t, result.IsValid)
	require.Len(t, result.Data, 1)
	assert.Equal(t, `Johann "Jean Paul" Richter`, result.Data[0].Name)
	assert.Equal(t, "satirist, humorist\nand novelist", *result.Data[0].Bio)
}

func TestImportWritersWellFormed(t *testing.T) {
	text := "id,name,birth_year,death_year,bio\n" +
		"1,Jane Austen,1775,1817,\n" +
		"2,Mark Twain,1835,1910,humorist\n"

	result, err := ImportWriters(text)
	require.NoError(t, err)
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Data, 2)
	assert.Equal(t, "Jane Austen", result.Data[0].Name)
	assert.Equal(t, 1775, result.Data[0].BirthYear)
	assert.Nil(t, result.Data[0].Bio)
	assert.Equal(t, "humorist", *result.Data[1].Bio)
}

func TestImportWritersBlankNameScenario(t *testing.T) {
	result, err := ImportWriters("name,birth_year\n,1800\n")
	require.NoError(t, err)

	assert.False(t, result.IsValid)
	assert.Empty(t, result.Data)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, RowError{Row: 2, Field: "name", Message: "Name is required"}, result.Errors[0])
}

func TestImportWritersBadRowIsExcludedWholesale(t *testing.T) {
	// Row 2 is fine, row 3 has a bad death_year and must contribute nothing
	// to Data despite its other fields being valid.
	text := "name,birth_year,death_year\n" +
		"Jane Austen,1775,1817\n" +
		"Mark Twain,1835,not-a-year\n"

	result, err := ImportWriters(text)
	require.NoError(t, err)
	assert.False(t, result.IsValid)
	require.Len(t, result.Data, 1)
	assert.Equal(t, "Jane Austen", result.Data[0].Name)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 3, result.Errors[0].Row)
	assert.Equal(t, "death_year", result.Errors[0].Field)
}

func TestImportHeaderNormalization(t *testing.T) {
	result, err := ImportWriters("  Name , BIRTH_YEAR \nJane Austen,1775\n")
	require.NoError(t, err)
	assert.True(t, result.IsValid)
	require.Len(t, result.Data, 1)
	assert.Equal(t, "Jane Austen", result.Data[0].Name)
}

func TestImportSkipsBlankLines(t *testing.T) {
	result, err := ImportWriters("name,birth_year\nJane Austen,1775\n,\nMark Twain,1835\n")
	require.NoError(t, err)
	assert.True(t, result.IsValid)
	assert.Len(t, result.Data, 2)
}

func TestWriterRoundTrip(t *testing.T) {
	writers := []domain.Writer{
		{ID: 1, Name: "Jane Austen", BirthYear: 1775, DeathYear: intPtr(1817)},
		{ID: 2, Name: "Mark Twain", BirthYear: 1835, DeathYear: intPtr(1910), Bio: strPtr("humorist")},
		{ID: 3, Name: "Anonymous, the Elder", BirthYear: 1500},
	}

	result, err := ImportWriters(ExportWriters(writers))
	require.NoError(t, err)
	require.True(t, result.IsValid)

	if diff := cmp.Diff(writers, result.Data); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestImportWorks(t *testing.T) {
	result, err := ImportWorks("title,author_id\nEmma,1\nThe Gilded Age,\n")
	require.NoError(t, err)
	assert.False(t, result.IsValid)
	require.Len(t, result.Data, 1)
	assert.Equal(t, "Emma", result.Data[0].Title)

	fields := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		assert.Equal(t, 3, e.Row)
		fields = append(fields, e.Field)
	}
	assert.Contains(t, fields, "author_id")
}

func TestOpinionSentimentAcceptedValues(t *testing.T) {
	for _, raw := range []string{"true", "TRUE", "False", "1", "0", " true "} {
		text := "writer_id,work_id,sentiment,quote,source\n2,1," + raw + ",Remarkable.,Letters\n"
		result, err := ImportOpinions(text)
		require.NoError(t, err)
		assert.True(t, result.IsValid, "sentiment %q should be accepted", raw)
	}

	for _, raw := range []string{"yes", "no", "2", "positive", "t"} {
		text := "writer_id,work_id,sentiment,quote,source\n2,1," + raw + ",Remarkable.,Letters\n"
		result, err := ImportOpinions(text)
		require.NoError(t, err)
		require.False(t, result.IsValid, "sentiment %q should be rejected", raw)
		assert.Equal(t, "sentiment", result.Errors[0].Field)
		assert.Empty(t, result.Data)
	}
}

func TestOpinionRoundTrip(t *testing.T) {
	opinions := []domain.Opinion{
		{WriterID: 2, WorkID: 1, Sentiment: true, Quote: `An "astonishing" work, truly`, Source: "Letters, vol. II", Page: strPtr("44"), StatementYear: intPtr(1871)},
		{WriterID: 3, WorkID: 1, Sentiment: false, Quote: "Tedious\nand long", Source: "Diary"},
	}

	result, err := ImportOpinions(ExportOpinions(opinions))
	require.NoError(t, err)
	require.True(t, result.IsValid)

	if diff := cmp.Diff(opinions, result.Data); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestOpinionExportColumnOrder(t *testing.T) {
	out := ExportOpinions([]domain.Opinion{{WriterID: 2, WorkID: 1, Sentiment: false, Quote: "q", Source: "s"}})
	lines := strings.Split(out, "\n")
	assert.Equal(t, "writer_id,work_id,sentiment,quote,source,page,statement_year", lines[0])
	assert.Equal(t, "2,1,false,q,s,,", lines[1])
}

func TestImportEmptyInput(t *testing.T) {
	result, err := ImportWriters("")
	require.NoError(t, err)
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Data)
}
