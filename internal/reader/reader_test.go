package reader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arshiya-salehi/webengine/fetcher"
	"github.com/arshiya-salehi/webengine/internal/docmapping"
	"github.com/arshiya-salehi/webengine/storage"
)

func buildTestIndex(t *testing.T) (indexPath, mappingPath string) {
	t.Helper()
	dir := t.TempDir()

	segment := storage.NewSegment()
	require.NoError(t, segment.BulkIndex([]fetcher.TermPosting{
		{Term: "jedi", DocID: 0, TermFrequency: 2.0, IsImportant: true},
		{Term: "jedi", DocID: 1, TermFrequency: 1.0, IsImportant: false},
	}))

	indexPath = filepath.Join(dir, "inverted_index")
	file, err := os.Create(indexPath)
	require.NoError(t, err)
	require.NoError(t, segment.WriteSegment(file))
	require.NoError(t, file.Close())

	mapping := docmapping.New()
	mapping.Add("http://a/0", 0)
	mapping.Add("http://a/1", 1)
	mappingPath = filepath.Join(dir, "doc_mapping.json")
	require.NoError(t, mapping.Save(mappingPath))

	return indexPath, mappingPath
}

func TestOpenResidentPostingsAndDocumentFrequency(t *testing.T) {
	indexPath, mappingPath := buildTestIndex(t)

	r, err := OpenResident(indexPath, mappingPath, 16)
	require.NoError(t, err)

	postings, err := r.Postings("jedi")
	require.NoError(t, err)
	require.Len(t, postings, 2)
	require.True(t, postings[0].IsImportant)
	require.False(t, postings[1].IsImportant)

	df, err := r.DocumentFrequency("jedi")
	require.NoError(t, err)
	require.Equal(t, 2, df)
}

func TestPostingsMissingTermReturnsEmptyNotError(t *testing.T) {
	indexPath, mappingPath := buildTestIndex(t)

	r, err := OpenResident(indexPath, mappingPath, 16)
	require.NoError(t, err)

	postings, err := r.Postings("zzzzzz")
	require.NoError(t, err)
	require.Empty(t, postings)

	df, err := r.DocumentFrequency("zzzzzz")
	require.NoError(t, err)
	require.Equal(t, 0, df)
}

func TestOpenResidentMissingIndexFileIsFatal(t *testing.T) {
	_, mappingPath := buildTestIndex(t)

	_, err := OpenResident(filepath.Join(t.TempDir(), "missing"), mappingPath, 16)
	require.Error(t, err)
}

func TestURLResolvesDocID(t *testing.T) {
	indexPath, mappingPath := buildTestIndex(t)

	r, err := OpenResident(indexPath, mappingPath, 16)
	require.NoError(t, err)

	url, ok := r.URL(0)
	require.True(t, ok)
	require.Equal(t, "http://a/0", url)

	_, ok = r.URL(999)
	require.False(t, ok)
}

func TestOpenOnDemandMatchesResident(t *testing.T) {
	indexPath, mappingPath := buildTestIndex(t)

	resident, err := OpenResident(indexPath, mappingPath, 16)
	require.NoError(t, err)
	onDemand, err := OpenOnDemand(indexPath, mappingPath, 16)
	require.NoError(t, err)

	residentPostings, err := resident.Postings("jedi")
	require.NoError(t, err)
	onDemandPostings, err := onDemand.Postings("jedi")
	require.NoError(t, err)
	require.Equal(t, residentPostings, onDemandPostings)
}
