package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/grantsheet/internal/domain/grants"
	kvredis "github.com/bryanwahyu/grantsheet/internal/infra/kv/redis"
)

func newRepo(t *testing.T) (*AnalysisRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store, err := kvredis.Connect(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return NewAnalysisRepository(store, "", 10), mr
}

func analysis(id string, at time.Time) *grants.GrantAnalysis {
	return &grants.GrantAnalysis{
		ID:         grants.AnalysisID(id),
		Title:      "Appel à projets " + id,
		UploadDate: at,
		PDFText:    "texte",
		DecisionSheet: grants.DecisionSheet{
			ExecutiveSummary:    "résumé",
			Eligibility:         grants.Eligibility{Verdict: grants.VerdictYes, Justification: "ok"},
			FinancialTerms:      "50%",
			DeadlinesWorkload:   grants.DeadlinesWorkload{Deadline: "demain", ProjectPeriod: "2025", Complexity: grants.ComplexityLow},
			BlockersRisks:       "aucun",
			FinalRecommendation: grants.FinalRecommendation{Decision: grants.DecisionSkip, Reasons: []string{"r"}},
		},
		Recommendation: grants.DecisionSkip,
	}
}

func TestSaveAndGet(t *testing.T) {
	repo, mr := newRepo(t)
	ctx := context.Background()
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Save(ctx, analysis("a1", at)))
	assert.True(t, mr.Exists("grant:analysis:a1"))

	got, err := repo.Get(ctx, "a1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, analysis("a1", at), got)

	missing, err := repo.Get(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSaveReplacesExisting(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()
	a := analysis("a1", time.Now().UTC())
	require.NoError(t, repo.Save(ctx, a))

	a.Title = "autre"
	require.NoError(t, repo.Save(ctx, a))

	got, err := repo.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "autre", got.Title)
}

func TestListSortsNewestFirstAcrossPages(t *testing.T) {
	repo, mr := newRepo(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 35; i++ {
		require.NoError(t, repo.Save(ctx, analysis(fmt.Sprintf("id-%02d", i), base.Add(time.Duration(i)*time.Hour))))
	}
	require.NoError(t, mr.Set("unrelated:key", "not json"))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 35)
	assert.Equal(t, grants.AnalysisID("id-34"), list[0].ID)
	for i := 1; i < len(list); i++ {
		assert.True(t, list[i-1].UploadDate.After(list[i].UploadDate))
	}
}

func TestListTiesAreDeterministic(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, id := range []string{"b", "c", "a"} {
		require.NoError(t, repo.Save(ctx, analysis(id, at)))
	}

	list, err := repo.List(ctx)
	require.NoError(t, err)
	var ids []grants.AnalysisID
	for _, a := range list {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []grants.AnalysisID{"c", "b", "a"}, ids)
}

func TestListEmpty(t *testing.T) {
	repo, _ := newRepo(t)
	list, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NotNil(t, list)
}

func TestDeleteIsIdempotent(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, analysis("a1", time.Now())))

	require.NoError(t, repo.Delete(ctx, "a1"))
	require.NoError(t, repo.Delete(ctx, "a1"))
	require.NoError(t, repo.Delete(ctx, "never-existed"))

	got, err := repo.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUpdateNotes(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()
	a := analysis("a1", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Save(ctx, a))

	require.NoError(t, repo.UpdateNotes(ctx, "a1", "Appeler la région"))
	got, err := repo.Get(ctx, "a1")
	require.NoError(t, err)
	require.NotNil(t, got.PersonalNotes)
	assert.Equal(t, "Appeler la région", *got.PersonalNotes)
	// nothing else moves
	got.PersonalNotes = nil
	assert.Equal(t, a, got)

	require.NoError(t, repo.UpdateNotes(ctx, "a1", ""))
	got, err = repo.Get(ctx, "a1")
	require.NoError(t, err)
	require.NotNil(t, got.PersonalNotes)
	assert.Empty(t, *got.PersonalNotes)
}

func TestUpdateNotesMissingIsNotFound(t *testing.T) {
	repo, _ := newRepo(t)
	err := repo.UpdateNotes(context.Background(), "ghost", "x")
	assert.ErrorIs(t, err, grants.ErrNotFound)
	assert.NotErrorIs(t, err, grants.ErrStorageUnavailable)
}

func TestStoreFailuresAreStorageUnavailable(t *testing.T) {
	repo, mr := newRepo(t)
	ctx := context.Background()
	mr.Close()

	_, err := repo.Get(ctx, "a1")
	assert.ErrorIs(t, err, grants.ErrStorageUnavailable)
	_, err = repo.List(ctx)
	assert.ErrorIs(t, err, grants.ErrStorageUnavailable)
	assert.ErrorIs(t, repo.Save(ctx, analysis("a1", time.Now())), grants.ErrStorageUnavailable)
	assert.ErrorIs(t, repo.Delete(ctx, "a1"), grants.ErrStorageUnavailable)
	assert.ErrorIs(t, repo.UpdateNotes(ctx, "a1", "x"), grants.ErrStorageUnavailable)
}

func TestCorruptValueIsStorageUnavailable(t *testing.T) {
	repo, mr := newRepo(t)
	require.NoError(t, mr.Set("grant:analysis:bad", "{not json"))

	_, err := repo.Get(context.Background(), "bad")
	assert.ErrorIs(t, err, grants.ErrStorageUnavailable)
}

func TestUnconfigured(t *testing.T) {
	var repo grants.Repository = Unconfigured{}
	ctx := context.Background()

	for _, err := range []error{
		repo.Save(ctx, analysis("a", time.Now())),
		repo.Delete(ctx, "a"),
		repo.UpdateNotes(ctx, "a", "n"),
	} {
		assert.True(t, errors.Is(err, grants.ErrStorageUnavailable))
	}
	_, err := repo.List(ctx)
	assert.ErrorIs(t, err, grants.ErrStorageUnavailable)
	_, err = repo.Get(ctx, "a")
	assert.ErrorIs(t, err, grants.ErrStorageUnavailable)
}
