package composer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubmitter struct {
	calls int
	last  *Submission
	err   error
}

func (f *fakeSubmitter) Submit(ctx context.Context, userID int64, sub *Submission) (*Receipt, error) {
	f.calls++
	f.last = sub
	if f.err != nil {
		return nil, f.err
	}
	var names []string
	for _, p := range sub.Platforms {
		names = append(names, DisplayName(p))
	}
	return &Receipt{PostID: 42, PlatformNames: names}, nil
}

type fakeGenerator struct {
	calls     int
	candidate *Candidate
	err       error
}

func (f *fakeGenerator) Generate(ctx context.Context, userID int64, req *GenerationRequest) (*Candidate, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.candidate, nil
}

func newTestComposer(sub *fakeSubmitter, gen *fakeGenerator) *Composer {
	if sub == nil {
		sub = &fakeSubmitter{}
	}
	if gen == nil {
		gen = &fakeGenerator{}
	}
	return New(1, Defaults{}, sub, gen, time.UTC)
}

func enabledIDs(c *Composer) []PlatformID {
	var ids []PlatformID
	for _, p := range c.Platforms() {
		if p.Enabled {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

func TestNewAppliesFallbackDefaults(t *testing.T) {
	c := newTestComposer(nil, nil)

	assert.Equal(t, "19:00", c.Schedule().Time)
	assert.Equal(t, []PlatformID{PlatformTwitter, PlatformInstagram}, enabledIDs(c))
	assert.Len(t, c.Platforms(), 5)
}

func TestTogglePlatformTwiceRestoresState(t *testing.T) {
	c := newTestComposer(nil, nil)
	before := enabledIDs(c)

	c.TogglePlatform(PlatformLinkedIn)
	assert.Contains(t, enabledIDs(c), PlatformLinkedIn)

	c.TogglePlatform(PlatformLinkedIn)
	assert.Equal(t, before, enabledIDs(c))
}

func TestTogglePlatformUnknownIDIsIgnored(t *testing.T) {
	c := newTestComposer(nil, nil)
	before := enabledIDs(c)

	c.TogglePlatform("myspace")

	assert.Equal(t, before, enabledIDs(c))
}

func TestCharacterCountCountsRunes(t *testing.T) {
	c := newTestComposer(nil, nil)

	c.SetContent("héllo 🚀")
	assert.Equal(t, 7, c.CharacterCount())
	assert.False(t, c.OverWarningThreshold())
}

func TestOverWarningThresholdFlipsAboveLimit(t *testing.T) {
	c := newTestComposer(nil, nil)

	long := make([]rune, CharWarnThreshold+1)
	for i := range long {
		long[i] = 'a'
	}
	c.SetContent(string(long))

	assert.True(t, c.OverWarningThreshold())
	assert.True(t, c.Snapshot().OverThreshold)
}

func TestAppendMarkers(t *testing.T) {
	c := newTestComposer(nil, nil)

	c.SetContent("check this out ")
	c.AppendHashtagMarker()
	assert.Equal(t, "check this out #", c.Content())

	c.AppendMentionMarker()
	c.AppendEmoji("🔥")
	assert.Equal(t, "check this out #@🔥", c.Content())
}

func TestCommitNowEmptyPostRejectedBeforePlatformCheck(t *testing.T) {
	sub := &fakeSubmitter{}
	c := newTestComposer(sub, nil)

	// Disable every platform so both preconditions fail at once.
	for _, id := range enabledIDs(c) {
		c.TogglePlatform(id)
	}

	_, err := c.CommitNow(context.Background())
	assert.ErrorIs(t, err, ErrEmptyPost)
	assert.Equal(t, 0, sub.calls)
}

func TestCommitNowNoPlatformRejected(t *testing.T) {
	sub := &fakeSubmitter{}
	c := newTestComposer(sub, nil)
	c.SetContent("hello world")

	for _, id := range enabledIDs(c) {
		c.TogglePlatform(id)
	}

	_, err := c.CommitNow(context.Background())
	assert.ErrorIs(t, err, ErrNoPlatform)
	assert.Equal(t, 0, sub.calls)
	assert.Equal(t, "hello world", c.Content())
}

func TestCommitNowMediaOnlyIsEnough(t *testing.T) {
	sub := &fakeSubmitter{}
	c := newTestComposer(sub, nil)

	_, err := c.AddMedia(MediaImage, 7, "pic.png", "https://cdn.example.com/pic.png")
	require.NoError(t, err)

	receipt, err := c.CommitNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), receipt.PostID)
	assert.False(t, receipt.Scheduled)
}

func TestCommitNowResetsDraftOnSuccess(t *testing.T) {
	sub := &fakeSubmitter{}
	c := newTestComposer(sub, nil)
	c.SetContent("launch day")
	_, err := c.AddMedia(MediaImage, 7, "pic.png", "u")
	require.NoError(t, err)

	receipt, err := c.CommitNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Twitter", "Instagram"}, receipt.PlatformNames)

	assert.Empty(t, c.Content())
	assert.Empty(t, c.MediaItems())
	assert.False(t, c.PreviewVisible())
	// Platform selection and schedule survive the reset.
	assert.Equal(t, []PlatformID{PlatformTwitter, PlatformInstagram}, enabledIDs(c))
	assert.Equal(t, "19:00", c.Schedule().Time)
}

func TestCommitNowKeepsDraftOnSubmitterFailure(t *testing.T) {
	sub := &fakeSubmitter{err: errors.New("database down")}
	c := newTestComposer(sub, nil)
	c.SetContent("launch day")
	_, err := c.AddMedia(MediaImage, 7, "pic.png", "u")
	require.NoError(t, err)

	_, err = c.CommitNow(context.Background())
	require.Error(t, err)
	assert.False(t, IsValidation(err))

	assert.Equal(t, "launch day", c.Content())
	assert.Len(t, c.MediaItems(), 1)
	assert.True(t, c.PreviewVisible())
	assert.False(t, c.Snapshot().CommitInFlight)
}

func TestCommitScheduleRequiresDate(t *testing.T) {
	sub := &fakeSubmitter{}
	c := newTestComposer(sub, nil)
	c.SetContent("later")

	_, err := c.CommitSchedule(context.Background())
	assert.ErrorIs(t, err, ErrNoScheduleDate)
	assert.Equal(t, 0, sub.calls)
}

func TestCommitScheduleCombinesDateAndTimeInUTC(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	sub := &fakeSubmitter{}
	c := New(1, Defaults{}, sub, &fakeGenerator{}, loc)
	c.SetContent("later")

	day := time.Date(2026, 3, 15, 0, 0, 0, 0, loc)
	c.SetScheduleDate(&day)
	require.NoError(t, c.SetScheduleTime("09:30"))

	receipt, err := c.CommitSchedule(context.Background())
	require.NoError(t, err)
	assert.True(t, receipt.Scheduled)

	require.NotNil(t, sub.last.ScheduledFor)
	want := time.Date(2026, 3, 15, 9, 30, 0, 0, loc).UTC()
	assert.Equal(t, want, *sub.last.ScheduledFor)
	assert.Equal(t, time.UTC, sub.last.ScheduledFor.Location())
}

func TestSetScheduleDateNilClears(t *testing.T) {
	c := newTestComposer(nil, nil)

	day := time.Now()
	c.SetScheduleDate(&day)
	require.NotNil(t, c.Schedule().Date)

	c.SetScheduleDate(nil)
	assert.Nil(t, c.Schedule().Date)
}

func TestSetScheduleTimeRejectsBadFormat(t *testing.T) {
	c := newTestComposer(nil, nil)

	assert.Error(t, c.SetScheduleTime("25:99"))
	assert.Error(t, c.SetScheduleTime("7pm"))
	assert.Equal(t, "19:00", c.Schedule().Time)

	require.NoError(t, c.SetScheduleTime("07:45"))
	assert.Equal(t, "07:45", c.Schedule().Time)
}

func TestAddMediaAssignsUniqueIDs(t *testing.T) {
	c := newTestComposer(nil, nil)

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		item, err := c.AddMedia(MediaImage, int64(i), "f.png", "u")
		require.NoError(t, err)
		assert.False(t, seen[item.ID])
		seen[item.ID] = true
	}
	assert.Len(t, c.MediaItems(), 20)
	assert.True(t, c.PreviewVisible())
}

func TestAddLibraryTrackDefaultsBackgroundStyle(t *testing.T) {
	c := newTestComposer(nil, nil)

	item, err := c.AddLibraryTrack(3, "lofi beats", "")
	require.NoError(t, err)
	assert.Equal(t, MediaAudio, item.Type)
	assert.Equal(t, int64(3), item.AssetID)
	assert.Equal(t, BackgroundPalette[0], item.BackgroundStyle)

	item, err = c.AddLibraryTrack(4, "jazz", "neon")
	require.NoError(t, err)
	assert.Equal(t, "neon", item.BackgroundStyle)
}

func TestUpdateMediaMergesPatch(t *testing.T) {
	c := newTestComposer(nil, nil)
	item, err := c.AddMedia(MediaImage, 1, "f.png", "u")
	require.NoError(t, err)

	price := "$19.99"
	first := "great shot"
	c.UpdateMedia(item.ID, MediaPatch{Price: &price, Comment: &first})
	second := "love it"
	c.UpdateMedia(item.ID, MediaPatch{Comment: &second})

	got := c.MediaItems()[0]
	assert.Equal(t, "$19.99", got.Price)
	assert.Equal(t, []string{"great shot", "love it"}, got.Comments)
	assert.Empty(t, got.Description)
}

func TestUpdateMediaUnknownIDIsNoOp(t *testing.T) {
	c := newTestComposer(nil, nil)
	item, err := c.AddMedia(MediaImage, 1, "f.png", "u")
	require.NoError(t, err)

	price := "$1"
	c.UpdateMedia("missing", MediaPatch{Price: &price})

	assert.Empty(t, c.MediaItems()[0].Price)
	assert.Equal(t, item.ID, c.MediaItems()[0].ID)
}

func TestRemoveMediaHidesPreviewWhenEmpty(t *testing.T) {
	c := newTestComposer(nil, nil)
	a, err := c.AddMedia(MediaImage, 1, "a.png", "u")
	require.NoError(t, err)
	b, err := c.AddMedia(MediaVideo, 2, "b.mp4", "u")
	require.NoError(t, err)

	c.RemoveMedia(a.ID)
	assert.Len(t, c.MediaItems(), 1)
	assert.True(t, c.PreviewVisible())

	c.RemoveMedia(b.ID)
	assert.Empty(t, c.MediaItems())
	assert.False(t, c.PreviewVisible())
}

func TestClearMedia(t *testing.T) {
	c := newTestComposer(nil, nil)
	_, err := c.AddMedia(MediaImage, 1, "a.png", "u")
	require.NoError(t, err)

	c.ClearMedia()
	assert.Empty(t, c.MediaItems())
	assert.False(t, c.PreviewVisible())
}

func TestPreviewEmptyMediaYieldsNoPages(t *testing.T) {
	c := newTestComposer(nil, nil)
	c.SetContent("caption with no media")

	assert.Nil(t, c.Preview())
}

func TestPreviewOnePagePerMediaItem(t *testing.T) {
	c := New(1, Defaults{BrandName: "acme"}, &fakeSubmitter{}, &fakeGenerator{}, time.UTC)
	c.SetContent("new drop")
	_, err := c.AddMedia(MediaImage, 1, "a.png", "https://cdn/a.png")
	require.NoError(t, err)
	track, err := c.AddLibraryTrack(2, "lofi", "ocean")
	require.NoError(t, err)

	comment := "sounds great"
	c.UpdateMedia(track.ID, MediaPatch{Comment: &comment})

	pages := c.Preview()
	require.Len(t, pages, 2)
	assert.Equal(t, 0, pages[0].Index)
	assert.Equal(t, "acme", pages[0].BrandName)
	assert.Equal(t, "new drop", pages[0].Content)
	assert.Equal(t, "https://cdn/a.png", pages[0].PreviewURL)
	assert.Equal(t, MediaAudio, pages[1].MediaType)
	assert.Equal(t, "ocean", pages[1].BackgroundStyle)
	assert.Equal(t, []string{"sounds great"}, pages[1].Comments)
}

func TestGenerateEmptyTopicRejectedWithoutTransition(t *testing.T) {
	gen := &fakeGenerator{}
	c := newTestComposer(nil, gen)

	_, err := c.Generate(context.Background(), &GenerationRequest{Topic: "   "})
	assert.ErrorIs(t, err, ErrEmptyTopic)
	assert.Equal(t, 0, gen.calls)
	assert.Equal(t, GenIdle, c.Generation().Phase)
}

func TestGenerateCustomPromptAloneIsEnough(t *testing.T) {
	gen := &fakeGenerator{candidate: &Candidate{Primary: "crafted"}}
	c := newTestComposer(nil, gen)

	got, err := c.Generate(context.Background(), &GenerationRequest{CustomPrompt: "write about go"})
	require.NoError(t, err)
	assert.Equal(t, "crafted", got.Primary)
	assert.Equal(t, GenSucceeded, c.Generation().Phase)
}

func TestGenerateFailureStoresFriendlyMessage(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("model timeout")}
	c := newTestComposer(nil, gen)

	_, err := c.Generate(context.Background(), &GenerationRequest{Topic: "coffee"})
	require.Error(t, err)

	snap := c.Generation()
	assert.Equal(t, GenFailed, snap.Phase)
	assert.Equal(t, "Unable to generate content. Please try again.", snap.Error)
	assert.Nil(t, snap.Candidate)
}

func TestGenerateRetryAfterFailureClearsError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("model timeout")}
	c := newTestComposer(nil, gen)

	_, err := c.Generate(context.Background(), &GenerationRequest{Topic: "coffee"})
	require.Error(t, err)

	gen.err = nil
	gen.candidate = &Candidate{Primary: "fresh brew"}
	_, err = c.Generate(context.Background(), &GenerationRequest{Topic: "coffee"})
	require.NoError(t, err)

	snap := c.Generation()
	assert.Equal(t, GenSucceeded, snap.Phase)
	assert.Empty(t, snap.Error)
	assert.Equal(t, "fresh brew", snap.Candidate.Primary)
}

func TestSelectCandidateCopyIsIndependent(t *testing.T) {
	gen := &fakeGenerator{candidate: &Candidate{Primary: "original", Variants: []string{"v1", "v2"}}}
	c := newTestComposer(nil, gen)

	got, err := c.Generate(context.Background(), &GenerationRequest{Topic: "go"})
	require.NoError(t, err)

	c.SelectCandidate(got.Primary)
	assert.Equal(t, "original", c.Content())

	// Editing the draft afterwards never reaches back into the candidate.
	c.SetContent("original plus edits")
	assert.Equal(t, "original", c.Generation().Candidate.Primary)

	// Mutating the returned copy leaves the stored candidate alone too.
	got.Variants[0] = "mutated"
	assert.Equal(t, "v1", c.Generation().Candidate.Variants[0])
}

func TestManagerReturnsSameComposerPerUser(t *testing.T) {
	m := NewManager(&fakeSubmitter{}, &fakeGenerator{}, nil, time.UTC)

	a := m.Get(context.Background(), 1)
	b := m.Get(context.Background(), 1)
	other := m.Get(context.Background(), 2)

	assert.Same(t, a, b)
	assert.NotSame(t, a, other)
}

func TestManagerDropDiscardsState(t *testing.T) {
	m := NewManager(&fakeSubmitter{}, &fakeGenerator{}, nil, time.UTC)

	c := m.Get(context.Background(), 1)
	c.SetContent("draft")

	m.Drop(1)
	assert.Empty(t, m.Get(context.Background(), 1).Content())
}

type fixedDefaults struct {
	d   Defaults
	err error
}

func (f fixedDefaults) ComposerDefaults(ctx context.Context, userID int64) (Defaults, error) {
	return f.d, f.err
}

func TestManagerSeedsFromDefaultsSource(t *testing.T) {
	src := fixedDefaults{d: Defaults{
		ScheduleTime:     "08:15",
		EnabledPlatforms: []PlatformID{PlatformLinkedIn},
		BrandName:        "acme",
	}}
	m := NewManager(&fakeSubmitter{}, &fakeGenerator{}, src, time.UTC)

	c := m.Get(context.Background(), 1)
	assert.Equal(t, "08:15", c.Schedule().Time)
	assert.Equal(t, []PlatformID{PlatformLinkedIn}, enabledIDs(c))
}

func TestManagerFallsBackWhenDefaultsFail(t *testing.T) {
	src := fixedDefaults{err: errors.New("settings unavailable")}
	m := NewManager(&fakeSubmitter{}, &fakeGenerator{}, src, time.UTC)

	c := m.Get(context.Background(), 1)
	assert.Equal(t, "19:00", c.Schedule().Time)
	assert.Equal(t, []PlatformID{PlatformTwitter, PlatformInstagram}, enabledIDs(c))
}

type blockingSubmitter struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingSubmitter) Submit(ctx context.Context, userID int64, sub *Submission) (*Receipt, error) {
	close(b.entered)
	<-b.release
	return &Receipt{PostID: 1}, nil
}

func TestCommitNowRefusedWhileCommitInFlight(t *testing.T) {
	sub := &blockingSubmitter{entered: make(chan struct{}), release: make(chan struct{})}
	c := New(1, Defaults{}, sub, &fakeGenerator{}, time.UTC)
	c.SetContent("hello")

	done := make(chan error, 1)
	go func() {
		_, err := c.CommitNow(context.Background())
		done <- err
	}()

	<-sub.entered
	assert.True(t, c.Snapshot().CommitInFlight)

	_, err := c.CommitNow(context.Background())
	assert.ErrorIs(t, err, ErrCommitInFlight)

	close(sub.release)
	require.NoError(t, <-done)
	assert.False(t, c.Snapshot().CommitInFlight)
}

type blockingGenerator struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingGenerator) Generate(ctx context.Context, userID int64, req *GenerationRequest) (*Candidate, error) {
	close(b.entered)
	<-b.release
	return &Candidate{Primary: "done"}, nil
}

func TestGenerateRefusedWhileGenerationInFlight(t *testing.T) {
	gen := &blockingGenerator{entered: make(chan struct{}), release: make(chan struct{})}
	c := New(1, Defaults{}, &fakeSubmitter{}, gen, time.UTC)

	done := make(chan error, 1)
	go func() {
		_, err := c.Generate(context.Background(), &GenerationRequest{Topic: "go"})
		done <- err
	}()

	<-gen.entered
	assert.Equal(t, GenGenerating, c.Generation().Phase)

	_, err := c.Generate(context.Background(), &GenerationRequest{Topic: "go"})
	assert.ErrorIs(t, err, ErrGenerationInFlight)

	close(gen.release)
	require.NoError(t, <-done)
	assert.Equal(t, GenSucceeded, c.Generation().Phase)
}

func TestIsValidation(t *testing.T) {
	for _, err := range []error{ErrEmptyPost, ErrNoPlatform, ErrNoScheduleDate, ErrEmptyTopic, ErrCommitInFlight, ErrGenerationInFlight} {
		assert.True(t, IsValidation(err))
	}
	assert.False(t, IsValidation(errors.New("database down")))
	assert.False(t, IsValidation(nil))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "LinkedIn", DisplayName(PlatformLinkedIn))
	assert.Equal(t, "threads", DisplayName(PlatformID("threads")))
}
