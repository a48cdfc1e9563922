// Package composer holds the in-memory aggregate for drafting one post
// before submission: target platforms, caption draft, attached media,
// schedule target and the AI generation candidate. A composer is owned by
// exactly one user; the Manager hands out live instances per user id.
package composer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

type PlatformID string

const (
	PlatformTwitter   PlatformID = "twitter"
	PlatformInstagram PlatformID = "instagram"
	PlatformFacebook  PlatformID = "facebook"
	PlatformLinkedIn  PlatformID = "linkedin"
	PlatformTiktok    PlatformID = "tiktok"
)

// CharWarnThreshold is advisory only. Crossing it flips a warning flag in
// the snapshot but never blocks a commit.
const CharWarnThreshold = 280

type Platform struct {
	ID          PlatformID `json:"id"`
	DisplayName string     `json:"display_name"`
	ColorTag    string     `json:"color_tag"`
	Enabled     bool       `json:"enabled"`
}

type ScheduleTarget struct {
	Date *time.Time `json:"date,omitempty"`
	Time string     `json:"time"` // HH:MM
}

// Validation errors: detected synchronously, block the operation and leave
// every piece of composer state untouched.
var (
	ErrEmptyPost          = errors.New("nothing to post: add a caption or media")
	ErrNoPlatform         = errors.New("no platform selected")
	ErrNoScheduleDate     = errors.New("schedule date is not set")
	ErrEmptyTopic         = errors.New("topic or custom prompt is required")
	ErrCommitInFlight     = errors.New("a commit is already in progress")
	ErrGenerationInFlight = errors.New("a generation is already in progress")
)

var validationErrs = []error{
	ErrEmptyPost, ErrNoPlatform, ErrNoScheduleDate,
	ErrEmptyTopic, ErrCommitInFlight, ErrGenerationInFlight,
}

// IsValidation reports whether err was raised before anything left the
// composer, so callers can map it to a 400 instead of a 502.
func IsValidation(err error) bool {
	for _, v := range validationErrs {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}

// Submission is the aggregate handed to the Submitter on commit.
type Submission struct {
	Content      string
	Media        []MediaItem
	Platforms    []PlatformID
	ScheduledFor *time.Time
}

// Receipt confirms a successful submission.
type Receipt struct {
	PostID        int64    `json:"post_id"`
	PlatformNames []string `json:"platform_names"`
	Scheduled     bool     `json:"scheduled"`
}

type Submitter interface {
	Submit(ctx context.Context, userID int64, sub *Submission) (*Receipt, error)
}

type Composer struct {
	mu sync.Mutex

	userID    int64
	brandName string
	loc       *time.Location

	platforms []Platform
	content   string

	media          []MediaItem
	previewVisible bool

	schedule ScheduleTarget

	gen genState

	commitInFlight bool

	submitter Submitter
	generator Generator
}

var platformCatalog = []Platform{
	{ID: PlatformTwitter, DisplayName: "Twitter", ColorTag: "#1DA1F2"},
	{ID: PlatformInstagram, DisplayName: "Instagram", ColorTag: "#E4405F"},
	{ID: PlatformFacebook, DisplayName: "Facebook", ColorTag: "#1877F2"},
	{ID: PlatformLinkedIn, DisplayName: "LinkedIn", ColorTag: "#0A66C2"},
	{ID: PlatformTiktok, DisplayName: "TikTok", ColorTag: "#010101"},
}

// DisplayName resolves a platform id to its catalog display name. Unknown
// ids fall back to the raw id string.
func DisplayName(id PlatformID) string {
	for _, p := range platformCatalog {
		if p.ID == id {
			return p.DisplayName
		}
	}
	return string(id)
}

// Defaults seed a fresh composer. Zero values fall back to 19:00 and the
// twitter+instagram pair.
type Defaults struct {
	ScheduleTime     string
	EnabledPlatforms []PlatformID
	BrandName        string
}

func New(userID int64, d Defaults, submitter Submitter, generator Generator, loc *time.Location) *Composer {
	if loc == nil {
		loc = time.UTC
	}
	if d.ScheduleTime == "" {
		d.ScheduleTime = "19:00"
	}
	if len(d.EnabledPlatforms) == 0 {
		d.EnabledPlatforms = []PlatformID{PlatformTwitter, PlatformInstagram}
	}

	enabled := make(map[PlatformID]bool, len(d.EnabledPlatforms))
	for _, id := range d.EnabledPlatforms {
		enabled[id] = true
	}

	platforms := make([]Platform, len(platformCatalog))
	copy(platforms, platformCatalog)
	for i := range platforms {
		platforms[i].Enabled = enabled[platforms[i].ID]
	}

	return &Composer{
		userID:    userID,
		brandName: d.BrandName,
		loc:       loc,
		platforms: platforms,
		schedule:  ScheduleTarget{Time: d.ScheduleTime},
		submitter: submitter,
		generator: generator,
	}
}

// TogglePlatform flips exactly the enabled flag of the matching platform.
// Unknown ids are ignored.
func (c *Composer) TogglePlatform(id PlatformID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.platforms {
		if c.platforms[i].ID == id {
			c.platforms[i].Enabled = !c.platforms[i].Enabled
			return
		}
	}
}

func (c *Composer) Platforms() []Platform {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Platform, len(c.platforms))
	copy(out, c.platforms)
	return out
}

func (c *Composer) enabledPlatformsLocked() []PlatformID {
	var ids []PlatformID
	for _, p := range c.platforms {
		if p.Enabled {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// SetContent replaces the draft verbatim.
func (c *Composer) SetContent(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.content = text
}

func (c *Composer) AppendHashtagMarker() {
	c.append("#")
}

func (c *Composer) AppendMentionMarker() {
	c.append("@")
}

func (c *Composer) AppendEmoji(e string) {
	c.append(e)
}

func (c *Composer) append(suffix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.content += suffix
}

func (c *Composer) Content() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.content
}

func (c *Composer) CharacterCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len([]rune(c.content))
}

func (c *Composer) OverWarningThreshold() bool {
	return c.CharacterCount() > CharWarnThreshold
}

// SetScheduleDate keeps only the calendar day; nil clears the date.
func (c *Composer) SetScheduleDate(d *time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if d == nil {
		c.schedule.Date = nil
		return
	}
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, c.loc)
	c.schedule.Date = &day
}

func (c *Composer) SetScheduleTime(hhmm string) error {
	if _, err := time.Parse("15:04", hhmm); err != nil {
		return fmt.Errorf("invalid schedule time %q: %w", hhmm, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.schedule.Time = hhmm
	return nil
}

func (c *Composer) Schedule() ScheduleTarget {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.schedule
}

// CommitNow submits the aggregate without a schedule. Precondition order:
// caption-or-media first, then at least one enabled platform. On success
// the caption and media list are reset; on failure everything is left
// untouched so the user can retry.
func (c *Composer) CommitNow(ctx context.Context) (*Receipt, error) {
	return c.commit(ctx, nil)
}

// CommitSchedule submits the aggregate with the resolved schedule target.
// The date must be set; the combined timestamp is normalized to UTC.
func (c *Composer) CommitSchedule(ctx context.Context) (*Receipt, error) {
	c.mu.Lock()
	if c.schedule.Date == nil {
		c.mu.Unlock()
		return nil, ErrNoScheduleDate
	}
	at, err := combineSchedule(*c.schedule.Date, c.schedule.Time, c.loc)
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}

	return c.commit(ctx, &at)
}

func (c *Composer) commit(ctx context.Context, scheduledFor *time.Time) (*Receipt, error) {
	c.mu.Lock()

	if c.commitInFlight {
		c.mu.Unlock()
		return nil, ErrCommitInFlight
	}
	if strings.TrimSpace(c.content) == "" && len(c.media) == 0 {
		c.mu.Unlock()
		return nil, ErrEmptyPost
	}
	platforms := c.enabledPlatformsLocked()
	if len(platforms) == 0 {
		c.mu.Unlock()
		return nil, ErrNoPlatform
	}

	sub := &Submission{
		Content:      c.content,
		Media:        copyMedia(c.media),
		Platforms:    platforms,
		ScheduledFor: scheduledFor,
	}
	c.commitInFlight = true
	c.mu.Unlock()

	receipt, err := c.submitter.Submit(ctx, c.userID, sub)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.commitInFlight = false

	if err != nil {
		return nil, err
	}

	c.content = ""
	c.media = nil
	c.previewVisible = false

	receipt.Scheduled = scheduledFor != nil
	return receipt, nil
}

func combineSchedule(date time.Time, hhmm string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid schedule time %q: %w", hhmm, err)
	}
	at := time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, loc)
	return at.UTC(), nil
}

// Snapshot is the read model served to the dashboard.
type Snapshot struct {
	Platforms      []Platform     `json:"platforms"`
	Content        string         `json:"content"`
	CharacterCount int            `json:"character_count"`
	OverThreshold  bool           `json:"over_threshold"`
	Media          []MediaItem    `json:"media"`
	PreviewVisible bool           `json:"preview_visible"`
	Schedule       ScheduleTarget `json:"schedule"`
	Generation     GenSnapshot    `json:"generation"`
	CommitInFlight bool           `json:"commit_in_flight"`
}

func (c *Composer) Snapshot() *Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	platforms := make([]Platform, len(c.platforms))
	copy(platforms, c.platforms)

	count := len([]rune(c.content))
	return &Snapshot{
		Platforms:      platforms,
		Content:        c.content,
		CharacterCount: count,
		OverThreshold:  count > CharWarnThreshold,
		Media:          copyMedia(c.media),
		PreviewVisible: c.previewVisible,
		Schedule:       c.schedule,
		Generation:     c.gen.snapshot(),
		CommitInFlight: c.commitInFlight,
	}
}
