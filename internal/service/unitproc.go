package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/timmy/autoposter/internal/domain"
	"github.com/timmy/autoposter/internal/logger"
	"github.com/timmy/autoposter/internal/publish"
	"github.com/timmy/autoposter/internal/render"
	"github.com/timmy/autoposter/internal/repository"
)

// errIncompleteItem marks a schedule item missing required fields. Such
// items are skipped with a warning, not counted as failures.
var errIncompleteItem = errors.New("incomplete schedule item")

const timestampLayout = "2006-01-02 15:04:05"

// UnitProcessor drains the content of one processing unit for one day:
// render every item, persist its record, and hand the publish attempt to the
// scheduler. Items fail independently; one bad clip never sinks the unit.
type UnitProcessor struct {
	renderer  render.Renderer
	publisher publish.Publisher
	scheduler *PostScheduler
	guard     *stateGuard
	archive   *repository.ArchiveRepository
	runID     string
	now       func() time.Time
}

// NewUnitProcessor creates a processor for one run.
// Parameters:
//   - renderer: composition service client.
//   - publisher: platform upload registry.
//   - scheduler: delayed publish queue.
//   - guard: shared tracking-state guard.
//   - archive: relational archive, nil disables mirroring.
//   - runID: id of the owning run.
//   - now: clock, nil defaults to time.Now.
// Returns:
//   - *UnitProcessor: initialized processor.
func NewUnitProcessor(renderer render.Renderer, publisher publish.Publisher, scheduler *PostScheduler, guard *stateGuard, archive *repository.ArchiveRepository, runID string, now func() time.Time) *UnitProcessor {
	if now == nil {
		now = time.Now
	}
	return &UnitProcessor{
		renderer:  renderer,
		publisher: publisher,
		scheduler: scheduler,
		guard:     guard,
		archive:   archive,
		runID:     runID,
		now:       now,
	}
}

// Process drains one unit. It stops early when the deadline passes, in which
// case completed is false and the unit must stay pending for the next run.
// A panic inside the unit is contained here: the unit counts one failure and
// stays pending, so the whole unit is retried on the next invocation.
// Parameters:
//   - ctx: context carrying run and unit log fields.
//   - unitID: processing unit to drain.
//   - day: active calendar slot.
//   - sched: full posting calendar.
//   - titles: long-form title bank.
//   - shortTitles: shorts and reels title bank.
//   - deadline: wall-clock cutoff for this run.
// Returns:
//   - scheduled: items rendered and queued for publishing.
//   - failed: items that errored before reaching the publish queue.
//   - completed: false when the deadline truncated the unit or a panic
//     escaped it; the unit must stay pending either way.
func (p *UnitProcessor) Process(ctx context.Context, unitID string, day domain.DayKey, sched *domain.ScheduleConfig, titles, shortTitles domain.TitleBank, deadline time.Time) (scheduled, failed int, completed bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.CtxError(ctx, "Recovered from panic while processing %s, unit stays pending: %v", unitID, r)
			failed++
			completed = false
		}
	}()

	if domain.IsInstagramUnit(unitID) {
		return p.processAccount(ctx, unitID, day, sched, shortTitles, deadline)
	}
	return p.processChannel(ctx, unitID, day, sched, titles, shortTitles, deadline)
}

func (p *UnitProcessor) processChannel(ctx context.Context, channelID string, day domain.DayKey, sched *domain.ScheduleConfig, titles, shortTitles domain.TitleBank, deadline time.Time) (scheduled, failed int, completed bool) {
	channel, ok := sched.YouTubeChannels[channelID]
	if !ok {
		logger.CtxWarn(ctx, "Channel %s is in the cursor but not in the schedule, skipping", channelID)
		return 0, 0, true
	}
	dayBlock, ok := channel.Days[day]
	if !ok {
		logger.CtxInfo(ctx, "No content for %s on %s", channelID, day)
		return 0, 0, true
	}
	creds := channel.Credentials

	if dayBlock.Long != nil {
		if p.pastDeadline(deadline) {
			return scheduled, failed, false
		}
		if err := p.scheduleLong(ctx, channelID, day, dayBlock.Long, &creds, titles); err == nil {
			scheduled++
		} else if !errors.Is(err, errIncompleteItem) {
			logger.CtxError(ctx, "Long video failed for %s: %v", channelID, err)
			failed++
		}
	}

	for i := range dayBlock.Shorts {
		if p.pastDeadline(deadline) {
			return scheduled, failed, false
		}
		if err := p.scheduleShort(ctx, channelID, day, &dayBlock.Shorts[i], &creds, shortTitles); err == nil {
			scheduled++
		} else if !errors.Is(err, errIncompleteItem) {
			logger.CtxError(ctx, "Short failed for %s: %v", channelID, err)
			failed++
		}
	}

	return scheduled, failed, true
}

func (p *UnitProcessor) processAccount(ctx context.Context, unitID string, day domain.DayKey, sched *domain.ScheduleConfig, shortTitles domain.TitleBank, deadline time.Time) (scheduled, failed int, completed bool) {
	accountID := domain.AccountForUnit(unitID)
	account, ok := sched.InstagramAccounts[accountID]
	if !ok {
		logger.CtxWarn(ctx, "Account %s is in the cursor but not in the schedule, skipping", accountID)
		return 0, 0, true
	}
	dayBlock, ok := account.Days[day]
	if !ok {
		logger.CtxInfo(ctx, "No content for %s on %s", accountID, day)
		return 0, 0, true
	}
	creds := account.Credentials

	for i := range dayBlock.Reels {
		if p.pastDeadline(deadline) {
			return scheduled, failed, false
		}
		if err := p.scheduleReel(ctx, unitID, accountID, day, &dayBlock.Reels[i], &creds, shortTitles); err == nil {
			scheduled++
		} else if !errors.Is(err, errIncompleteItem) {
			logger.CtxError(ctx, "Reel failed for %s: %v", accountID, err)
			failed++
		}
	}

	return scheduled, failed, true
}

func (p *UnitProcessor) scheduleLong(ctx context.Context, channelID string, day domain.DayKey, spec *domain.LongSpec, creds *domain.YouTubeCredentials, titles domain.TitleBank) error {
	if !spec.Complete() {
		logger.CtxWarn(ctx, "Long video for %s on %s is missing required fields, skipping", channelID, day)
		return errIncompleteItem
	}
	postAt, err := nextOccurrence(spec.PostTime, p.now())
	if err != nil {
		return fmt.Errorf("invalid post time %q for clip %s: %w", spec.PostTime, spec.Clip, err)
	}

	title := titles.Resolve(spec.Clip, spec.TitleIndex)
	asset, err := p.renderer.Render(ctx, &render.Request{
		ClipID:   spec.Clip,
		Variant:  domain.ContentTypeLong,
		Title:    title,
		TextCTA:  spec.TextCTA,
		VideoCTA: spec.VideoCTA,
	})
	if err != nil {
		return err
	}

	rec := p.newRecord(domain.PlatformYouTube, domain.ContentTypeLong, channelID, "", day, spec.Clip, asset, title, postAt)
	arch := p.recordScheduled(ctx, channelID, rec)

	p.submitPublish(ctx, channelID, postAt, rec, arch, &publish.Request{
		Platform:    domain.PlatformYouTube,
		UnitID:      channelID,
		ChannelID:   channelID,
		FilePath:    asset.Path,
		Title:       rec.Title,
		Description: asset.Description,
		YouTube:     creds,
	})
	return nil
}

func (p *UnitProcessor) scheduleShort(ctx context.Context, channelID string, day domain.DayKey, spec *domain.ShortSpec, creds *domain.YouTubeCredentials, shortTitles domain.TitleBank) error {
	if !spec.Complete() {
		logger.CtxWarn(ctx, "Short for %s on %s is missing required fields, skipping", channelID, day)
		return errIncompleteItem
	}
	postAt, err := nextOccurrence(spec.PostTime, p.now())
	if err != nil {
		return fmt.Errorf("invalid post time %q for clip %s: %w", spec.PostTime, spec.Clip, err)
	}

	title := shortTitles.Resolve(spec.Clip, 1)
	asset, err := p.renderer.Render(ctx, &render.Request{
		ClipID:     spec.Clip,
		Variant:    domain.ContentTypeShort,
		Title:      title,
		TextCTA:    spec.TextCTA,
		VideoCTA:   spec.VideoCTA,
		MusicTrack: spec.MusicTrack,
	})
	if err != nil {
		return err
	}

	rec := p.newRecord(domain.PlatformYouTube, domain.ContentTypeShort, channelID, "", day, spec.Clip, asset, title, postAt)
	arch := p.recordScheduled(ctx, channelID, rec)

	p.submitPublish(ctx, channelID, postAt, rec, arch, &publish.Request{
		Platform:    domain.PlatformYouTube,
		UnitID:      channelID,
		ChannelID:   channelID,
		FilePath:    asset.Path,
		Title:       rec.Title,
		Description: asset.Description,
		IsShort:     true,
		YouTube:     creds,
	})
	return nil
}

func (p *UnitProcessor) scheduleReel(ctx context.Context, unitID, accountID string, day domain.DayKey, spec *domain.ReelSpec, creds *domain.InstagramCredentials, shortTitles domain.TitleBank) error {
	if !spec.Complete() {
		logger.CtxWarn(ctx, "Reel for %s on %s is missing required fields, skipping", accountID, day)
		return errIncompleteItem
	}
	postAt, err := nextOccurrence(spec.PostTime, p.now())
	if err != nil {
		return fmt.Errorf("invalid post time %q for clip %s: %w", spec.PostTime, spec.Clip, err)
	}

	title := shortTitles.Resolve(spec.Clip, 1)
	asset, err := p.renderer.Render(ctx, &render.Request{
		ClipID:         spec.Clip,
		Variant:        domain.ContentTypeReel,
		Title:          title,
		TextCTA:        spec.TextCTA,
		DescriptionCTA: spec.DescriptionCTA,
		MusicTrack:     spec.MusicTrack,
	})
	if err != nil {
		return err
	}

	// Reel history lives under the paired channel's key
	historyKey := domain.ChannelForAccount(accountID)
	rec := p.newRecord(domain.PlatformInstagram, domain.ContentTypeReel, historyKey, accountID, day, spec.Clip, asset, title, postAt)
	arch := p.recordScheduled(ctx, historyKey, rec)

	p.submitPublish(ctx, unitID, postAt, rec, arch, &publish.Request{
		Platform:    domain.PlatformInstagram,
		UnitID:      unitID,
		ChannelID:   historyKey,
		AccountID:   accountID,
		FilePath:    asset.Path,
		Title:       rec.Title,
		Description: asset.Description,
		Instagram:   creds,
	})
	return nil
}

func (p *UnitProcessor) newRecord(platform domain.Platform, contentType domain.ContentType, channelID, accountID string, day domain.DayKey, clipID string, asset *render.Asset, fallbackTitle string, postAt time.Time) *domain.PostRecord {
	title := asset.Title
	if title == "" {
		title = fallbackTitle
	}
	return &domain.PostRecord{
		Platform:      platform,
		ContentType:   contentType,
		ChannelID:     channelID,
		AccountID:     accountID,
		Title:         title,
		ClipID:        clipID,
		FilePath:      asset.Path,
		ScheduledTime: postAt.Format(timestampLayout),
		Status:        domain.PostStatusScheduled,
		Day:           day,
	}
}

// recordScheduled persists the fresh record into the tracking document and
// mirrors it to the archive. Returns the archive row for later updates, nil
// when the archive is disabled or the insert failed.
func (p *UnitProcessor) recordScheduled(ctx context.Context, historyKey string, rec *domain.PostRecord) *domain.ArchivedPost {
	p.guard.appendPost(ctx, historyKey, rec)
	if p.archive == nil {
		return nil
	}
	arch := domain.ArchiveFromRecord(p.runID, rec)
	if err := p.archive.Create(ctx, arch); err != nil {
		logger.CtxWarn(ctx, "Failed to archive post record for %s: %v", historyKey, err)
		return nil
	}
	return arch
}

func (p *UnitProcessor) submitPublish(ctx context.Context, unitID string, readyAt time.Time, rec *domain.PostRecord, arch *domain.ArchivedPost, req *publish.Request) {
	p.scheduler.Submit(ctx, &PostTask{
		UnitID:  unitID,
		ReadyAt: readyAt,
		Run: func(taskCtx context.Context) {
			res, err := p.publisher.Publish(taskCtx, req)
			p.guard.update(taskCtx, func() {
				rec.ActualTime = p.now().Format(timestampLayout)
				if err != nil {
					rec.Status = domain.PostStatusError
					rec.Error = err.Error()
				} else {
					rec.Status = domain.PostStatusSuccess
					rec.PostID = res.PostID
					rec.PostURL = res.URL
				}
			})
			if err != nil {
				logger.CtxError(taskCtx, "Publish failed for clip %s on %s: %v", rec.ClipID, unitID, err)
			} else {
				logger.CtxInfo(taskCtx, "Published clip %s on %s: %s", rec.ClipID, unitID, rec.PostURL)
			}
			if arch != nil && p.archive != nil {
				arch.ActualTime = rec.ActualTime
				arch.PostID = rec.PostID
				arch.PostURL = rec.PostURL
				arch.Status = string(rec.Status)
				arch.Error = rec.Error
				if updateErr := p.archive.Update(taskCtx, arch); updateErr != nil {
					logger.CtxWarn(taskCtx, "Failed to update archived post %d: %v", arch.ID, updateErr)
				}
			}
		},
	})
}

func (p *UnitProcessor) pastDeadline(deadline time.Time) bool {
	return !p.now().Before(deadline)
}

// nextOccurrence resolves a wall-clock post time ("15:04") to its next
// occurrence at or after now.
func nextOccurrence(postTime string, now time.Time) (time.Time, error) {
	t, err := time.Parse("15:04", postTime)
	if err != nil {
		return time.Time{}, err
	}
	target := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
	if target.Before(now) {
		target = target.Add(24 * time.Hour)
	}
	return target, nil
}
