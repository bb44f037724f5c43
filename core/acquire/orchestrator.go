package acquire

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"Bt1QDL/config"
	"Bt1QDL/core/extractor"
	"Bt1QDL/core/progress"
	"Bt1QDL/core/utils"
	"Bt1QDL/logger"
	"Bt1QDL/model"
)

// Error taxonomy. Per-attempt failures are absorbed by cascade advancement;
// only these surface as terminal, user-visible outcomes.
var (
	ErrSourceUnsupported = errors.New("source unsupported")
	ErrDownloadExhausted = errors.New("all download strategies failed")
)

// The downloading stage owns the 20-90 band of the overall progress scale.
const (
	progressAnalyzing     = 5
	progressDownloadStart = 20
	progressDownloadEnd   = 90
	progressMetadata      = 95
)

// TrackStore is the persistence collaborator called once on success.
type TrackStore interface {
	CreateTrack(track *model.Track) (int64, error)
}

// HistoryStore records terminal outcomes.
type HistoryStore interface {
	Append(rec *model.AcquisitionRecord) error
}

// SessionStore mirrors session snapshots for status lookups.
type SessionStore interface {
	SaveSnapshot(ctx context.Context, session *model.AcquisitionSession) error
}

// Archiver copies finished assets to object storage, best effort.
type Archiver interface {
	ArchiveFile(ctx context.Context, localPath, objectName, contentType string) (string, error)
}

// Orchestrator runs acquisition sessions. One goroutine per session; sessions
// share nothing but the broadcaster and the upload directory.
type Orchestrator struct {
	cfg         *config.Config
	runner      extractor.Runner
	prober      MetadataProber
	broadcaster *progress.Broadcaster
	tracks      TrackStore
	history     HistoryStore
	sessions    SessionStore
	archiver    Archiver
	httpClient  *http.Client
	cascade     []Strategy
}

// NewOrchestrator wires an orchestrator. tracks, history, sessions and
// archiver may be nil; the corresponding step is then skipped with a log
// line.
func NewOrchestrator(
	cfg *config.Config,
	runner extractor.Runner,
	prober MetadataProber,
	broadcaster *progress.Broadcaster,
	tracks TrackStore,
	history HistoryStore,
	sessions SessionStore,
	archiver Archiver,
) *Orchestrator {
	return &Orchestrator{
		cfg:         cfg,
		runner:      runner,
		prober:      prober,
		broadcaster: broadcaster,
		tracks:      tracks,
		history:     history,
		sessions:    sessions,
		archiver:    archiver,
		httpClient:  &http.Client{},
		cascade:     StreamingCascade(cfg.StrategyTimeout),
	}
}

// Run executes one acquisition session to a terminal state. It owns the
// session exclusively and publishes every state change through the
// broadcaster. Cancellation arrives through the context the broadcaster
// cancels on RequestCancel.
func (o *Orchestrator) Run(ctx context.Context, sessionID, rawURL string) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	o.broadcaster.BindCancel(sessionID, cancel)

	session := &model.AcquisitionSession{
		ID:        sessionID,
		SourceURL: rawURL,
		Status:    model.StatusPending,
	}
	o.publish(session, model.EventStatus, "Acquisition queued", 0, "pending")

	session.Status = model.StatusAnalyzing
	o.publish(session, model.EventStatus, "Analyzing source", progressAnalyzing, "analyzing")

	kind := ClassifySource(rawURL)
	if kind == SourceUnsupported {
		o.fail(session, "", ErrSourceUnsupported.Error(), "The provided URL is not supported.")
		return
	}
	logger.Info("source classified",
		logger.String("sessionId", sessionID),
		logger.String("kind", string(kind)))

	session.Status = model.StatusDownloading
	var (
		asset       *model.DownloadedAsset
		self        *SelfReported
		strategy    string
		embeddedURL string
		err         error
	)
	switch kind {
	case SourceDirectFile:
		asset, err = o.downloadDirect(ctx, session)
		strategy = "Direct Download"
	case SourceStreamingPlatform:
		asset, self, strategy, err = o.downloadStreaming(ctx, session)
	case SourceExternalMusicService:
		asset, self, embeddedURL, err = o.downloadMusicService(ctx, session)
		strategy = "Music Service Resolver"
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			o.finishCancelled(session)
			return
		}
		o.fail(session, strategy, err.Error(),
			"Download failed. The platform may be blocking automated access.")
		return
	}

	session.Status = model.StatusProcessing
	o.publish(session, model.EventStatus, "Processing metadata", progressDownloadEnd, "processing")

	// Thumbnail fetch runs in parallel with metadata probing; its failure
	// never fails the session.
	thumbnailSource := embeddedURL
	if self != nil && self.ThumbnailURL != "" {
		thumbnailSource = self.ThumbnailURL
	}
	var thumbnailPath string
	var wg sync.WaitGroup
	if thumbnailSource != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tctx, tcancel := context.WithTimeout(ctx, o.cfg.ThumbnailTimeout)
			defer tcancel()
			thumbnailPath = fetchThumbnail(tctx, o.httpClient, thumbnailSource, o.cfg.CoverUploadDir)
		}()
	}

	meta := NormalizeMetadata(o.prober, asset.LocalPath, self, strategy)
	wg.Wait()
	meta.ThumbnailPath = thumbnailPath
	o.publish(session, model.EventProgress, "Metadata ready", progressMetadata, "processing")

	trackID, err := o.persist(session, asset, meta)
	if err != nil {
		Cleanup(asset.LocalPath)
		Cleanup(meta.ThumbnailPath)
		o.fail(session, strategy, err.Error(), "Failed to save the track record.")
		return
	}

	o.archive(ctx, asset, meta)

	session.Status = model.StatusComplete
	o.recordHistory(session, meta.SourceStrategy, trackID, meta.Duration, "")
	o.publish(session, model.EventComplete, "Acquisition complete", 100, "complete")
	logger.Info("acquisition complete",
		logger.String("sessionId", session.ID),
		logger.String("title", meta.Title),
		logger.String("strategy", meta.SourceStrategy),
		logger.Int("duration", meta.Duration))
}

// downloadDirect performs the single-attempt HTTP fetch for direct file
// sources. A failure here is terminal; the cascade has one entry.
func (o *Orchestrator) downloadDirect(ctx context.Context, session *model.AcquisitionSession) (*model.DownloadedAsset, error) {
	o.publish(session, model.EventProgress, "Downloading file", progressDownloadStart, "downloading")

	fileID := uuid.New().String()
	ext := utils.ExtensionFromURL(session.SourceURL)
	dest := filepath.Join(o.cfg.AudioUploadDir, fileID+ext)

	dctx, dcancel := context.WithTimeout(ctx, o.cfg.DirectTimeout)
	defer dcancel()

	contentType, err := utils.DownloadToFile(dctx, o.httpClient, session.SourceURL, dest)
	if err != nil {
		Cleanup(dest)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrDownloadExhausted, err)
	}

	if ext == "" {
		ext = utils.ExtensionFromContentType(contentType)
		if ext == "" {
			ext = ".mp3"
		}
		renamed := dest + ext
		if err := os.Rename(dest, renamed); err != nil {
			Cleanup(dest)
			return nil, fmt.Errorf("failed to finalize download: %w", err)
		}
		dest = renamed
	}

	o.publish(session, model.EventProgress, "File downloaded", 80, "downloading")
	return &model.DownloadedAsset{LocalPath: dest, Filename: filepath.Base(dest)}, nil
}

// downloadStreaming walks the strategy cascade, stopping at the first
// success, then falls back to the secondary extractor before giving up.
// Cancellation is checked before every new attempt.
func (o *Orchestrator) downloadStreaming(ctx context.Context, session *model.AcquisitionSession) (*model.DownloadedAsset, *SelfReported, string, error) {
	cleaned := CleanStreamingURL(session.SourceURL)
	fileID := uuid.New().String()
	outputTemplate := filepath.Join(o.cfg.AudioUploadDir, fileID+".%(ext)s")
	outputGlob := filepath.Join(o.cfg.AudioUploadDir, fileID+".*")

	total := len(o.cascade)
	for i, strat := range o.cascade {
		if ctx.Err() != nil {
			return nil, nil, "", ctx.Err()
		}

		attemptProgress := progressDownloadStart + i*(progressDownloadEnd-progressDownloadStart)/total
		o.publish(session, model.EventStatus,
			fmt.Sprintf("Attempt %d: %s", i+1, strat.Name), attemptProgress, "downloading")

		res := o.runner.Run(ctx, extractor.Command{
			Path:       o.cfg.YtdlpPath,
			Args:       strat.BuildArgs(cleaned, outputTemplate),
			OutputGlob: outputGlob,
			Timeout:    strat.Timeout,
		})
		if ctx.Err() != nil {
			cleanupGlob(outputGlob)
			return nil, nil, "", ctx.Err()
		}
		if !res.Success {
			// Absorbed; the next cascade entry is the retry. Partials must
			// not survive into the next attempt's artifact check.
			cleanupGlob(outputGlob)
			logger.Debug("strategy failed",
				logger.String("sessionId", session.ID),
				logger.String("strategy", strat.Name),
				logger.Bool("timedOut", res.TimedOut))
			continue
		}

		o.publish(session, model.EventProgress,
			fmt.Sprintf("Downloaded via %s", strat.Name), progressDownloadEnd, "downloading")

		var self *SelfReported
		if strat.RichMetadata {
			self = ParseRichMetadata(res.Stdout)
		}
		asset := &model.DownloadedAsset{LocalPath: res.ProducedFile, Filename: filepath.Base(res.ProducedFile)}
		return asset, self, strat.Name, nil
	}

	if ctx.Err() != nil {
		return nil, nil, "", ctx.Err()
	}
	logger.Warn("cascade exhausted, trying fallback extractor",
		logger.String("sessionId", session.ID))
	return o.runFallback(ctx, session, cleaned)
}

// runFallback invokes the secondary extractor, rescaling its textual progress
// markers into the downloading band.
func (o *Orchestrator) runFallback(ctx context.Context, session *model.AcquisitionSession, url string) (*model.DownloadedAsset, *SelfReported, string, error) {
	o.publish(session, model.EventStatus, "Trying fallback extractor", progressDownloadStart, "downloading")

	lastProgress := progressDownloadStart
	onLine := func(line string) {
		marker, ok := extractor.ParseMarker(line)
		if !ok {
			return
		}
		switch marker.Kind {
		case extractor.MarkerAttempt:
			o.publish(session, model.EventStatus,
				fmt.Sprintf("Fallback attempt %d: %s", marker.Attempt, marker.Strategy),
				lastProgress, "downloading")
		case extractor.MarkerPercent:
			scaled := progressDownloadStart + int(marker.Percent)*(progressDownloadEnd-progressDownloadStart)/100
			if scaled <= lastProgress {
				return
			}
			lastProgress = scaled
			o.publish(session, model.EventProgress, "Downloading", scaled, "downloading")
		}
	}

	res := o.runner.Run(ctx, extractor.Command{
		Path:         o.cfg.PythonPath,
		Args:         []string{o.cfg.PyDownloaderScript, url, o.cfg.AudioUploadDir},
		Timeout:      o.cfg.FallbackTimeout,
		OnStdoutLine: onLine,
	})
	if ctx.Err() != nil {
		return nil, nil, "", ctx.Err()
	}

	result, ok := extractor.ParseFallbackResult(res.Stdout)
	if !ok || !result.Success || result.Filename == "" {
		return nil, nil, "", ErrDownloadExhausted
	}
	localPath := filepath.Join(o.cfg.AudioUploadDir, result.Filename)
	if _, err := os.Stat(localPath); err != nil {
		return nil, nil, "", ErrDownloadExhausted
	}

	strategy := "Fallback: " + result.Strategy
	self := &SelfReported{
		Title:    result.Title,
		Artist:   result.Artist,
		Duration: result.Duration,
	}
	asset := &model.DownloadedAsset{LocalPath: localPath, Filename: result.Filename}
	o.publish(session, model.EventProgress, "Downloaded via fallback extractor", progressDownloadEnd, "downloading")
	return asset, self, strategy, nil
}

var resolverDownloadedRe = regexp.MustCompile(`Downloaded "(.+?) - (.+?)"`)

// downloadMusicService invokes the resolver executable in a session-scoped
// subdirectory. The resolver's output naming is non-deterministic, so the
// directory is snapshotted before and after and newly appeared audio files
// are taken as the result. Its stdout is also scanned for an embedded watch
// URL used for the thumbnail side channel.
func (o *Orchestrator) downloadMusicService(ctx context.Context, session *model.AcquisitionSession) (*model.DownloadedAsset, *SelfReported, string, error) {
	sessionDir := filepath.Join(o.cfg.AudioUploadDir, "session-"+session.ID)
	if err := os.MkdirAll(sessionDir, 0755); err != nil {
		return nil, nil, "", fmt.Errorf("failed to create session directory: %w", err)
	}
	defer CleanupDir(sessionDir)

	o.publish(session, model.EventProgress, "Resolving stream", progressDownloadStart, "downloading")
	before := snapshotAudioFiles(sessionDir)

	// Watch the session directory so files the resolver creates surface as
	// progress while it runs.
	watcher, werr := fsnotify.NewWatcher()
	if werr == nil {
		defer watcher.Close()
		if err := watcher.Add(sessionDir); err == nil {
			done := make(chan struct{})
			defer close(done)
			go func() {
				for {
					select {
					case event, ok := <-watcher.Events:
						if !ok {
							return
						}
						if event.Op&fsnotify.Create == fsnotify.Create && utils.IsAudioFile(event.Name) {
							// Published directly; the session struct stays
							// owned by the orchestrator goroutine.
							o.broadcaster.Publish(model.ProgressEvent{
								SessionID: session.ID,
								Type:      model.EventProgress,
								Message:   "Resolver produced " + filepath.Base(event.Name),
								Progress:  60,
								Stage:     "downloading",
							})
						}
					case err, ok := <-watcher.Errors:
						if !ok {
							return
						}
						logger.Warn("session dir watch error", logger.ErrorField(err))
					case <-done:
						return
					}
				}
			}()
		}
	} else {
		logger.Warn("session dir watch unavailable", logger.ErrorField(werr))
	}

	res := o.runner.Run(ctx, extractor.Command{
		Path: o.cfg.SpotdlPath,
		Args: []string{
			"download", session.SourceURL,
			"--output", filepath.Join(sessionDir, "{artist} - {title}.{output-ext}"),
		},
		Timeout: o.cfg.FallbackTimeout,
	})
	if ctx.Err() != nil {
		return nil, nil, "", ctx.Err()
	}
	if !res.Success {
		return nil, nil, "", fmt.Errorf("%w: resolver failed", ErrDownloadExhausted)
	}

	found := findNewAudioFile(sessionDir, before)
	if found == "" {
		return nil, nil, "", fmt.Errorf("%w: resolver produced no audio file", ErrDownloadExhausted)
	}

	// Move the artifact out of the session directory under a
	// collision-resistant name before the directory is removed.
	dest := filepath.Join(o.cfg.AudioUploadDir, uuid.New().String()+strings.ToLower(filepath.Ext(found)))
	if err := os.Rename(found, dest); err != nil {
		return nil, nil, "", fmt.Errorf("failed to move resolver output: %w", err)
	}

	var self *SelfReported
	if m := resolverDownloadedRe.FindStringSubmatch(res.Stdout); m != nil {
		self = &SelfReported{Artist: strings.TrimSpace(m[1]), Title: strings.TrimSpace(m[2])}
	}
	embeddedURL := FindEmbeddedWatchURL(res.Stdout)

	o.publish(session, model.EventProgress, "Stream resolved", progressDownloadEnd, "downloading")
	asset := &model.DownloadedAsset{LocalPath: dest, Filename: filepath.Base(dest)}
	return asset, self, embeddedURL, nil
}

// persist hands the finished asset to the persistence collaborator.
func (o *Orchestrator) persist(session *model.AcquisitionSession, asset *model.DownloadedAsset, meta model.ExtractedMetadata) (int64, error) {
	if o.tracks == nil {
		logger.Info("no track store configured, skipping persistence",
			logger.String("sessionId", session.ID))
		return 0, nil
	}
	track := &model.Track{
		Title:        meta.Title,
		Artist:       meta.Artist,
		Album:        meta.Album,
		FilePath:     asset.LocalPath,
		CoverArtPath: meta.ThumbnailPath,
		Duration:     float32(meta.Duration),
		SourceURL:    session.SourceURL,
	}
	return o.tracks.CreateTrack(track)
}

// archive copies the asset and cover to object storage, best effort.
func (o *Orchestrator) archive(ctx context.Context, asset *model.DownloadedAsset, meta model.ExtractedMetadata) {
	if o.archiver == nil {
		return
	}
	if _, err := o.archiver.ArchiveFile(ctx, asset.LocalPath, "audio/"+asset.Filename, "audio/mpeg"); err != nil {
		logger.Warn("asset archive failed",
			logger.String("file", asset.LocalPath),
			logger.ErrorField(err))
	}
	if meta.ThumbnailPath != "" {
		object := "covers/" + filepath.Base(meta.ThumbnailPath)
		if _, err := o.archiver.ArchiveFile(ctx, meta.ThumbnailPath, object, "image/jpeg"); err != nil {
			logger.Warn("cover archive failed",
				logger.String("file", meta.ThumbnailPath),
				logger.ErrorField(err))
		}
	}
}

func (o *Orchestrator) recordHistory(session *model.AcquisitionSession, strategy string, trackID int64, duration int, errMsg string) {
	if o.history == nil {
		return
	}
	rec := &model.AcquisitionRecord{
		SessionID: session.ID,
		SourceURL: session.SourceURL,
		Status:    string(session.Status),
		Strategy:  strategy,
		TrackID:   trackID,
		Duration:  duration,
		ErrorMsg:  errMsg,
	}
	if err := o.history.Append(rec); err != nil {
		logger.Warn("history append failed",
			logger.String("sessionId", session.ID),
			logger.ErrorField(err))
	}
}

// fail publishes the single terminal error event. The user-visible message
// stays plain language; internal detail goes to the log and the history row.
func (o *Orchestrator) fail(session *model.AcquisitionSession, strategy, internal, message string) {
	session.Status = model.StatusError
	logger.Error("acquisition failed",
		logger.String("sessionId", session.ID),
		logger.String("url", session.SourceURL),
		logger.String("cause", internal))
	o.recordHistory(session, strategy, 0, 0, internal)
	o.publish(session, model.EventError, message, session.Progress, "error")
}

// finishCancelled publishes the single terminal cancelled event. No further
// strategy starts once the session reaches this state.
func (o *Orchestrator) finishCancelled(session *model.AcquisitionSession) {
	session.Status = model.StatusCancelled
	logger.Info("acquisition cancelled", logger.String("sessionId", session.ID))
	o.recordHistory(session, "", 0, 0, "")
	o.publish(session, model.EventError, "Download cancelled.", session.Progress, "cancelled")
}

// publish updates the session, emits the event and refreshes the status
// mirror. Events within one session are published in generation order.
func (o *Orchestrator) publish(session *model.AcquisitionSession, t model.EventType, message string, progressPct int, stage string) {
	session.Stage = stage
	session.Progress = progressPct
	session.LastMessage = message
	o.broadcaster.Publish(model.ProgressEvent{
		SessionID: session.ID,
		Type:      t,
		Message:   message,
		Progress:  progressPct,
		Stage:     stage,
	})
	if o.sessions != nil {
		if err := o.sessions.SaveSnapshot(context.Background(), session); err != nil {
			logger.Debug("session snapshot save failed",
				logger.String("sessionId", session.ID),
				logger.ErrorField(err))
		}
	}
}
