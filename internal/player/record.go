package player

import (
	"path"
	"strings"

	"github.com/samber/lo"

	"github.com/llehouerou/playcore/internal/engine"
	"github.com/llehouerou/playcore/internal/errmsg"
	"github.com/llehouerou/playcore/internal/media"
)

type recordTarget struct {
	url    string
	format string
}

// recordFormats maps file extensions to muxer names where they differ.
var recordFormats = map[string]string{
	".mkv":  "matroska",
	".ts":   "mpegts",
	".m2ts": "mpegts",
	".m4a":  "mp4",
	".m4v":  "mp4",
	".mp4":  "mp4",
}

// RecordFormat infers the container format of a recording from the suffix
// of url, ignoring any query or fragment.
func RecordFormat(url string) string {
	u, _, _ := strings.Cut(url, "?")
	u, _, _ = strings.Cut(u, "#")
	ext := strings.ToLower(path.Ext(u))
	return lo.ValueOr(recordFormats, ext, strings.TrimPrefix(ext, "."))
}

// Record remuxes the current media to url while it plays. format is inferred
// from url when empty. An empty url, or the url being recorded, stops
// recording. The recording ends with the media.
func (p *Player) Record(url, format string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if url == "" || url == p.recording.url {
		if p.recording.url == "" {
			return
		}
		p.log.WithField("url", p.recording.url).Info("recording stopped")
		p.recording = recordTarget{}
		if pl := p.curPipelineLocked(); pl != nil {
			if err := pl.Record("", ""); err != nil {
				p.log.WithError(err).Warn(errmsg.Format(errmsg.OpRecord, err))
			}
		}
		return
	}

	if format == "" {
		format = RecordFormat(url)
	}
	p.recording = recordTarget{url: url, format: format}
	if pl := p.curPipelineLocked(); pl != nil {
		p.applyRecordingLocked(pl)
	}
}

func (p *Player) applyRecordingLocked(pl engine.Pipeline) {
	r := p.recording
	if r.url == "" {
		return
	}
	if err := pl.Record(r.url, r.format); err != nil {
		p.log.WithError(err).WithField("url", r.url).Warn(errmsg.Format(errmsg.OpRecord, err))
		p.recording = recordTarget{}
		p.postEventLocked(media.MediaEvent{
			Error:    media.CodeOf(err),
			Category: media.CategoryRecord,
			Detail:   errmsg.FormatWith(errmsg.OpRecord, r.url, err),
			Stream:   -1,
		})
		return
	}
	p.log.WithField("url", r.url).WithField("format", r.format).Info("recording")
}
