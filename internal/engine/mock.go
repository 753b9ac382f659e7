package engine

import (
	"context"
	"image"
	"sync"

	"github.com/llehouerou/playcore/internal/media"
	"github.com/llehouerou/playcore/internal/mediainfo"
	"github.com/llehouerou/playcore/internal/render"
)

// DefaultDescription is what Mock reports for media it has no script for.
func DefaultDescription() mediainfo.Description {
	return mediainfo.Description{
		Duration: 60_000,
		BitRate:  1_000_000,
		Format:   "mp4",
		Video: []mediainfo.VideoStreamInfo{{
			Index:    0,
			Duration: 60_000,
			Codec:    mediainfo.VideoCodecParameters{Codec: "h264", Width: 16, Height: 9, FrameRate: 25},
		}},
		Audio: []mediainfo.AudioStreamInfo{{
			Index:    1,
			Duration: 60_000,
			Codec:    mediainfo.AudioCodecParameters{Codec: "aac", Channels: 2, SampleRate: 48000},
		}},
	}
}

// Mock is a scriptable Engine for tests.
type Mock struct {
	mu               sync.Mutex
	media            map[string]mediainfo.Description
	openErr          map[string]error
	seekErr          error
	openGate         chan struct{}
	seekGate         chan struct{}
	keyFrameInterval int64
	opens            []OpenRequest
	pipelines        []*MockPipeline
}

// NewMock creates a new mock engine.
func NewMock() *Mock {
	return &Mock{
		media:   make(map[string]mediainfo.Description),
		openErr: make(map[string]error),
	}
}

func (m *Mock) Open(ctx context.Context, req OpenRequest, sink Sink) (Pipeline, error) {
	m.mu.Lock()
	m.opens = append(m.opens, req)
	gate := m.openGate
	err := m.openErr[req.URL]
	desc, ok := m.media[req.URL]
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		desc = DefaultDescription()
	}

	pl := &MockPipeline{
		engine: m,
		req:    req,
		sink:   sink,
		desc:   desc,
		paused: true,
		rate:   1,
		volume: 1,
	}
	m.mu.Lock()
	m.pipelines = append(m.pipelines, pl)
	m.mu.Unlock()
	return pl, nil
}

// Test helpers

// AddMedia scripts the description reported for url.
func (m *Mock) AddMedia(url string, d mediainfo.Description) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.media[url] = d
}

// SetOpenError makes Open of url fail with err.
func (m *Mock) SetOpenError(url string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.openErr[url] = err
}

// SetSeekError makes every Seek fail with err. nil restores success.
func (m *Mock) SetSeekError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seekErr = err
}

// SetKeyFrameInterval places key frames every ms milliseconds. 0 makes
// every position a key frame.
func (m *Mock) SetKeyFrameInterval(ms int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keyFrameInterval = ms
}

// BlockOpen makes Open wait until release is called or its context ends.
func (m *Mock) BlockOpen() (release func()) {
	return m.block(&m.openGate)
}

// BlockSeek makes Seek wait until release is called or its context ends.
func (m *Mock) BlockSeek() (release func()) {
	return m.block(&m.seekGate)
}

func (m *Mock) block(gate *chan struct{}) func() {
	ch := make(chan struct{})
	m.mu.Lock()
	*gate = ch
	m.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			if *gate == ch {
				*gate = nil
			}
			m.mu.Unlock()
			close(ch)
		})
	}
}

// Opens returns every Open request in call order.
func (m *Mock) Opens() []OpenRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]OpenRequest(nil), m.opens...)
}

// Pipelines returns every pipeline opened so far.
func (m *Mock) Pipelines() []*MockPipeline {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*MockPipeline(nil), m.pipelines...)
}

// Last returns the most recently opened pipeline, or nil.
func (m *Mock) Last() *MockPipeline {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.pipelines) == 0 {
		return nil
	}
	return m.pipelines[len(m.pipelines)-1]
}

// SeekCall records one Seek.
type SeekCall struct {
	Pos   int64
	Flags media.SeekFlag
}

// RecordCall records one Record.
type RecordCall struct {
	URL    string
	Format string
}

// MockPipeline is the Pipeline returned by Mock.
type MockPipeline struct {
	engine *Mock
	req    OpenRequest
	sink   Sink
	desc   mediainfo.Description

	mu         sync.Mutex
	paused     bool
	position   int64
	boost      bool
	rate       float32
	volume     float32
	muted      bool
	tracks     map[media.MediaType][]int
	buffer     BufferRange
	seeks      []SeekCall
	recordings []RecordCall
	recordErr  error
	closed     bool
}

func (p *MockPipeline) MediaInfo() mediainfo.Description { return p.desc }

func (p *MockPipeline) Seek(ctx context.Context, posMs int64, flags media.SeekFlag) (int64, error) {
	p.engine.mu.Lock()
	gate := p.engine.seekGate
	err := p.engine.seekErr
	interval := p.engine.keyFrameInterval
	p.engine.mu.Unlock()

	p.mu.Lock()
	p.seeks = append(p.seeks, SeekCall{Pos: posMs, Flags: flags})
	p.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return -1, ctx.Err()
		}
	}
	if err != nil {
		return -1, err
	}

	kf := keyFrameAt(posMs, interval, flags.IsFast())
	p.mu.Lock()
	if flags.IsFast() {
		p.position = kf
	} else {
		p.position = posMs
	}
	p.mu.Unlock()
	return kf, nil
}

// keyFrameAt returns the key frame a seek to pos starts from: the first at or
// after pos for fast seeks, the last at or before pos otherwise.
func keyFrameAt(pos, interval int64, fast bool) int64 {
	pos = max(pos, 0)
	if interval <= 0 {
		return pos
	}
	kf := pos / interval * interval
	if fast && kf < pos {
		kf += interval
	}
	return kf
}

func (p *MockPipeline) SetPaused(paused bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = paused
}

func (p *MockPipeline) Position() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.position
}

func (p *MockPipeline) SetBoost(boost bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.boost = boost
}

func (p *MockPipeline) SetPlaybackRate(rate float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rate = rate
}

func (p *MockPipeline) SetVolume(volume float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = volume
}

func (p *MockPipeline) SetMute(muted bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.muted = muted
}

func (p *MockPipeline) SetActiveTracks(t media.MediaType, tracks []int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.tracks == nil {
		p.tracks = make(map[media.MediaType][]int)
	}
	p.tracks[t] = append([]int(nil), tracks...)
}

func (p *MockPipeline) SetBufferRange(r BufferRange) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.buffer = r
}

func (p *MockPipeline) Buffered() (int64, int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ms := p.buffer.Min.Milliseconds()
	return ms, ms * p.desc.BitRate / 8000
}

func (p *MockPipeline) Record(url, format string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.recordErr != nil && url != "" {
		return p.recordErr
	}
	p.recordings = append(p.recordings, RecordCall{URL: url, Format: format})
	return nil
}

func (p *MockPipeline) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// Test helpers

// Request returns the request the pipeline was opened with.
func (p *MockPipeline) Request() OpenRequest { return p.req }

func (p *MockPipeline) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

func (p *MockPipeline) Boost() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.boost
}

func (p *MockPipeline) PlaybackRate() float32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rate
}

func (p *MockPipeline) Volume() float32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

func (p *MockPipeline) Muted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.muted
}

func (p *MockPipeline) Tracks(t media.MediaType) []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tracks[t]
}

func (p *MockPipeline) BufferRange() BufferRange {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buffer
}

func (p *MockPipeline) Seeks() []SeekCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]SeekCall(nil), p.seeks...)
}

func (p *MockPipeline) Recordings() []RecordCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]RecordCall(nil), p.recordings...)
}

// SetRecordError makes Record of a non-empty url fail with err.
func (p *MockPipeline) SetRecordError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.recordErr = err
}

func (p *MockPipeline) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// EmitFrame delivers a decoded frame with timestamp ts in seconds. A nil img
// sends a 16x9 frame.
func (p *MockPipeline) EmitFrame(ts float64, img image.Image) {
	if img == nil {
		img = image.NewRGBA(image.Rect(0, 0, 16, 9))
	}
	p.sink.Frame(render.Frame{Timestamp: ts, Image: img})
}

// EmitPosition moves the playback position and reports it.
func (p *MockPipeline) EmitPosition(ms int64) {
	p.mu.Lock()
	p.position = ms
	p.mu.Unlock()
	p.sink.Position(ms)
}

func (p *MockPipeline) EmitBuffering(progress int) { p.sink.Buffering(progress) }

func (p *MockPipeline) EmitStalled(stalled bool) { p.sink.Stalled(stalled) }

func (p *MockPipeline) EmitEvent(e media.MediaEvent) { p.sink.Event(e) }

func (p *MockPipeline) EmitEnd() { p.sink.EndOfStream() }

func (p *MockPipeline) EmitFailure(err error) { p.sink.Failed(err) }

// Verify the mocks implement the contracts at compile time.
var (
	_ Engine   = (*Mock)(nil)
	_ Pipeline = (*MockPipeline)(nil)
)
