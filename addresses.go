package liveosc

// Session-level and song-level addresses. The address set and each
// address's positional layout come from the LiveOSC remote script and must
// stay wire-compatible with it.
const (
	addrStartup  = "/live/startup"
	addrShutdown = "/live/shutdown"
	addrRefresh  = "/live/refresh"

	addrTracks  = "/live/tracks"
	addrReturns = "/live/returns"
	addrScenes  = "/live/scenes"
	addrTempo   = "/live/tempo"
	addrTime    = "/live/time"
	addrBeat    = "/live/beat"
	addrScene   = "/live/scene"
	addrPlay    = "/live/play"
	addrStop    = "/live/stop"

	addrPlayScene = "/live/play/scene"

	addrNameTrack  = "/live/name/track"
	addrNameReturn = "/live/name/return"
	addrNameClip   = "/live/name/clip"

	addrTrackInfo = "/live/track/info"
	addrTrackView = "/live/track/view"
	addrStopTrack = "/live/stop/track"

	addrClipInfo      = "/live/clip/info"
	addrClipLoopStart = "/live/clip/loopstart"
	addrClipLoopEnd   = "/live/clip/loopend"
	addrClipLoopState = "/live/clip/loopstate"
	addrClipView      = "/live/clip/view"
	addrPlayClipSlot  = "/live/play/clipslot"
	addrStopClip      = "/live/stop/clip"

	addrReturnView = "/live/return/view"
	addrMasterView = "/live/master/view"
)

// chanKind is the per-kind address template. Track-scoped addresses hang
// off /live and carry a leading track-id argument; return addresses hang
// off /live/return the same way; master addresses hang off /live/master and
// carry no id argument at all. The asymmetry is the remote protocol's
// actual wire format, so it is kept explicit here rather than unified.
type chanKind struct {
	name   string // event namespace on the global sink
	prefix string
	hasID  bool
}

var (
	kindTrack  = chanKind{name: "track", prefix: "/live", hasID: true}
	kindReturn = chanKind{name: "return", prefix: "/live/return", hasID: true}
	kindMaster = chanKind{name: "master", prefix: "/live/master", hasID: false}
)

func (k chanKind) addr(suffix string) string {
	return k.prefix + suffix
}

// identity returns the leading identity arguments for messages scoped to
// channel id (empty for master).
func (k chanKind) identity(id int) []any {
	if !k.hasID {
		return nil
	}
	return []any{id}
}

// identityLen is the number of leading arguments identity() produces.
func (k chanKind) identityLen() int {
	if !k.hasID {
		return 0
	}
	return 1
}
