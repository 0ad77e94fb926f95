package shared

const (
	// Discord application ids. Each one carries its own uploaded assets
	// (player icons, playing/paused icons, missing-cover placeholder).
	AUDIO_CLIENT_ID = "1129859263741837373"
	VIDEO_CLIENT_ID = "1356756023813210293"

	// MISSING_COVER is both the negative cache sentinel and the asset key
	// for the placeholder image uploaded to the Discord applications.
	MISSING_COVER = "missing-cover"

	ASSET_PLAYING = "playing"
	ASSET_PAUSED  = "paused"
	ASSET_YOUTUBE = "youtube"

	PROJECT_URL = "https://github.com/marcus-crane/nowplaying"

	USER_AGENT = "nowplaying/1.0 ( github.com/marcus-crane/nowplaying )"
)
