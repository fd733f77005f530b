package patch

import "strings"

// defaultIgnoredPaths lists files and directories the patcher never touches:
// user-writable game state, local launcher artifacts, and per-machine
// configuration. Paths are relative to the game directory, slash-separated.
var defaultIgnoredPaths = []string{
	"$Patch",
	"Binaries/cookies.dat",
	"S1Game/GuildFlagUpload",
	"S1Game/GuildLogoUpload",
	"S1Game/ImageCache",
	"S1Game/Logs",
	"S1Game/Screenshots",
	"S1Game/Config/S1Engine.ini",
	"S1Game/Config/S1Game.ini",
	"S1Game/Config/S1Input.ini",
	"S1Game/Config/S1Lightmass.ini",
	"S1Game/Config/S1Option.ini",
	"S1Game/Config/S1SystemSettings.ini",
	"S1Game/Config/S1TBASettings.ini",
	"S1Game/Config/S1UI.ini",
	"Launcher.exe",
	"local.db",
	"version.ini",
	"unins000.dat",
	"unins000.exe",
	"file_cache.json",
	"hash-file.json",
}

// Ignored reports whether a slash-separated relative path is excluded from
// patching and hash generation. Matches exact entries and anything under an
// ignored directory prefix.
func Ignored(rel string) bool {
	rel = strings.TrimPrefix(strings.ReplaceAll(rel, "\\", "/"), "/")
	if rel == "" {
		return false
	}
	for _, ignored := range defaultIgnoredPaths {
		if rel == ignored || strings.HasPrefix(rel, ignored+"/") {
			return true
		}
	}
	return false
}
